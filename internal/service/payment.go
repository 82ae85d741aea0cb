package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mansoorceksport/platepal/internal/config"
	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/infrastructure/ipaymu"
	"github.com/oklog/ulid/v2"
)

// WebhookPath is where the gateway posts payment callbacks
const WebhookPath = "/v1/billing/webhook/ipaymu"

// VARequest describes the virtual account to open for an invoice
type VARequest struct {
	Bank        string
	Amount      int64
	Description string
	User        *domain.User
}

// VAResponse represents the response from a payment provider
type VAResponse struct {
	VANumber  string
	SessionID string
	ExpiresAt time.Time
}

// PaymentProvider defines the interface for payment gateway integrations
type PaymentProvider interface {
	// GenerateVA creates a Virtual Account for the given bank and amount
	GenerateVA(ctx context.Context, req VARequest) (*VAResponse, error)
}

// MockIPaymuClient hands out fake VA numbers for local development
type MockIPaymuClient struct {
	now func() time.Time
}

// IPaymuClientAdapter adapts the ipaymu.Client to PaymentProvider interface
type IPaymuClientAdapter struct {
	client *ipaymu.Client
}

// NewPaymentProvider returns the real gateway client when credentials are
// configured and the mock otherwise
func NewPaymentProvider(cfg config.IPaymuConfig) PaymentProvider {
	if cfg.APIKey == "" || cfg.VA == "" {
		log.Println("[Payment] Using mock iPaymu client (no credentials configured)")
		return &MockIPaymuClient{now: time.Now}
	}

	webhookURL := ""
	if cfg.NotifyURL != "" {
		webhookURL = strings.TrimRight(cfg.NotifyURL, "/") + WebhookPath
	}

	log.Printf("[Payment] Using real iPaymu client (base: %s, notify: %s)", cfg.BaseURL, webhookURL)
	client := ipaymu.NewClient(ipaymu.Config{
		VA:        cfg.VA,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		NotifyURL: webhookURL,
	})
	return &IPaymuClientAdapter{client: client}
}

// GenerateVA generates a mock Virtual Account number
func (m *MockIPaymuClient) GenerateVA(ctx context.Context, req VARequest) (*VAResponse, error) {
	sessionID := ulid.Make().String()

	prefix := "GEN"
	if code, ok := ipaymu.MapBankCode(req.Bank); ok {
		prefix = strings.ToUpper(string(code))
	}

	now := time.Now
	if m.now != nil {
		now = m.now
	}
	return &VAResponse{
		VANumber:  fmt.Sprintf("8888-MOCK-%s-%s", prefix, sessionID[:8]),
		SessionID: sessionID,
		ExpiresAt: now().UTC().Add(24 * time.Hour),
	}, nil
}

// GenerateVA creates a real Virtual Account via iPaymu API
func (a *IPaymuClientAdapter) GenerateVA(ctx context.Context, req VARequest) (*VAResponse, error) {
	bank, ok := ipaymu.MapBankCode(req.Bank)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported bank %q", domain.ErrInvalidInput, req.Bank)
	}

	customer := ipaymu.Customer{Name: "PlatePal Member", Email: "member@platepal.app", Phone: "081234567890"}
	if req.User != nil {
		if req.User.Name != "" {
			customer.Name = req.User.Name
		}
		if req.User.Email != "" {
			customer.Email = req.User.Email
		}
	}

	resp, err := a.client.CreateDirectVA(ctx, ipaymu.DirectVARequest{
		ReferenceID: ulid.Make().String(),
		Amount:      req.Amount,
		Bank:        bank,
		Description: req.Description,
		Customer:    customer,
	})
	if err != nil {
		log.Printf("[Payment] iPaymu API error: %v", err)
		return nil, fmt.Errorf("payment provider error: %w", err)
	}

	return &VAResponse{
		VANumber:  resp.VANumber,
		SessionID: resp.SessionID,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}
