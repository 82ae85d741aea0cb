package ipaymu

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// StatusPaid is the callback status iPaymu sends for a settled payment
const StatusPaid = "berhasil"

// BankCode represents supported bank codes for VA
type BankCode string

const (
	BankBCA     BankCode = "bca"
	BankMandiri BankCode = "mandiri"
	BankBNI     BankCode = "bni"
	BankBRI     BankCode = "bri"
	BankCIMB    BankCode = "cimb"
)

// Config holds iPaymu API configuration
type Config struct {
	VA        string // merchant VA
	APIKey    string
	BaseURL   string // sandbox or production
	NotifyURL string // callback URL for payment notifications
}

// Customer is the payer shown on the iPaymu invoice
type Customer struct {
	Name  string
	Email string
	Phone string
}

// DirectVARequest describes a VA to open
type DirectVARequest struct {
	ReferenceID string
	Amount      int64
	Bank        BankCode
	Description string
	Customer    Customer
	ExpiryHours int
}

// VAResponse is the opened VA
type VAResponse struct {
	VANumber  string
	SessionID string
	ExpiresAt time.Time
}

type directPaymentRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Amount         int64  `json:"amount"`
	NotifyURL      string `json:"notifyUrl"`
	Expired        int    `json:"expired"` // hours
	Comments       string `json:"comments"`
	ReferenceID    string `json:"referenceId"`
	PaymentMethod  string `json:"paymentMethod"`
	PaymentChannel string `json:"paymentChannel"`
}

type directPaymentResponse struct {
	Status  int    `json:"Status"`
	Message string `json:"Message"`
	Data    struct {
		SessionID   string `json:"SessionId"`
		ReferenceID string `json:"ReferenceId"`
		PaymentNo   string `json:"PaymentNo"` // the VA number
		Total       int64  `json:"Total"`
		Expired     string `json:"Expired"`
	} `json:"Data"`
}

// Client is the iPaymu API client
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// requestSignature signs an API call:
// hmacSha256(apiKey, METHOD:va:lower(sha256(body)):apiKey), lowercase hex
func requestSignature(method, va, apiKey string, body []byte) string {
	bodyHash := sha256.Sum256(body)
	stringToSign := fmt.Sprintf("%s:%s:%s:%s", method, va, strings.ToLower(hex.EncodeToString(bodyHash[:])), apiKey)

	h := hmac.New(sha256.New, []byte(apiKey))
	h.Write([]byte(stringToSign))
	return strings.ToLower(hex.EncodeToString(h.Sum(nil)))
}

// CallbackSignature is the signature iPaymu attaches to payment callbacks:
// hmacSha256(apiKey, va.sid.status)
func CallbackSignature(apiKey, va, sid, status string) string {
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(va + "." + sid + "." + status))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCallbackSignature compares in constant time
func VerifyCallbackSignature(apiKey, va, sid, status, provided string) bool {
	if provided == "" {
		return false
	}
	expected := CallbackSignature(apiKey, va, sid, status)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}

// CreateDirectVA opens a virtual account for a direct payment
func (c *Client) CreateDirectVA(ctx context.Context, in DirectVARequest) (*VAResponse, error) {
	url := c.config.BaseURL + "/api/v2/payment/direct"

	expiry := in.ExpiryHours
	if expiry <= 0 {
		expiry = 24
	}
	reqBody := directPaymentRequest{
		Name:           in.Customer.Name,
		Phone:          in.Customer.Phone,
		Email:          in.Customer.Email,
		Amount:         in.Amount,
		NotifyURL:      c.config.NotifyURL,
		Expired:        expiry,
		Comments:       in.Description,
		ReferenceID:    in.ReferenceID,
		PaymentMethod:  "va",
		PaymentChannel: string(in.Bank),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("va", c.config.VA)
	req.Header.Set("signature", requestSignature(http.MethodPost, c.config.VA, c.config.APIKey, jsonBody))
	req.Header.Set("timestamp", fmt.Sprintf("%d", time.Now().Unix()))

	log.Printf("[iPaymu] Calling %s with bank: %s, amount: %d", url, in.Bank, in.Amount)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("iPaymu API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var apiResp directPaymentResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if apiResp.Status != http.StatusOK {
		return nil, fmt.Errorf("iPaymu API error: %s", apiResp.Message)
	}

	expiresAt := parseExpiry(apiResp.Data.Expired)
	if expiresAt.IsZero() {
		expiresAt = time.Now().UTC().Add(time.Duration(expiry) * time.Hour)
	}

	return &VAResponse{
		VANumber:  apiResp.Data.PaymentNo,
		SessionID: apiResp.Data.SessionID,
		ExpiresAt: expiresAt,
	}, nil
}

// parseExpiry accepts RFC3339 and the "2006-01-02 15:04:05" form (WIB)
func parseExpiry(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.FixedZone("WIB", 7*3600)); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// MapBankCode converts a client-facing bank name to an iPaymu channel.
// The second result is false for unsupported banks.
func MapBankCode(bank string) (BankCode, bool) {
	switch strings.ToUpper(strings.TrimSpace(bank)) {
	case "BCA":
		return BankBCA, true
	case "MANDIRI":
		return BankMandiri, true
	case "BNI":
		return BankBNI, true
	case "BRI":
		return BankBRI, true
	case "CIMB":
		return BankCIMB, true
	}
	return "", false
}
