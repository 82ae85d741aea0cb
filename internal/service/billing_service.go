package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/infrastructure/ipaymu"
)

// Billing errors
var (
	ErrPlanInactive     = errors.New("plan is not active")
	ErrInvalidSignature = errors.New("invalid callback signature")
)

// SupportedBanks are the VA channels offered at checkout
var SupportedBanks = []string{"BCA", "Mandiri", "BNI"}

// CallbackResult tells the webhook caller what happened to a callback
type CallbackResult string

const (
	CallbackAcknowledged CallbackResult = "status acknowledged"
	CallbackDuplicate    CallbackResult = "already processed"
	CallbackProcessed    CallbackResult = "payment processed"
)

// PaymentCallback is the gateway notification for a VA session
type PaymentCallback struct {
	SID         string `json:"sid" form:"sid"`
	VA          string `json:"va" form:"va"`
	Status      string `json:"status" form:"status"`
	ReferenceID string `json:"reference_id" form:"reference_id"`
	TrxID       int64  `json:"trx_id" form:"trx_id"`
	Amount      int64  `json:"amount" form:"amount"`
	Signature   string `json:"signature" form:"signature"`
}

// SubscriptionStatus is the premium state reported to clients
type SubscriptionStatus struct {
	Status    string     `json:"status"`
	IsPremium bool       `json:"is_premium"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// BillingService sells premium plans through virtual accounts
type BillingService struct {
	plans         domain.PlanRepository
	invoices      domain.InvoiceRepository
	subscriptions domain.SubscriptionRepository
	users         domain.UserRepository
	provider      PaymentProvider
	callbackKey   string
	now           func() time.Time
}

// NewBillingService wires billing. callbackKey is the gateway API key used to
// sign callbacks; when empty, signatures are not checked (mock mode).
func NewBillingService(
	plans domain.PlanRepository,
	invoices domain.InvoiceRepository,
	subscriptions domain.SubscriptionRepository,
	users domain.UserRepository,
	provider PaymentProvider,
	callbackKey string,
) *BillingService {
	return &BillingService{
		plans:         plans,
		invoices:      invoices,
		subscriptions: subscriptions,
		users:         users,
		provider:      provider,
		callbackKey:   callbackKey,
		now:           time.Now,
	}
}

func (s *BillingService) ListPlans(ctx context.Context) ([]*domain.Plan, error) {
	return s.plans.GetActivePlans(ctx)
}

// Checkout returns the user's open invoice for the plan, or opens a new VA.
// The bool is true when a new invoice was created.
func (s *BillingService) Checkout(ctx context.Context, userID, planID, bank string) (*domain.Invoice, bool, error) {
	if planID == "" {
		return nil, false, fmt.Errorf("%w: plan_id is required", domain.ErrInvalidInput)
	}
	if !supportedBank(bank) {
		return nil, false, fmt.Errorf("%w: payment_method must be BCA, Mandiri, or BNI", domain.ErrInvalidInput)
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, false, err
	}
	if !plan.IsActive {
		return nil, false, ErrPlanInactive
	}

	existing, err := s.invoices.GetPendingByUserAndPlan(ctx, userID, planID)
	if err == nil && existing != nil {
		return existing, false, nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to check existing invoices: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	va, err := s.provider.GenerateVA(ctx, VARequest{
		Bank:        bank,
		Amount:      plan.Price,
		Description: plan.Name,
		User:        user,
	})
	if err != nil {
		return nil, false, err
	}

	invoice := &domain.Invoice{
		UserID:           userID,
		PlanID:           planID,
		Amount:           plan.Price,
		Status:           domain.InvoiceStatusPending,
		VANumber:         va.VANumber,
		PaymentMethod:    bank,
		PaymentSessionID: va.SessionID,
		ExpiryDate:       va.ExpiresAt,
	}
	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, false, fmt.Errorf("failed to create invoice: %w", err)
	}

	log.Printf("[Billing] Opened invoice %s for user %s (plan %s, %s)", invoice.ID, userID, plan.Code, bank)
	return invoice, true, nil
}

// GetInvoice returns an invoice owned by userID
func (s *BillingService) GetInvoice(ctx context.Context, userID, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return invoice, nil
}

func (s *BillingService) Subscription(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &SubscriptionStatus{
		Status:    user.SubscriptionStatus(now),
		IsPremium: user.IsPremium(now),
		EndDate:   user.SubscriptionEndDate,
	}, nil
}

// HandleCallback applies a gateway notification. Only successful payments
// change state, and a paid invoice is never applied twice.
func (s *BillingService) HandleCallback(ctx context.Context, cb PaymentCallback) (CallbackResult, error) {
	if s.callbackKey != "" && !ipaymu.VerifyCallbackSignature(s.callbackKey, cb.VA, cb.SID, cb.Status, cb.Signature) {
		return "", ErrInvalidSignature
	}

	invoice, err := s.invoices.GetByPaymentSessionID(ctx, cb.SID)
	if err != nil {
		return "", err
	}

	if cb.Status != ipaymu.StatusPaid {
		log.Printf("[Billing] Payment not successful: status=%s, sid=%s", cb.Status, cb.SID)
		return CallbackAcknowledged, nil
	}
	if invoice.Status == domain.InvoiceStatusPaid {
		return CallbackDuplicate, nil
	}

	if err := s.invoices.UpdateStatus(ctx, invoice.ID, domain.InvoiceStatusPaid); err != nil {
		return "", fmt.Errorf("failed to update invoice: %w", err)
	}

	durationMonths := 1
	if plan, err := s.plans.GetByID(ctx, invoice.PlanID); err == nil {
		durationMonths = plan.DurationMonths
	} else {
		log.Printf("[Billing] Plan %s lookup failed, defaulting to 1 month: %v", invoice.PlanID, err)
	}

	user, err := s.users.GetByID(ctx, invoice.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	now := s.now().UTC()
	newEnd := domain.CalculateNewEndDate(user.SubscriptionEndDate, durationMonths, now)

	start := now
	if user.SubscriptionEndDate != nil && user.SubscriptionEndDate.After(now) {
		start = user.SubscriptionEndDate.UTC()
	}
	if err := s.subscriptions.Create(ctx, &domain.Subscription{
		UserID:    invoice.UserID,
		InvoiceID: invoice.ID,
		StartDate: start,
		EndDate:   newEnd,
	}); err != nil {
		// invoice is already paid, the end date below is what grants access
		log.Printf("[Billing] Failed to create subscription record: %v", err)
	}

	if err := s.users.UpdateSubscriptionEndDate(ctx, invoice.UserID, newEnd); err != nil {
		return "", fmt.Errorf("failed to extend subscription: %w", err)
	}

	log.Printf("[Billing] Payment processed: invoice=%s, user=%s, newEndDate=%s",
		invoice.ID, invoice.UserID, newEnd.Format(time.RFC3339))
	return CallbackProcessed, nil
}

func supportedBank(bank string) bool {
	for _, b := range SupportedBanks {
		if b == bank {
			return true
		}
	}
	return false
}
