package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/middleware"
	"github.com/mansoorceksport/platepal/internal/service"
)

// PaymentHandler handles plan listing, checkout and subscription status
type PaymentHandler struct {
	billing *service.BillingService
}

func NewPaymentHandler(billing *service.BillingService) *PaymentHandler {
	return &PaymentHandler{billing: billing}
}

// CheckoutRequest represents the request body for checkout
type CheckoutRequest struct {
	PlanID        string `json:"plan_id"`
	PaymentMethod string `json:"payment_method"` // BCA, Mandiri, BNI
}

// InvoiceResponse is the client view of an invoice
type InvoiceResponse struct {
	ID            string `json:"id"`
	PlanID        string `json:"plan_id"`
	VANumber      string `json:"va_number"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	ExpiryDate    string `json:"expiry_date"` // RFC 3339
	Status        string `json:"status"`
}

func toInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		PlanID:        inv.PlanID,
		VANumber:      inv.VANumber,
		Amount:        inv.Amount,
		PaymentMethod: inv.PaymentMethod,
		ExpiryDate:    inv.ExpiryDate.UTC().Format(time.RFC3339),
		Status:        inv.Status,
	}
}

// PlanResponse represents a purchasable plan
type PlanResponse struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Price          int64  `json:"price"`
	DurationMonths int    `json:"duration_months"`
}

// ListPlans handles GET /v1/plans
func (h *PaymentHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.billing.ListPlans(c.UserContext())
	if err != nil {
		return respondError(c, "Billing", err)
	}

	response := make([]PlanResponse, 0, len(plans))
	for _, p := range plans {
		response = append(response, PlanResponse{
			ID:             p.ID,
			Code:           p.Code,
			Name:           p.Name,
			Description:    p.Description,
			Price:          p.Price,
			DurationMonths: p.DurationMonths,
		})
	}
	return ok(c, fiber.StatusOK, response)
}

// Checkout handles POST /v1/me/billing/checkout. An open invoice for the
// same plan is returned instead of opening a second VA.
func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	invoice, created, err := h.billing.Checkout(c.UserContext(), middleware.GetUserID(c), req.PlanID, req.PaymentMethod)
	if err != nil {
		return respondError(c, "Checkout", err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return ok(c, status, toInvoiceResponse(invoice))
}

// GetInvoiceStatus handles GET /v1/me/billing/invoices/:id
func (h *PaymentHandler) GetInvoiceStatus(c *fiber.Ctx) error {
	invoice, err := h.billing.GetInvoice(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Billing", err)
	}
	return ok(c, fiber.StatusOK, toInvoiceResponse(invoice))
}

// Subscription handles GET /v1/me/subscription
func (h *PaymentHandler) Subscription(c *fiber.Ctx) error {
	status, err := h.billing.Subscription(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, "Billing", err)
	}
	return ok(c, fiber.StatusOK, status)
}
