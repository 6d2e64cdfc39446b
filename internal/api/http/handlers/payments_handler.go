package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/bistro-service/internal/api/dto"
	"github.com/spec-kit/bistro-service/internal/service"
)

// PaymentsHandler exposes payment intent, history, and reconciliation
// endpoints.
type PaymentsHandler struct {
	payments *service.PaymentService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(payments *service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{payments: payments}
}

// CreateIntent handles POST /create-payment-intent.
func (h *PaymentsHandler) CreateIntent(c *fiber.Ctx) error {
	var req dto.PaymentIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Price <= 0 {
		return fiber.NewError(http.StatusBadRequest, "positive price required")
	}

	secret, err := h.payments.CreateIntent(c.UserContext(), req.Price)
	if err != nil {
		return err
	}
	return c.JSON(dto.PaymentIntentResponse{ClientSecret: secret})
}

// History handles GET /payments/:email (self-only).
func (h *PaymentsHandler) History(c *fiber.Ctx) error {
	payments, err := h.payments.History(c.UserContext(), emailParam(c, "email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": payments})
}

// Reconcile handles POST /payments. An empty cart id list is accepted and
// records a payment with zero removals.
func (h *PaymentsHandler) Reconcile(c *fiber.Ctx) error {
	var req dto.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.TransactionID == "" {
		return fiber.NewError(http.StatusBadRequest, "email and transactionId required")
	}
	// Reject malformed ids up front; once the payment row is recorded, a
	// failing delete is escalated to operators as an incomplete cleanup.
	for _, id := range req.CartItemIDs {
		if _, err := uuid.Parse(id); err != nil {
			return fiber.NewError(http.StatusBadRequest, "cartItemIds must be UUIDs")
		}
	}

	result, err := h.payments.Reconcile(c.UserContext(), service.ReconcileInput{
		Email:       req.Email,
		Amount:      req.Price,
		Currency:    req.Currency,
		GatewayRef:  req.TransactionID,
		CartItemIDs: req.CartItemIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.PaymentResponse{
		PaymentID:    result.PaymentID,
		RemovedCount: result.RemovedCount,
	})
}
