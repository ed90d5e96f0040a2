package handlers

import (
	"errors"
	"strconv"
	"time"

	"shamba-credit/internal/adapters/persistence/models"
	"shamba-credit/internal/core/services"
	"shamba-credit/internal/pkg/pagination"
	"shamba-credit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles repayment schedule endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// List handles listing all repayment entries for admins
// @Summary List payments
// @Description List all repayment entries ordered by due date. Overdue status is computed from the due date at read time.
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /payments [get]
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	payments, total, err := h.paymentService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}

	now := time.Now()
	items := make([]*models.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		items = append(items, payment.ToResponse(now))
	}

	return response.Success(c, "Payments retrieved successfully", pagination.NewResponse(items, params, total))
}

// Schedule handles the farmer-facing repayment schedule
// @Summary Get own repayment schedule
// @Description Get the authenticated farmer's repayment entries partitioned into pending, overdue and paid buckets.
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/schedule [get]
func (h *PaymentHandler) Schedule(c *fiber.Ctx) error {
	phone, ok := c.Locals("phone").(string)
	if !ok || phone == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	payments, err := h.paymentService.ListByFarmerPhone(c.Context(), phone)
	if err != nil {
		if errors.Is(err, services.ErrFarmerNotFound) {
			return response.NotFound(c, "Farmer record not found")
		}
		return response.InternalServerError(c, "Failed to get repayment schedule")
	}

	return response.Success(c, "Repayment schedule retrieved successfully", services.Partition(payments, time.Now()))
}

// Overdue handles listing overdue repayments for admins
// @Summary List overdue payments
// @Description List pending repayment entries whose due date has passed
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /payments/overdue [get]
func (h *PaymentHandler) Overdue(c *fiber.Ctx) error {
	now := time.Now()

	payments, err := h.paymentService.ListOverdue(c.Context(), now)
	if err != nil {
		return response.InternalServerError(c, "Failed to list overdue payments")
	}

	items := make([]*models.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		items = append(items, payment.ToResponse(now))
	}

	return response.Success(c, "Overdue payments retrieved successfully", items)
}

// MarkPaid handles recording a repayment
// @Summary Mark payment as paid
// @Description Record a repayment against a pending entry. An entry that is already paid is rejected.
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/{id}/paid [post]
func (h *PaymentHandler) MarkPaid(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid payment ID")
	}

	payment, err := h.paymentService.MarkPaid(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			return response.NotFound(c, "Payment not found")
		case errors.Is(err, services.ErrPaymentNotPending):
			return response.Conflict(c, "Payment is not pending")
		default:
			return response.InternalServerError(c, "Failed to mark payment as paid")
		}
	}

	return response.Success(c, "Payment marked as paid", payment.ToResponse(time.Now()))
}
