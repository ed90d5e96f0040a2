package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"shamba-credit/internal/adapters/persistence/models"
	"shamba-credit/internal/core/domain"
	"shamba-credit/internal/core/services"
	"shamba-credit/internal/pkg/pagination"
	"shamba-credit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// OrderHandler handles input order endpoints
type OrderHandler struct {
	orderService   *services.OrderService
	farmerService  *services.FarmerService
	paymentService *services.PaymentService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *services.OrderService, farmerService *services.FarmerService, paymentService *services.PaymentService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		farmerService:  farmerService,
		paymentService: paymentService,
	}
}

// CreateOrderRequest represents order creation request body
type CreateOrderRequest struct {
	FarmerID    uint            `json:"farmer_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DownPayment decimal.Decimal `json:"down_payment"`
}

// Create handles order creation by an agent
// @Summary Create order
// @Description Create a pending input order for a linked farmer. The recorded down payment must equal 50% of quantity times unit price.
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateOrderRequest true "Order data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.CreateOrderInput{
		FarmerID:    req.FarmerID,
		ProductName: strings.TrimSpace(req.ProductName),
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		DownPayment: req.DownPayment,
	}

	order, err := h.orderService.Create(c.Context(), input, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingProductName):
			return response.BadRequest(c, "Product name is required")
		case errors.Is(err, services.ErrInvalidQuantity):
			return response.BadRequest(c, "Quantity must be greater than 0")
		case errors.Is(err, services.ErrInvalidUnitPrice):
			return response.BadRequest(c, "Unit price must be greater than 0")
		case errors.Is(err, services.ErrInvalidDownPayment):
			return response.BadRequest(c, "Down payment must equal 50% of total cost")
		case errors.Is(err, services.ErrFarmerNotFound):
			return response.NotFound(c, "Farmer not found")
		case errors.Is(err, services.ErrFarmerNotLinked):
			return response.Forbidden(c, "Farmer is not linked to this agent")
		default:
			return response.InternalServerError(c, "Failed to create order")
		}
	}

	return response.Created(c, "Order created successfully", order.ToResponse())
}

// List handles order listing scoped by role
// @Summary List orders
// @Description List orders. Admins see all orders, agents their own, farmers orders placed for them. Optional ?status= filter.
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Order status: pending, approved or rejected"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	status := c.Query("status")
	switch status {
	case "", models.OrderStatusPending, models.OrderStatusApproved, models.OrderStatusRejected:
	default:
		return response.BadRequest(c, "Status must be pending, approved or rejected")
	}

	params := pagination.GetParams(c)

	input := &services.ListOrdersInput{
		Status: status,
		Offset: params.Offset,
		Limit:  params.Limit,
	}

	// Scope by role
	switch role {
	case string(domain.RoleAgent):
		input.AgentID = &userID
	case string(domain.RoleFarmer):
		phone, _ := c.Locals("phone").(string)
		farmer, err := h.farmerService.GetByPhone(c.Context(), phone)
		if err != nil {
			return response.NotFound(c, "Farmer record not found")
		}
		input.FarmerID = &farmer.ID
	}

	orders, total, err := h.orderService.List(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to list orders")
	}

	items := make([]*models.OrderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, order.ToResponse())
	}

	return response.Success(c, "Orders retrieved successfully", pagination.NewResponse(items, params, total))
}

// Get handles single order retrieval
// @Summary Get order
// @Description Get an order by ID. Agents and farmers can only access their own orders. Approved orders include their repayment entry.
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid order ID")
	}

	order, err := h.orderService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return response.NotFound(c, "Order not found")
		}
		return response.InternalServerError(c, "Failed to get order")
	}

	// Ownership check for non-admin roles
	switch role {
	case string(domain.RoleAgent):
		if order.AgentID != userID {
			return response.NotFound(c, "Order not found")
		}
	case string(domain.RoleFarmer):
		phone, _ := c.Locals("phone").(string)
		farmer, err := h.farmerService.GetByPhone(c.Context(), phone)
		if err != nil || order.FarmerID != farmer.ID {
			return response.NotFound(c, "Order not found")
		}
	}

	data := fiber.Map{"order": order.ToResponse()}

	// Approved orders carry their repayment entry
	if order.Status == models.OrderStatusApproved {
		if payment, err := h.paymentService.GetByOrderID(c.Context(), order.ID); err == nil {
			data["payment"] = payment.ToResponse(time.Now())
		}
	}

	return response.Success(c, "Order retrieved successfully", data)
}

// Approve handles order approval by an admin
// @Summary Approve order
// @Description Approve a pending order. Creates the single repayment entry for the remaining balance, due 30 days after approval.
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /orders/{id}/approve [post]
func (h *OrderHandler) Approve(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid order ID")
	}

	result, err := h.orderService.Approve(c.Context(), uint(id), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return response.NotFound(c, "Order not found")
		case errors.Is(err, services.ErrOrderNotPending):
			return response.Conflict(c, "Order is not pending")
		default:
			return response.InternalServerError(c, "Failed to approve order")
		}
	}

	return response.Success(c, "Order approved successfully", fiber.Map{
		"order":   result.Order.ToResponse(),
		"payment": result.Payment.ToResponse(time.Now()),
	})
}

// Reject handles order rejection by an admin
// @Summary Reject order
// @Description Reject a pending order. No repayment entry is created.
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /orders/{id}/reject [post]
func (h *OrderHandler) Reject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid order ID")
	}

	order, err := h.orderService.Reject(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return response.NotFound(c, "Order not found")
		case errors.Is(err, services.ErrOrderNotPending):
			return response.Conflict(c, "Order is not pending")
		default:
			return response.InternalServerError(c, "Failed to reject order")
		}
	}

	return response.Success(c, "Order rejected successfully", order.ToResponse())
}
