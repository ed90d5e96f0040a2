package services

import (
	"context"
	"errors"
	"log"

	"shamba-credit/internal/adapters/persistence/models"
	"shamba-credit/internal/adapters/persistence/repositories"
	"shamba-credit/internal/core/credit"
	"shamba-credit/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order service errors
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotPending    = errors.New("order is not pending")
	ErrInvalidQuantity    = errors.New("quantity must be greater than 0")
	ErrInvalidUnitPrice   = errors.New("unit price must be greater than 0")
	ErrInvalidDownPayment = errors.New("down payment must equal 50% of total cost")
	ErrFarmerNotLinked    = errors.New("farmer is not linked to this agent")
	ErrMissingProductName = errors.New("product name is required")
)

// OrderService handles credit order business logic
type OrderService struct {
	orderRepo     repositories.OrderRepository
	farmerRepo    repositories.FarmerRepository
	notifyService *NotificationService
	dueDays       int
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repositories.OrderRepository,
	farmerRepo repositories.FarmerRepository,
	notifyService *NotificationService,
	dueDays int,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		farmerRepo:    farmerRepo,
		notifyService: notifyService,
		dueDays:       dueDays,
	}
}

// CreateOrderInput represents create order input
type CreateOrderInput struct {
	FarmerID    uint            `json:"farmer_id" validate:"required"`
	ProductName string          `json:"product_name" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DownPayment decimal.Decimal `json:"down_payment"`
}

// Create creates a new pending order for a farmer linked to the calling
// agent. Derived money fields are recomputed here and the recorded down
// payment is enforced at this single write path: an order that fails the
// 50% check is never persisted.
func (s *OrderService) Create(ctx context.Context, input *CreateOrderInput, agentID uint) (*models.Order, error) {
	if input.ProductName == "" {
		return nil, ErrMissingProductName
	}
	if !input.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if !input.UnitPrice.IsPositive() {
		return nil, ErrInvalidUnitPrice
	}

	// Farmer must exist and belong to this agent
	farmer, err := s.farmerRepo.GetByID(ctx, input.FarmerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, err
	}
	if farmer.AgentID == nil || *farmer.AgentID != agentID {
		return nil, ErrFarmerNotLinked
	}

	totalCost := credit.TotalCost(input.Quantity, input.UnitPrice)
	if !credit.ValidDownPayment(totalCost, input.DownPayment) {
		return nil, ErrInvalidDownPayment
	}

	order := &models.Order{
		FarmerID:         farmer.ID,
		AgentID:          agentID,
		ProductName:      input.ProductName,
		Quantity:         input.Quantity,
		UnitPrice:        input.UnitPrice,
		TotalCost:        totalCost,
		DownPayment:      credit.DownPayment(totalCost),
		RemainingBalance: credit.RemainingBalance(totalCost),
		Status:           models.OrderStatusPending,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	log.Printf("✅ Order %d created by agent %d (farmer %d, total %s)",
		order.ID, agentID, farmer.ID, order.TotalCost)

	return order, nil
}

// GetByID gets an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// ListOrdersInput represents list input
type ListOrdersInput struct {
	AgentID  *uint
	FarmerID *uint
	Status   string
	Offset   int
	Limit    int
}

// List lists orders with optional scope and status filters
func (s *OrderService) List(ctx context.Context, input *ListOrdersInput) ([]*models.Order, int64, error) {
	filter := repositories.OrderFilter{
		AgentID:  input.AgentID,
		FarmerID: input.FarmerID,
		Status:   input.Status,
	}
	return s.orderRepo.List(ctx, filter, input.Offset, input.Limit)
}

// ApproveResult carries the two records written by an approval
type ApproveResult struct {
	Order   *models.Order   `json:"order"`
	Payment *models.Payment `json:"payment"`
}

// Approve approves a pending order. The order update and the creation of
// its single repayment entry happen atomically in the repository; a
// concurrent approval of the same order fails the status guard.
func (s *OrderService) Approve(ctx context.Context, orderID, approverID uint) (*ApproveResult, error) {
	order, payment, err := s.orderRepo.Approve(ctx, orderID, approverID, s.dueDays)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			return nil, ErrOrderNotFound
		case errors.Is(err, domain.ErrOrderNotPending):
			return nil, ErrOrderNotPending
		default:
			return nil, err
		}
	}

	log.Printf("✅ Order %d approved by user %d, payment of %s due %s",
		order.ID, approverID, payment.Amount, payment.DueDate.Format("2006-01-02"))

	if s.notifyService != nil {
		s.notifyService.NotifyOrderApproved(order, payment)
	}

	return &ApproveResult{Order: order, Payment: payment}, nil
}

// Reject rejects a pending order (terminal)
func (s *OrderService) Reject(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.Reject(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			return nil, ErrOrderNotFound
		case errors.Is(err, domain.ErrOrderNotPending):
			return nil, ErrOrderNotPending
		default:
			return nil, err
		}
	}

	log.Printf("🛑 Order %d rejected", order.ID)

	if s.notifyService != nil {
		s.notifyService.NotifyOrderRejected(order)
	}

	return order, nil
}
