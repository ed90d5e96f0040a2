package repositories

import (
	"context"
	"time"

	"shamba-credit/internal/adapters/persistence/models"
	"shamba-credit/internal/core/credit"
	"shamba-credit/internal/core/domain"

	"gorm.io/gorm"
)

// orderRepository implements OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create creates a new order
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// GetByID gets an order by ID with relations
func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Farmer").
		Preload("Agent").
		Preload("Approver").
		Preload("Payment").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List lists orders with pagination and optional filters
func (r *orderRepository) List(ctx context.Context, filter OrderFilter, offset, limit int) ([]*models.Order, int64, error) {
	var orders []*models.Order
	var total int64

	base := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.AgentID != nil {
		base = base.Where("agent_id = ?", *filter.AgentID)
	}
	if filter.FarmerID != nil {
		base = base.Where("farmer_id = ?", *filter.FarmerID)
	}
	if filter.Status != "" {
		base = base.Where("status = ?", filter.Status)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Farmer").
		Preload("Agent").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error

	return orders, total, err
}

// Approve transitions an order pending → approved and creates its single
// repayment schedule entry as one transaction. The guarded UPDATE makes the
// read-check-write sequence safe under concurrent approvals: the losing
// caller affects zero rows and the payment is created exactly once.
func (r *orderRepository) Approve(ctx context.Context, orderID, approverID uint, dueDays int) (*models.Order, *models.Payment, error) {
	var order models.Order
	var payment models.Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		result := tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Where("status = ?", models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":      models.OrderStatusApproved,
				"approved_at": now,
				"approved_by": approverID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domain.ErrOrderNotFound
			}
			return domain.ErrOrderNotPending
		}

		if err := tx.Preload("Farmer").Preload("Agent").First(&order, orderID).Error; err != nil {
			return err
		}

		payment = models.Payment{
			OrderID: order.ID,
			Amount:  order.RemainingBalance,
			DueDate: credit.ScheduleDueDate(now, dueDays),
			Status:  models.PaymentStatusPending,
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return &order, &payment, nil
}

// Reject transitions an order pending → rejected. Terminal: approved or
// rejected orders are never re-applied.
func (r *orderRepository) Reject(ctx context.Context, orderID uint) (*models.Order, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Where("status = ?", models.OrderStatusPending).
		Update("status", models.OrderStatusRejected)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.ErrOrderNotPending
	}

	return r.GetByID(ctx, orderID)
}
