package repositories

import (
	"context"
	"time"

	"shamba-credit/internal/adapters/persistence/models"
	"shamba-credit/internal/core/domain"

	"gorm.io/gorm"
)

// paymentRepository implements PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// GetByID gets a payment by ID with its order
func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Farmer").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByOrderID gets the payment for an order
func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// List lists payments with pagination, soonest due first
func (r *paymentRepository) List(ctx context.Context, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Payment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Farmer").
		Order("due_date ASC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error

	return payments, total, err
}

// ListByFarmer lists payments for orders belonging to a farmer
func (r *paymentRepository) ListByFarmer(ctx context.Context, farmerID uint) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.farmer_id = ?", farmerID).
		Preload("Order").
		Order("due_date ASC").
		Find(&payments).Error
	return payments, err
}

// ListDuePending returns pending payments past due as of the given instant.
// Read-only: status stays pending in storage, overdue is derived.
func (r *paymentRepository) ListDuePending(ctx context.Context, asOf time.Time) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Farmer").
		Where("status = ?", models.PaymentStatusPending).
		Where("due_date < ?", asOf).
		Order("due_date ASC").
		Find(&payments).Error
	return payments, err
}

// MarkPaid transitions a payment pending → paid. Guarded on current status
// so a double mark-paid is rejected, not silently re-applied.
func (r *paymentRepository) MarkPaid(ctx context.Context, paymentID uint, paidDate time.Time) (*models.Payment, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Where("status = ?", models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":    models.PaymentStatusPaid,
			"paid_date": paidDate,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", paymentID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, domain.ErrPaymentNotPending
	}

	return r.GetByID(ctx, paymentID)
}
