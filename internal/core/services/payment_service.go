package services

import (
	"context"
	"errors"
	"log"
	"time"

	"shamba-credit/internal/adapters/persistence/models"
	"shamba-credit/internal/adapters/persistence/repositories"
	"shamba-credit/internal/core/domain"

	"gorm.io/gorm"
)

// Payment service errors
var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentNotPending = errors.New("payment is not pending")
)

// PaymentService handles repayment schedule business logic. Overdue is
// always derived at read time; nothing here rewrites a stored status to
// overdue.
type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	farmerRepo  repositories.FarmerRepository
}

// NewPaymentService creates a new payment service
func NewPaymentService(paymentRepo repositories.PaymentRepository, farmerRepo repositories.FarmerRepository) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		farmerRepo:  farmerRepo,
	}
}

// GetByID gets a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// GetByOrderID gets the repayment entry created for an approved order
func (s *PaymentService) GetByOrderID(ctx context.Context, orderID uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// List lists all payments with pagination
func (s *PaymentService) List(ctx context.Context, offset, limit int) ([]*models.Payment, int64, error) {
	return s.paymentRepo.List(ctx, offset, limit)
}

// ListByFarmerPhone lists the payment schedule for the farmer matching a
// phone number (how a farmer session maps onto its farmer record).
func (s *PaymentService) ListByFarmerPhone(ctx context.Context, phone string) ([]*models.Payment, error) {
	farmer, err := s.farmerRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, err
	}
	return s.paymentRepo.ListByFarmer(ctx, farmer.ID)
}

// Schedule partitions payments by derived status for display
type Schedule struct {
	Pending []*models.PaymentResponse `json:"pending"`
	Overdue []*models.PaymentResponse `json:"overdue"`
	Paid    []*models.PaymentResponse `json:"paid"`
}

// Partition splits payments into paid, pending and overdue buckets as of
// now. Overdue membership is computed from the due date, not read from
// storage.
func Partition(payments []*models.Payment, now time.Time) *Schedule {
	schedule := &Schedule{
		Pending: []*models.PaymentResponse{},
		Overdue: []*models.PaymentResponse{},
		Paid:    []*models.PaymentResponse{},
	}

	for _, p := range payments {
		resp := p.ToResponse(now)
		switch resp.Status {
		case models.PaymentStatusPaid:
			schedule.Paid = append(schedule.Paid, resp)
		case models.PaymentStatusOverdue:
			schedule.Overdue = append(schedule.Overdue, resp)
		default:
			schedule.Pending = append(schedule.Pending, resp)
		}
	}

	return schedule
}

// ListOverdue returns pending payments past due as of now
func (s *PaymentService) ListOverdue(ctx context.Context, now time.Time) ([]*models.Payment, error) {
	return s.paymentRepo.ListDuePending(ctx, now)
}

// MarkPaid records a repayment: pending → paid with the paid date. A
// payment that is already paid is rejected, not re-applied.
func (s *PaymentService) MarkPaid(ctx context.Context, paymentID uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.MarkPaid(ctx, paymentID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPaymentNotFound):
			return nil, ErrPaymentNotFound
		case errors.Is(err, domain.ErrPaymentNotPending):
			return nil, ErrPaymentNotPending
		default:
			return nil, err
		}
	}

	log.Printf("✅ Payment %d marked paid (order %d)", payment.ID, payment.OrderID)

	return payment, nil
}
