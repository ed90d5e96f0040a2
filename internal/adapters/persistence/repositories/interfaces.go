package repositories

import (
	"context"
	"time"

	"shamba-credit/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// FarmerRepository defines farmer repository interface
type FarmerRepository interface {
	Create(ctx context.Context, farmer *models.Farmer) error
	CreateBatch(ctx context.Context, farmers []*models.Farmer) error
	GetByID(ctx context.Context, id uint) (*models.Farmer, error)
	GetByPhone(ctx context.Context, phone string) (*models.Farmer, error)
	List(ctx context.Context, offset, limit int) ([]*models.Farmer, int64, error)
	ListUnlinked(ctx context.Context, offset, limit int) ([]*models.Farmer, int64, error)
	ListByAgent(ctx context.Context, agentID uint, offset, limit int) ([]*models.Farmer, int64, error)
	CountByAgent(ctx context.Context, agentID uint) (int64, error)
	// Link claims an unlinked farmer for an agent. The update is guarded on
	// agent_id IS NULL so exactly one concurrent claimer succeeds.
	Link(ctx context.Context, farmerID, agentID uint) error
}

// OrderRepository defines order repository interface
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter, offset, limit int) ([]*models.Order, int64, error)
	// Approve transitions pending → approved and creates the repayment
	// schedule in a single transaction. The status-guarded update serializes
	// concurrent approval attempts: only one caller wins.
	Approve(ctx context.Context, orderID, approverID uint, dueDays int) (*models.Order, *models.Payment, error)
	// Reject transitions pending → rejected (terminal).
	Reject(ctx context.Context, orderID uint) (*models.Order, error)
}

// OrderFilter narrows order listings
type OrderFilter struct {
	AgentID  *uint
	FarmerID *uint
	Status   string
}

// PaymentRepository defines payment repository interface
type PaymentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByOrderID(ctx context.Context, orderID uint) (*models.Payment, error)
	List(ctx context.Context, offset, limit int) ([]*models.Payment, int64, error)
	ListByFarmer(ctx context.Context, farmerID uint) ([]*models.Payment, error)
	// ListDuePending returns pending payments whose due date has passed as
	// of the given instant. Used for read-time overdue partitioning and the
	// daily reminder job; it never mutates status.
	ListDuePending(ctx context.Context, asOf time.Time) ([]*models.Payment, error)
	// MarkPaid transitions pending → paid, guarded on current status.
	MarkPaid(ctx context.Context, paymentID uint, paidDate time.Time) (*models.Payment, error)
}
