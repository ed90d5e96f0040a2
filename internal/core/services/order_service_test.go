package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"shamba-credit/internal/adapters/persistence/models"
	"shamba-credit/internal/adapters/persistence/repositories"
	"shamba-credit/internal/core/domain"
)

// fakeFarmerRepo is an in-memory FarmerRepository stub
type fakeFarmerRepo struct {
	farmers map[uint]*models.Farmer
}

func newFakeFarmerRepo(farmers ...*models.Farmer) *fakeFarmerRepo {
	repo := &fakeFarmerRepo{farmers: make(map[uint]*models.Farmer)}
	for _, f := range farmers {
		repo.farmers[f.ID] = f
	}
	return repo
}

func (r *fakeFarmerRepo) Create(ctx context.Context, farmer *models.Farmer) error {
	farmer.ID = uint(len(r.farmers) + 1)
	r.farmers[farmer.ID] = farmer
	return nil
}

func (r *fakeFarmerRepo) CreateBatch(ctx context.Context, farmers []*models.Farmer) error {
	for _, f := range farmers {
		if err := r.Create(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeFarmerRepo) GetByID(ctx context.Context, id uint) (*models.Farmer, error) {
	farmer, ok := r.farmers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return farmer, nil
}

func (r *fakeFarmerRepo) GetByPhone(ctx context.Context, phone string) (*models.Farmer, error) {
	for _, f := range r.farmers {
		if f.Phone == phone {
			return f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFarmerRepo) List(ctx context.Context, offset, limit int) ([]*models.Farmer, int64, error) {
	var out []*models.Farmer
	for _, f := range r.farmers {
		out = append(out, f)
	}
	return out, int64(len(out)), nil
}

func (r *fakeFarmerRepo) ListUnlinked(ctx context.Context, offset, limit int) ([]*models.Farmer, int64, error) {
	var out []*models.Farmer
	for _, f := range r.farmers {
		if f.AgentID == nil {
			out = append(out, f)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeFarmerRepo) ListByAgent(ctx context.Context, agentID uint, offset, limit int) ([]*models.Farmer, int64, error) {
	var out []*models.Farmer
	for _, f := range r.farmers {
		if f.AgentID != nil && *f.AgentID == agentID {
			out = append(out, f)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeFarmerRepo) CountByAgent(ctx context.Context, agentID uint) (int64, error) {
	_, total, err := r.ListByAgent(ctx, agentID, 0, 0)
	return total, err
}

func (r *fakeFarmerRepo) Link(ctx context.Context, farmerID, agentID uint) error {
	farmer, ok := r.farmers[farmerID]
	if !ok {
		return domain.ErrFarmerNotFound
	}
	if farmer.AgentID != nil {
		return domain.ErrFarmerAlreadyLinked
	}
	farmer.AgentID = &agentID
	return nil
}

// fakeOrderRepo is an in-memory OrderRepository stub
type fakeOrderRepo struct {
	orders  map[uint]*models.Order
	nextID  uint
	dueDays int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uint]*models.Order), nextID: 1}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	order.ID = r.nextID
	r.nextID++
	order.CreatedAt = time.Now()
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) List(ctx context.Context, filter repositories.OrderFilter, offset, limit int) ([]*models.Order, int64, error) {
	var out []*models.Order
	for _, o := range r.orders {
		if filter.AgentID != nil && o.AgentID != *filter.AgentID {
			continue
		}
		if filter.FarmerID != nil && o.FarmerID != *filter.FarmerID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) Approve(ctx context.Context, orderID, approverID uint, dueDays int) (*models.Order, *models.Payment, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return nil, nil, domain.ErrOrderNotFound
	}
	if order.Status != models.OrderStatusPending {
		return nil, nil, domain.ErrOrderNotPending
	}
	now := time.Now()
	order.Status = models.OrderStatusApproved
	order.ApprovedAt = &now
	order.ApprovedBy = &approverID
	payment := &models.Payment{
		ID:      orderID,
		OrderID: orderID,
		Amount:  order.RemainingBalance,
		DueDate: now.AddDate(0, 0, dueDays),
		Status:  models.PaymentStatusPending,
	}
	r.dueDays = dueDays
	return order, payment, nil
}

func (r *fakeOrderRepo) Reject(ctx context.Context, orderID uint) (*models.Order, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if order.Status != models.OrderStatusPending {
		return nil, domain.ErrOrderNotPending
	}
	order.Status = models.OrderStatusRejected
	return order, nil
}

func linkedFarmer(id, agentID uint) *models.Farmer {
	return &models.Farmer{
		ID:         id,
		Name:       "Wanjiku Kamau",
		Phone:      "+254712345678",
		NationalID: "12345678",
		AgentID:    &agentID,
	}
}

func validOrderInput(farmerID uint) *CreateOrderInput {
	return &CreateOrderInput{
		FarmerID:    farmerID,
		ProductName: "DAP Fertilizer 50kg",
		Quantity:    decimal.NewFromInt(10),
		UnitPrice:   decimal.NewFromInt(1000),
		DownPayment: decimal.NewFromInt(5000),
	}
}

func TestOrderServiceCreate(t *testing.T) {
	const agentID = uint(7)

	t.Run("creates pending order with derived money fields", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		svc := NewOrderService(orderRepo, newFakeFarmerRepo(linkedFarmer(1, agentID)), nil, 30)

		order, err := svc.Create(context.Background(), validOrderInput(1), agentID)
		require.NoError(t, err)

		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.True(t, order.TotalCost.Equal(decimal.NewFromInt(10000)))
		assert.True(t, order.DownPayment.Equal(decimal.NewFromInt(5000)))
		assert.True(t, order.RemainingBalance.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, agentID, order.AgentID)
		assert.Nil(t, order.ApprovedAt)
		assert.Len(t, orderRepo.orders, 1)
	})

	t.Run("rejects down payment that is not half the total", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		svc := NewOrderService(orderRepo, newFakeFarmerRepo(linkedFarmer(1, agentID)), nil, 30)

		input := validOrderInput(1)
		input.DownPayment = decimal.NewFromInt(4000)

		_, err := svc.Create(context.Background(), input, agentID)
		assert.ErrorIs(t, err, ErrInvalidDownPayment)
		assert.Empty(t, orderRepo.orders, "invalid order must never be persisted")
	})

	t.Run("accepts down payment within rounding tolerance", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		svc := NewOrderService(orderRepo, newFakeFarmerRepo(linkedFarmer(1, agentID)), nil, 30)

		input := validOrderInput(1)
		input.DownPayment = decimal.RequireFromString("5000.005")

		_, err := svc.Create(context.Background(), input, agentID)
		assert.NoError(t, err)
	})

	t.Run("rejects farmer linked to another agent", func(t *testing.T) {
		svc := NewOrderService(newFakeOrderRepo(), newFakeFarmerRepo(linkedFarmer(1, 99)), nil, 30)

		_, err := svc.Create(context.Background(), validOrderInput(1), agentID)
		assert.ErrorIs(t, err, ErrFarmerNotLinked)
	})

	t.Run("rejects unlinked farmer", func(t *testing.T) {
		farmer := linkedFarmer(1, agentID)
		farmer.AgentID = nil
		svc := NewOrderService(newFakeOrderRepo(), newFakeFarmerRepo(farmer), nil, 30)

		_, err := svc.Create(context.Background(), validOrderInput(1), agentID)
		assert.ErrorIs(t, err, ErrFarmerNotLinked)
	})

	t.Run("rejects unknown farmer", func(t *testing.T) {
		svc := NewOrderService(newFakeOrderRepo(), newFakeFarmerRepo(), nil, 30)

		_, err := svc.Create(context.Background(), validOrderInput(42), agentID)
		assert.ErrorIs(t, err, ErrFarmerNotFound)
	})

	t.Run("validates quantity, price and product name", func(t *testing.T) {
		svc := NewOrderService(newFakeOrderRepo(), newFakeFarmerRepo(linkedFarmer(1, agentID)), nil, 30)

		input := validOrderInput(1)
		input.Quantity = decimal.Zero
		_, err := svc.Create(context.Background(), input, agentID)
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		input = validOrderInput(1)
		input.UnitPrice = decimal.NewFromInt(-5)
		_, err = svc.Create(context.Background(), input, agentID)
		assert.ErrorIs(t, err, ErrInvalidUnitPrice)

		input = validOrderInput(1)
		input.ProductName = ""
		_, err = svc.Create(context.Background(), input, agentID)
		assert.ErrorIs(t, err, ErrMissingProductName)
	})
}

func TestOrderServiceApprove(t *testing.T) {
	const agentID = uint(7)
	const adminID = uint(1)

	setup := func(t *testing.T) (*OrderService, *models.Order) {
		orderRepo := newFakeOrderRepo()
		svc := NewOrderService(orderRepo, newFakeFarmerRepo(linkedFarmer(1, agentID)), nil, 30)
		order, err := svc.Create(context.Background(), validOrderInput(1), agentID)
		require.NoError(t, err)
		return svc, order
	}

	t.Run("approval schedules repayment for the remaining balance", func(t *testing.T) {
		svc, order := setup(t)

		result, err := svc.Approve(context.Background(), order.ID, adminID)
		require.NoError(t, err)

		assert.Equal(t, models.OrderStatusApproved, result.Order.Status)
		require.NotNil(t, result.Order.ApprovedAt)
		assert.Equal(t, adminID, *result.Order.ApprovedBy)

		assert.Equal(t, order.ID, result.Payment.OrderID)
		assert.True(t, result.Payment.Amount.Equal(order.RemainingBalance))
		assert.Equal(t, models.PaymentStatusPending, result.Payment.Status)

		wantDue := result.Order.ApprovedAt.AddDate(0, 0, 30)
		assert.WithinDuration(t, wantDue, result.Payment.DueDate, time.Minute)
	})

	t.Run("configured due days reach the repository", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		svc := NewOrderService(orderRepo, newFakeFarmerRepo(linkedFarmer(1, agentID)), nil, 45)
		order, err := svc.Create(context.Background(), validOrderInput(1), agentID)
		require.NoError(t, err)

		result, err := svc.Approve(context.Background(), order.ID, adminID)
		require.NoError(t, err)

		assert.Equal(t, 45, orderRepo.dueDays)
		wantDue := result.Order.ApprovedAt.AddDate(0, 0, 45)
		assert.WithinDuration(t, wantDue, result.Payment.DueDate, time.Minute)
	})

	t.Run("second approval fails the status guard", func(t *testing.T) {
		svc, order := setup(t)

		_, err := svc.Approve(context.Background(), order.ID, adminID)
		require.NoError(t, err)

		_, err = svc.Approve(context.Background(), order.ID, adminID)
		assert.ErrorIs(t, err, ErrOrderNotPending)
	})

	t.Run("approving a missing order fails", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.Approve(context.Background(), 999, adminID)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("rejection is terminal", func(t *testing.T) {
		svc, order := setup(t)

		rejected, err := svc.Reject(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusRejected, rejected.Status)

		_, err = svc.Approve(context.Background(), order.ID, adminID)
		assert.ErrorIs(t, err, ErrOrderNotPending)
	})
}

func TestOrderServiceList(t *testing.T) {
	const agentID = uint(7)

	orderRepo := newFakeOrderRepo()
	farmerRepo := newFakeFarmerRepo(linkedFarmer(1, agentID), linkedFarmer(2, 99))
	farmerRepo.farmers[2].Phone = "+254700000002"
	farmerRepo.farmers[2].NationalID = "87654321"
	svc := NewOrderService(orderRepo, farmerRepo, nil, 30)

	_, err := svc.Create(context.Background(), validOrderInput(1), agentID)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validOrderInput(2), 99)
	require.NoError(t, err)

	scoped := agentID
	orders, total, err := svc.List(context.Background(), &ListOrdersInput{AgentID: &scoped, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, agentID, orders[0].AgentID)
}
