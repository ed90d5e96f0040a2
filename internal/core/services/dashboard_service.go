package services

import (
	"context"
	"time"

	"shamba-credit/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService handles dashboard aggregates
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// Portfolio totals
	TotalDownPayments decimal.Decimal `json:"total_down_payments"`
	TotalPendingDebt  decimal.Decimal `json:"total_pending_debt"`

	// Order statistics
	TotalOrders    int64 `json:"total_orders"`
	PendingOrders  int64 `json:"pending_orders"`
	ApprovedOrders int64 `json:"approved_orders"`
	RejectedOrders int64 `json:"rejected_orders"`

	// Repayment statistics (overdue derived as of query time)
	PendingPayments int64 `json:"pending_payments"`
	OverduePayments int64 `json:"overdue_payments"`
	PaidPayments    int64 `json:"paid_payments"`

	// Registry
	TotalFarmers    int64 `json:"total_farmers"`
	UnlinkedFarmers int64 `json:"unlinked_farmers"`
	TotalAgents     int64 `json:"total_agents"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}
	now := time.Now()

	// Order counts
	s.db.WithContext(ctx).Model(&models.Order{}).Count(&data.TotalOrders)
	s.db.WithContext(ctx).Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&data.PendingOrders)
	s.db.WithContext(ctx).Model(&models.Order{}).Where("status = ?", models.OrderStatusApproved).Count(&data.ApprovedOrders)
	s.db.WithContext(ctx).Model(&models.Order{}).Where("status = ?", models.OrderStatusRejected).Count(&data.RejectedOrders)

	// Down payments collected on approved orders
	s.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", models.OrderStatusApproved).
		Select("COALESCE(SUM(down_payment), 0)").
		Scan(&data.TotalDownPayments)

	// Outstanding debt: unpaid scheduled repayments
	s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusPending).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.TotalPendingDebt)

	// Repayment counts; overdue is the pending slice past due as of now
	s.db.WithContext(ctx).Model(&models.Payment{}).Where("status = ?", models.PaymentStatusPending).Count(&data.PendingPayments)
	s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusPending).
		Where("due_date < ?", now).
		Count(&data.OverduePayments)
	s.db.WithContext(ctx).Model(&models.Payment{}).Where("status = ?", models.PaymentStatusPaid).Count(&data.PaidPayments)
	data.PendingPayments -= data.OverduePayments

	// Registry counts
	s.db.WithContext(ctx).Model(&models.Farmer{}).Count(&data.TotalFarmers)
	s.db.WithContext(ctx).Model(&models.Farmer{}).Where("agent_id IS NULL").Count(&data.UnlinkedFarmers)
	s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", "agent").Count(&data.TotalAgents)

	return data, nil
}

// ============================================================
// Agent Dashboard
// ============================================================

// AgentDashboardData represents agent dashboard data
type AgentDashboardData struct {
	TotalOrders    int64 `json:"total_orders"`
	PendingOrders  int64 `json:"pending_orders"`
	ApprovedOrders int64 `json:"approved_orders"`
	LinkedFarmers  int64 `json:"linked_farmers"`
}

// GetAgentDashboard returns dashboard data scoped to one agent
func (s *DashboardService) GetAgentDashboard(ctx context.Context, agentID uint) (*AgentDashboardData, error) {
	data := &AgentDashboardData{}

	s.db.WithContext(ctx).Model(&models.Order{}).Where("agent_id = ?", agentID).Count(&data.TotalOrders)
	s.db.WithContext(ctx).Model(&models.Order{}).
		Where("agent_id = ? AND status = ?", agentID, models.OrderStatusPending).
		Count(&data.PendingOrders)
	s.db.WithContext(ctx).Model(&models.Order{}).
		Where("agent_id = ? AND status = ?", agentID, models.OrderStatusApproved).
		Count(&data.ApprovedOrders)
	s.db.WithContext(ctx).Model(&models.Farmer{}).Where("agent_id = ?", agentID).Count(&data.LinkedFarmers)

	return data, nil
}
