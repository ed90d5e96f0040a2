package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shamba-credit/internal/core/credit"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;not null;default:'farmer'" json:"role"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Phone     string         `gorm:"size:20" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Name:      u.Name,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Farmer Table
// ============================================================

// Farmer represents farmers table. AgentID is nil until an agent claims the
// farmer; linking is one-time, first claim wins.
type Farmer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Phone      string    `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	NationalID string    `gorm:"uniqueIndex;size:30;not null" json:"national_id"`
	AgentID    *uint     `gorm:"index" json:"agent_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Agent *User `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
}

func (Farmer) TableName() string {
	return "farmers"
}

func (f *Farmer) IsLinked() bool {
	return f.AgentID != nil
}

// ============================================================
// Order & Payment Tables
// ============================================================

// Order statuses. pending → approved | rejected, both terminal.
const (
	OrderStatusPending  = "pending"
	OrderStatusApproved = "approved"
	OrderStatusRejected = "rejected"
)

// Order represents orders table
type Order struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	FarmerID         uint            `gorm:"not null;index" json:"farmer_id"`
	AgentID          uint            `gorm:"not null;index" json:"agent_id"`
	ProductName      string          `gorm:"size:100;not null" json:"product_name"`
	Quantity         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalCost        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_cost"`
	DownPayment      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"down_payment"`
	RemainingBalance decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"remaining_balance"`
	Status           string          `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	ApprovedAt       *time.Time      `json:"approved_at"`
	ApprovedBy       *uint           `json:"approved_by"`

	// Relations
	Farmer   *Farmer  `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
	Agent    *User    `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Approver *User    `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	Payment  *Payment `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderResponse DTO
type OrderResponse struct {
	ID               uint            `json:"id"`
	FarmerID         uint            `json:"farmer_id"`
	FarmerName       string          `json:"farmer_name,omitempty"`
	AgentID          uint            `json:"agent_id"`
	AgentName        string          `json:"agent_name,omitempty"`
	ProductName      string          `json:"product_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	DownPayment      decimal.Decimal `json:"down_payment"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Status           string          `json:"status"`
	StatusVariant    string          `json:"status_variant"`
	CreatedAt        time.Time       `json:"created_at"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	ApprovedBy       *uint           `json:"approved_by,omitempty"`
}

func (o *Order) ToResponse() *OrderResponse {
	resp := &OrderResponse{
		ID:               o.ID,
		FarmerID:         o.FarmerID,
		AgentID:          o.AgentID,
		ProductName:      o.ProductName,
		Quantity:         o.Quantity,
		UnitPrice:        o.UnitPrice,
		TotalCost:        o.TotalCost,
		DownPayment:      o.DownPayment,
		RemainingBalance: o.RemainingBalance,
		Status:           o.Status,
		StatusVariant:    credit.StatusVariant(o.Status),
		CreatedAt:        o.CreatedAt,
		ApprovedAt:       o.ApprovedAt,
		ApprovedBy:       o.ApprovedBy,
	}

	if o.Farmer != nil {
		resp.FarmerName = o.Farmer.Name
	}
	if o.Agent != nil {
		resp.AgentName = o.Agent.Name
	}

	return resp
}

// Payment statuses. "overdue" is never stored: it is derived at read time
// from status == pending and due_date < now.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusOverdue = "overdue"
)

// Payment represents payments table. One payment per order, created at the
// moment of approval (unique index on order_id backs the 1:1).
type Payment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"uniqueIndex;not null" json:"order_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	DueDate   time.Time       `gorm:"not null;index" json:"due_date"`
	PaidDate  *time.Time      `json:"paid_date"`
	Status    string          `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// EffectiveStatus returns the derived status as of now: a pending payment
// past its due date reads as overdue without being rewritten in storage.
func (p *Payment) EffectiveStatus(now time.Time) string {
	if p.Status == PaymentStatusPending && credit.IsOverdue(p.DueDate, now) {
		return PaymentStatusOverdue
	}
	return p.Status
}

// PaymentResponse DTO
type PaymentResponse struct {
	ID            uint            `json:"id"`
	OrderID       uint            `json:"order_id"`
	FarmerName    string          `json:"farmer_name,omitempty"`
	ProductName   string          `json:"product_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
	Status        string          `json:"status"`
	StatusVariant string          `json:"status_variant"`
	Overdue       bool            `json:"overdue"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToResponse builds the DTO with status derived as of now.
func (p *Payment) ToResponse(now time.Time) *PaymentResponse {
	status := p.EffectiveStatus(now)
	resp := &PaymentResponse{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		DueDate:       p.DueDate,
		PaidDate:      p.PaidDate,
		Status:        status,
		StatusVariant: credit.StatusVariant(status),
		Overdue:       status == PaymentStatusOverdue,
		CreatedAt:     p.CreatedAt,
	}

	if p.Order != nil {
		resp.ProductName = p.Order.ProductName
		if p.Order.Farmer != nil {
			resp.FarmerName = p.Order.Farmer.Name
		}
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Farmer{},
		&Order{},
		&Payment{},
	)
}
