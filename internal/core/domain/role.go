package domain

// Role represents user role in the system
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAgent  Role = "agent"
	RoleFarmer Role = "farmer"
)
