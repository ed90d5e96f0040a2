package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// UserErrors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidPassword   = errors.New("invalid password")
)

// FarmerErrors
var (
	ErrFarmerNotFound      = errors.New("farmer not found")
	ErrFarmerAlreadyLinked = errors.New("farmer already linked to an agent")
)

// OrderErrors
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotPending    = errors.New("order is not pending")
	ErrInvalidQuantity    = errors.New("quantity must be greater than 0")
	ErrInvalidUnitPrice   = errors.New("unit price must be greater than 0")
	ErrInvalidDownPayment = errors.New("down payment must equal 50% of total cost")
)

// PaymentErrors
var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentNotPending = errors.New("payment is not pending")
)
