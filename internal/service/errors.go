package service

import "errors"

// Sentinel errors returned by the ledger and session services. Callers classify
// them with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyDecided    = errors.New("already decided")
	ErrForbidden         = errors.New("forbidden")
	ErrOutOfStock        = errors.New("out of stock")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicateEmail    = errors.New("email already registered")
)
