package services

import "errors"

// Typed errors surfaced by the services. Handlers match them with errors.Is
// to pick HTTP status codes; wrapped variants carry detail via %w.
var (
	ErrValidation          = errors.New("invalid input")
	ErrUserNotFound        = errors.New("user not found")
	ErrRewardNotFound      = errors.New("reward not found")
	ErrClaimNotFound       = errors.New("claim not found")
	ErrGrantNotFound       = errors.New("pending grant not found")
	ErrRewardInactive      = errors.New("reward is not active")
	ErrOutOfStock          = errors.New("reward is out of stock")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrGrantExpired        = errors.New("pending grant has expired")
	ErrGrantConsumed       = errors.New("pending grant already used")
	ErrConflict            = errors.New("conflicting concurrent update")
)
