package entities

import "errors"

// Business-rule failures returned by the core operations. Handlers map
// them to success=false results; anything else is an internal error.
var (
	// ErrInsufficientFunds: the source account cannot cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidOrder: no pending order matches the OTP and phone. The
	// message deliberately does not reveal whether the code is wrong,
	// already consumed, or unknown.
	ErrInvalidOrder = errors.New("incorrect, expired, or already used code")

	// ErrOrderExpired: a matching order exists but its window has passed.
	ErrOrderExpired = errors.New("withdrawal code has expired")

	// ErrAccountNotFound: the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")
)
