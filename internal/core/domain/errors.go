package domain

import "errors"

// Failure kinds surfaced by the swap state machine. Callers match them with
// errors.Is; the HTTP layer translates them to status codes.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateLock      = errors.New("lock already exists")
	ErrLockNotFound       = errors.New("lock not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAlreadySettled     = errors.New("lock already settled")
	ErrSecretMismatch     = errors.New("secret hash does not match")
	ErrTimelockNotExpired = errors.New("timelock not expired")
	ErrTransferFailed     = errors.New("token transfer failed")
	ErrAlreadyCompleted   = errors.New("completion already processed")
)
