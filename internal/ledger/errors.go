package ledger

import "github.com/mmynk/splitledger/internal/storage"

// Errors returned by ledger operations. They alias the storage sentinels so
// callers can test either with errors.Is.
var (
	ErrNotFound           = storage.ErrNotFound
	ErrInvariantViolation = storage.ErrInvariantViolation
	ErrCollisionExhausted = storage.ErrCollisionExhausted
	ErrRetryable          = storage.ErrRetryable
	ErrValidation         = storage.ErrValidation
)
