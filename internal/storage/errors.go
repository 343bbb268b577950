package storage

import "errors"

var (
	// ErrNotFound is returned when a read expecting exactly one row found none.
	ErrNotFound = errors.New("not found")

	// ErrInvariantViolation is returned when a mutation expected to touch exactly
	// one row touched zero or several. It signals a logic bug or a race that got
	// past row locking, never an expected runtime condition.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrCollisionExhausted is returned when short id generation kept colliding
	// with existing rows for every allowed attempt.
	ErrCollisionExhausted = errors.New("id collision retries exhausted")

	// ErrRetryable wraps lock timeouts, deadlocks and serialization failures
	// reported by the database. The unit of work was rolled back and may be
	// retried by the caller.
	ErrRetryable = errors.New("retryable storage error")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
)
