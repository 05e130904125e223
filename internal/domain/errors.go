package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure, with no infrastructure dependency.
// All of them are recoverable and are returned to the immediate caller.

var (
	// Grant validation errors. Returned before any state mutation.
	ErrInvalidAmount     = errors.New("xp amount must be a non-negative integer")
	ErrUnknownSource     = errors.New("unknown reward source")
	ErrUnknownMultiplier = errors.New("unknown multiplier kind")

	// Achievement errors
	ErrUnknownAchievement = errors.New("unknown achievement id")

	// Concurrency errors. The caller must retry the whole grant against a
	// freshly loaded state, never re-apply a previously computed delta.
	ErrStaleState = errors.New("progression state changed concurrently")

	// User errors
	ErrInvalidUserID = errors.New("user id is required")
	ErrUserNotFound  = errors.New("user progression not found")

	// Catalog errors
	ErrInvalidCatalog = errors.New("invalid reward catalog")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")
)
