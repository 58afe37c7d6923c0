package services

import "errors"

// Validation and state errors returned to callers. Handlers map them to
// HTTP status codes with errors.Is.
var (
	ErrMissingUserID      = errors.New("user id is required")
	ErrNoItems            = errors.New("at least one item is required")
	ErrInvalidItemID      = errors.New("invalid item id")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoTradeURL         = errors.New("trade url is not set")
	ErrItemsUnavailable   = errors.New("items not found or already staked")
	ErrIntermission       = errors.New("next round has not started yet")
	ErrJoinsPaused        = errors.New("joins are paused")
	ErrRoundNotActive     = errors.New("round is not active")
	ErrTransitionConflict = errors.New("round changed concurrently")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminExists        = errors.New("admin already exists")
	ErrPayoutNotFound     = errors.New("payout not found")
	ErrPayoutNotRetryable = errors.New("payout is not in a retryable state")
	ErrInvalidTradeURL    = errors.New("invalid trade url")
	ErrInvalidSettings    = errors.New("invalid settings")
)
