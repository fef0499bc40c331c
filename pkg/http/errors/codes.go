package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"

	// Auth errors
	ErrCodeInvalidToken = "invalid_token"
	ErrCodeForbidden    = "forbidden"

	// Session errors
	ErrCodeSessionNotFound     = "session_not_found"
	ErrCodeSessionCompleted    = "session_completed"
	ErrCodeSessionStartFailed  = "session_start_failed"
	ErrCodeSubmitFailed        = "submit_failed"
	ErrCodeInvalidSessionID    = "invalid_session_id"
	ErrCodeInvalidLetter       = "invalid_letter"

	// Wildcard errors
	ErrCodeUnknownWildcard     = "unknown_wildcard"
	ErrCodeInsufficientCharges = "insufficient_charges"
	ErrCodeFreezeAlreadyActive = "freeze_already_active"

	// Board errors
	ErrCodeUnknownWindow = "unknown_window"

	// Server errors
	ErrCodeInternalError = "internal_error"
)
