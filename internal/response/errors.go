package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"
	ErrForbidden     ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrInvalidID       ErrCode = "INVALID_ID"
	ErrInvalidPayload  ErrCode = "INVALID_PAYLOAD"
	ErrInvalidArgument ErrCode = "INVALID_ARGUMENT"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Feed-specific ─────────────────────────────────────────────────
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"
	ErrFeedExhausted   ErrCode = "FEED_EXHAUSTED"
	ErrFeedLoad        ErrCode = "FEED_LOAD_ERROR"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrDataSourceUnavailable ErrCode = "DATA_SOURCE_UNAVAILABLE"
	ErrInternal              ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The identifier format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrInvalidArgument:
		return "One or more request parameters are invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."

	// ─── Feed-specific ─────────────────────────────────────────────────
	case ErrSessionNotFound:
		return "The feed session does not exist or has expired."
	case ErrFeedExhausted:
		return "There are no candidates left in this feed."
	case ErrFeedLoad:
		return "The feed could not load the next batch of candidates."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrDataSourceUnavailable:
		return "The data source is temporarily unavailable."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
