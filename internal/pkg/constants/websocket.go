package constants

// Inbound WebSocket actions
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionCall        = "call"
)

// WebSocket and HTTP error codes
const (
	ErrorInvalidToken     = "invalid_token"
	ErrorExpired          = "expired"
	ErrorExpiryTooShort   = "expiry_too_short"
	ErrorUnauthorized     = "unauthorized"
	ErrorForbidden        = "forbidden"
	ErrorNotFound         = "not_found"
	ErrorAlreadyExists    = "already_exists"
	ErrorUnknown          = "unknown"
	ErrorUpstream         = "upstream"
	ErrorMalformedMessage = "malformed_message"
	ErrorBadGateway       = "bad_gateway"
	ErrorInvalidParams    = "invalid_params"
)

// Token type returned by the auth endpoints
const TokenTypeBearer = "bearer"
