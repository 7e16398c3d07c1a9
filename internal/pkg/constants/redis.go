package constants

// Redis key formats
const (
	KeyRefreshSession = "auth:refresh:%s" // Format: auth:refresh:{token_id}
)
