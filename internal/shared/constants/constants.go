package constants

// Gin context keys set by the auth middleware.
const (
	ContextKeyUserID     = "user_id"
	ContextKeyProviderID = "provider_id"
	ContextKeyUserHandle = "user_handle"
)
