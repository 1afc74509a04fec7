package constants

// OAuthErrorCode represents OAuth error codes
type OAuthErrorCode string

const (
	// OAuth provider errors (from callback)
	OAuthErrorAccessDenied       OAuthErrorCode = "access_denied"
	OAuthErrorInvalidRequest     OAuthErrorCode = "invalid_request"
	OAuthErrorUnauthorizedClient OAuthErrorCode = "unauthorized_client"
	OAuthErrorServerError        OAuthErrorCode = "server_error"

	// Internal errors
	OAuthErrorMissingCode    OAuthErrorCode = "missing_code"
	OAuthErrorMissingState   OAuthErrorCode = "missing_state"
	OAuthErrorInvalidState   OAuthErrorCode = "invalid_state"
	OAuthErrorExpiredState   OAuthErrorCode = "expired_state"
	OAuthErrorExchangeFailed OAuthErrorCode = "exchange_failed"
	OAuthErrorLinkFailed     OAuthErrorCode = "link_failed"
)

// OAuthErrorMessages maps error codes to user-friendly messages
var OAuthErrorMessages = map[OAuthErrorCode]string{
	OAuthErrorAccessDenied:       "You denied the authorization request. Please try again if you wish to continue.",
	OAuthErrorInvalidRequest:     "Invalid OAuth request. Please contact support if this persists.",
	OAuthErrorUnauthorizedClient: "OAuth application is not authorized. Please contact support.",
	OAuthErrorServerError:        "GitHub encountered an error. Please try again later.",

	OAuthErrorMissingCode:    "Authorization code is missing. Please try connecting again.",
	OAuthErrorMissingState:   "Security validation failed. Please try connecting again.",
	OAuthErrorInvalidState:   "Invalid security token. This link may have expired.",
	OAuthErrorExpiredState:   "Connection attempt expired (10 minutes). Please try again.",
	OAuthErrorExchangeFailed: "Failed to complete authorization. Please try again.",
	OAuthErrorLinkFailed:     "Failed to link the installation to your account. Please try again.",
}

// GetOAuthErrorMessage returns a user-friendly error message
func GetOAuthErrorMessage(code OAuthErrorCode) string {
	if msg, ok := OAuthErrorMessages[code]; ok {
		return msg
	}
	return "An unexpected error occurred while connecting GitHub. Please try again."
}
