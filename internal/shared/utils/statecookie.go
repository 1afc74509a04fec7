package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitgate/internal/shared/config"
)

const (
	// OAuthStateCookie carries the CSRF state token across the GitHub
	// authorization redirect. HttpOnly, SameSite=Lax, short-lived.
	OAuthStateCookie = "github_oauth_state"

	// OAuthStateMaxAge bounds how long a pending handshake stays valid.
	OAuthStateMaxAge = 600 // seconds

	// SessionTokenCookie carries the signed session token.
	SessionTokenCookie = "gitgate_session"
)

// SetOAuthStateCookie sets the handshake state cookie. Secure follows the
// production flag so local development over plain HTTP keeps working.
func SetOAuthStateCookie(c *gin.Context, cookieConfig config.CookieConfig, state string, secure bool) {
	c.SetSameSite(parseSameSite(cookieConfig.SameSite))
	c.SetCookie(
		OAuthStateCookie,
		state,
		OAuthStateMaxAge,
		"/",
		cookieConfig.Domain,
		secure,
		true, // HttpOnly
	)
}

// ClearOAuthStateCookie removes the handshake state cookie.
func ClearOAuthStateCookie(c *gin.Context, cookieConfig config.CookieConfig, secure bool) {
	c.SetSameSite(parseSameSite(cookieConfig.SameSite))
	c.SetCookie(
		OAuthStateCookie,
		"",
		-1,
		"/",
		cookieConfig.Domain,
		secure,
		true,
	)
}

// GetOAuthStateCookie retrieves the handshake state cookie, empty if absent.
func GetOAuthStateCookie(c *gin.Context) string {
	state, err := c.Cookie(OAuthStateCookie)
	if err != nil {
		return ""
	}
	return state
}

// GetTokenFromCookie retrieves a token from the named cookie.
func GetTokenFromCookie(c *gin.Context, cookieName string) string {
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

// parseSameSite converts string to http.SameSite
func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
