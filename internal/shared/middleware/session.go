package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ===================================
// CONSTANTS
// ===================================

const (
	// Cookie settings
	SessionCookieName = "session_id"
	SessionMaxAge     = 60 * 60 * 24 * 30 // 30 days in seconds

	// Context keys
	ContextKeySessionID = "session_id"
)

// SessionConfig holds cookie configuration for the session middleware
type SessionConfig struct {
	CookieDomain   string        // e.g. "saloncart.com" or "" for current domain
	CookiePath     string        // Default: "/"
	CookieSecure   bool          // true for HTTPS only
	CookieSameSite http.SameSite // Strict, Lax, or None
}

// DefaultSessionConfig returns secure default configuration
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookiePath:     "/",
		CookieSecure:   true, // HTTPS only (set false for localhost dev)
		CookieSameSite: http.SameSiteLaxMode,
	}
}

// ===================================
// SESSION MIDDLEWARE
// ===================================

// Session identifies the anonymous customer session that owns a cart slot.
// Issues a uuid cookie on first contact and resolves it on every request.
// The session id is an identifier, not a credential - authentication is
// handled by an external service and is out of scope here.
func Session(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || !isValidSessionID(sessionID) {
			sessionID = uuid.NewString()
			c.SetSameSite(cfg.CookieSameSite)
			c.SetCookie(
				SessionCookieName,
				sessionID,
				SessionMaxAge,
				cfg.CookiePath,
				cfg.CookieDomain,
				cfg.CookieSecure,
				true, // httpOnly
			)
		}

		c.Set(ContextKeySessionID, sessionID)
		c.Next()
	}
}

// GetSessionID returns the session id resolved by the Session middleware,
// or "" if the middleware did not run.
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}

// isValidSessionID rejects tampered cookies so arbitrary strings never
// become storage keys
func isValidSessionID(sessionID string) bool {
	_, err := uuid.Parse(sessionID)
	return err == nil
}
