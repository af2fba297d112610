package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the session cookie name
const SessionCookie = "stockpulse_session"

// SessionKey is the gin context key for the session ID
const SessionKey = "session_id"

// SessionEnsurer returns the live session ID for a cookie value,
// creating a session when needed
type SessionEnsurer interface {
	EnsureID(id string) (string, bool)
}

// SessionConfig holds configuration for session middleware
type SessionConfig struct {
	Sessions SessionEnsurer
	TTL      time.Duration
	Secure   bool
}

// Session makes sure every request carries a session and refreshes its cookie
func Session(cfg SessionConfig) gin.HandlerFunc {
	maxAge := int(cfg.TTL.Seconds())

	return func(c *gin.Context) {
		cookie, _ := c.Cookie(SessionCookie)

		id, created := cfg.Sessions.EnsureID(cookie)
		if created || id != cookie {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, maxAge, "/", "", cfg.Secure, true)
		}

		c.Set(SessionKey, id)
		c.Next()
	}
}

// GetSessionID retrieves the session ID from the context
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}
