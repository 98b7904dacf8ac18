package middleware

import (
	"log"
	"net/http"
	"time"

	"zymeboard/internal/session"

	"github.com/gin-gonic/gin"
)

// CookieName carries the browser's session id
const CookieName = "zb_session"

const sessionKey = "zymeboard.session"

// EnsureSession gives every browser a session id cookie scoped to path
func EnsureSession(path string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id session.ID
		if raw, err := c.Cookie(CookieName); err == nil {
			id, _ = session.ParseID(raw)
		}
		if id.IsEmpty() {
			id = session.NewID()
			log.Printf("[Session] Issued session %s", id)
		}

		// Refresh on every request so the cookie outlives the idle TTL
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, id.String(), int(ttl.Seconds()), path, "", false, true)
		c.Set(sessionKey, id)
		c.Next()
	}
}

// SessionID returns the id EnsureSession attached to the request
func SessionID(c *gin.Context) session.ID {
	if v, ok := c.Get(sessionKey); ok {
		if id, ok := v.(session.ID); ok {
			return id
		}
	}
	return ""
}
