package pgsession

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MiddlewareConfig configures AuthMiddleware.
type MiddlewareConfig struct {
	Store            *Store
	LoginRedirectURL string                          // default "/account/login"
	SessionKey       string                          // gin.Context key for the *RawSession, default "session"
	OnError          func(c *gin.Context, err error) // optional custom error handler
}

// AuthMiddleware validates a session cookie against Store and stashes
// the *RawSession in the request context WITHOUT decoding its payload
// — decoding happens only when a handler calls Store.Decode.
func AuthMiddleware(config MiddlewareConfig) gin.HandlerFunc {
	if config.LoginRedirectURL == "" {
		config.LoginRedirectURL = "/account/login"
	}
	if config.SessionKey == "" {
		config.SessionKey = "session"
	}

	return func(c *gin.Context) {
		sessionID, err := c.Cookie(config.Store.CookieName())
		if err != nil || sessionID == "" {
			fail(c, config, errors.New("no session cookie"))
			return
		}

		raw, err := config.Store.GetRaw(c.Request.Context(), sessionID)
		if err != nil {
			fail(c, config, err)
			return
		}

		c.Set(config.SessionKey, raw)
		c.Next()
	}
}

func fail(c *gin.Context, config MiddlewareConfig, err error) {
	if config.OnError != nil {
		config.OnError(c, err)
	} else {
		c.Redirect(http.StatusFound, config.LoginRedirectURL)
	}
	c.Abort()
}
