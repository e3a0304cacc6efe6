package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/portfolio/internal/session"
	"github.com/example/portfolio/internal/theme"
)

// Cookie and context keys shared with the handlers.
const (
	SessionCookie = "sid"
	TokenCookie   = "token"
	ColorHint     = "Sec-CH-Prefers-Color-Scheme"

	sessionKey = "session"
)

// SessionLoader attaches the browser's client-side session to the request,
// creating one when the sid cookie is missing or stale. ttl is the sid
// cookie's lifetime; it should outlive the registry's session TTL so a
// returning browser keeps its sid and with it its durable storage.
// The token cookie restores the signed-in identity into a new session, and
// the Sec-CH-Prefers-Color-Scheme client hint feeds the theme manager.
func SessionLoader(registry *session.Registry, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, _ := c.Cookie(SessionCookie)
		token, _ := c.Cookie(TokenCookie)

		var prefersDark *bool
		if dark, ok := theme.ParseColorSchemeHint(c.GetHeader(ColorHint)); ok {
			prefersDark = &dark
		}

		sess, created := registry.Acquire(c.Request.Context(), sid, token, prefersDark)
		// Refresh the cookie whenever a session starts so its lifetime counts
		// from the latest visit.
		if created || sid != sess.ID {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sess.ID, int(ttl.Seconds()), "/", "", secure, true)
		}
		// Ask the browser to send the colour scheme hint on later requests.
		c.Header("Accept-CH", ColorHint)
		c.Header("Vary", ColorHint)

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session attached by SessionLoader.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
