package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/portfolio/internal/gate"
)

// ErrorResponse is the JSON body of a rejected request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// AuthWait bounds how long a request waits for the session's auth state to
// initialize before the gate decides.
const AuthWait = 3 * time.Second

// RequireAccess guards API routes with the same rules the navigation gate
// applies to pages. A login redirect becomes 401 and an admin redirect 403.
func RequireAccess(access gate.Access) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Session not loaded"})
			return
		}

		// Wait for the first auth read; if it is still pending the gate
		// answers Loading below.
		ctx, cancel := context.WithTimeout(c.Request.Context(), AuthWait)
		_ = sess.Lifecycle.Wait(ctx)
		cancel()

		// API groups have no page route of their own, so the matched path
		// stands in for one.
		route := gate.Route{Name: c.FullPath(), Pattern: c.FullPath(), Access: access}
		decision := gate.Evaluate(gate.ViewOf(sess.Store.Snapshot().Auth), route, c.Request.URL.Path)
		switch decision.Outcome {
		case gate.Loading:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Authentication is still loading"})
			return
		case gate.Redirect:
			if decision.From != "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required", Details: decision.Location})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Admin access required"})
			return
		}
		c.Next()
	}
}
