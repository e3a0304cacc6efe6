package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/middleware"
	"github.com/example/portfolio/internal/session"
	"github.com/example/portfolio/internal/state"
)

// statusFor maps a failed action to an HTTP status. Success is 200.
func statusFor(err error) int {
	switch apperror.KindOf(err) {
	case "":
		return http.StatusOK
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindCredential:
		return http.StatusUnauthorized
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// dispatch runs action against the request's session. The returned session
// is nil when no session was attached, in which case a 500 was written.
func dispatch(c *gin.Context, action state.Action) (*session.Session, error) {
	sess := mustSession(c)
	if sess == nil {
		return nil, nil
	}
	return sess, sess.Store.Dispatch(c.Request.Context(), action)
}

// mustSession returns the session SessionLoader attached. When it is missing
// the route was registered without the loader; a 500 is written and nil
// returned so the handler can stop.
func mustSession(c *gin.Context) *session.Session {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Session not loaded"})
	}
	return sess
}

// waitForAuth blocks until the session's auth slice is initialized, up to
// middleware.AuthWait.
func waitForAuth(c *gin.Context, sess *session.Session) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), middleware.AuthWait)
	defer cancel()
	// A timeout is not an error here: callers read Initialized from the
	// snapshot and answer "loading" themselves.
	_ = sess.Lifecycle.Wait(ctx)
}

// badRequest reports a body that failed to bind, with the binding error as
// details.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
}
