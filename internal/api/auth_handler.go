package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/portfolio/internal/middleware"
	"github.com/example/portfolio/internal/models"
	"github.com/example/portfolio/internal/session"
	"github.com/example/portfolio/internal/state"
)

// AuthHandler serves sign-in, sign-up, sign-out and the auth slice.
type AuthHandler struct {
	tokenTTL time.Duration
	secure   bool
}

// NewAuthHandler creates an AuthHandler. tokenTTL bounds the token cookie
// that restores the identity into a new session.
func NewAuthHandler(tokenTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{tokenTTL: tokenTTL, secure: secure}
}

// SignIn handles POST /api/auth/signin.
// Body: {"email": "...", "password": "..."}
// Responds with the auth slice; on success the token cookie is set so a new
// session for this browser starts signed in.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, err)
		return
	}
	sess := mustSession(c)
	if sess == nil {
		return
	}
	// The first auth read must land before a sign-in so it cannot
	// overwrite the signed-in user.
	waitForAuth(c, sess)
	err := sess.Store.Dispatch(c.Request.Context(), state.SignIn{Credentials: creds})
	h.respond(c, sess, err)
}

// SignUp handles POST /api/auth/signup. It takes the same body as SignIn and
// also writes the user's companion document.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, err)
		return
	}
	sess := mustSession(c)
	if sess == nil {
		return
	}
	// The first auth read must land before a sign-in so it cannot
	// overwrite the signed-in user.
	waitForAuth(c, sess)
	err := sess.Store.Dispatch(c.Request.Context(), state.SignUp{Credentials: creds})
	h.respond(c, sess, err)
}

// SignOut handles POST /api/auth/signout. The auth slice is signed out even
// when the provider fails to revoke, so the response is always 200.
func (h *AuthHandler) SignOut(c *gin.Context) {
	sess, _ := dispatch(c, state.SignOut{})
	if sess == nil {
		return
	}
	// The profile belongs to the user who just left.
	_ = sess.Store.Dispatch(c.Request.Context(), state.ResetProfile{})
	h.setToken(c, "", -1)
	c.JSON(http.StatusOK, sess.Store.Snapshot().Auth)
}

// State handles GET /api/auth/state. It waits for the first auth read so
// clients never see an uninitialized slice unless the provider is slow.
func (h *AuthHandler) State(c *gin.Context) {
	sess := mustSession(c)
	if sess == nil {
		return
	}
	waitForAuth(c, sess)
	c.JSON(http.StatusOK, sess.Store.Snapshot().Auth)
}

// respond writes the auth slice with the status for err, refreshing the token
// cookie after a successful sign-in or sign-up.
func (h *AuthHandler) respond(c *gin.Context, sess *session.Session, err error) {
	if err == nil {
		if id := sess.Auth.Current(); id != nil && id.IDToken != "" {
			h.setToken(c, id.IDToken, int(h.tokenTTL.Seconds()))
		}
	}
	c.JSON(statusFor(err), sess.Store.Snapshot().Auth)
}

// setToken writes the token cookie. maxAge -1 deletes it.
func (h *AuthHandler) setToken(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.secure, true)
}
