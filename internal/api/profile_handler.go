package api

import (
	"github.com/gin-gonic/gin"

	"github.com/example/portfolio/internal/models"
	"github.com/example/portfolio/internal/session"
	"github.com/example/portfolio/internal/state"
)

// ProfileHandler serves the signed-in user's profile.
type ProfileHandler struct{}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	sess := mustSession(c)
	if sess == nil {
		return
	}
	err := sess.Store.Dispatch(c.Request.Context(), state.FetchUserProfile{UserID: uid(sess)})
	c.JSON(statusFor(err), sess.Store.Snapshot().Profile)
}

// Update handles PUT /api/profile. Fields absent from the body are kept.
// List items sent without an id get one before they are stored.
func (h *ProfileHandler) Update(c *gin.Context) {
	var patch models.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	sess := mustSession(c)
	if sess == nil {
		return
	}
	err := sess.Store.Dispatch(c.Request.Context(), state.UpdateUserProfile{UserID: uid(sess), Patch: patch})
	c.JSON(statusFor(err), sess.Store.Snapshot().Profile)
}

// uid is the signed-in user's id, or "" when signed out. The profile group
// is behind RequireAccess, so handlers only see "" in a race with sign-out.
func uid(sess *session.Session) string {
	if user := sess.Store.Snapshot().Auth.CurrentUser; user != nil {
		return user.UID
	}
	return ""
}
