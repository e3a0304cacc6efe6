package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/portfolio/internal/session"
	"github.com/example/portfolio/internal/state"
	"github.com/example/portfolio/internal/theme"
)

// ThemeHandler serves the theme slice.
type ThemeHandler struct{}

// NewThemeHandler creates a ThemeHandler.
func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

// Get handles GET /api/theme.
func (h *ThemeHandler) Get(c *gin.Context) {
	sess := mustSession(c)
	if sess == nil {
		return
	}
	c.JSON(http.StatusOK, themeResponse(sess))
}

// Set handles PUT /api/theme.
// Body: {"mode": "light" | "dark" | "system"}
// The manager applies and persists the mode before the response is built.
func (h *ThemeHandler) Set(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := dispatch(c, state.SetTheme{Mode: req.Mode})
	if sess == nil {
		return
	}
	c.JSON(statusFor(err), themeResponse(sess))
}

// Toggle handles POST /api/theme/toggle.
func (h *ThemeHandler) Toggle(c *gin.Context) {
	sess, err := dispatch(c, state.ToggleTheme{})
	if sess == nil {
		return
	}
	c.JSON(statusFor(err), themeResponse(sess))
}

// themeResponse reports the stored mode together with the class the manager
// put on the document, which differs from the mode in system mode.
func themeResponse(sess *session.Session) ThemeResponse {
	return ThemeResponse{
		Mode:          sess.Store.Snapshot().Theme.Mode,
		Dark:          sess.Document.Has(theme.ClassDark),
		DocumentClass: sess.Document.String(),
	}
}
