package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/portfolio/internal/gate"
)

// PageHandler resolves navigations through the auth gate.
type PageHandler struct{}

// NewPageHandler creates a PageHandler.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Navigate handles every GET outside /api. Protected routes wait for the
// session's first auth read; if it has not arrived the page reports loading
// with 202 instead of redirecting. Redirects are 302 with the gate's
// location, and unknown paths render the not-found route with 404.
func (h *PageHandler) Navigate(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") || c.Request.Method != http.MethodGet {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	}
	sess := mustSession(c)
	if sess == nil {
		return
	}

	route, params := gate.Match(path)
	// Public pages render at once; protected ones need the first auth read.
	if route.Access != gate.Public {
		waitForAuth(c, sess)
	}
	auth := sess.Store.Snapshot().Auth
	decision := gate.Evaluate(gate.ViewOf(auth), route, c.Request.URL.RequestURI())

	resp := PageResponse{
		Route:         route.Name,
		Params:        params,
		Outcome:       decision.Outcome.String(),
		Location:      decision.Location,
		DocumentClass: sess.Document.String(),
		Auth:          auth,
	}

	switch decision.Outcome {
	case gate.Redirect:
		c.Header("Location", decision.Location)
		c.JSON(http.StatusFound, resp)
	case gate.Loading:
		c.JSON(http.StatusAccepted, resp)
	default:
		status := http.StatusOK
		if route.Name == gate.RouteNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, resp)
	}
}

// AfterLogin handles GET /api/auth/return: the local path a login page should
// go to next, taken from ?from= and validated.
func (h *PageHandler) AfterLogin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"location": gate.SafeReturnPath(c.Query("from"))})
}
