package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/portfolio/internal/gate"
	"github.com/example/portfolio/internal/middleware"
	"github.com/example/portfolio/internal/session"
)

// RouterOptions configures SetupRoutes.
type RouterOptions struct {
	// SessionTTL bounds the token cookie.
	SessionTTL time.Duration
	// StorageTTL bounds the sid cookie, which must outlive the in-memory
	// session so a returning browser finds its durable storage. Zero falls
	// back to SessionTTL.
	StorageTTL    time.Duration
	SecureCookies bool
}

// SetupRoutes registers the page and JSON routes. Global middleware (logging,
// recovery, CORS) is expected to be on router already.
func SetupRoutes(router *gin.Engine, registry *session.Registry, opts RouterOptions, logger *zap.Logger) {
	authHandler := NewAuthHandler(opts.SessionTTL, opts.SecureCookies)
	profileHandler := NewProfileHandler()
	taskHandler := NewTaskHandler()
	blogHandler := NewBlogHandler()
	themeHandler := NewThemeHandler()
	pageHandler := NewPageHandler()

	// GET /health
	// Liveness plus the number of live browser sessions.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "sessions": registry.Len()})
	})

	// The sid cookie carries the browser identity across session eviction.
	cookieTTL := opts.StorageTTL
	if cookieTTL <= 0 {
		cookieTTL = opts.SessionTTL
	}
	sessions := middleware.SessionLoader(registry, cookieTTL, opts.SecureCookies)
	signedIn := middleware.RequireAccess(gate.Authenticated)
	adminOnly := middleware.RequireAccess(gate.AdminOnly)

	// Every /api route runs on the browser's session. Access checks are per
	// group: profile needs a signed-in user, tasks and blog writes an admin.
	api := router.Group("/api", sessions)
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signin", authHandler.SignIn)
			authGroup.POST("/signup", authHandler.SignUp)
			authGroup.POST("/signout", authHandler.SignOut)
			authGroup.GET("/state", authHandler.State)
			authGroup.GET("/return", pageHandler.AfterLogin)
		}

		profileGroup := api.Group("/profile", signedIn)
		{
			profileGroup.GET("", profileHandler.Get)
			profileGroup.PUT("", profileHandler.Update)
		}

		tasksGroup := api.Group("/tasks", adminOnly)
		{
			tasksGroup.GET("", taskHandler.List)
			tasksGroup.POST("", taskHandler.Create)
			tasksGroup.PUT("/:id", taskHandler.Update)
			tasksGroup.DELETE("/:id", taskHandler.Delete)
			tasksGroup.POST("/:id/toggle", taskHandler.Toggle)
		}

		blogGroup := api.Group("/blog")
		{
			blogGroup.GET("", blogHandler.List)
			blogGroup.GET("/:id", blogHandler.Get)
			blogGroup.POST("", adminOnly, blogHandler.Create)
			blogGroup.PUT("/:id", adminOnly, blogHandler.Update)
			blogGroup.DELETE("/:id", adminOnly, blogHandler.Delete)
		}

		// The theme is available signed in or out.
		themeGroup := api.Group("/theme")
		{
			themeGroup.GET("", themeHandler.Get)
			themeGroup.PUT("", themeHandler.Set)
			themeGroup.POST("/toggle", themeHandler.Toggle)
		}
	}

	// Everything else is a page navigation resolved through the gate.
	router.NoRoute(sessions, pageHandler.Navigate)

	logger.Info("Routes configured", zap.Int("pages", len(gate.Routes)))
}
