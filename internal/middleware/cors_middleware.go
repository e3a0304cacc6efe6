package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/portfolio/internal/config"
)

// CORSMiddleware allows credentialed requests from the comma-separated
// origins in CLIENT_URL. With no CLIENT_URL only same-origin requests work.
func CORSMiddleware(appConfig *config.Config, logger *zap.Logger) gin.HandlerFunc {
	var origins []string
	for _, origin := range strings.Split(appConfig.ClientURL, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		logger.Warn("CLIENT_URL not set, cross-origin requests are disabled")
		return func(c *gin.Context) { c.Next() }
	}

	// Credentials are allowed because the session lives in cookies.
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", ColorHint},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
