package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/portfolio/internal/api"
	"github.com/example/portfolio/internal/app"
	"github.com/example/portfolio/internal/config"
	"github.com/example/portfolio/internal/middleware"
	"github.com/example/portfolio/internal/session"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	zapLogger, err := newLogger(appConfig)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	backend, err := app.OpenBackend(initCtx, appConfig, zapLogger)
	cancelInit()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to open backend", zap.Error(err))
	}
	defer backend.Close()

	sessionTTL := appConfig.SessionTTL()
	registry := session.NewRegistry(backend.SessionDeps(appConfig.StorageTTL()), sessionTTL, zapLogger)

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()
	go registry.Run(runCtx, time.Minute)

	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig, zapLogger))

	api.SetupRoutes(router, registry, api.RouterOptions{
		SessionTTL:    sessionTTL,
		StorageTTL:    appConfig.StorageTTL(),
		SecureCookies: appConfig.IsRelease(),
	}, zapLogger)

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsRelease() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
