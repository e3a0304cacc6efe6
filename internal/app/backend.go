// Package app wires the configured backend into the services the client-side
// state layer runs on.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/portfolio/internal/config"
	"github.com/example/portfolio/internal/core"
	"github.com/example/portfolio/internal/db"
	"github.com/example/portfolio/internal/identity"
	"github.com/example/portfolio/internal/session"
	"github.com/example/portfolio/internal/storage"
)

// Backend is the remote data service: a document store, an authenticator
// and the services built on them.
type Backend struct {
	Docs          db.DocumentStore
	Authenticator identity.Authenticator
	Users         core.UserService
	Profiles      core.ProfileService
	Blog          core.BlogService
	Tasks         core.TaskService
	Redis         *redis.Client
}

// OpenBackend connects to the backend named by cfg.Backend, plus Redis when
// REDIS_ADDR is set.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	var (
		docs db.DocumentStore
		auth identity.Authenticator
	)

	switch cfg.Backend {
	case config.BackendFirebase:
		fbApp, err := db.InitFirebase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		store, err := db.NewFirestoreStore(ctx, fbApp)
		if err != nil {
			return nil, err
		}
		fbAuth, err := identity.NewFirebaseAuthenticator(ctx, fbApp, cfg.FirebaseAPIKey, logger)
		if err != nil {
			store.Close()
			return nil, err
		}
		docs, auth = store, fbAuth
		logger.Info("Using Firebase backend", zap.String("projectID", cfg.FirebaseProjectID))
	case config.BackendLocal:
		store, err := db.OpenSQLite(cfg.LocalDBPath)
		if err != nil {
			return nil, err
		}
		localAuth, err := identity.NewLocalAuthenticator(store, cfg.LocalJWTSecret)
		if err != nil {
			store.Close()
			return nil, err
		}
		docs, auth = store, localAuth
		logger.Info("Using local SQLite backend", zap.String("path", cfg.LocalDBPath))
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	b := NewBackend(docs, auth, logger)
	if cfg.RedisAddr != "" {
		rdb, err := storage.NewRedisClient(ctx, storage.RedisOptions{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			docs.Close()
			return nil, err
		}
		b.Redis = rdb
	}
	return b, nil
}

// NewBackend builds the services over an already open store and
// authenticator.
func NewBackend(docs db.DocumentStore, auth identity.Authenticator, logger *zap.Logger) *Backend {
	users := db.NewUserRepository(docs)
	return &Backend{
		Docs:          docs,
		Authenticator: auth,
		Users:         core.NewUserService(users, logger),
		Profiles:      core.NewProfileService(users, logger),
		Blog:          core.NewBlogService(db.NewBlogPostRepository(docs), logger),
		Tasks:         core.NewTaskService(db.NewTaskRepository(docs), logger),
	}
}

// SessionDeps returns the registry dependencies. Each browser's durable
// storage lives in Redis under its sid when Redis is configured, expiring
// storageTTL after the last read or write. Without Redis the registry keeps
// it in process memory.
func (b *Backend) SessionDeps(storageTTL time.Duration) session.Deps {
	deps := session.Deps{
		Authenticator: b.Authenticator,
		Users:         b.Users,
		Profiles:      b.Profiles,
		Blog:          b.Blog,
		Tasks:         b.Tasks,
	}
	if b.Redis != nil {
		root := storage.NewRedisStorage(b.Redis, "portfolio:storage", storageTTL)
		deps.Storage = func(sid string) storage.Local { return root.Scoped(sid) }
	}
	return deps
}

// Close releases the store and the Redis connection.
func (b *Backend) Close() error {
	if b.Redis != nil {
		b.Redis.Close()
	}
	return b.Docs.Close()
}
