package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/portfolio/internal/app"
	"github.com/example/portfolio/internal/config"
	"github.com/example/portfolio/internal/identity"
	"github.com/example/portfolio/internal/models"
	"github.com/example/portfolio/internal/state"
)

// client is a one-off session against the configured backend.
type client struct {
	backend *app.Backend
	store   *state.Store
}

func addCredentialFlags(cmd *cobra.Command) {
	cmd.Flags().String("email", "", "Account email (default $PORTFOLIO_EMAIL)")
	cmd.Flags().String("password", "", "Account password (default $PORTFOLIO_PASSWORD)")
}

// openClient opens the backend and builds a store over it. When signIn is
// set the store is signed in with the command's credentials.
func openClient(cmd *cobra.Command, signIn bool) (*client, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := zap.NewNop()
	if verbose := os.Getenv("PORTFOLIO_DEBUG"); verbose != "" {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()
	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	c := &client{backend: backend}
	c.store = state.NewStore(state.Services{
		Auth:     identity.NewSession(backend.Authenticator, logger),
		Users:    backend.Users,
		Profiles: backend.Profiles,
		Blog:     backend.Blog,
		Tasks:    backend.Tasks,
	}, models.ThemeSystem, logger)

	if signIn {
		if err := c.signIn(cmd); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *client) signIn(cmd *cobra.Command) error {
	email := flagOrEnv(cmd, "email", "PORTFOLIO_EMAIL")
	password := flagOrEnv(cmd, "password", "PORTFOLIO_PASSWORD")
	if email == "" || password == "" {
		return errors.New("--email and --password (or PORTFOLIO_EMAIL and PORTFOLIO_PASSWORD) are required")
	}
	err := c.store.Dispatch(cmd.Context(), state.SignIn{Credentials: models.Credentials{Email: email, Password: password}})
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}
	return nil
}

func (c *client) Close() {
	c.backend.Close()
}

func flagOrEnv(cmd *cobra.Command, flag, env string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return os.Getenv(env)
}
