package identity

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/example/portfolio/internal/models"
)

// Session implements Provider for one client on top of an Authenticator.
type Session struct {
	auth   Authenticator
	logger *zap.Logger

	mu        sync.Mutex
	current   *models.Identity
	listeners map[int]func(*models.Identity)
	nextID    int
}

// NewSession creates a signed-out session.
func NewSession(auth Authenticator, logger *zap.Logger) *Session {
	return &Session{
		auth:      auth,
		logger:    logger,
		listeners: make(map[int]func(*models.Identity)),
	}
}

func (s *Session) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	id, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Debug("Sign-in rejected", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	s.setCurrent(id)
	return copyIdentity(id), nil
}

func (s *Session) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	id, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		s.logger.Debug("Sign-up rejected", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	s.setCurrent(id)
	return copyIdentity(id), nil
}

// SignOut revokes the session's tokens and clears the identity. The local
// identity is cleared even when revocation fails.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current == nil {
		return ErrNoSession
	}

	err := s.auth.Revoke(ctx, current.UID)
	if err != nil {
		s.logger.Warn("Failed to revoke tokens", zap.String("uid", current.UID), zap.Error(err))
	}
	s.setCurrent(nil)
	return err
}

func (s *Session) Current() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyIdentity(s.current)
}

func (s *Session) OnAuthStateChanged(fn func(*models.Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	current := copyIdentity(s.current)
	s.mu.Unlock()

	go fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) Restore(ctx context.Context, idToken string) (*models.Identity, error) {
	id, err := s.auth.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if id.IDToken == "" {
		id.IDToken = idToken
	}
	s.setCurrent(id)
	return copyIdentity(id), nil
}

func (s *Session) setCurrent(id *models.Identity) {
	s.mu.Lock()
	s.current = copyIdentity(id)
	fns := make([]func(*models.Identity), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		go fn(copyIdentity(id))
	}
}

func copyIdentity(id *models.Identity) *models.Identity {
	if id == nil {
		return nil
	}
	out := *id
	return &out
}
