// Package state holds the per-session state tree and the operations that
// mutate it.
//
// A Store is constructed per session and owns five slices (auth, profile,
// blog, theme and tasks). Operations are dispatched as Actions; asynchronous
// ones commit a pending change, call the remote service without holding the
// store lock, then commit the settled result. Every commit notifies
// subscribers with a deep-copied snapshot.
package state

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/portfolio/internal/core"
	"github.com/example/portfolio/internal/identity"
	"github.com/example/portfolio/internal/models"
)

// Services are the remote collaborators the slices call.
type Services struct {
	Auth     identity.Provider
	Users    core.UserService
	Profiles core.ProfileService
	Blog     core.BlogService
	Tasks    core.TaskService
}

// Action is one dispatchable operation.
type Action interface {
	// Type names the action, e.g. "auth/signIn".
	Type() string
	run(ctx context.Context, s *Store) error
}

// Store is the state container for one session.
type Store struct {
	services Services
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	state State

	// notifyMu keeps notifications in commit order.
	notifyMu    sync.Mutex
	subscribers map[int]func(State)
	nextSubID   int
}

// NewStore creates a Store whose theme slice starts at initialTheme.
func NewStore(services Services, initialTheme models.ThemeMode, logger *zap.Logger) *Store {
	return &Store{
		services:    services,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		state:       initialState(initialTheme),
		subscribers: make(map[int]func(State)),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every committed change.
// fn runs on the dispatching goroutine and must not dispatch synchronously.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Dispatch runs the action to completion. Failures are recorded in the
// owning slice and also returned, normalized to *apperror.Error.
func (s *Store) Dispatch(ctx context.Context, action Action) error {
	err := action.run(ctx, s)
	if err != nil {
		s.logger.Debug("Action failed", zap.String("action", action.Type()), zap.Error(err))
	}
	return err
}

// commit applies fn under the lock and notifies subscribers.
func (s *Store) commit(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.clone()
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(State), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subscribers[id])
	}
	s.notifyMu.Lock()
	s.mu.Unlock()

	defer s.notifyMu.Unlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}

// read runs fn under the lock without notifying.
func (s *Store) read(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

func (s *Store) currentUID() string {
	var uid string
	s.read(func(st *State) {
		if st.Auth.CurrentUser != nil {
			uid = st.Auth.CurrentUser.UID
		}
	})
	return uid
}
