package state

import (
	"context"
	"errors"
	"sync"

	"github.com/example/portfolio/internal/models"
)

// ErrAlreadyStarted is returned by Start on a second call.
var ErrAlreadyStarted = errors.New("auth lifecycle already started")

// Lifecycle performs the one-shot read of the provider's auth state that
// initializes the auth slice. It subscribes to the provider stream, handles
// the first callback only, and unsubscribes right away.
type Lifecycle struct {
	store *Store

	once    sync.Once
	started bool
	mu      sync.Mutex
	done    chan struct{}
}

// NewLifecycle creates a Lifecycle for store.
func NewLifecycle(store *Store) *Lifecycle {
	return &Lifecycle{store: store, done: make(chan struct{})}
}

// Start subscribes to the auth state stream. It returns ErrAlreadyStarted if
// the lifecycle was already started.
func (l *Lifecycle) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return ErrAlreadyStarted
	}
	l.started = true
	l.mu.Unlock()

	l.subscribe(ctx)
	return nil
}

// EnsureStarted starts the lifecycle unless it already was.
func (l *Lifecycle) EnsureStarted(ctx context.Context) {
	_ = l.Start(ctx)
}

// Done is closed once the auth slice is initialized.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the auth slice is initialized or ctx ends.
func (l *Lifecycle) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Lifecycle) subscribe(ctx context.Context) {
	// The first callback may outlive the request that started the lifecycle.
	ctx = context.WithoutCancel(ctx)
	s := l.store

	s.commit(func(st *State) { st.Auth.Loading = true })

	unsubscribeCh := make(chan func(), 1)
	unsubscribe := s.services.Auth.OnAuthStateChanged(func(id *models.Identity) {
		l.once.Do(func() {
			user := s.services.Users.Transform(ctx, id)
			_ = s.Dispatch(ctx, SetAuthUser{User: user})
			(<-unsubscribeCh)()
			close(l.done)
		})
	})
	unsubscribeCh <- unsubscribe
}
