// Package session keeps one client-side state tree per browser. Each browser
// is identified by an opaque sid cookie and owns its own Store, auth provider
// session, auth Lifecycle and Theme Manager.
//
// The sid outlives the in-memory session: when a browser returns with a
// well-formed sid after its session was evicted (or the server restarted),
// the new session takes over that sid, so durable storage keyed by it, such
// as the saved theme, is read back.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/portfolio/internal/core"
	"github.com/example/portfolio/internal/identity"
	"github.com/example/portfolio/internal/state"
	"github.com/example/portfolio/internal/storage"
	"github.com/example/portfolio/internal/theme"
)

// Deps are the shared services every session is built on.
type Deps struct {
	Authenticator identity.Authenticator
	Users         core.UserService
	Profiles      core.ProfileService
	Blog          core.BlogService
	Tasks         core.TaskService
	// Storage returns the durable storage for one browser. It must return a
	// view over the same data every time it is called with the same sid.
	Storage func(sid string) storage.Local
}

// Session is the client-side state of one browser.
type Session struct {
	ID         string
	Store      *state.Store
	Auth       *identity.Session
	Lifecycle  *state.Lifecycle
	Theme      *theme.Manager
	Document   *theme.ClassList
	Preference *theme.StaticPreference

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Registry owns the live sessions.
type Registry struct {
	deps   Deps
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a Registry whose sessions expire after ttl without a
// request.
func NewRegistry(deps Deps, ttl time.Duration, logger *zap.Logger) *Registry {
	if deps.Storage == nil {
		root := storage.NewMemoryStorage()
		deps.Storage = func(sid string) storage.Local { return root.Scoped(sid) }
	}
	return &Registry{
		deps:     deps,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Acquire returns the session for sid, creating a new one when sid is empty,
// unknown or expired. A new session keeps sid when it is a canonical UUID and
// gets a fresh one otherwise. idToken, when set, restores the signed-in
// identity of a new session before its auth lifecycle starts. prefersDark is the browser's
// colour scheme hint; nil leaves the current preference untouched.
func (r *Registry) Acquire(ctx context.Context, sid, idToken string, prefersDark *bool) (sess *Session, created bool) {
	now := r.now()

	r.mu.Lock()
	sess, ok := r.sessions[sid]
	if ok && now.Sub(sess.idleSince()) > r.ttl {
		delete(r.sessions, sid)
		r.mu.Unlock()
		r.stop(sess)
		ok = false
	} else {
		r.mu.Unlock()
	}

	if !ok {
		id := sid
		if !reusableID(id) {
			id = uuid.NewString()
		}
		fresh := r.newSession(ctx, id, idToken, prefersDark)

		// A concurrent request from the same browser may have won the race.
		r.mu.Lock()
		if live, exists := r.sessions[id]; exists {
			r.mu.Unlock()
			r.stop(fresh)
			sess = live
		} else {
			r.sessions[id] = fresh
			r.mu.Unlock()
			sess, created = fresh, true
		}
	}

	sess.touch(now)
	if prefersDark != nil {
		sess.Preference.Set(*prefersDark)
	}
	sess.Lifecycle.EnsureStarted(ctx)
	return sess, created
}

// reusableID reports whether sid can name a new session: only ids in the
// canonical form handed out by the registry are taken over.
func reusableID(sid string) bool {
	id, err := uuid.Parse(sid)
	return err == nil && id.String() == sid
}

// Get returns a live session without creating one.
func (r *Registry) Get(sid string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[sid]
	return sess, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict drops sessions idle longer than the TTL and returns how many were
// removed.
func (r *Registry) Evict() int {
	now := r.now()
	var expired []*Session

	r.mu.Lock()
	for id, sess := range r.sessions {
		if now.Sub(sess.idleSince()) > r.ttl {
			expired = append(expired, sess)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, sess := range expired {
		r.stop(sess)
	}
	return len(expired)
}

// Run evicts idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				r.logger.Debug("Evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

func (r *Registry) newSession(ctx context.Context, sid, idToken string, prefersDark *bool) *Session {
	local := r.deps.Storage(sid)
	auth := identity.NewSession(r.deps.Authenticator, r.logger)
	if idToken != "" {
		if _, err := auth.Restore(ctx, idToken); err != nil {
			r.logger.Debug("Discarding stale session token", zap.Error(err))
		}
	}

	store := state.NewStore(state.Services{
		Auth:     auth,
		Users:    r.deps.Users,
		Profiles: r.deps.Profiles,
		Blog:     r.deps.Blog,
		Tasks:    r.deps.Tasks,
	}, theme.InitialMode(ctx, local), r.logger.With(zap.String("sid", sid)))

	dark := false
	if prefersDark != nil {
		dark = *prefersDark
	}
	doc := theme.NewClassList()
	prefs := theme.NewStaticPreference(dark)
	manager := theme.NewManager(store, doc, prefs, local, r.logger)
	manager.Start()

	return &Session{
		ID:         sid,
		Store:      store,
		Auth:       auth,
		Lifecycle:  state.NewLifecycle(store),
		Theme:      manager,
		Document:   doc,
		Preference: prefs,
	}
}

func (r *Registry) stop(sess *Session) {
	sess.Theme.Stop()
}
