package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/portfolio/internal/core"
	"github.com/example/portfolio/internal/db"
	"github.com/example/portfolio/internal/identity"
	"github.com/example/portfolio/internal/models"
	"github.com/example/portfolio/internal/state"
	"github.com/example/portfolio/internal/storage"
	"github.com/example/portfolio/internal/theme"
)

type fixture struct {
	registry *Registry
	auth     *identity.LocalAuthenticator
	storages map[string]*storage.MemoryStorage
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	docs := db.NewMemoryStore()
	local, err := identity.NewLocalAuthenticator(docs, "session-test-secret-01")
	require.NoError(t, err)

	users := db.NewUserRepository(docs)
	f := &fixture{
		auth:     local.WithCost(bcrypt.MinCost),
		storages: map[string]*storage.MemoryStorage{},
		clock:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.registry = NewRegistry(Deps{
		Authenticator: f.auth,
		Users:         core.NewUserService(users, logger),
		Profiles:      core.NewProfileService(users, logger),
		Blog:          core.NewBlogService(db.NewBlogPostRepository(docs), logger),
		Tasks:         core.NewTaskService(db.NewTaskRepository(docs), logger),
		Storage: func(sid string) storage.Local {
			if s, ok := f.storages[sid]; ok {
				return s
			}
			s := storage.NewMemoryStorage()
			f.storages[sid] = s
			return s
		},
	}, time.Hour, logger)
	f.registry.now = func() time.Time { return f.clock }
	return f
}

func waitInitialized(t *testing.T, sess *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sess.Lifecycle.Wait(ctx))
}

func TestAcquire_CreatesAndReuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, created := f.registry.Acquire(ctx, "", "", nil)
	require.True(t, created)
	require.NotEmpty(t, sess.ID)
	waitInitialized(t, sess)
	assert.True(t, sess.Store.Snapshot().Auth.Initialized)
	assert.Nil(t, sess.Store.Snapshot().Auth.CurrentUser)

	again, created := f.registry.Acquire(ctx, sess.ID, "", nil)
	assert.False(t, created)
	assert.Same(t, sess, again)
	assert.Equal(t, 1, f.registry.Len())

	other, created := f.registry.Acquire(ctx, "unknown-sid", "", nil)
	assert.True(t, created)
	assert.NotEqual(t, sess.ID, other.ID)
}

func TestAcquire_RestoresIdentityFromToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.auth.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	sess, _ := f.registry.Acquire(ctx, "", id.IDToken, nil)
	waitInitialized(t, sess)

	user := sess.Store.Snapshot().Auth.CurrentUser
	require.NotNil(t, user)
	assert.Equal(t, id.UID, user.UID)
}

func TestAcquire_StaleTokenStartsSignedOut(t *testing.T) {
	f := newFixture(t)
	sess, _ := f.registry.Acquire(context.Background(), "", "not-a-token", nil)
	waitInitialized(t, sess)
	assert.Nil(t, sess.Store.Snapshot().Auth.CurrentUser)
}

func TestAcquire_ThemeFollowsHint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dark := true

	sess, _ := f.registry.Acquire(ctx, "", "", &dark)
	assert.Equal(t, models.ThemeSystem, sess.Store.Snapshot().Theme.Mode)
	assert.True(t, sess.Document.Has(theme.ClassDark))

	light := false
	f.registry.Acquire(ctx, sess.ID, "", &light)
	assert.True(t, sess.Document.Has(theme.ClassLight))
	assert.False(t, sess.Document.Has(theme.ClassDark))

	require.NoError(t, sess.Store.Dispatch(ctx, state.ToggleTheme{}))
	v, ok, err := f.storages[sess.ID].Get(ctx, storage.ThemeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", v)
}

func TestEvict_DropsIdleSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	idle, _ := f.registry.Acquire(ctx, "", "", nil)
	f.clock = f.clock.Add(45 * time.Minute)
	active, _ := f.registry.Acquire(ctx, "", "", nil)

	f.clock = f.clock.Add(30 * time.Minute)
	assert.Equal(t, 1, f.registry.Evict())

	_, ok := f.registry.Get(idle.ID)
	assert.False(t, ok)
	_, ok = f.registry.Get(active.ID)
	assert.True(t, ok)
}

func TestAcquire_ExpiredSessionIsReplaced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, _ := f.registry.Acquire(ctx, "", "", nil)
	f.clock = f.clock.Add(2 * time.Hour)

	fresh, created := f.registry.Acquire(ctx, sess.ID, "", nil)
	assert.True(t, created)
	assert.NotSame(t, sess, fresh)
	assert.Equal(t, sess.ID, fresh.ID, "the browser keeps its sid")
	assert.Equal(t, 1, f.registry.Len())
}

func TestAcquire_ReturningBrowserGetsSavedTheme(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, _ := f.registry.Acquire(ctx, "", "", nil)
	require.NoError(t, sess.Store.Dispatch(ctx, state.SetTheme{Mode: models.ThemeDark}))

	f.clock = f.clock.Add(2 * time.Hour)
	require.Equal(t, 1, f.registry.Evict())

	light := false
	back, created := f.registry.Acquire(ctx, sess.ID, "", &light)
	require.True(t, created)
	assert.Equal(t, sess.ID, back.ID)
	assert.Equal(t, models.ThemeDark, back.Store.Snapshot().Theme.Mode)
	assert.True(t, back.Document.Has(theme.ClassDark))
	assert.False(t, back.Document.Has(theme.ClassLight))
}

func TestAcquire_DefaultStorageSurvivesEviction(t *testing.T) {
	f := newFixture(t)
	f.registry.deps.Storage = nil
	registry := NewRegistry(f.registry.deps, time.Hour, zap.NewNop())
	registry.now = func() time.Time { return f.clock }
	ctx := context.Background()

	sess, _ := registry.Acquire(ctx, "", "", nil)
	require.NoError(t, sess.Store.Dispatch(ctx, state.SetTheme{Mode: models.ThemeLight}))
	other, _ := registry.Acquire(ctx, "", "", nil)

	f.clock = f.clock.Add(2 * time.Hour)
	back, _ := registry.Acquire(ctx, sess.ID, "", nil)
	assert.Equal(t, models.ThemeLight, back.Store.Snapshot().Theme.Mode)

	again, _ := registry.Acquire(ctx, other.ID, "", nil)
	assert.Equal(t, models.ThemeSystem, again.Store.Snapshot().Theme.Mode)
}

func TestAcquire_MalformedSidIsNotTakenOver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, sid := range []string{"../etc", "abc", "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}"} {
		sess, created := f.registry.Acquire(ctx, sid, "", nil)
		assert.True(t, created)
		assert.NotEqual(t, sid, sess.ID)
		assert.True(t, reusableID(sess.ID))
	}
}
