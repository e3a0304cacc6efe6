package theme

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/portfolio/internal/models"
	"github.com/example/portfolio/internal/state"
	"github.com/example/portfolio/internal/storage"
)

type harness struct {
	store   *state.Store
	doc     *ClassList
	prefs   *StaticPreference
	local   *storage.MemoryStorage
	manager *Manager
}

func newHarness(t *testing.T, initial models.ThemeMode, prefersDark bool) *harness {
	t.Helper()
	h := &harness{
		store: state.NewStore(state.Services{}, initial, zap.NewNop()),
		doc:   NewClassList(),
		prefs: NewStaticPreference(prefersDark),
		local: storage.NewMemoryStorage(),
	}
	h.manager = NewManager(h.store, h.doc, h.prefs, h.local, zap.NewNop())
	h.manager.Start()
	t.Cleanup(h.manager.Stop)
	return h
}

func (h *harness) stored(t *testing.T) string {
	t.Helper()
	v, ok, err := h.local.Get(context.Background(), storage.ThemeKey)
	require.NoError(t, err)
	require.True(t, ok)
	return v
}

func TestInitialMode(t *testing.T) {
	ctx := context.Background()
	local := storage.NewMemoryStorage()
	assert.Equal(t, models.ThemeSystem, InitialMode(ctx, local))

	require.NoError(t, local.Set(ctx, storage.ThemeKey, "dark"))
	assert.Equal(t, models.ThemeDark, InitialMode(ctx, local))

	require.NoError(t, local.Set(ctx, storage.ThemeKey, "sepia"))
	assert.Equal(t, models.ThemeSystem, InitialMode(ctx, local))
}

func TestIsDark(t *testing.T) {
	assert.True(t, IsDark(models.ThemeDark, false))
	assert.False(t, IsDark(models.ThemeLight, true))
	assert.True(t, IsDark(models.ThemeSystem, true))
	assert.False(t, IsDark(models.ThemeSystem, false))
}

func TestManager_AppliesExactlyOneClass(t *testing.T) {
	h := newHarness(t, models.ThemeLight, true)
	ctx := context.Background()

	assert.Equal(t, []string{ClassLight}, h.doc.Classes())
	assert.Equal(t, "light", h.stored(t))

	require.NoError(t, h.store.Dispatch(ctx, state.SetTheme{Mode: models.ThemeDark}))
	assert.Equal(t, []string{ClassDark}, h.doc.Classes())
	assert.Equal(t, "dark", h.stored(t))

	require.NoError(t, h.store.Dispatch(ctx, state.SetTheme{Mode: models.ThemeSystem}))
	assert.Equal(t, []string{ClassDark}, h.doc.Classes(), "system follows the dark preference")
	assert.Equal(t, "system", h.stored(t))
}

func TestManager_ToggleSequencePersists(t *testing.T) {
	h := newHarness(t, models.ThemeSystem, false)
	ctx := context.Background()

	want := []string{"light", "dark", "light"}
	for _, mode := range want {
		require.NoError(t, h.store.Dispatch(ctx, state.ToggleTheme{}))
		assert.Equal(t, mode, h.stored(t))
		assert.Equal(t, []string{mode}, h.doc.Classes())
	}
}

func TestManager_PreferenceListenerOnlyInSystemMode(t *testing.T) {
	h := newHarness(t, models.ThemeSystem, false)
	ctx := context.Background()

	assert.Equal(t, 1, h.prefs.Listeners())
	assert.Equal(t, []string{ClassLight}, h.doc.Classes())

	h.prefs.Set(true)
	assert.Equal(t, []string{ClassDark}, h.doc.Classes())

	require.NoError(t, h.store.Dispatch(ctx, state.SetTheme{Mode: models.ThemeLight}))
	assert.Equal(t, 0, h.prefs.Listeners())
	assert.Equal(t, []string{ClassLight}, h.doc.Classes())

	h.prefs.Set(false)
	h.prefs.Set(true)
	assert.Equal(t, []string{ClassLight}, h.doc.Classes(), "explicit mode ignores the platform")

	require.NoError(t, h.store.Dispatch(ctx, state.SetTheme{Mode: models.ThemeSystem}))
	assert.Equal(t, 1, h.prefs.Listeners())
	assert.Equal(t, []string{ClassDark}, h.doc.Classes())
}

func TestManager_StopDetaches(t *testing.T) {
	h := newHarness(t, models.ThemeSystem, false)
	h.manager.Stop()
	assert.Equal(t, 0, h.prefs.Listeners())

	require.NoError(t, h.store.Dispatch(context.Background(), state.SetTheme{Mode: models.ThemeDark}))
	assert.Equal(t, []string{ClassLight}, h.doc.Classes())
}

func TestParseColorSchemeHint(t *testing.T) {
	dark, ok := ParseColorSchemeHint(`"dark"`)
	assert.True(t, ok)
	assert.True(t, dark)

	dark, ok = ParseColorSchemeHint("light")
	assert.True(t, ok)
	assert.False(t, dark)

	_, ok = ParseColorSchemeHint("")
	assert.False(t, ok)
}

func TestClassList_String(t *testing.T) {
	c := NewClassList()
	c.AddClass("dark")
	c.AddClass("app")
	assert.Equal(t, "app dark", c.String())
	assert.True(t, c.Has("dark"))
	c.RemoveClass("dark")
	assert.False(t, c.Has("dark"))
}
