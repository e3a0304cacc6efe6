package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func exerciseLocal(t *testing.T, s Local) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, ThemeKey, "dark"))
	v, ok, err := s.Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	require.NoError(t, s.Set(ctx, ThemeKey, "light"))
	v, _, err = s.Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.Equal(t, "light", v)

	require.NoError(t, s.Remove(ctx, ThemeKey))
	_, ok, err = s.Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Remove(ctx, "never-set"))
}

func TestMemoryStorage(t *testing.T) {
	exerciseLocal(t, NewMemoryStorage())
}

func TestMemoryStorage_Scoped(t *testing.T) {
	root := NewMemoryStorage()
	exerciseLocal(t, root.Scoped("a"))

	ctx := context.Background()
	require.NoError(t, root.Scoped("a").Set(ctx, ThemeKey, "dark"))
	_, ok, err := root.Scoped("b").Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.False(t, ok, "scopes do not share keys")

	v, ok, err := root.Scoped("a").Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.True(t, ok, "a new view over the same scope sees earlier writes")
	assert.Equal(t, "dark", v)
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	exerciseLocal(t, NewFileStorage(path))
}

func TestFileStorage_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")

	require.NoError(t, NewFileStorage(path).Set(ctx, ThemeKey, "dark"))

	v, ok, err := NewFileStorage(path).Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewFileStorage(path).Get(context.Background(), ThemeKey)
	assert.Error(t, err)
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("PORTFOLIO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping Redis tests: PORTFOLIO_TEST_REDIS_ADDR not set")
	}

	client, err := NewRedisClient(context.Background(), RedisOptions{Address: addr}, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	root := NewRedisStorage(client, "portfolio-test", time.Minute)
	a := root.Scoped("browser-a")
	b := root.Scoped("browser-b")
	exerciseLocal(t, a)

	ctx := context.Background()
	require.NoError(t, a.Set(ctx, ThemeKey, "dark"))
	_, ok, err := b.Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.False(t, ok, "scopes do not share keys")
	require.NoError(t, a.Remove(ctx, ThemeKey))
}
