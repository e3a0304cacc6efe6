package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func TestTheme_ToggleSequencePersists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "storage.json")

	out := run(t, "theme", "get", "--file", file)
	assert.Contains(t, out, "mode: system")

	for _, want := range []string{"light", "dark", "light"} {
		out = run(t, "theme", "toggle", "--file", file)
		assert.Contains(t, out, "mode: "+want)
	}

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"theme": "light"`)
}

func TestTheme_SetAndJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "storage.json")

	out := run(t, "theme", "set", "system", "--file", file, "--prefers-dark", "-o", "json")
	assert.Contains(t, out, `"mode": "system"`)
	assert.Contains(t, out, `"dark": true`)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"theme", "set", "sepia", "--file", file})
	assert.Error(t, cmd.Execute())

	out = run(t, "theme", "get", "--file", file)
	assert.Contains(t, out, "mode: system")
}

func TestSlug(t *testing.T) {
	out := run(t, "slug", "Hello,", "World!")
	assert.Equal(t, "slug: hello-world\n", out)
}

func TestSlug_WithExcerpt(t *testing.T) {
	file := filepath.Join(t.TempDir(), "post.md")
	require.NoError(t, os.WriteFile(file, []byte("# Title\n\nSome **bold** text that runs on."), 0o600))

	out := run(t, "slug", "A Post", "--content", file, "--length", "9")
	assert.Contains(t, out, "slug: a-post")
	assert.True(t, strings.Contains(out, "excerpt: Title Som..."), out)
}

func TestTasks_RequiresCredentials(t *testing.T) {
	t.Setenv("BACKEND", "local")
	t.Setenv("LOCAL_JWT_SECRET", "cli-test-secret-0123")
	t.Setenv("LOCAL_DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("PORTFOLIO_EMAIL", "")
	t.Setenv("PORTFOLIO_PASSWORD", "")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"tasks", "list"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--email and --password")
}
