package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyTheme, "dark"))
	v, ok, err := s.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	require.NoError(t, s.Set(ctx, KeyTheme, "light"))
	v, _, _ = s.Get(ctx, KeyTheme)
	assert.Equal(t, "light", v)

	require.NoError(t, s.Delete(ctx, KeyTheme))
	_, ok, err = s.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting a missing key is fine
	assert.NoError(t, s.Delete(ctx, KeyUsername))
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestFile(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	exercise(t, s)
}

func TestFileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	ctx := context.Background()

	s, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyUsername, "jane"))

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, KeyUsername)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jane", v)
}

func TestFileRejectsCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := OpenFile(path)
	assert.Error(t, err)
}

func TestScopeIsolatesClients(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	a := Scope(base, "a")
	b := Scope(base, "b")

	require.NoError(t, a.Set(ctx, KeyUsername, "alice"))
	_, ok, err := b.Get(ctx, KeyUsername)
	require.NoError(t, err)
	assert.False(t, ok)

	exercise(t, b)

	v, ok, _ := base.Get(ctx, "client:a:username")
	assert.True(t, ok)
	assert.Equal(t, "alice", v)
}
