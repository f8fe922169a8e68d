package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const photosQuery = "command: List Files\nfolder: /Photos\nfilter:\n    - extension: jpg\n"

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.json")
	m, err := NewManager(path)
	require.NoError(t, err)

	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return m, path
}

func TestManager_SaveAndGet(t *testing.T) {
	m, _ := newTestManager(t)

	saved, err := m.SaveQuery(" photos ", photosQuery)
	require.NoError(t, err)
	assert.Equal(t, "photos", saved.Name)
	assert.Equal(t, "/Photos", saved.Folder)
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)

	got, err := m.GetQuery("photos")
	require.NoError(t, err)
	assert.Equal(t, photosQuery, got.Text)
}

func TestManager_SaveReplacesKeepsCreatedAt(t *testing.T) {
	m, _ := newTestManager(t)

	first, err := m.SaveQuery("photos", photosQuery)
	require.NoError(t, err)

	second, err := m.SaveQuery("photos", "command: List Files\nfolder: /Other")
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, "/Other", second.Folder)
	assert.Len(t, m.ListQueries(), 1)
}

func TestManager_SaveValidation(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.SaveQuery("  ", photosQuery)
	assert.Error(t, err)

	_, err = m.SaveQuery("nocommand", "folder: /Photos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command")
}

func TestManager_GetMissing(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.GetQuery("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_RemoveQuery(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.SaveQuery("photos", photosQuery)
	require.NoError(t, err)

	assert.True(t, m.RemoveQuery("photos"))
	assert.False(t, m.RemoveQuery("photos"))
	assert.Empty(t, m.ListQueries())
}

func TestManager_ListSorted(t *testing.T) {
	m, _ := newTestManager(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := m.SaveQuery(name, photosQuery)
		require.NoError(t, err)
	}

	var names []string
	for _, q := range m.ListQueries() {
		names = append(names, q.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestManager_PersistsAcrossInstances(t *testing.T) {
	m, path := newTestManager(t)
	_, err := m.SaveQuery("photos", photosQuery)
	require.NoError(t, err)
	m.MarkRun("photos")
	require.NoError(t, m.Save())

	reloaded, err := NewManager(path)
	require.NoError(t, err)

	got, err := reloaded.GetQuery("photos")
	require.NoError(t, err)
	assert.Equal(t, photosQuery, got.Text)
	assert.False(t, got.LastRunAt.IsZero())
}

func TestManager_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "queries.json")
	m, err := NewManager(path)
	require.NoError(t, err)

	_, err = m.SaveQuery("photos", photosQuery)
	require.NoError(t, err)
	require.NoError(t, m.Save())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNewManager_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewManager(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load saved queries")
}

func TestNewManager_EmptyObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	m, err := NewManager(path)
	require.NoError(t, err)

	_, err = m.SaveQuery("photos", photosQuery)
	assert.NoError(t, err)
}
