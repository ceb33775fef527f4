package session

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDir = "/state/sessions"

func newStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	return NewStore(fsys, testDir), fsys
}

func TestSaveLoad(t *testing.T) {
	store, _ := newStore(t)
	started := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	sess := &Session{
		Build:     "com.example:app:1.0",
		StartedAt: started,
		Containers: []Container{
			{ID: "web-1", Image: "nginx:1.27", Alias: "web"},
			{ID: "db-1", Image: "postgres:16"},
		},
	}
	require.NoError(t, store.Save(sess))

	got, err := store.Load("com.example:app:1.0")
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	ok, err := store.Exists("com.example:app:1.0")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPathIsDigest(t *testing.T) {
	store, _ := newStore(t)

	p := store.path("a/b:../c")
	assert.Regexp(t, `^/state/sessions/[0-9a-f]{64}\.json$`, p)
	assert.NotEqual(t, p, store.path("a/b:../d"))
}

func TestLoadMissing(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := store.Exists("nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadCorrupt(t *testing.T) {
	store, fsys := newStore(t)
	require.NoError(t, afero.WriteFile(fsys, store.path("b"), []byte("{"), 0644))

	_, err := store.Load("b")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLoadMismatchedBuild(t *testing.T) {
	store, fsys := newStore(t)
	require.NoError(t, afero.WriteFile(fsys, store.path("b"), []byte(`{"build":"other"}`), 0644))

	_, err := store.Load("b")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDelete(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Save(&Session{Build: "b"}))

	require.NoError(t, store.Delete("b"))
	require.NoError(t, store.Delete("b"))

	_, err := store.Load("b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveReplaces(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Save(&Session{Build: "b", Containers: []Container{{ID: "x"}}}))
	require.NoError(t, store.Save(&Session{Build: "b", Containers: []Container{{ID: "y"}}}))

	got, err := store.Load("b")
	require.NoError(t, err)
	require.Len(t, got.Containers, 1)
	assert.Equal(t, "y", got.Containers[0].ID)
}

func TestList(t *testing.T) {
	store, fsys := newStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(&Session{Build: "second", StartedAt: base.Add(time.Hour)}))
	require.NoError(t, store.Save(&Session{Build: "first", StartedAt: base}))
	require.NoError(t, afero.WriteFile(fsys, testDir+"/broken.json", []byte("nope"), 0644))
	require.NoError(t, afero.WriteFile(fsys, testDir+"/notes.txt", []byte("ignored"), 0644))

	sessions, err := store.List()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "first", sessions[0].Build)
	assert.Equal(t, "second", sessions[1].Build)
}

func TestListEmpty(t *testing.T) {
	store, _ := newStore(t)

	sessions, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
