package localstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *MarkerStore {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func TestLastExplodedUnsetIsZero(t *testing.T) {
	store := openTestStore(t)

	id, err := store.LastExploded("room-ab12cd", "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
}

func TestSetAndGetLastExploded(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SetLastExploded("room-ab12cd", "user-1", 42))

	id, err := store.LastExploded("room-ab12cd", "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	// Overwrite advances the marker.
	require.NoError(t, store.SetLastExploded("room-ab12cd", "user-1", 99))
	id, err = store.LastExploded("room-ab12cd", "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)
}

func TestMarkersAreScopedPerRoomAndUser(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SetLastExploded("room-ab12cd", "user-1", 7))

	id, err := store.LastExploded("room-ab12cd", "user-2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	id, err = store.LastExploded("room-ef34gh", "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
}

func TestOpenRejectsEmptyDir(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
