package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeUnderTest exercises the Store contract against any implementation.
func storeUnderTest(t *testing.T, store Store) {
	t.Helper()

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("users", []byte("[]")))
	require.NoError(t, store.Set("userdata:a@x.com", []byte("{}")))
	require.NoError(t, store.Set("userdata:b@x.com", []byte("{}")))
	require.NoError(t, store.Set("prefs:a@x.com", []byte("{}")))

	value, err := store.Get("users")
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), value)

	// Overwrite replaces the previous value.
	require.NoError(t, store.Set("users", []byte(`[{"email":"a@x.com"}]`)))
	value, err = store.Get("users")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"email":"a@x.com"}]`), value)

	keys, err := store.Keys("userdata:")
	require.NoError(t, err)
	assert.Equal(t, []string{"userdata:a@x.com", "userdata:b@x.com"}, keys)

	keys, err = store.Keys("")
	require.NoError(t, err)
	assert.Len(t, keys, 4)

	require.NoError(t, store.Delete("userdata:a@x.com"))
	_, err = store.Get("userdata:a@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error.
	assert.NoError(t, store.Delete("userdata:a@x.com"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	storeUnderTest(t, store)
}

func TestBoltStore(t *testing.T) {
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	storeUnderTest(t, store)
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("users", []byte("[]")))
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get("users")
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), value)
}
