package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preppilot/models"
)

func newTestRegistry(t *testing.T) (*UserRegistry, Store) {
	t.Helper()
	store := NewMemoryStore()
	return NewUserRegistry(store, 6), store
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	registry, _ := newTestRegistry(t)

	first, err := registry.Register("a@x.com", "Aarav", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)

	second, err := registry.Register("b@x.com", "Bela", "secret2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, second.Role)
}

func TestRegisterHashesPassword(t *testing.T) {
	registry, _ := newTestRegistry(t)

	user, err := registry.Register("a@x.com", "Aarav", "secret1")
	require.NoError(t, err)

	assert.NotEmpty(t, user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "secret1")
}

func TestRegisterDuplicateEmailDoesNotMutate(t *testing.T) {
	registry, _ := newTestRegistry(t)

	_, err := registry.Register("a@x.com", "Aarav", "secret1")
	require.NoError(t, err)

	_, err = registry.Register("a@x.com", "Imposter", "other99")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	users, err := registry.List()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Aarav", users[0].Name)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	registry, _ := newTestRegistry(t)

	_, err := registry.Register("a@x.com", "Aarav", "short")
	assert.Error(t, err)

	users, _ := registry.List()
	assert.Empty(t, users)
}

func TestAuthenticate(t *testing.T) {
	registry, _ := newTestRegistry(t)
	_, err := registry.Register("a@x.com", "Aarav", "secret1")
	require.NoError(t, err)

	user, err := registry.Authenticate("a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.False(t, user.LastLoginAt.IsZero())
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	registry, _ := newTestRegistry(t)
	_, err := registry.Register("a@x.com", "Aarav", "secret1")
	require.NoError(t, err)

	_, wrongPassword := registry.Authenticate("a@x.com", "wrong99")
	_, unknownEmail := registry.Authenticate("nobody@x.com", "secret1")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestUpdatePassword(t *testing.T) {
	registry, _ := newTestRegistry(t)
	_, err := registry.Register("a@x.com", "Aarav", "secret1")
	require.NoError(t, err)

	// Wrong current password is rejected.
	err = registry.UpdatePassword("a@x.com", "wrong99", "newsecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, registry.UpdatePassword("a@x.com", "secret1", "newsecret"))

	_, err = registry.Authenticate("a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = registry.Authenticate("a@x.com", "newsecret")
	assert.NoError(t, err)
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	registry, _ := newTestRegistry(t)
	_, err := registry.Register("a@x.com", "Aarav", "secret1")
	require.NoError(t, err)

	_, err = registry.UpdateRole("a@x.com", models.Role("superuser"))
	assert.Error(t, err)

	user, err := registry.Get("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestDeleteCascades(t *testing.T) {
	store := NewMemoryStore()
	registry := NewUserRegistry(store, 6)
	sessions := NewSessionStore(store, testSessionTTL)
	data := NewDataStore(store)

	user, err := registry.Register("a@x.com", "Aarav", "secret1")
	require.NoError(t, err)
	_, err = registry.Register("b@x.com", "Bela", "secret2")
	require.NoError(t, err)

	require.NoError(t, data.Seed("a@x.com"))
	require.NoError(t, data.SavePreferences("a@x.com", models.Preferences{Theme: "dark"}))
	session, err := sessions.Create(user)
	require.NoError(t, err)

	require.NoError(t, registry.Delete("a@x.com"))

	// Registry entry gone, other users untouched.
	_, err = registry.Get("a@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = registry.Get("b@x.com")
	assert.NoError(t, err)

	// Data, preferences, and sessions gone.
	_, err = store.Get(DataKey("a@x.com"))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(PrefsKey("a@x.com"))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = sessions.Get(session.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUnknownUser(t *testing.T) {
	registry, _ := newTestRegistry(t)

	err := registry.Delete("nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCorruptedRegistryStartsEmpty(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(usersKey, []byte("{not json")))

	registry := NewUserRegistry(store, 6)

	users, err := registry.List()
	require.NoError(t, err)
	assert.Empty(t, users)

	// Registration recovers by rewriting the document.
	_, err = registry.Register("a@x.com", "Aarav", "secret1")
	assert.NoError(t, err)
}
