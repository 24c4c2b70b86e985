package storage

import "errors"

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("key not found")

// Store is the key-value repository behind all persistence. Callers receive
// it injected so the backend (bbolt in production, in-memory in tests) is
// swappable without touching them.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}

// Key schema. The whole application state lives in one flat namespace:
// a single registry key, one session key per active session, and one data
// and preferences key per user.
const (
	usersKey      = "users"
	sessionPrefix = "session:"
	dataPrefix    = "userdata:"
	prefsPrefix   = "prefs:"
)

// SessionKey returns the storage key for a session id.
func SessionKey(id string) string { return sessionPrefix + id }

// DataKey returns the storage key for a user's data document.
func DataKey(email string) string { return dataPrefix + email }

// PrefsKey returns the storage key for a user's preferences.
func PrefsKey(email string) string { return prefsPrefix + email }
