package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"preppilot/models"
	"preppilot/utils"
)

// SessionStore persists one session record per logged-in client. Lookups
// fail open: a missing, corrupted, or expired record is reported as
// ErrNotFound so callers treat the client as unauthenticated, never as a
// server fault.
type SessionStore struct {
	store Store
	ttl   time.Duration
}

// NewSessionStore creates a session store with the given session lifetime.
func NewSessionStore(store Store, ttl time.Duration) *SessionStore {
	return &SessionStore{store: store, ttl: ttl}
}

// Create derives a session record from the user and persists it.
func (s *SessionStore) Create(user *models.User) (*models.Session, error) {
	now := time.Now()
	session := &models.Session{
		ID:              uuid.New().String(),
		Email:           user.Email,
		Name:            user.Name,
		Role:            user.Role,
		IsAuthenticated: true,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.ttl),
	}

	if err := s.save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get loads a session by id.
func (s *SessionStore) Get(id string) (*models.Session, error) {
	data, err := s.store.Get(SessionKey(id))
	if err != nil {
		return nil, ErrNotFound
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		utils.Log.Warn("corrupted session record %s, discarding: %v", id, err)
		s.Delete(id)
		return nil, ErrNotFound
	}

	if session.Expired(time.Now()) {
		s.Delete(id)
		return nil, ErrNotFound
	}

	return &session, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) error {
	return s.store.Delete(SessionKey(id))
}

// UpdateRoleByEmail rewrites the role on every live session of the user, so
// admin role changes take effect without forcing a re-login.
func (s *SessionStore) UpdateRoleByEmail(email string, role models.Role) {
	keys, err := s.store.Keys(sessionPrefix)
	if err != nil {
		utils.Log.Warn("failed to enumerate sessions: %v", err)
		return
	}
	for _, key := range keys {
		data, err := s.store.Get(key)
		if err != nil {
			continue
		}
		var session models.Session
		if err := json.Unmarshal(data, &session); err != nil || session.Email != email {
			continue
		}
		session.Role = role
		if err := s.save(&session); err != nil {
			utils.Log.Warn("failed to update session %s: %v", key, err)
		}
	}
}

func (s *SessionStore) save(session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %v", err)
	}
	return s.store.Set(SessionKey(session.ID), data)
}
