package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"preppilot/models"
	"preppilot/utils"
)

var (
	// ErrDuplicateEmail is returned when registering an email that already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUserNotFound is returned when no registry entry matches the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned for any authentication failure.
	// Unknown email and wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserRegistry manages the flat array of user records stored under a single
// key. Every mutation is a linear-scan-and-rewrite of the whole array; the
// mutex serializes those read-modify-write cycles within the process.
type UserRegistry struct {
	store          Store
	mu             sync.Mutex
	minPasswordLen int
}

// NewUserRegistry creates a registry over the given store.
func NewUserRegistry(store Store, minPasswordLen int) *UserRegistry {
	return &UserRegistry{
		store:          store,
		minPasswordLen: minPasswordLen,
	}
}

// Register adds a new user. It fails without mutating the registry if the
// email is already present (case-sensitive exact match) or the password is
// too short. The first registered account becomes the admin.
func (r *UserRegistry) Register(email, name, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	if email == "" || name == "" {
		return nil, fmt.Errorf("email and name are required")
	}
	if len(password) < r.minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", r.minPasswordLen)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	users := r.load()
	for i := range users {
		if users[i].Email == email {
			return nil, ErrDuplicateEmail
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	role := models.RoleUser
	if len(users) == 0 {
		role = models.RoleAdmin
	}

	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}

	users = append(users, user)
	if err := r.save(users); err != nil {
		return nil, err
	}

	return &user, nil
}

// Authenticate verifies the (email, password) pair. All failures collapse
// into ErrInvalidCredentials.
func (r *UserRegistry) Authenticate(email, password string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := r.load()
	for i := range users {
		if users[i].Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		users[i].LastLoginAt = time.Now()
		if err := r.save(users); err != nil {
			utils.Log.Warn("failed to record last login for %s: %v", email, err)
		}
		user := users[i]
		return &user, nil
	}

	return nil, ErrInvalidCredentials
}

// Get retrieves a user by email.
func (r *UserRegistry) Get(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := r.load()
	for i := range users {
		if users[i].Email == email {
			user := users[i]
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// List returns all registered users.
func (r *UserRegistry) List() ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(), nil
}

// UpdateProfile changes a user's display name.
func (r *UserRegistry) UpdateProfile(email, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	return r.update(email, func(user *models.User) error {
		user.Name = name
		return nil
	})
}

// UpdatePassword verifies the current password and replaces it.
func (r *UserRegistry) UpdatePassword(email, current, updated string) error {
	if len(updated) < r.minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", r.minPasswordLen)
	}

	_, err := r.update(email, func(user *models.User) error {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
			return ErrInvalidCredentials
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(updated), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %v", err)
		}
		user.PasswordHash = string(hash)
		return nil
	})
	return err
}

// UpdateRole changes a user's role. The role must be a known value.
func (r *UserRegistry) UpdateRole(email string, role models.Role) (*models.User, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	return r.update(email, func(user *models.User) error {
		user.Role = role
		return nil
	})
}

// Delete removes a user and cascades to everything keyed by their email:
// the data document, preferences, and any live sessions.
func (r *UserRegistry) Delete(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := r.load()
	kept := users[:0]
	found := false
	for i := range users {
		if users[i].Email == email {
			found = true
			continue
		}
		kept = append(kept, users[i])
	}
	if !found {
		return ErrUserNotFound
	}
	if err := r.save(kept); err != nil {
		return err
	}

	if err := r.store.Delete(DataKey(email)); err != nil {
		utils.Log.Warn("failed to delete data for %s: %v", email, err)
	}
	if err := r.store.Delete(PrefsKey(email)); err != nil {
		utils.Log.Warn("failed to delete preferences for %s: %v", email, err)
	}
	r.deleteSessions(email)

	return nil
}

// update applies mutate to the matching record and rewrites the array.
func (r *UserRegistry) update(email string, mutate func(*models.User) error) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := r.load()
	for i := range users {
		if users[i].Email != email {
			continue
		}
		if err := mutate(&users[i]); err != nil {
			return nil, err
		}
		if err := r.save(users); err != nil {
			return nil, err
		}
		user := users[i]
		return &user, nil
	}
	return nil, ErrUserNotFound
}

// load reads the registry array. A missing or corrupted document yields an
// empty registry rather than an error.
func (r *UserRegistry) load() []models.User {
	data, err := r.store.Get(usersKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			utils.Log.Warn("failed to read user registry: %v", err)
		}
		return nil
	}

	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		utils.Log.Warn("corrupted user registry, starting empty: %v", err)
		return nil
	}
	return users
}

func (r *UserRegistry) save(users []models.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to marshal user registry: %v", err)
	}
	return r.store.Set(usersKey, data)
}

// deleteSessions removes every session belonging to the email.
func (r *UserRegistry) deleteSessions(email string) {
	keys, err := r.store.Keys(sessionPrefix)
	if err != nil {
		utils.Log.Warn("failed to enumerate sessions: %v", err)
		return
	}
	for _, key := range keys {
		data, err := r.store.Get(key)
		if err != nil {
			continue
		}
		var session models.Session
		if err := json.Unmarshal(data, &session); err != nil || session.Email != email {
			continue
		}
		if err := r.store.Delete(key); err != nil {
			utils.Log.Warn("failed to delete session %s: %v", key, err)
		}
	}
}
