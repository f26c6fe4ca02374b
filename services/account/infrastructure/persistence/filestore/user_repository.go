// Package filestore implements the user repository over a single JSON file,
// using the same snapshot technique as the item file store.
package filestore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ghuser/crochestock/pkg/jsonfile"
	accountdomain "github.com/ghuser/crochestock/services/account/domain"
	"github.com/ghuser/crochestock/services/account/domain/models"
)

type userRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username,omitempty"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"password_hash,omitempty"`
	LoginMethod  string    `json:"login_method,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	LastSignedIn time.Time `json:"last_signed_in"`
}

type userSnapshot struct {
	Users []userRecord `json:"users"`
}

// UserRepository implements repositories.UserRepository on a JSON file.
type UserRepository struct {
	path string

	mu         sync.RWMutex
	byID       map[string]*models.User
	byUsername map[string]string // username -> id
	order      []string
}

// NewUserRepository loads path (if it exists) and returns a repository that
// persists to it. Pass "" for a memory-only repository.
func NewUserRepository(path string) (*UserRepository, error) {
	r := &UserRepository{
		path:       path,
		byID:       make(map[string]*models.User),
		byUsername: make(map[string]string),
	}
	if path == "" {
		return r, nil
	}

	var snap userSnapshot
	if _, err := jsonfile.Read(path, &snap); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, rec := range snap.Users {
		if _, dup := r.byID[rec.ID]; dup {
			return nil, fmt.Errorf("load users: duplicate id %q in %s", rec.ID, path)
		}
		if rec.Username != "" {
			if _, dup := r.byUsername[rec.Username]; dup {
				return nil, fmt.Errorf("load users: duplicate username %q in %s", rec.Username, path)
			}
			r.byUsername[rec.Username] = rec.ID
		}
		r.byID[rec.ID] = fromRecord(rec)
		r.order = append(r.order, rec.ID)
	}
	return r, nil
}

// Create inserts user, rejecting a taken id or username.
func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[user.ID]; exists {
		return fmt.Errorf("create user %q: id already exists", user.ID)
	}
	if user.Username != "" {
		if _, taken := r.byUsername[user.Username]; taken {
			return accountdomain.ErrUsernameTaken
		}
	}

	stored := clone(user)
	r.byID[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	if stored.Username != "" {
		r.byUsername[stored.Username] = stored.ID
	}

	if err := r.persistLocked(); err != nil {
		delete(r.byID, stored.ID)
		delete(r.byUsername, stored.Username)
		r.order = r.order[:len(r.order)-1]
		return err
	}
	return nil
}

// Upsert merges u into the stored user, creating it when missing.
func (r *UserRepository) Upsert(_ context.Context, u models.UserUpsert) (*models.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.byID[u.ID]
	if u.Username != nil && *u.Username != "" {
		if owner, taken := r.byUsername[*u.Username]; taken && owner != u.ID {
			return nil, accountdomain.ErrUsernameTaken
		}
	}

	var next *models.User
	if exists {
		next = clone(current)
		u.Apply(next)
	} else {
		next = models.NewUserFromUpsert(u)
		r.order = append(r.order, u.ID)
	}
	prevUsernames := cloneIndex(r.byUsername)
	if exists && current.Username != "" {
		delete(r.byUsername, current.Username)
	}
	if next.Username != "" {
		r.byUsername[next.Username] = next.ID
	}
	r.byID[u.ID] = next

	if err := r.persistLocked(); err != nil {
		r.byUsername = prevUsernames
		if exists {
			r.byID[u.ID] = current
		} else {
			delete(r.byID, u.ID)
			r.order = r.order[:len(r.order)-1]
		}
		return nil, err
	}
	return clone(next), nil
}

// GetByID returns a copy of the user.
func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, accountdomain.ErrUserNotFound
	}
	return clone(u), nil
}

// GetByUsername returns a copy of the user.
func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, accountdomain.ErrUserNotFound
	}
	return clone(r.byID[id]), nil
}

// persistLocked writes the current state. Callers hold mu for writing.
func (r *UserRepository) persistLocked() error {
	if r.path == "" {
		return nil
	}
	snap := userSnapshot{Users: make([]userRecord, 0, len(r.order))}
	for _, id := range r.order {
		snap.Users = append(snap.Users, toRecord(r.byID[id]))
	}
	if err := jsonfile.Write(r.path, snap); err != nil {
		return fmt.Errorf("persist users: %w", err)
	}
	return nil
}

func clone(u *models.User) *models.User {
	c := *u
	return &c
}

func cloneIndex(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func toRecord(u *models.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Username:     u.Username,
		DisplayName:  u.DisplayName,
		PasswordHash: u.PasswordHash,
		LoginMethod:  string(u.LoginMethod),
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		LastSignedIn: u.LastSignedIn,
	}
}

func fromRecord(rec userRecord) *models.User {
	role := models.Role(rec.Role)
	if !role.Valid() {
		role = models.RoleUser
	}
	return &models.User{
		ID:           rec.ID,
		Username:     rec.Username,
		DisplayName:  rec.DisplayName,
		PasswordHash: rec.PasswordHash,
		LoginMethod:  models.LoginMethod(rec.LoginMethod),
		Role:         role,
		CreatedAt:    rec.CreatedAt,
		LastSignedIn: rec.LastSignedIn,
	}
}
