package repositories

import (
	"context"

	"github.com/ghuser/crochestock/services/account/domain/models"
)

// UserRepository persists accounts.
type UserRepository interface {
	// Create inserts user. Returns ErrUsernameTaken when the username is in use.
	Create(ctx context.Context, user *models.User) error
	// Upsert merges u into the user u.ID, creating it when missing, and
	// returns the stored result.
	Upsert(ctx context.Context, u models.UserUpsert) (*models.User, error)
	// GetByID returns ErrUserNotFound when no user has id.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByUsername returns ErrUserNotFound when no user has username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
