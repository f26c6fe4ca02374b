// Package postgres implements the user repository on PostgreSQL with
// sqlc-generated queries.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/crochestock/pkg/database"
	accountdomain "github.com/ghuser/crochestock/services/account/domain"
	"github.com/ghuser/crochestock/services/account/domain/models"
	"github.com/ghuser/crochestock/services/account/infrastructure/persistence/postgres/db"
)

const (
	uniqueViolation    = "23505"
	usernameConstraint = "users_username_key"
)

// UserRepository implements repositories.UserRepository against PostgreSQL.
type UserRepository struct {
	db *database.Database
}

// NewUserRepository returns a UserRepository over the given pool.
func NewUserRepository(database *database.Database) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts user. Returns ErrUsernameTaken on a username conflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := db.New(r.db.DB()).InsertUser(ctx, db.InsertUserParams{
		ID:           user.ID,
		Username:     nullString(user.Username),
		DisplayName:  nullString(user.DisplayName),
		PasswordHash: nullString(user.PasswordHash),
		LoginMethod:  nullString(string(user.LoginMethod)),
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt.UTC(),
		LastSignedIn: user.LastSignedIn.UTC(),
	})
	if err != nil {
		return mapWriteError("insert user", err)
	}
	return nil
}

// Upsert merges u into the stored user in one statement, creating it when
// missing. An insert without a role gets the column default.
func (r *UserRepository) Upsert(ctx context.Context, u models.UserUpsert) (*models.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	params := db.UpsertUserParams{
		ID:           u.ID,
		Username:     nullStringPtr(u.Username),
		DisplayName:  nullStringPtr(u.DisplayName),
		PasswordHash: nullStringPtr(u.PasswordHash),
		LastSignedIn: u.LastSignedIn.UTC(),
	}
	if u.LoginMethod != nil {
		params.LoginMethod = nullString(string(*u.LoginMethod))
	}
	if u.Role != nil {
		params.Role = nullString(string(*u.Role))
	}

	row, err := db.New(r.db.DB()).UpsertUser(ctx, params)
	if err != nil {
		return nil, mapWriteError("upsert user", err)
	}
	return rowToUser(row), nil
}

// GetByID returns ErrUserNotFound when no user has id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row, err := db.New(r.db.DB()).GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountdomain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return rowToUser(row), nil
}

// GetByUsername returns ErrUserNotFound when no user has username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, accountdomain.ErrUserNotFound
	}
	row, err := db.New(r.db.DB()).GetUserByUsername(ctx, nullString(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountdomain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return rowToUser(row), nil
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == usernameConstraint {
		return accountdomain.ErrUsernameTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullString maps "" to NULL so that unset usernames never collide on the
// unique index.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return nullString(*s)
}

func rowToUser(row db.User) *models.User {
	return &models.User{
		ID:           row.ID,
		Username:     row.Username.String,
		DisplayName:  row.DisplayName.String,
		PasswordHash: row.PasswordHash.String,
		LoginMethod:  models.LoginMethod(row.LoginMethod.String),
		Role:         models.Role(row.Role),
		CreatedAt:    row.CreatedAt.UTC(),
		LastSignedIn: row.LastSignedIn.UTC(),
	}
}
