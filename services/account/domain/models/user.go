package models

import (
	"fmt"
	"time"

	accountdomain "github.com/ghuser/crochestock/services/account/domain"
)

// Role grants access levels. The configured owner id is the only admin.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// LoginMethod records how a user last signed in.
type LoginMethod string

const LoginMethodLocal LoginMethod = "local"

// User is an account. Username is empty for users that never signed up
// locally, such as the anonymous fallback identity.
type User struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string // bcrypt; never the clear-text password
	LoginMethod  LoginMethod
	Role         Role
	CreatedAt    time.Time
	LastSignedIn time.Time
}

// UserUpsert merges into an existing user, or creates one when ID is unknown.
// Nil fields leave stored values alone; a new user gets RoleUser unless Role
// is set. LastSignedIn is always written.
type UserUpsert struct {
	ID           string
	Username     *string
	DisplayName  *string
	PasswordHash *string
	LoginMethod  *LoginMethod
	Role         *Role
	LastSignedIn time.Time
}

// Validate checks the fields an upsert sets.
func (u UserUpsert) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("%w: user id is required", accountdomain.ErrUserNotFound)
	}
	if u.Role != nil && !u.Role.Valid() {
		return fmt.Errorf("%w: %q", accountdomain.ErrInvalidRole, *u.Role)
	}
	return nil
}

// Apply merges u into user, stamping LastSignedIn.
func (u UserUpsert) Apply(user *User) {
	if u.Username != nil {
		user.Username = *u.Username
	}
	if u.DisplayName != nil {
		user.DisplayName = *u.DisplayName
	}
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.LoginMethod != nil {
		user.LoginMethod = *u.LoginMethod
	}
	if u.Role != nil {
		user.Role = *u.Role
	}
	user.LastSignedIn = u.LastSignedIn.UTC()
}

// NewUserFromUpsert builds the user created by an upsert of an unknown id.
func NewUserFromUpsert(u UserUpsert) *User {
	user := &User{ID: u.ID, Role: RoleUser, CreatedAt: u.LastSignedIn.UTC()}
	u.Apply(user)
	return user
}
