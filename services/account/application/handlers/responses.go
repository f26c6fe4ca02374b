package handlers

import (
	"time"

	"github.com/ghuser/crochestock/services/account/domain/models"
)

// UserSummary is the public part of a user returned after login or signup.
type UserSummary struct {
	ID   string `json:"id"   example:"user_5f0c1c8e-6d0b-4b7e-9a59-0c1f3f2d1a11"`
	Name string `json:"name" example:"Ana"`
} // @name UserSummary

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Success bool        `json:"success" example:"true"`
	User    UserSummary `json:"user"`
} // @name AuthResponse

// SuccessResponse is returned by logout.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
} // @name SuccessResponse

// MeResponse describes the signed-in user.
type MeResponse struct {
	ID           string    `json:"id"             example:"user_5f0c1c8e-6d0b-4b7e-9a59-0c1f3f2d1a11"`
	Username     string    `json:"username"       example:"ana"`
	Name         string    `json:"name"           example:"Ana"`
	Role         string    `json:"role"           example:"user"`
	LoginMethod  string    `json:"login_method"   example:"local"`
	LastSignedIn time.Time `json:"last_signed_in" example:"2024-01-15T10:30:00Z"`
} // @name MeResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error  string            `json:"error"            example:"Invalid credentials"`
	Fields map[string]string `json:"fields,omitempty"`
} // @name ErrorResponse

func newAuthResponse(u *models.User) AuthResponse {
	return AuthResponse{Success: true, User: UserSummary{ID: u.ID, Name: u.DisplayName}}
}

// NewMeResponse converts a user to its wire shape.
func NewMeResponse(u *models.User) MeResponse {
	return MeResponse{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.DisplayName,
		Role:         string(u.Role),
		LoginMethod:  string(u.LoginMethod),
		LastSignedIn: u.LastSignedIn,
	}
}
