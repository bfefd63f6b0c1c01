// ABOUTME: Request and response shapes for the session and user endpoints
// ABOUTME: Request DTOs carry validator tags; responses never expose password hashes

package httpapi

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fernworks/authgate/internal/store"
)

// validate is shared across handlers; validator instances cache struct metadata.
var validate = validator.New()

// registerRequest is the body for POST /api/auth/register.
type registerRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// loginRequest is the body for POST /api/auth/login.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// userResponse is the password-stripped view of a user.
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func filterUser(u *store.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// loginResponse is returned on successful login; the token also travels in
// the session cookie.
type loginResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

// profileResponse wraps a single filtered user.
type profileResponse struct {
	Status string   `json:"status"`
	Data   userData `json:"data"`
}

type userData struct {
	User userResponse `json:"user"`
}

// userListResponse is the paginated admin listing.
type userListResponse struct {
	Status  string         `json:"status"`
	Results int            `json:"results"`
	Users   []userResponse `json:"users"`
}

// statusResponse is a bare status envelope (logout, health).
type statusResponse struct {
	Status string `json:"status"`
}
