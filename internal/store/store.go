// ABOUTME: Store interface and data types for authgate persistence
// ABOUTME: Defines the User model, the Role enumeration, and the UserStore interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested user does not exist
var ErrNotFound = errors.New("user not found")

// ErrEmailExists is returned when creating a user whose email is already taken
var ErrEmailExists = errors.New("email already exists")

// Role represents a privilege tier assigned to a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ValidRoles lists all valid role values
var ValidRoles = []Role{RoleUser, RoleModerator, RoleAdmin}

// ParseRole converts a stored string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	for _, r := range ValidRoles {
		if s == string(r) {
			return r, nil
		}
	}
	return "", errors.New("unknown role: " + s)
}

// RoleSet is a fixed allow-set of roles declared at route registration.
// Membership is the only operation; there is no ordering between roles.
type RoleSet []Role

// Contains reports whether the role is a member of the set.
func (rs RoleSet) Contains(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// Predeclared allow-sets used by route registration.
var (
	// Authenticated admits any signed-in user regardless of tier.
	Authenticated = RoleSet{RoleUser, RoleModerator, RoleAdmin}

	// AdminOnly admits only administrators.
	AdminOnly = RoleSet{RoleAdmin}
)

// User represents an account in the user directory. PasswordHash is never
// serialized outward; handlers return filtered copies instead.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserStore is the user directory consumed by the auth gate and the session
// endpoints. Implementations translate driver-level errors into ErrNotFound
// and ErrEmailExists at this boundary.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrEmailExists if the email is taken.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsers returns a page of users ordered by creation time.
	// page is 1-based; limit caps the page size.
	ListUsers(ctx context.Context, page, limit int) ([]*User, error)

	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int, error)

	// Close releases the underlying database resources.
	Close() error
}
