package domain

import (
	"context"
	"time"
)

// Role decides which capabilities a user sees. It is fixed at sign-up.
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleProvider
}

// User is a profile record. Providers are users with RoleProvider.
type User struct {
	ID             string
	Name           string
	Email          string
	Role           Role
	City           string
	Phone          string // Optional
	About          string // Optional free text
	ProfilePicture string // Optional URI
	PasswordHash   string
	CreatedAt      time.Time
}

// IsProvider reports whether the user offers services.
func (u *User) IsProvider() bool {
	return u != nil && u.Role == RoleProvider
}

// UserRepository defines persistence operations for users.
// Queries are single-field equality filters; role and city are the only
// list predicates.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ListByRole returns users with the given role, optionally narrowed to a
	// city when city is non-empty. A limit <= 0 means no cap.
	ListByRole(ctx context.Context, role Role, city string, limit int) ([]User, error)
}
