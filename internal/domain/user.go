package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role gates which operations a user may perform. Immutable after creation.
type Role string

const (
	RoleStudent Role = "student"
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
)

// AuthProvider represents an OAuth provider.
type AuthProvider string

const AuthProviderGoogle AuthProvider = "google"

// User represents an account on the portal. Students sign in through an
// OAuth provider; business owners register with email and password.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Role         Role      `json:"role" db:"role"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	Provider     *string   `json:"provider,omitempty" db:"provider"`
	ProviderID   *string   `json:"-" db:"provider_id"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	AvatarURL    *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Identity is the resolved caller of a request: who they are and what they
// may act as.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}
