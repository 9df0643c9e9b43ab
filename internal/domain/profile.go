package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BusinessOwnerProfile is the 1:1 extension of an owner user carrying
// company display data. Read by listings and notifications, never mutated by
// the application lifecycle.
type BusinessOwnerProfile struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	CompanyName  string    `json:"company_name" db:"company_name"`
	LogoURL      *string   `json:"logo_url,omitempty" db:"logo_url"`
	ContactEmail string    `json:"contact_email" db:"contact_email"`
	ContactPhone *string   `json:"contact_phone,omitempty" db:"contact_phone"`
	Website      *string   `json:"website,omitempty" db:"website"`
	About        *string   `json:"about,omitempty" db:"about"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// StudentProfile is the 1:1 extension of a student user. Availability feeds
// the advisory interview-scheduling check.
type StudentProfile struct {
	UserID       uuid.UUID      `json:"user_id" db:"user_id"`
	University   *string        `json:"university,omitempty" db:"university"`
	Skills       pq.StringArray `json:"skills" db:"skills"`
	Availability Availability   `json:"availability" db:"availability"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}
