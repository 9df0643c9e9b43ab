package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/g1000/portal/internal/domain"
)

// ProfileRepository handles business-owner and student profile access.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// OwnerProfile retrieves the company profile for an owner user.
func (r *ProfileRepository) OwnerProfile(ctx context.Context, userID uuid.UUID) (*domain.BusinessOwnerProfile, error) {
	var profile domain.BusinessOwnerProfile
	err := r.db.GetContext(ctx, &profile,
		`SELECT user_id, company_name, logo_url, contact_email, contact_phone, website, about, created_at, updated_at
		 FROM business_owner_profiles WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find owner profile %s: %w", userID, err)
	}
	return &profile, nil
}

// UpsertOwnerProfile creates or replaces the company profile for an owner.
func (r *ProfileRepository) UpsertOwnerProfile(ctx context.Context, p domain.BusinessOwnerProfile) (*domain.BusinessOwnerProfile, error) {
	var profile domain.BusinessOwnerProfile
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO business_owner_profiles (user_id, company_name, logo_url, contact_email, contact_phone, website, about)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id)
		 DO UPDATE SET company_name = EXCLUDED.company_name,
		               logo_url = EXCLUDED.logo_url,
		               contact_email = EXCLUDED.contact_email,
		               contact_phone = EXCLUDED.contact_phone,
		               website = EXCLUDED.website,
		               about = EXCLUDED.about,
		               updated_at = NOW()
		 RETURNING user_id, company_name, logo_url, contact_email, contact_phone, website, about, created_at, updated_at`,
		p.UserID, p.CompanyName, p.LogoURL, p.ContactEmail, p.ContactPhone, p.Website, p.About,
	).StructScan(&profile)
	if err != nil {
		return nil, fmt.Errorf("upsert owner profile: %w", err)
	}
	return &profile, nil
}

// StudentProfile retrieves the profile for a student user.
func (r *ProfileRepository) StudentProfile(ctx context.Context, userID uuid.UUID) (*domain.StudentProfile, error) {
	var profile domain.StudentProfile
	err := r.db.GetContext(ctx, &profile,
		`SELECT user_id, university, skills, availability, created_at, updated_at
		 FROM student_profiles WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find student profile %s: %w", userID, err)
	}
	return &profile, nil
}

// UpsertStudentProfile creates or replaces a student's profile.
func (r *ProfileRepository) UpsertStudentProfile(ctx context.Context, p domain.StudentProfile) (*domain.StudentProfile, error) {
	var profile domain.StudentProfile
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO student_profiles (user_id, university, skills, availability)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id)
		 DO UPDATE SET university = EXCLUDED.university,
		               skills = EXCLUDED.skills,
		               availability = EXCLUDED.availability,
		               updated_at = NOW()
		 RETURNING user_id, university, skills, availability, created_at, updated_at`,
		p.UserID, p.University, p.Skills, p.Availability,
	).StructScan(&profile)
	if err != nil {
		return nil, fmt.Errorf("upsert student profile: %w", err)
	}
	return &profile, nil
}
