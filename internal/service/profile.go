package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/g1000/portal/internal/domain"
)

// ProfileWriter extends ProfileStore with the mutations the profile screens
// need.
type ProfileWriter interface {
	ProfileStore
	UpsertOwnerProfile(ctx context.Context, p domain.BusinessOwnerProfile) (*domain.BusinessOwnerProfile, error)
	UpsertStudentProfile(ctx context.Context, p domain.StudentProfile) (*domain.StudentProfile, error)
}

// OwnerProfileInput carries the editable company display data.
type OwnerProfileInput struct {
	CompanyName  string  `json:"company_name" validate:"required,max=200"`
	LogoURL      *string `json:"logo_url" validate:"omitempty,url"`
	ContactEmail string  `json:"contact_email" validate:"required,email"`
	ContactPhone *string `json:"contact_phone"`
	Website      *string `json:"website" validate:"omitempty,url"`
	About        *string `json:"about"`
}

// StudentProfileInput carries the editable student profile data.
type StudentProfileInput struct {
	University   *string             `json:"university"`
	Skills       []string            `json:"skills" validate:"max=30"`
	Availability domain.Availability `json:"availability"`
}

// ProfileService handles owner and student profile reads and writes.
type ProfileService struct {
	profiles ProfileWriter
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles ProfileWriter) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// OwnerProfile retrieves the caller's company profile.
func (s *ProfileService) OwnerProfile(ctx context.Context, userID uuid.UUID) (*domain.BusinessOwnerProfile, error) {
	return s.profiles.OwnerProfile(ctx, userID)
}

// SaveOwnerProfile creates or replaces the caller's company profile.
func (s *ProfileService) SaveOwnerProfile(ctx context.Context, userID uuid.UUID, in OwnerProfileInput) (*domain.BusinessOwnerProfile, error) {
	return s.profiles.UpsertOwnerProfile(ctx, domain.BusinessOwnerProfile{
		UserID:       userID,
		CompanyName:  in.CompanyName,
		LogoURL:      in.LogoURL,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		Website:      in.Website,
		About:        in.About,
	})
}

// StudentProfile retrieves the caller's student profile.
func (s *ProfileService) StudentProfile(ctx context.Context, userID uuid.UUID) (*domain.StudentProfile, error) {
	return s.profiles.StudentProfile(ctx, userID)
}

// SaveStudentProfile creates or replaces the caller's student profile.
func (s *ProfileService) SaveStudentProfile(ctx context.Context, userID uuid.UUID, in StudentProfileInput) (*domain.StudentProfile, error) {
	return s.profiles.UpsertStudentProfile(ctx, domain.StudentProfile{
		UserID:       userID,
		University:   in.University,
		Skills:       in.Skills,
		Availability: in.Availability,
	})
}
