package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/g1000/portal/internal/domain"
	"github.com/g1000/portal/internal/repository"
)

// ProjectCatalog defines the project data access consumed by ProjectService.
type ProjectCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	Create(ctx context.Context, p domain.Project) (*domain.Project, error)
	Update(ctx context.Context, p domain.Project) (*domain.Project, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Project, error)
	ListOpportunities(ctx context.Context, f repository.OpportunityFilter) ([]domain.Opportunity, int, error)
	FindOpportunity(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error)
}

// ApplicationLister lists applications for the owner's review screens.
type ApplicationLister interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Application, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Application, error)
}

// ProjectInput carries owner-editable project fields.
type ProjectInput struct {
	Title               string                  `json:"title" validate:"required,max=200"`
	Description         string                  `json:"description" validate:"required"`
	IndustryTags        []string                `json:"industry_tags" validate:"max=10"`
	Skills              []string                `json:"skills" validate:"max=20"`
	CompensationType    domain.CompensationType `json:"compensation_type" validate:"required,oneof=paid stipend unpaid"`
	CompensationNote    *string                 `json:"compensation_note"`
	DurationWeeks       int                     `json:"duration_weeks" validate:"required,min=1,max=52"`
	ApplicationsOpenAt  time.Time               `json:"applications_open_at" validate:"required"`
	ApplicationsCloseAt time.Time               `json:"applications_close_at" validate:"required"`
}

// ProjectService handles project CRUD and the public opportunity listing.
type ProjectService struct {
	projects ProjectCatalog
	apps     ApplicationLister
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projects ProjectCatalog, apps ApplicationLister) *ProjectService {
	return &ProjectService{projects: projects, apps: apps}
}

// Create posts a new project for the owner.
func (s *ProjectService) Create(ctx context.Context, ownerID uuid.UUID, in ProjectInput) (*domain.Project, error) {
	if !in.ApplicationsCloseAt.After(in.ApplicationsOpenAt) {
		return nil, &domain.ValidationError{
			Field:   "applications_close_at",
			Message: "must be after applications_open_at",
		}
	}
	return s.projects.Create(ctx, domain.Project{
		OwnerID:             ownerID,
		Title:               in.Title,
		Description:         in.Description,
		IndustryTags:        in.IndustryTags,
		Skills:              in.Skills,
		CompensationType:    in.CompensationType,
		CompensationNote:    in.CompensationNote,
		DurationWeeks:       in.DurationWeeks,
		ApplicationsOpenAt:  in.ApplicationsOpenAt,
		ApplicationsCloseAt: in.ApplicationsCloseAt,
	})
}

// Update edits an existing project. Only the owner may edit; status is not
// editable here (closure belongs to the lifecycle manager).
func (s *ProjectService) Update(ctx context.Context, ownerID, projectID uuid.UUID, in ProjectInput) (*domain.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	if !in.ApplicationsCloseAt.After(in.ApplicationsOpenAt) {
		return nil, &domain.ValidationError{
			Field:   "applications_close_at",
			Message: "must be after applications_open_at",
		}
	}

	project.Title = in.Title
	project.Description = in.Description
	project.IndustryTags = in.IndustryTags
	project.Skills = in.Skills
	project.CompensationType = in.CompensationType
	project.CompensationNote = in.CompensationNote
	project.DurationWeeks = in.DurationWeeks
	project.ApplicationsOpenAt = in.ApplicationsOpenAt
	project.ApplicationsCloseAt = in.ApplicationsCloseAt

	return s.projects.Update(ctx, *project)
}

// ListOwned retrieves the owner's projects.
func (s *ProjectService) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]domain.Project, error) {
	return s.projects.ListByOwner(ctx, ownerID)
}

// Applications lists the applications on one of the owner's projects.
func (s *ProjectService) Applications(ctx context.Context, ownerID, projectID uuid.UUID) ([]domain.Application, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return s.apps.ListByProject(ctx, projectID)
}

// StudentApplications lists a student's own applications.
func (s *ProjectService) StudentApplications(ctx context.Context, studentID uuid.UUID) ([]domain.Application, error) {
	return s.apps.ListByStudent(ctx, studentID)
}

// ListOpportunities runs the public filtered listing. Page and per-page are
// clamped to sane bounds.
func (s *ProjectService) ListOpportunities(ctx context.Context, f repository.OpportunityFilter) ([]domain.Opportunity, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	opportunities, total, err := s.projects.ListOpportunities(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list opportunities: %w", err)
	}
	return opportunities, total, nil
}

// GetOpportunity retrieves the public detail view of one project.
func (s *ProjectService) GetOpportunity(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	return s.projects.FindOpportunity(ctx, id)
}
