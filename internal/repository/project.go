package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/g1000/portal/internal/domain"
)

const projectColumns = `id, owner_id, title, description, industry_tags, skills,
	compensation_type, compensation_note, duration_weeks, status,
	applications_open_at, applications_close_at, created_at, updated_at`

// OpportunityFilter narrows the public opportunity listing.
type OpportunityFilter struct {
	Search           string
	Industries       []string
	Skills           []string
	CompensationType string
	MaxDurationWeeks int
	Page             int
	PerPage          int
}

// ProjectRepository handles project data access operations.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindByID retrieves a project by its ID.
func (r *ProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.GetContext(ctx, &project,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find project by id %s: %w", id, err)
	}
	return &project, nil
}

// Create inserts a new open project for the owner.
func (r *ProjectRepository) Create(ctx context.Context, p domain.Project) (*domain.Project, error) {
	var project domain.Project
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO projects (id, owner_id, title, description, industry_tags, skills,
		                       compensation_type, compensation_note, duration_weeks, status,
		                       applications_open_at, applications_close_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+projectColumns,
		uuid.New(), p.OwnerID, p.Title, p.Description, p.IndustryTags, p.Skills,
		p.CompensationType, p.CompensationNote, p.DurationWeeks, domain.ProjectStatusOpen,
		p.ApplicationsOpenAt, p.ApplicationsCloseAt,
	).StructScan(&project)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

// Update persists owner-editable fields of a project.
func (r *ProjectRepository) Update(ctx context.Context, p domain.Project) (*domain.Project, error) {
	var project domain.Project
	err := r.db.QueryRowxContext(ctx,
		`UPDATE projects
		 SET title = $2, description = $3, industry_tags = $4, skills = $5,
		     compensation_type = $6, compensation_note = $7, duration_weeks = $8,
		     applications_open_at = $9, applications_close_at = $10, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+projectColumns,
		p.ID, p.Title, p.Description, p.IndustryTags, p.Skills,
		p.CompensationType, p.CompensationNote, p.DurationWeeks,
		p.ApplicationsOpenAt, p.ApplicationsCloseAt,
	).StructScan(&project)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update project %s: %w", p.ID, err)
	}
	return &project, nil
}

// Close transitions the project open -> closed. The WHERE clause is the
// compare-and-swap: it reports false when the project was already closed, so
// exactly one caller in a race observes true.
func (r *ProjectRepository) Close(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		id, domain.ProjectStatusClosed, domain.ProjectStatusOpen)
	if err != nil {
		return false, fmt.Errorf("close project %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("close project %s: rows affected: %w", id, err)
	}
	return n == 1, nil
}

// ListByOwner retrieves all projects posted by the owner, newest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Project, error) {
	projects := []domain.Project{}
	err := r.db.SelectContext(ctx, &projects,
		`SELECT `+projectColumns+` FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects by owner: %w", err)
	}
	return projects, nil
}

// ListOpportunities retrieves open projects whose application window is open
// (or opening within 24 hours), filtered and paginated, joined with the
// posting company's display data. Returns the page and the total match count.
func (r *ProjectRepository) ListOpportunities(ctx context.Context, f OpportunityFilter) ([]domain.Opportunity, int, error) {
	where := []string{
		"p.status = 'open'",
		"p.applications_close_at >= NOW()",
		"p.applications_open_at <= NOW() + INTERVAL '24 hours'",
	}
	args := []any{}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		n := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(p.title ILIKE %s OR p.description ILIKE %s)", n, n))
	}
	if len(f.Industries) > 0 {
		where = append(where, fmt.Sprintf("p.industry_tags && %s", arg(pq.Array(f.Industries))))
	}
	if len(f.Skills) > 0 {
		where = append(where, fmt.Sprintf("p.skills && %s", arg(pq.Array(f.Skills))))
	}
	if f.CompensationType != "" {
		where = append(where, fmt.Sprintf("p.compensation_type = %s", arg(f.CompensationType)))
	}
	if f.MaxDurationWeeks > 0 {
		where = append(where, fmt.Sprintf("p.duration_weeks <= %s", arg(f.MaxDurationWeeks)))
	}

	clause := strings.Join(where, " AND ")

	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM projects p WHERE `+clause, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count opportunities: %w", err)
	}

	limit := arg(f.PerPage)
	offset := arg((f.Page - 1) * f.PerPage)

	opportunities := []domain.Opportunity{}
	err = r.db.SelectContext(ctx, &opportunities,
		`SELECT p.id, p.owner_id, p.title, p.description, p.industry_tags, p.skills,
		        p.compensation_type, p.compensation_note, p.duration_weeks, p.status,
		        p.applications_open_at, p.applications_close_at, p.created_at, p.updated_at,
		        bp.company_name AS company_name, bp.logo_url AS company_logo_url
		 FROM projects p
		 LEFT JOIN business_owner_profiles bp ON bp.user_id = p.owner_id
		 WHERE `+clause+`
		 ORDER BY p.created_at DESC
		 LIMIT `+limit+` OFFSET `+offset, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list opportunities: %w", err)
	}
	return opportunities, total, nil
}

// FindOpportunity retrieves one project with company display data, for the
// public detail view.
func (r *ProjectRepository) FindOpportunity(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	var opportunity domain.Opportunity
	err := r.db.GetContext(ctx, &opportunity,
		`SELECT p.id, p.owner_id, p.title, p.description, p.industry_tags, p.skills,
		        p.compensation_type, p.compensation_note, p.duration_weeks, p.status,
		        p.applications_open_at, p.applications_close_at, p.created_at, p.updated_at,
		        bp.company_name AS company_name, bp.logo_url AS company_logo_url
		 FROM projects p
		 LEFT JOIN business_owner_profiles bp ON bp.user_id = p.owner_id
		 WHERE p.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find opportunity %s: %w", id, err)
	}
	return &opportunity, nil
}
