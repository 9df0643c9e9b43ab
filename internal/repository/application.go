package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/g1000/portal/internal/domain"
)

const applicationColumns = `id, project_id, student_id, status, cover_note, reflection_owner,
	meeting_date_time, meeting_link, submitted_at, invited_at, rejected_at, updated_at`

// ApplicationRepository handles application data access operations.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// FindByID retrieves an application by its ID.
func (r *ApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	err := r.db.GetContext(ctx, &app,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find application by id %s: %w", id, err)
	}
	return &app, nil
}

// FindActiveByProjectAndStudent retrieves the student's non-withdrawn
// application on the project, if any.
func (r *ApplicationRepository) FindActiveByProjectAndStudent(ctx context.Context, projectID, studentID uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	err := r.db.GetContext(ctx, &app,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE project_id = $1 AND student_id = $2 AND status <> $3`,
		projectID, studentID, domain.ApplicationStatusWithdrawn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find active application: %w", err)
	}
	return &app, nil
}

// Create inserts a freshly submitted application. A unique violation on the
// partial (project_id, student_id) index surfaces as ErrConflict.
func (r *ApplicationRepository) Create(ctx context.Context, projectID, studentID uuid.UUID, coverNote string) (*domain.Application, error) {
	var app domain.Application
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO applications (id, project_id, student_id, status, cover_note, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 RETURNING `+applicationColumns,
		uuid.New(), projectID, studentID, domain.ApplicationStatusSubmitted, coverNote,
	).StructScan(&app)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create application: %w", err)
	}
	return &app, nil
}

// ListByProject retrieves all applications on a project, newest first.
func (r *ApplicationRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Application, error) {
	apps := []domain.Application{}
	err := r.db.SelectContext(ctx, &apps,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE project_id = $1 ORDER BY submitted_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list applications by project: %w", err)
	}
	return apps, nil
}

// ListByStudent retrieves all of a student's applications, newest first.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Application, error) {
	apps := []domain.Application{}
	err := r.db.SelectContext(ctx, &apps,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE student_id = $1 ORDER BY submitted_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list applications by student: %w", err)
	}
	return apps, nil
}

// MarkAccepted persists the accepted status. A unique violation on the
// one-accepted-per-project index surfaces as ErrConflict.
func (r *ApplicationRepository) MarkAccepted(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	err := r.db.QueryRowxContext(ctx,
		`UPDATE applications SET status = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+applicationColumns,
		id, domain.ApplicationStatusAccepted,
	).StructScan(&app)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark application %s accepted: %w", id, err)
	}
	return &app, nil
}

// MarkRejected persists the rejected status with the owner's note.
func (r *ApplicationRepository) MarkRejected(ctx context.Context, id uuid.UUID, note *string) (*domain.Application, error) {
	var app domain.Application
	err := r.db.QueryRowxContext(ctx,
		`UPDATE applications
		 SET status = $2, rejected_at = NOW(), reflection_owner = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+applicationColumns,
		id, domain.ApplicationStatusRejected, note,
	).StructScan(&app)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark application %s rejected: %w", id, err)
	}
	return &app, nil
}

// ClearRejection reverts a rejected application to under_review, erasing the
// rejection timestamp and note so the record reads as never rejected.
func (r *ApplicationRepository) ClearRejection(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	err := r.db.QueryRowxContext(ctx,
		`UPDATE applications
		 SET status = $2, rejected_at = NULL, reflection_owner = NULL, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+applicationColumns,
		id, domain.ApplicationStatusUnderReview,
	).StructScan(&app)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("clear rejection on application %s: %w", id, err)
	}
	return &app, nil
}

// ScheduleInterview moves the application to interview_scheduled with the
// proposed meeting details.
func (r *ApplicationRepository) ScheduleInterview(ctx context.Context, id uuid.UUID, when time.Time, link *string) (*domain.Application, error) {
	var app domain.Application
	err := r.db.QueryRowxContext(ctx,
		`UPDATE applications
		 SET status = $2, meeting_date_time = $3, meeting_link = $4, invited_at = NOW(), updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+applicationColumns,
		id, domain.ApplicationStatusInterviewScheduled, when, link,
	).StructScan(&app)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("schedule interview on application %s: %w", id, err)
	}
	return &app, nil
}

// Reschedule overwrites the meeting details without touching the status.
func (r *ApplicationRepository) Reschedule(ctx context.Context, id uuid.UUID, when time.Time, link *string) (*domain.Application, error) {
	var app domain.Application
	err := r.db.QueryRowxContext(ctx,
		`UPDATE applications
		 SET meeting_date_time = $2, meeting_link = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+applicationColumns,
		id, when, link,
	).StructScan(&app)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reschedule interview on application %s: %w", id, err)
	}
	return &app, nil
}

// MarkWithdrawn persists the student's withdrawal.
func (r *ApplicationRepository) MarkWithdrawn(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	err := r.db.QueryRowxContext(ctx,
		`UPDATE applications SET status = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+applicationColumns,
		id, domain.ApplicationStatusWithdrawn,
	).StructScan(&app)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark application %s withdrawn: %w", id, err)
	}
	return &app, nil
}

// RejectPending bulk-rejects every still-pending application on the project
// except the excluded one, attaching the note, and returns the rejected rows
// so callers can notify the affected students.
func (r *ApplicationRepository) RejectPending(ctx context.Context, projectID, excludeID uuid.UUID, note string) ([]domain.Application, error) {
	apps := []domain.Application{}
	err := r.db.SelectContext(ctx, &apps,
		`UPDATE applications
		 SET status = $4, rejected_at = NOW(), reflection_owner = $3, updated_at = NOW()
		 WHERE project_id = $1 AND id <> $2
		   AND status IN ($5, $6, $7)
		 RETURNING `+applicationColumns,
		projectID, excludeID, note, domain.ApplicationStatusRejected,
		domain.ApplicationStatusSubmitted, domain.ApplicationStatusUnderReview, domain.ApplicationStatusInterviewScheduled)
	if err != nil {
		return nil, fmt.Errorf("bulk-reject pending applications on project %s: %w", projectID, err)
	}
	return apps, nil
}
