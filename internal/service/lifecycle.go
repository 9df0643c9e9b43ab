package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/g1000/portal/internal/domain"
)

// ApplicationStore defines the application data access consumed by the
// lifecycle manager.
type ApplicationStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	FindActiveByProjectAndStudent(ctx context.Context, projectID, studentID uuid.UUID) (*domain.Application, error)
	Create(ctx context.Context, projectID, studentID uuid.UUID, coverNote string) (*domain.Application, error)
	MarkAccepted(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	MarkRejected(ctx context.Context, id uuid.UUID, note *string) (*domain.Application, error)
	ClearRejection(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	ScheduleInterview(ctx context.Context, id uuid.UUID, when time.Time, link *string) (*domain.Application, error)
	Reschedule(ctx context.Context, id uuid.UUID, when time.Time, link *string) (*domain.Application, error)
	MarkWithdrawn(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	RejectPending(ctx context.Context, projectID, excludeID uuid.UUID, note string) ([]domain.Application, error)
}

// ProjectStore defines the project data access consumed by the lifecycle
// manager. Close is a compare-and-swap: it reports false when the project
// was not open.
type ProjectStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	Close(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserDirectory resolves users for notification addressing.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// ProfileStore resolves company and student profiles.
type ProfileStore interface {
	OwnerProfile(ctx context.Context, userID uuid.UUID) (*domain.BusinessOwnerProfile, error)
	StudentProfile(ctx context.Context, userID uuid.UUID) (*domain.StudentProfile, error)
}

// Notifier dispatches lifecycle emails. Implementations must swallow
// delivery failures; none of these calls may fail the primary operation.
type Notifier interface {
	ApplicationAccepted(ctx context.Context, n AcceptedNotification)
	ApplicationsRejected(ctx context.Context, ns []RejectedNotification)
	InterviewScheduled(ctx context.Context, n InterviewNotification)
}

// LifecycleService owns the state transitions of an application and the
// compensating side effects around acceptance. Only the primary status write
// may fail an operation; project closure races surface as conflicts, and
// everything downstream of the primary write is best-effort.
type LifecycleService struct {
	apps     ApplicationStore
	projects ProjectStore
	users    UserDirectory
	profiles ProfileStore
	notifier Notifier
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(apps ApplicationStore, projects ProjectStore, users UserDirectory, profiles ProfileStore, notifier Notifier) *LifecycleService {
	return &LifecycleService{
		apps:     apps,
		projects: projects,
		users:    users,
		profiles: profiles,
		notifier: notifier,
	}
}

// loadOwned fetches the application and its parent project and verifies that
// the application belongs to the stated project and the project to the
// caller.
func (s *LifecycleService) loadOwned(ctx context.Context, projectID, appID, ownerID uuid.UUID) (*domain.Application, *domain.Project, error) {
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, nil, err
	}
	if app.ProjectID != projectID {
		return nil, nil, domain.ErrNotFound
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if project.OwnerID != ownerID {
		return nil, nil, domain.ErrForbidden
	}
	return app, project, nil
}

// Accept selects one application for the project. The project closure is the
// gate: it is a compare-and-swap on open -> closed, so of two concurrent
// Accepts on the same project exactly one proceeds and the other gets
// ErrConflict. After the winner's own status write, the bulk rejection of
// competitors and all emails are best-effort.
func (s *LifecycleService) Accept(ctx context.Context, projectID, appID, ownerID uuid.UUID, message string) (*domain.Application, error) {
	app, project, err := s.loadOwned(ctx, projectID, appID, ownerID)
	if err != nil {
		return nil, err
	}
	if !app.Status.Pending() {
		if app.Status == domain.ApplicationStatusAccepted {
			return nil, fmt.Errorf("%w: application already accepted", domain.ErrConflict)
		}
		return nil, fmt.Errorf("%w: cannot accept an application in status %q", domain.ErrInvalidState, app.Status)
	}

	closed, err := s.projects.Close(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("close project: %w", err)
	}
	if !closed {
		return nil, fmt.Errorf("%w: project is already closed", domain.ErrConflict)
	}

	accepted, err := s.apps.MarkAccepted(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("persist acceptance: %w", err)
	}

	rejected, err := s.apps.RejectPending(ctx, projectID, appID, domain.BulkRejectionNote)
	if err != nil {
		slog.Warn("bulk rejection of competing applications failed",
			"project_id", projectID, "error", err)
		rejected = nil
	}

	companyName := s.companyName(ctx, ownerID)

	if student, err := s.users.FindByID(ctx, accepted.StudentID); err == nil && student.Email != "" {
		s.notifier.ApplicationAccepted(ctx, AcceptedNotification{
			StudentEmail: student.Email,
			StudentName:  student.DisplayName,
			ProjectTitle: project.Title,
			CompanyName:  companyName,
			OwnerMessage: message,
		})
	} else if err != nil {
		slog.Warn("skipping acceptance email, student unresolved",
			"student_id", accepted.StudentID, "error", err)
	}

	notifications := make([]RejectedNotification, 0, len(rejected))
	for _, r := range rejected {
		student, err := s.users.FindByID(ctx, r.StudentID)
		if err != nil || student.Email == "" {
			slog.Warn("skipping rejection email, student unresolved", "student_id", r.StudentID)
			continue
		}
		notifications = append(notifications, RejectedNotification{
			StudentEmail: student.Email,
			StudentName:  student.DisplayName,
			ProjectTitle: project.Title,
			CompanyName:  companyName,
		})
	}
	s.notifier.ApplicationsRejected(ctx, notifications)

	return accepted, nil
}

// Reject moves a still-pending application to rejected with an optional
// note. No cascading effects.
func (s *LifecycleService) Reject(ctx context.Context, projectID, appID, ownerID uuid.UUID, reason *string) (*domain.Application, error) {
	app, _, err := s.loadOwned(ctx, projectID, appID, ownerID)
	if err != nil {
		return nil, err
	}
	if !app.CanReject() {
		return nil, fmt.Errorf("%w: cannot reject an application in status %q", domain.ErrInvalidState, app.Status)
	}
	return s.apps.MarkRejected(ctx, appID, reason)
}

// UndoReject reverts a rejected application to under_review, clearing the
// rejection timestamp and note so downstream display logic cannot tell it
// was ever rejected.
func (s *LifecycleService) UndoReject(ctx context.Context, projectID, appID, ownerID uuid.UUID) (*domain.Application, error) {
	app, _, err := s.loadOwned(ctx, projectID, appID, ownerID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.ApplicationStatusRejected {
		return nil, fmt.Errorf("%w: cannot undo rejection on status %q", domain.ErrInvalidState, app.Status)
	}
	return s.apps.ClearRejection(ctx, appID)
}

// InviteToInterview schedules an interview for a submitted or under-review
// application. The returned warning, when non-nil, explains why the proposed
// time falls outside the student's declared availability; it never blocks
// the transition.
func (s *LifecycleService) InviteToInterview(ctx context.Context, projectID, appID, ownerID uuid.UUID, when time.Time, link, message *string) (*domain.Application, *string, error) {
	app, project, err := s.loadOwned(ctx, projectID, appID, ownerID)
	if err != nil {
		return nil, nil, err
	}
	if !app.CanInvite() {
		return nil, nil, fmt.Errorf("%w: cannot invite an application in status %q", domain.ErrInvalidState, app.Status)
	}

	updated, err := s.apps.ScheduleInterview(ctx, appID, when, link)
	if err != nil {
		return nil, nil, fmt.Errorf("schedule interview: %w", err)
	}

	warning := s.availabilityWarning(ctx, app.StudentID, when)
	s.notifyInterview(ctx, updated, project, ownerID, message, false)
	return updated, warning, nil
}

// RescheduleInterview overwrites the meeting details of an already scheduled
// interview. Status is unchanged.
func (s *LifecycleService) RescheduleInterview(ctx context.Context, projectID, appID, ownerID uuid.UUID, when time.Time, link, message *string) (*domain.Application, *string, error) {
	app, project, err := s.loadOwned(ctx, projectID, appID, ownerID)
	if err != nil {
		return nil, nil, err
	}
	if app.Status != domain.ApplicationStatusInterviewScheduled {
		return nil, nil, fmt.Errorf("%w: cannot reschedule an application in status %q", domain.ErrInvalidState, app.Status)
	}

	updated, err := s.apps.Reschedule(ctx, appID, when, link)
	if err != nil {
		return nil, nil, fmt.Errorf("reschedule interview: %w", err)
	}

	warning := s.availabilityWarning(ctx, app.StudentID, when)
	s.notifyInterview(ctx, updated, project, ownerID, message, true)
	return updated, warning, nil
}

// Withdraw lets the owning student pull an application out of contention. A
// second withdrawal is refused without touching the record.
func (s *LifecycleService) Withdraw(ctx context.Context, appID, studentID uuid.UUID) (*domain.Application, error) {
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.StudentID != studentID {
		return nil, domain.ErrForbidden
	}
	if app.Status == domain.ApplicationStatusWithdrawn {
		return nil, fmt.Errorf("%w: application already withdrawn", domain.ErrInvalidState)
	}
	return s.apps.MarkWithdrawn(ctx, appID)
}

// Submit creates a new application on an open project. The cover note must
// be at least MinCoverNoteLen characters, the application window must be
// open, and the student may not hold another non-withdrawn application on
// the same project.
func (s *LifecycleService) Submit(ctx context.Context, projectID, studentID uuid.UUID, coverNote string) (*domain.Application, error) {
	if utf8.RuneCountInString(coverNote) < domain.MinCoverNoteLen {
		return nil, &domain.ValidationError{
			Field:   "cover_note",
			Message: fmt.Sprintf("must be at least %d characters", domain.MinCoverNoteLen),
		}
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.OpenForApplications(time.Now()) {
		return nil, fmt.Errorf("%w: project is not open for applications", domain.ErrInvalidState)
	}

	existing, err := s.apps.FindActiveByProjectAndStudent(ctx, projectID, studentID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: an application for this project already exists", domain.ErrConflict)
	}

	return s.apps.Create(ctx, projectID, studentID, coverNote)
}

// companyName resolves the owner's company display name, empty when the
// profile is missing.
func (s *LifecycleService) companyName(ctx context.Context, ownerID uuid.UUID) string {
	profile, err := s.profiles.OwnerProfile(ctx, ownerID)
	if err != nil {
		return ""
	}
	return profile.CompanyName
}

// availabilityWarning runs the advisory overlap check against the student's
// declared availability. Returns nil when the time fits or when no profile
// exists.
func (s *LifecycleService) availabilityWarning(ctx context.Context, studentID uuid.UUID, when time.Time) *string {
	profile, err := s.profiles.StudentProfile(ctx, studentID)
	if err != nil {
		return nil
	}
	ok, explanation := domain.CheckAvailability(when, profile.Availability)
	if ok {
		return nil
	}
	return &explanation
}

func (s *LifecycleService) notifyInterview(ctx context.Context, app *domain.Application, project *domain.Project, ownerID uuid.UUID, message *string, rescheduled bool) {
	student, err := s.users.FindByID(ctx, app.StudentID)
	if err != nil || student.Email == "" {
		slog.Warn("skipping interview email, student unresolved", "student_id", app.StudentID)
		return
	}

	n := InterviewNotification{
		StudentEmail: student.Email,
		StudentName:  student.DisplayName,
		ProjectTitle: project.Title,
		CompanyName:  s.companyName(ctx, ownerID),
		Rescheduled:  rescheduled,
	}
	if app.MeetingDateTime != nil {
		n.MeetingTime = *app.MeetingDateTime
	}
	if app.MeetingLink != nil {
		n.MeetingLink = *app.MeetingLink
	}
	if message != nil {
		n.OwnerMessage = *message
	}
	s.notifier.InterviewScheduled(ctx, n)
}
