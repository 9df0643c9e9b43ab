package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g1000/portal/internal/domain"
)

// fakeStore is an in-memory implementation of the lifecycle manager's store
// interfaces.
type fakeStore struct {
	apps     map[uuid.UUID]*domain.Application
	projects map[uuid.UUID]*domain.Project
	users    map[uuid.UUID]*domain.User
	owners   map[uuid.UUID]*domain.BusinessOwnerProfile
	students map[uuid.UUID]*domain.StudentProfile
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		apps:     map[uuid.UUID]*domain.Application{},
		projects: map[uuid.UUID]*domain.Project{},
		users:    map[uuid.UUID]*domain.User{},
		owners:   map[uuid.UUID]*domain.BusinessOwnerProfile{},
		students: map[uuid.UUID]*domain.StudentProfile{},
	}
}

func (f *fakeStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *app
	return &copied, nil
}

func (f *fakeStore) FindActiveByProjectAndStudent(_ context.Context, projectID, studentID uuid.UUID) (*domain.Application, error) {
	for _, app := range f.apps {
		if app.ProjectID == projectID && app.StudentID == studentID && app.Status != domain.ApplicationStatusWithdrawn {
			copied := *app
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) Create(_ context.Context, projectID, studentID uuid.UUID, coverNote string) (*domain.Application, error) {
	app := &domain.Application{
		ID:          uuid.New(),
		ProjectID:   projectID,
		StudentID:   studentID,
		Status:      domain.ApplicationStatusSubmitted,
		CoverNote:   coverNote,
		SubmittedAt: time.Now(),
	}
	f.apps[app.ID] = app
	copied := *app
	return &copied, nil
}

func (f *fakeStore) MarkAccepted(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	app.Status = domain.ApplicationStatusAccepted
	copied := *app
	return &copied, nil
}

func (f *fakeStore) MarkRejected(_ context.Context, id uuid.UUID, note *string) (*domain.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	app.Status = domain.ApplicationStatusRejected
	app.RejectedAt = &now
	app.ReflectionOwner = note
	copied := *app
	return &copied, nil
}

func (f *fakeStore) ClearRejection(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	app.Status = domain.ApplicationStatusUnderReview
	app.RejectedAt = nil
	app.ReflectionOwner = nil
	copied := *app
	return &copied, nil
}

func (f *fakeStore) ScheduleInterview(_ context.Context, id uuid.UUID, when time.Time, link *string) (*domain.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	app.Status = domain.ApplicationStatusInterviewScheduled
	app.MeetingDateTime = &when
	app.MeetingLink = link
	app.InvitedAt = &now
	copied := *app
	return &copied, nil
}

func (f *fakeStore) Reschedule(_ context.Context, id uuid.UUID, when time.Time, link *string) (*domain.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	app.MeetingDateTime = &when
	app.MeetingLink = link
	copied := *app
	return &copied, nil
}

func (f *fakeStore) MarkWithdrawn(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	app.Status = domain.ApplicationStatusWithdrawn
	copied := *app
	return &copied, nil
}

func (f *fakeStore) RejectPending(_ context.Context, projectID, excludeID uuid.UUID, note string) ([]domain.Application, error) {
	rejected := []domain.Application{}
	for _, app := range f.apps {
		if app.ProjectID != projectID || app.ID == excludeID || !app.Status.Pending() {
			continue
		}
		now := time.Now()
		app.Status = domain.ApplicationStatusRejected
		app.RejectedAt = &now
		app.ReflectionOwner = &note
		rejected = append(rejected, *app)
	}
	return rejected, nil
}

type fakeProjects struct {
	store *fakeStore
}

func (f fakeProjects) FindByID(_ context.Context, id uuid.UUID) (*domain.Project, error) {
	project, ok := f.store.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *project
	return &copied, nil
}

func (f fakeProjects) Close(_ context.Context, id uuid.UUID) (bool, error) {
	project, ok := f.store.projects[id]
	if !ok {
		return false, nil
	}
	if project.Status != domain.ProjectStatusOpen {
		return false, nil
	}
	project.Status = domain.ProjectStatusClosed
	return true, nil
}

type fakeUsers struct {
	store *fakeStore
}

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := f.store.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

type fakeProfiles struct {
	store *fakeStore
}

func (f fakeProfiles) OwnerProfile(_ context.Context, userID uuid.UUID) (*domain.BusinessOwnerProfile, error) {
	profile, ok := f.store.owners[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

func (f fakeProfiles) StudentProfile(_ context.Context, userID uuid.UUID) (*domain.StudentProfile, error) {
	profile, ok := f.store.students[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

// recordingNotifier captures dispatched notifications.
type recordingNotifier struct {
	accepted  []AcceptedNotification
	rejected  []RejectedNotification
	interview []InterviewNotification
}

func (n *recordingNotifier) ApplicationAccepted(_ context.Context, notification AcceptedNotification) {
	n.accepted = append(n.accepted, notification)
}

func (n *recordingNotifier) ApplicationsRejected(_ context.Context, notifications []RejectedNotification) {
	n.rejected = append(n.rejected, notifications...)
}

func (n *recordingNotifier) InterviewScheduled(_ context.Context, notification InterviewNotification) {
	n.interview = append(n.interview, notification)
}

type fixture struct {
	svc      *LifecycleService
	store    *fakeStore
	notifier *recordingNotifier
	ownerID  uuid.UUID
	project  *domain.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeStore()
	notifier := &recordingNotifier{}
	svc := NewLifecycleService(store, fakeProjects{store}, fakeUsers{store}, fakeProfiles{store}, notifier)

	ownerID := uuid.New()
	store.users[ownerID] = &domain.User{ID: ownerID, Role: domain.RoleOwner, Email: "owner@acme.test", DisplayName: "Owner"}
	store.owners[ownerID] = &domain.BusinessOwnerProfile{UserID: ownerID, CompanyName: "Acme Robotics", ContactEmail: "jobs@acme.test"}

	project := &domain.Project{
		ID:                  uuid.New(),
		OwnerID:             ownerID,
		Title:               "Inventory dashboard",
		Status:              domain.ProjectStatusOpen,
		ApplicationsOpenAt:  time.Now().Add(-24 * time.Hour),
		ApplicationsCloseAt: time.Now().Add(7 * 24 * time.Hour),
	}
	store.projects[project.ID] = project

	return &fixture{svc: svc, store: store, notifier: notifier, ownerID: ownerID, project: project}
}

func (f *fixture) addApplication(t *testing.T, status domain.ApplicationStatus) *domain.Application {
	t.Helper()
	studentID := uuid.New()
	f.store.users[studentID] = &domain.User{
		ID:          studentID,
		Role:        domain.RoleStudent,
		Email:       studentID.String() + "@student.test",
		DisplayName: "Student " + studentID.String()[:8],
	}
	app := &domain.Application{
		ID:          uuid.New(),
		ProjectID:   f.project.ID,
		StudentID:   studentID,
		Status:      status,
		CoverNote:   strings.Repeat("x", 60),
		SubmittedAt: time.Now(),
	}
	f.store.apps[app.ID] = app
	return app
}

func TestAccept_BulkRejectsCompetitorsAndClosesProject(t *testing.T) {
	f := newFixture(t)
	x := f.addApplication(t, domain.ApplicationStatusSubmitted)
	y := f.addApplication(t, domain.ApplicationStatusUnderReview)
	z := f.addApplication(t, domain.ApplicationStatusInterviewScheduled)

	accepted, err := f.svc.Accept(context.Background(), f.project.ID, y.ID, f.ownerID, "welcome aboard")
	require.NoError(t, err)

	assert.Equal(t, domain.ApplicationStatusAccepted, accepted.Status)
	assert.Equal(t, domain.ApplicationStatusAccepted, f.store.apps[y.ID].Status)
	assert.Equal(t, domain.ProjectStatusClosed, f.store.projects[f.project.ID].Status)

	for _, competitor := range []*domain.Application{x, z} {
		got := f.store.apps[competitor.ID]
		assert.Equal(t, domain.ApplicationStatusRejected, got.Status)
		require.NotNil(t, got.ReflectionOwner)
		assert.Equal(t, domain.BulkRejectionNote, *got.ReflectionOwner)
		assert.NotNil(t, got.RejectedAt)
	}

	require.Len(t, f.notifier.accepted, 1)
	assert.Equal(t, "Acme Robotics", f.notifier.accepted[0].CompanyName)
	assert.Equal(t, "welcome aboard", f.notifier.accepted[0].OwnerMessage)
	assert.Len(t, f.notifier.rejected, 2)
}

func TestAccept_LeavesTerminalApplicationsAlone(t *testing.T) {
	f := newFixture(t)
	target := f.addApplication(t, domain.ApplicationStatusSubmitted)
	withdrawn := f.addApplication(t, domain.ApplicationStatusWithdrawn)
	rejected := f.addApplication(t, domain.ApplicationStatusRejected)

	_, err := f.svc.Accept(context.Background(), f.project.ID, target.ID, f.ownerID, "")
	require.NoError(t, err)

	assert.Equal(t, domain.ApplicationStatusWithdrawn, f.store.apps[withdrawn.ID].Status)
	assert.Equal(t, domain.ApplicationStatusRejected, f.store.apps[rejected.ID].Status)
	assert.Nil(t, f.store.apps[withdrawn.ID].ReflectionOwner)
}

func TestAccept_ProjectAlreadyClosedIsConflict(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(t, domain.ApplicationStatusSubmitted)
	f.store.projects[f.project.ID].Status = domain.ProjectStatusClosed

	_, err := f.svc.Accept(context.Background(), f.project.ID, app.ID, f.ownerID, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.ApplicationStatusSubmitted, f.store.apps[app.ID].Status)
}

func TestAccept_AlreadyAcceptedIsConflict(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(t, domain.ApplicationStatusAccepted)

	_, err := f.svc.Accept(context.Background(), f.project.ID, app.ID, f.ownerID, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAccept_WrongOwnerIsForbidden(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(t, domain.ApplicationStatusSubmitted)

	_, err := f.svc.Accept(context.Background(), f.project.ID, app.ID, uuid.New(), "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAccept_ApplicationOnOtherProjectIsNotFound(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(t, domain.ApplicationStatusSubmitted)
	app.ProjectID = uuid.New()

	_, err := f.svc.Accept(context.Background(), f.project.ID, app.ID, f.ownerID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccept_MissingOwnerProfileSendsWithFallbackCompany(t *testing.T) {
	f := newFixture(t)
	delete(f.store.owners, f.ownerID)
	app := f.addApplication(t, domain.ApplicationStatusSubmitted)

	_, err := f.svc.Accept(context.Background(), f.project.ID, app.ID, f.ownerID, "")
	require.NoError(t, err)
	require.Len(t, f.notifier.accepted, 1)
	assert.Empty(t, f.notifier.accepted[0].CompanyName)
}

func TestReject_AllowedFromPendingOnly(t *testing.T) {
	f := newFixture(t)
	reason := "Not the right fit"

	for _, status := range []domain.ApplicationStatus{
		domain.ApplicationStatusSubmitted,
		domain.ApplicationStatusUnderReview,
		domain.ApplicationStatusInterviewScheduled,
	} {
		app := f.addApplication(t, status)
		updated, err := f.svc.Reject(context.Background(), f.project.ID, app.ID, f.ownerID, &reason)
		require.NoError(t, err, "status %s", status)
		assert.Equal(t, domain.ApplicationStatusRejected, updated.Status)
		require.NotNil(t, updated.ReflectionOwner)
		assert.Equal(t, reason, *updated.ReflectionOwner)
		assert.NotNil(t, updated.RejectedAt)
	}

	for _, status := range []domain.ApplicationStatus{
		domain.ApplicationStatusAccepted,
		domain.ApplicationStatusWithdrawn,
		domain.ApplicationStatusRejected,
	} {
		app := f.addApplication(t, status)
		_, err := f.svc.Reject(context.Background(), f.project.ID, app.ID, f.ownerID, &reason)
		assert.ErrorIs(t, err, domain.ErrInvalidState, "status %s", status)
		assert.Equal(t, status, f.store.apps[app.ID].Status)
	}
}

func TestUndoReject_RestoresUnderReviewAndClearsFields(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(t, domain.ApplicationStatusSubmitted)
	reason := "changed our mind"
	_, err := f.svc.Reject(context.Background(), f.project.ID, app.ID, f.ownerID, &reason)
	require.NoError(t, err)

	restored, err := f.svc.UndoReject(context.Background(), f.project.ID, app.ID, f.ownerID)
	require.NoError(t, err)

	assert.Equal(t, domain.ApplicationStatusUnderReview, restored.Status)
	assert.Nil(t, restored.RejectedAt)
	assert.Nil(t, restored.ReflectionOwner)
}

func TestUndoReject_OnlyFromRejected(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(t, domain.ApplicationStatusSubmitted)

	_, err := f.svc.UndoReject(context.Background(), f.project.ID, app.ID, f.ownerID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestInviteToInterview_SchedulesAndWarnsOutsideAvailability(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(t, domain.ApplicationStatusSubmitted)
	f.store.students[app.StudentID] = &domain.StudentProfile{
		UserID: app.StudentID,
		Availability: domain.Availability{Slots: []domain.AvailabilitySlot{
			{Day: "Tuesday", StartTime: "09:00", EndTime: "17:00"},
		}},
	}

	// A Monday, outside the declared Tuesday window.
	when := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	link := "https://meet.example/abc"

	updated, warning, err := f.svc.InviteToInterview(context.Background(),
		f.project.ID, app.ID, f.ownerID, when, &link, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ApplicationStatusInterviewScheduled, updated.Status)
	require.NotNil(t, updated.MeetingDateTime)
	assert.True(t, updated.MeetingDateTime.Equal(when))
	assert.NotNil(t, updated.InvitedAt)
	require.NotNil(t, warning)
	assert.Contains(t, *warning, "Monday")

	require.Len(t, f.notifier.interview, 1)
	assert.False(t, f.notifier.interview[0].Rescheduled)
}

func TestInviteToInterview_WithinAvailabilityHasNoWarning(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(t, domain.ApplicationStatusUnderReview)
	f.store.students[app.StudentID] = &domain.StudentProfile{
		UserID: app.StudentID,
		Availability: domain.Availability{Slots: []domain.AvailabilitySlot{
			{Day: "Monday", StartTime: "09:00", EndTime: "17:00"},
		}},
	}

	when := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	_, warning, err := f.svc.InviteToInterview(context.Background(),
		f.project.ID, app.ID, f.ownerID, when, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, warning)
}

func TestInviteToInterview_InvalidFromScheduled(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(t, domain.ApplicationStatusInterviewScheduled)

	_, _, err := f.svc.InviteToInterview(context.Background(),
		f.project.ID, app.ID, f.ownerID, time.Now(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRescheduleInterview_KeepsStatus(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(t, domain.ApplicationStatusInterviewScheduled)

	when := time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC)
	updated, _, err := f.svc.RescheduleInterview(context.Background(),
		f.project.ID, app.ID, f.ownerID, when, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ApplicationStatusInterviewScheduled, updated.Status)
	require.NotNil(t, updated.MeetingDateTime)
	assert.True(t, updated.MeetingDateTime.Equal(when))

	require.Len(t, f.notifier.interview, 1)
	assert.True(t, f.notifier.interview[0].Rescheduled)
}

func TestRescheduleInterview_OnlyFromScheduled(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(t, domain.ApplicationStatusSubmitted)

	_, _, err := f.svc.RescheduleInterview(context.Background(),
		f.project.ID, app.ID, f.ownerID, time.Now(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	app := f.addApplication(t, domain.ApplicationStatusSubmitted)

	updated, err := f.svc.Withdraw(context.Background(), app.ID, app.StudentID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusWithdrawn, updated.Status)

	// A second withdrawal is refused and nothing changes.
	_, err = f.svc.Withdraw(context.Background(), app.ID, app.StudentID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// Only the owning student may withdraw.
	other := f.addApplication(t, domain.ApplicationStatusSubmitted)
	_, err = f.svc.Withdraw(context.Background(), other.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSubmit_CoverNoteBoundary(t *testing.T) {
	f := newFixture(t)
	studentID := uuid.New()

	_, err := f.svc.Submit(context.Background(), f.project.ID, studentID, strings.Repeat("a", 49))
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "cover_note", validationErr.Field)

	app, err := f.svc.Submit(context.Background(), f.project.ID, studentID, strings.Repeat("a", 50))
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusSubmitted, app.Status)
	assert.False(t, app.SubmittedAt.IsZero())
}

func TestSubmit_WindowClosed(t *testing.T) {
	f := newFixture(t)
	f.store.projects[f.project.ID].ApplicationsCloseAt = time.Now().Add(-time.Hour)

	_, err := f.svc.Submit(context.Background(), f.project.ID, uuid.New(), strings.Repeat("a", 60))
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestSubmit_DuplicateActiveApplicationIsConflict(t *testing.T) {
	f := newFixture(t)
	studentID := uuid.New()

	_, err := f.svc.Submit(context.Background(), f.project.ID, studentID, strings.Repeat("a", 60))
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), f.project.ID, studentID, strings.Repeat("a", 60))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSubmit_AllowedAfterWithdrawal(t *testing.T) {
	f := newFixture(t)
	studentID := uuid.New()

	first, err := f.svc.Submit(context.Background(), f.project.ID, studentID, strings.Repeat("a", 60))
	require.NoError(t, err)
	_, err = f.svc.Withdraw(context.Background(), first.ID, studentID)
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), f.project.ID, studentID, strings.Repeat("a", 60))
	assert.NoError(t, err)
}
