package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus represents the lifecycle state of an application.
type ApplicationStatus string

const (
	ApplicationStatusSubmitted          ApplicationStatus = "submitted"
	ApplicationStatusUnderReview        ApplicationStatus = "under_review"
	ApplicationStatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	ApplicationStatusAccepted           ApplicationStatus = "accepted"
	ApplicationStatusRejected           ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn          ApplicationStatus = "withdrawn"
)

// MinCoverNoteLen is the minimum cover note length accepted at submission.
const MinCoverNoteLen = 50

// BulkRejectionNote is attached to applications rejected as a side effect of
// accepting a competitor on the same project.
const BulkRejectionNote = "Another candidate was selected for this opportunity."

// Pending reports whether the status is still in play: the owner has neither
// accepted nor rejected it, and the student has not withdrawn.
func (s ApplicationStatus) Pending() bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusUnderReview, ApplicationStatusInterviewScheduled:
		return true
	}
	return false
}

// Application is a student's submission against exactly one project.
type Application struct {
	ID              uuid.UUID         `json:"id" db:"id"`
	ProjectID       uuid.UUID         `json:"project_id" db:"project_id"`
	StudentID       uuid.UUID         `json:"student_id" db:"student_id"`
	Status          ApplicationStatus `json:"status" db:"status"`
	CoverNote       string            `json:"cover_note" db:"cover_note"`
	ReflectionOwner *string           `json:"reflection_owner,omitempty" db:"reflection_owner"`
	MeetingDateTime *time.Time        `json:"meeting_date_time,omitempty" db:"meeting_date_time"`
	MeetingLink     *string           `json:"meeting_link,omitempty" db:"meeting_link"`
	SubmittedAt     time.Time         `json:"submitted_at" db:"submitted_at"`
	InvitedAt       *time.Time        `json:"invited_at,omitempty" db:"invited_at"`
	RejectedAt      *time.Time        `json:"rejected_at,omitempty" db:"rejected_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// CanInvite reports whether the application may move to interview_scheduled.
func (a Application) CanInvite() bool {
	return a.Status == ApplicationStatusSubmitted || a.Status == ApplicationStatusUnderReview
}

// CanReject reports whether the application may move to rejected.
func (a Application) CanReject() bool {
	return a.Status.Pending()
}
