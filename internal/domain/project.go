package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ProjectStatus represents the lifecycle state of a posted project.
type ProjectStatus string

const (
	ProjectStatusOpen   ProjectStatus = "open"
	ProjectStatusClosed ProjectStatus = "closed"
)

// CompensationType classifies how a project compensates the student.
type CompensationType string

const (
	CompensationPaid    CompensationType = "paid"
	CompensationStipend CompensationType = "stipend"
	CompensationUnpaid  CompensationType = "unpaid"
)

// earlyApplyWindow lets students apply to projects whose window has not
// quite opened yet.
const earlyApplyWindow = 24 * time.Hour

// Project is a short-term opportunity posted by a business owner.
type Project struct {
	ID                   uuid.UUID        `json:"id" db:"id"`
	OwnerID              uuid.UUID        `json:"owner_id" db:"owner_id"`
	Title                string           `json:"title" db:"title"`
	Description          string           `json:"description" db:"description"`
	IndustryTags         pq.StringArray   `json:"industry_tags" db:"industry_tags"`
	Skills               pq.StringArray   `json:"skills" db:"skills"`
	CompensationType     CompensationType `json:"compensation_type" db:"compensation_type"`
	CompensationNote     *string          `json:"compensation_note,omitempty" db:"compensation_note"`
	DurationWeeks        int              `json:"duration_weeks" db:"duration_weeks"`
	Status               ProjectStatus    `json:"status" db:"status"`
	ApplicationsOpenAt   time.Time        `json:"applications_open_at" db:"applications_open_at"`
	ApplicationsCloseAt  time.Time        `json:"applications_close_at" db:"applications_close_at"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`
}

// OpenForApplications reports whether a student may submit an application at
// the given instant. The window is [ApplicationsOpenAt, ApplicationsCloseAt],
// with an allowance for windows opening within the next 24 hours.
func (p Project) OpenForApplications(now time.Time) bool {
	if p.Status != ProjectStatusOpen {
		return false
	}
	if now.After(p.ApplicationsCloseAt) {
		return false
	}
	if !now.Before(p.ApplicationsOpenAt) {
		return true
	}
	return p.ApplicationsOpenAt.Sub(now) <= earlyApplyWindow
}

// Opportunity is a project enriched with the posting company's display data
// for public listings.
type Opportunity struct {
	Project
	CompanyName    *string `json:"company_name,omitempty" db:"company_name"`
	CompanyLogoURL *string `json:"company_logo_url,omitempty" db:"company_logo_url"`
}
