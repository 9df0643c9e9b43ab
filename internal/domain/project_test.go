package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProject_OpenForApplications(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  ProjectStatus
		openAt  time.Time
		closeAt time.Time
		want    bool
	}{
		{"inside window", ProjectStatusOpen, now.Add(-24 * time.Hour), now.Add(24 * time.Hour), true},
		{"window closed in the past", ProjectStatusOpen, now.Add(-48 * time.Hour), now.Add(-time.Hour), false},
		{"opens within 24 hours", ProjectStatusOpen, now.Add(23 * time.Hour), now.Add(72 * time.Hour), true},
		{"opens in more than 24 hours", ProjectStatusOpen, now.Add(25 * time.Hour), now.Add(72 * time.Hour), false},
		{"opens exactly in 24 hours", ProjectStatusOpen, now.Add(24 * time.Hour), now.Add(72 * time.Hour), true},
		{"exactly at close", ProjectStatusOpen, now.Add(-24 * time.Hour), now, true},
		{"project already closed", ProjectStatusClosed, now.Add(-24 * time.Hour), now.Add(24 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project{
				Status:              tt.status,
				ApplicationsOpenAt:  tt.openAt,
				ApplicationsCloseAt: tt.closeAt,
			}
			assert.Equal(t, tt.want, p.OpenForApplications(now))
		})
	}
}

func TestApplicationStatus_Pending(t *testing.T) {
	assert.True(t, ApplicationStatusSubmitted.Pending())
	assert.True(t, ApplicationStatusUnderReview.Pending())
	assert.True(t, ApplicationStatusInterviewScheduled.Pending())
	assert.False(t, ApplicationStatusAccepted.Pending())
	assert.False(t, ApplicationStatusRejected.Pending())
	assert.False(t, ApplicationStatusWithdrawn.Pending())
}
