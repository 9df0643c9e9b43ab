package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// flakySender fails for the addresses in failFor and records every attempt.
type flakySender struct {
	mu       sync.Mutex
	failFor  map[string]bool
	attempts []string
}

func (s *flakySender) Send(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, to)
	if s.failFor[to] {
		return errors.New("smtp: connection refused")
	}
	return nil
}

func TestApplicationsRejected_OneFailureDoesNotStopTheRest(t *testing.T) {
	sender := &flakySender{failFor: map[string]bool{"b@student.test": true}}
	svc := NewNotificationService(sender)

	svc.ApplicationsRejected(context.Background(), []RejectedNotification{
		{StudentEmail: "a@student.test", StudentName: "A", ProjectTitle: "P"},
		{StudentEmail: "b@student.test", StudentName: "B", ProjectTitle: "P"},
		{StudentEmail: "c@student.test", StudentName: "C", ProjectTitle: "P"},
	})

	assert.ElementsMatch(t, []string{"a@student.test", "b@student.test", "c@student.test"}, sender.attempts)
}

func TestApplicationAccepted_SendFailureIsSwallowed(t *testing.T) {
	sender := &flakySender{failFor: map[string]bool{"x@student.test": true}}
	svc := NewNotificationService(sender)

	// Must not panic or propagate anything.
	svc.ApplicationAccepted(context.Background(), AcceptedNotification{
		StudentEmail: "x@student.test",
		StudentName:  "X",
		ProjectTitle: "P",
	})
	assert.Len(t, sender.attempts, 1)
}

func TestInterviewScheduled_IncludesProposedTime(t *testing.T) {
	captured := &capturingSender{}
	svc := NewNotificationService(captured)

	when := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc.InterviewScheduled(context.Background(), InterviewNotification{
		StudentEmail: "s@student.test",
		StudentName:  "S",
		ProjectTitle: "P",
		MeetingTime:  when,
		MeetingLink:  "https://meet.example/xyz",
	})

	assert.Contains(t, captured.html, "Monday, 2 March 2026")
	assert.Contains(t, captured.html, "https://meet.example/xyz")
}

type capturingSender struct {
	html string
}

func (s *capturingSender) Send(_ context.Context, _, _, html string) error {
	s.html = html
	return nil
}
