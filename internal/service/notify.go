package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// EmailSender is the outbound email capability. Implementations deliver a
// single message; they are free to fail, and callers here never propagate
// those failures.
type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// AcceptedNotification carries everything needed for the acceptance email.
type AcceptedNotification struct {
	StudentEmail string
	StudentName  string
	ProjectTitle string
	CompanyName  string
	OwnerMessage string
}

// RejectedNotification carries one rejection email's data.
type RejectedNotification struct {
	StudentEmail string
	StudentName  string
	ProjectTitle string
	CompanyName  string
}

// InterviewNotification carries the interview invite/reschedule email data.
type InterviewNotification struct {
	StudentEmail string
	StudentName  string
	ProjectTitle string
	CompanyName  string
	MeetingTime  time.Time
	MeetingLink  string
	OwnerMessage string
	Rescheduled  bool
}

// NotificationService formats and dispatches lifecycle emails. Every send is
// best-effort: failures are logged and swallowed so they can never fail the
// state transition that triggered them.
type NotificationService struct {
	sender EmailSender
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(sender EmailSender) *NotificationService {
	return &NotificationService{sender: sender}
}

// ApplicationAccepted emails the accepted student.
func (s *NotificationService) ApplicationAccepted(ctx context.Context, n AcceptedNotification) {
	subject := fmt.Sprintf("You've been selected for %s", n.ProjectTitle)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Congratulations! %s has accepted your application for <strong>%s</strong>.</p>`,
		n.StudentName, companyOr(n.CompanyName), n.ProjectTitle)
	if n.OwnerMessage != "" {
		body += fmt.Sprintf("<p>Message from the team: %s</p>", n.OwnerMessage)
	}
	if err := s.sender.Send(ctx, n.StudentEmail, subject, body); err != nil {
		slog.Warn("acceptance email failed", "to", n.StudentEmail, "error", err)
	}
}

// ApplicationsRejected emails every rejected student. Sends run concurrently
// and independently; one recipient's failure never prevents attempts to the
// rest. Failures are counted and logged in aggregate.
func (s *NotificationService) ApplicationsRejected(ctx context.Context, ns []RejectedNotification) {
	if len(ns) == 0 {
		return
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed int

	for _, n := range ns {
		wg.Add(1)
		go func(n RejectedNotification) {
			defer wg.Done()
			subject := fmt.Sprintf("Update on your application for %s", n.ProjectTitle)
			body := fmt.Sprintf(
				`<p>Hi %s,</p>
<p>Thank you for applying to <strong>%s</strong> at %s. Another candidate was
selected for this opportunity. We encourage you to keep browsing open
projects on the portal.</p>`,
				n.StudentName, n.ProjectTitle, companyOr(n.CompanyName))
			if err := s.sender.Send(ctx, n.StudentEmail, subject, body); err != nil {
				slog.Warn("rejection email failed", "to", n.StudentEmail, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(n)
	}
	wg.Wait()

	if failed > 0 {
		slog.Warn("rejection email fan-out finished with failures",
			"attempted", len(ns), "failed", failed)
	}
}

// InterviewScheduled emails the student the proposed interview time.
func (s *NotificationService) InterviewScheduled(ctx context.Context, n InterviewNotification) {
	verb := "invited you to an interview"
	if n.Rescheduled {
		verb = "rescheduled your interview"
	}
	subject := fmt.Sprintf("Interview for %s", n.ProjectTitle)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>%s has %s for <strong>%s</strong>.</p>
<p>Proposed time: %s</p>`,
		n.StudentName, companyOr(n.CompanyName), verb, n.ProjectTitle,
		n.MeetingTime.Format("Monday, 2 January 2006 at 15:04 MST"))
	if n.MeetingLink != "" {
		body += fmt.Sprintf(`<p>Meeting link: <a href="%s">%s</a></p>`, n.MeetingLink, n.MeetingLink)
	}
	if n.OwnerMessage != "" {
		body += fmt.Sprintf("<p>Message from the team: %s</p>", n.OwnerMessage)
	}
	if err := s.sender.Send(ctx, n.StudentEmail, subject, body); err != nil {
		slog.Warn("interview email failed", "to", n.StudentEmail, "error", err)
	}
}

func companyOr(name string) string {
	if name == "" {
		return "The project team"
	}
	return name
}
