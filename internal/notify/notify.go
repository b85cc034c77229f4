// Package notify renders and dispatches lifecycle notifications.
//
// Notifications are best effort: callers dispatch after their transaction
// commits and failures are logged, never returned to the end user.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iqueue/staffing/internal/models"
	"github.com/iqueue/staffing/pkg/logger"
)

// Message is a single rendered notification.
type Message struct {
	To      string
	Subject string
	Body    string
	// Key identifies the transition that produced the message, usually the
	// id of its audit event. Distinct transitions never share a key.
	Key string
}

// Notifier dispatches messages.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// Nop discards every message.
type Nop struct{}

func (Nop) Notify(context.Context, Message) error { return nil }

// LogSender writes messages to the log instead of delivering them. The
// worker uses it when SMTP is not configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, body string) error {
	logger.L().Info("notification (mail disabled)", zap.String("to", to), zap.String("subject", subject))
	return nil
}

const signature = "From,\nYour trusty pals at iQueue"

func shiftDate(s models.Shift) string { return s.Day().Format("2006-01-02") }

// ShiftRequested renders the pickup notice sent to both the poster and the requester.
func ShiftRequested(s models.Shift, poster, requester models.User) []Message {
	subject := fmt.Sprintf("Your %s shift has been picked up!!", shiftDate(s))
	body := fmt.Sprintf(
		"Your posted shift for %s at %s in the %s area has been picked by: %s\n"+
			"Please navigate to the application to approve or deny %s's request!\n\n%s",
		shiftDate(s), s.Location, s.Area, requester.Name, requester.Name, signature)
	out := []Message{{To: poster.Email, Subject: subject, Body: body}}
	if requester.Email != "" && requester.Email != poster.Email {
		out = append(out, Message{To: requester.Email, Subject: subject, Body: body})
	}
	return out
}

// RequestApproved renders the notice sent to the requester on approval.
func RequestApproved(s models.Shift, requester models.User) Message {
	return Message{
		To:      requester.Email,
		Subject: fmt.Sprintf("Your %s shift request was approved", shiftDate(s)),
		Body: fmt.Sprintf("Hi %s,\nYour request for the %s %s-%s shift at %s in the %s area has been approved.\n\n%s",
			requester.Name, shiftDate(s), s.StartTime, s.EndTime, s.Location, s.Area, signature),
	}
}

// RequestDenied renders the notice sent to the former requester on denial.
func RequestDenied(s models.Shift, requester models.User) Message {
	return Message{
		To:      requester.Email,
		Subject: fmt.Sprintf("Your %s shift request was denied", shiftDate(s)),
		Body: fmt.Sprintf("Hi %s,\nYour request for the %s %s-%s shift at %s in the %s area was denied. "+
			"The shift is open again.\n\n%s",
			requester.Name, shiftDate(s), s.StartTime, s.EndTime, s.Location, s.Area, signature),
	}
}
