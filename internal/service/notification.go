package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/sonntkms/taskapproval/internal/adapter/emailtmpl"
	taotel "github.com/sonntkms/taskapproval/internal/adapter/otel"
	"github.com/sonntkms/taskapproval/internal/domain/approval"
	"github.com/sonntkms/taskapproval/internal/port/notifier"
	"github.com/sonntkms/taskapproval/internal/resilience"
)

// Renderer produces the subject and HTML body for a notification kind.
type Renderer interface {
	Render(kind approval.NotificationKind, data emailtmpl.Data) (subject, body string, err error)
}

// NotificationService renders and sends approval notification emails.
type NotificationService struct {
	sender   notifier.Sender
	renderer Renderer
	breaker  *resilience.Breaker
	metrics  *taotel.Metrics
}

// NewNotificationService creates a NotificationService. breaker may be nil.
func NewNotificationService(sender notifier.Sender, renderer Renderer, breaker *resilience.Breaker) *NotificationService {
	return &NotificationService{sender: sender, renderer: renderer, breaker: breaker}
}

// SetMetrics enables metric recording.
func (s *NotificationService) SetMetrics(m *taotel.Metrics) { s.metrics = m }

// NotifyStarted tells the requester the approval process has begun.
func (s *NotificationService) NotifyStarted(ctx context.Context, req approval.Request) error {
	return s.notify(ctx, approval.KindStarted, req)
}

// NotifyApproved tells the requester the task was approved.
func (s *NotificationService) NotifyApproved(ctx context.Context, req approval.Request) error {
	return s.notify(ctx, approval.KindApproved, req)
}

// NotifyRejected tells the requester the task was rejected or timed out.
func (s *NotificationService) NotifyRejected(ctx context.Context, req approval.Request) error {
	return s.notify(ctx, approval.KindRejected, req)
}

func (s *NotificationService) notify(ctx context.Context, kind approval.NotificationKind, req approval.Request) (err error) {
	ctx, span := taotel.StartNotificationSpan(ctx, string(kind), req.ID)
	defer func() {
		s.metrics.Notification(ctx, string(kind), err)
		taotel.EndSpan(span, err)
	}()

	if _, perr := mail.ParseAddress(req.UserEmail); perr != nil {
		slog.ErrorContext(ctx, "notification recipient invalid", "kind", kind, "request_id", req.ID, "error", perr)
		return fmt.Errorf("%w: %q", notifier.ErrInvalidRecipient, req.UserEmail)
	}

	subject, body, err := s.renderer.Render(kind, emailtmpl.Data{TaskName: req.TaskName, RequestID: req.ID})
	if err != nil {
		return fmt.Errorf("render %s notification: %w", kind, err)
	}

	msg := notifier.Message{To: req.UserEmail, Subject: subject, HTMLBody: body}
	slog.InfoContext(ctx, "sending notification",
		"kind", kind,
		"provider", s.sender.Name(),
		"to", req.UserEmail,
		"request_id", req.ID,
	)

	send := func(ctx context.Context) error { return s.sender.Send(ctx, msg) }
	if s.breaker != nil {
		err = s.breaker.Execute(ctx, send)
	} else {
		err = send(ctx)
	}
	if err != nil {
		slog.ErrorContext(ctx, "notification send failed",
			"kind", kind,
			"provider", s.sender.Name(),
			"to", req.UserEmail,
			"error", err,
		)
		return fmt.Errorf("send %s notification: %w", kind, err)
	}
	return nil
}
