package temporal

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	sdktemporal "go.temporal.io/sdk/temporal"

	"github.com/sonntkms/taskapproval/internal/domain/approval"
	"github.com/sonntkms/taskapproval/internal/logger"
	"github.com/sonntkms/taskapproval/internal/port/notifier"
)

// errTypeInvalidRecipient tags notification failures that retrying cannot fix.
const errTypeInvalidRecipient = "InvalidRecipient"

// Notifier sends the three approval notifications.
type Notifier interface {
	NotifyStarted(ctx context.Context, req approval.Request) error
	NotifyApproved(ctx context.Context, req approval.Request) error
	NotifyRejected(ctx context.Context, req approval.Request) error
}

// Activities holds the notification activities registered with a worker.
type Activities struct {
	notifications Notifier
}

// NewActivities creates the activity set.
func NewActivities(n Notifier) *Activities {
	return &Activities{notifications: n}
}

// StartApprovalNotification is registered as approval.ActivityStartedNotification.
func (a *Activities) StartApprovalNotification(ctx context.Context, req approval.Request) error {
	return classify(a.notifications.NotifyStarted(withInstance(ctx), req))
}

// ApprovedNotification is registered as approval.ActivityApprovedNotification.
func (a *Activities) ApprovedNotification(ctx context.Context, req approval.Request) error {
	return classify(a.notifications.NotifyApproved(withInstance(ctx), req))
}

// RejectedNotification is registered as approval.ActivityRejectedNotification.
func (a *Activities) RejectedNotification(ctx context.Context, req approval.Request) error {
	return classify(a.notifications.NotifyRejected(withInstance(ctx), req))
}

func withInstance(ctx context.Context) context.Context {
	if !activity.IsActivity(ctx) {
		return ctx
	}
	return logger.WithInstanceID(ctx, activity.GetInfo(ctx).WorkflowExecution.ID)
}

// classify marks permanent failures non-retryable; everything else is left
// to the retry policy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, notifier.ErrInvalidRecipient) {
		return sdktemporal.NewNonRetryableApplicationError(err.Error(), errTypeInvalidRecipient, err)
	}
	return err
}
