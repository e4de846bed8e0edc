package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "taskapproval"

// Metrics holds all task approval metric instruments.
// A nil *Metrics records nothing.
type Metrics struct {
	ApprovalsStarted    metric.Int64Counter
	ApprovalDecisions   metric.Int64Counter
	NotificationsSent   metric.Int64Counter
	NotificationsFailed metric.Int64Counter
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ApprovalsStarted, err = meter.Int64Counter("approvals.started",
		metric.WithDescription("Number of approval orchestrations started"))
	if err != nil {
		return nil, err
	}

	m.ApprovalDecisions, err = meter.Int64Counter("approvals.decisions",
		metric.WithDescription("Number of approve/reject actions delivered"))
	if err != nil {
		return nil, err
	}

	m.NotificationsSent, err = meter.Int64Counter("notifications.sent",
		metric.WithDescription("Number of notification emails sent"))
	if err != nil {
		return nil, err
	}

	m.NotificationsFailed, err = meter.Int64Counter("notifications.failed",
		metric.WithDescription("Number of notification emails that failed"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Started counts a started orchestration.
func (m *Metrics) Started(ctx context.Context) {
	if m == nil {
		return
	}
	m.ApprovalsStarted.Add(ctx, 1)
}

// Decision counts a delivered decision ("approve" or "reject").
func (m *Metrics) Decision(ctx context.Context, decision string) {
	if m == nil {
		return
	}
	m.ApprovalDecisions.Add(ctx, 1, metric.WithAttributes(attribute.String("decision", decision)))
}

// Notification counts a notification attempt of the given kind.
func (m *Metrics) Notification(ctx context.Context, kind string, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	if err != nil {
		m.NotificationsFailed.Add(ctx, 1, attrs)
		return
	}
	m.NotificationsSent.Add(ctx, 1, attrs)
}
