package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sonntkms/taskapproval/internal/domain/approval"
)

const tracerName = "taskapproval"

// StartApprovalSpan starts a span for starting an approval orchestration.
func StartApprovalSpan(ctx context.Context, requestID, taskName string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, approval.TriggerStartApproval,
		trace.WithAttributes(
			attribute.String("approval.request_id", requestID),
			attribute.String("approval.task_name", taskName),
		),
	)
}

// StartActionSpan starts a span named after the Approve or Reject trigger.
func StartActionSpan(ctx context.Context, instanceID string, approved bool) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, approval.TriggerFor(approved),
		trace.WithAttributes(
			attribute.String("approval.instance_id", instanceID),
			attribute.String("approval.decision", string(approval.DecisionFor(approved))),
		),
	)
}

// StartNotificationSpan starts a span for a notification email.
func StartNotificationSpan(ctx context.Context, kind, requestID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "notification.send",
		trace.WithAttributes(
			attribute.String("notification.kind", kind),
			attribute.String("approval.request_id", requestID),
		),
	)
}

// EndSpan ends span, marking it failed when err is non-nil.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
