// Package service contains application services for the task approval
// workflow.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	taotel "github.com/sonntkms/taskapproval/internal/adapter/otel"
	"github.com/sonntkms/taskapproval/internal/domain/approval"
	"github.com/sonntkms/taskapproval/internal/logger"
	"github.com/sonntkms/taskapproval/internal/port/database"
	"github.com/sonntkms/taskapproval/internal/port/messagequeue"
	"github.com/sonntkms/taskapproval/internal/port/orchestration"
)

// ApprovalService starts approval orchestrations and forwards approve/reject
// decisions to them.
type ApprovalService struct {
	gateway orchestration.Gateway
	store   database.Store
	queue   messagequeue.Queue
	metrics *taotel.Metrics
}

// NewApprovalService creates an ApprovalService on top of the engine gateway.
func NewApprovalService(gw orchestration.Gateway) *ApprovalService {
	return &ApprovalService{gateway: gw}
}

// SetStore enables the audit trail.
func (s *ApprovalService) SetStore(store database.Store) { s.store = store }

// SetQueue enables lifecycle event publishing.
func (s *ApprovalService) SetQueue(q messagequeue.Queue) { s.queue = q }

// SetMetrics enables metric recording.
func (s *ApprovalService) SetMetrics(m *taotel.Metrics) { s.metrics = m }

// StartApprovalRequest validates req and schedules a new orchestration for it.
// Validation failures come back as a ResponseMessage without instance id;
// only engine failures are returned as errors.
func (s *ApprovalService) StartApprovalRequest(ctx context.Context, req approval.Request) (approval.ResponseMessage, error) {
	if msg := ValidateStart(&req); msg != nil {
		slog.InfoContext(ctx, "approval start rejected", "reason", msg.Message)
		return *msg, nil
	}
	req = req.WithDefaults()

	ctx, span := taotel.StartApprovalSpan(ctx, req.ID, req.TaskName)
	instanceID, err := s.gateway.StartInstance(ctx, approval.OrchestrationName, req)
	taotel.EndSpan(span, err)
	if err != nil {
		return approval.ResponseMessage{}, fmt.Errorf("start orchestration: %w", err)
	}

	ctx = logger.WithInstanceID(ctx, instanceID)
	slog.InfoContext(ctx, "approval process started", "request_id", req.ID, "task_name", req.TaskName)
	s.metrics.Started(ctx)

	s.recordStart(ctx, instanceID, req)
	s.publish(ctx, messagequeue.SubjectApprovalStarted, messagequeue.StartedEvent{
		InstanceID:  instanceID,
		RequestID:   req.ID,
		UserEmail:   req.UserEmail,
		TaskName:    req.TaskName,
		RequestedAt: req.RequestedAt.Format(time.RFC3339Nano),
	})

	return approval.Succeeded(approval.MsgProcessStarted, instanceID), nil
}

// PerformApprovalAction validates req and raises the approval event with the
// given decision.
func (s *ApprovalService) PerformApprovalAction(ctx context.Context, req approval.ActionRequest, approved bool) (approval.ResponseMessage, error) {
	msg, err := ValidateAction(ctx, req, s.gateway)
	if err != nil {
		return approval.ResponseMessage{}, err
	}
	if msg != nil {
		slog.InfoContext(ctx, "approval action rejected", "instance_id", req.InstanceID, "reason", msg.Message)
		return *msg, nil
	}

	decision := approval.DecisionFor(approved)
	ctx = logger.WithInstanceID(ctx, req.InstanceID)
	ctx, span := taotel.StartActionSpan(ctx, req.InstanceID, approved)
	err = s.gateway.RaiseEvent(ctx, req.InstanceID, approval.EventName, approval.Result{IsApproved: approved})
	taotel.EndSpan(span, err)
	if err != nil {
		return approval.ResponseMessage{}, fmt.Errorf("raise %s: %w", approval.EventName, err)
	}

	text := approval.MsgRejectSuccess
	if approved {
		text = approval.MsgApproveSuccess
	}
	slog.InfoContext(ctx, "approval event raised", "decision", decision)
	s.metrics.Decision(ctx, string(decision))

	s.recordAction(ctx, req.InstanceID, decision, text)
	s.publish(ctx, messagequeue.SubjectApprovalDecided, messagequeue.DecidedEvent{
		InstanceID: req.InstanceID,
		Approved:   approved,
	})

	return approval.Succeeded(text, req.InstanceID), nil
}

// GetInstance returns the engine's view of an instance, or domain.ErrNotFound.
func (s *ApprovalService) GetInstance(ctx context.Context, instanceID string) (*approval.InstanceMetadata, error) {
	return s.gateway.GetInstance(ctx, instanceID)
}

// ListActions returns the audit trail of an instance. Without a store the
// trail is empty.
func (s *ApprovalService) ListActions(ctx context.Context, instanceID string) ([]approval.ActionEntry, error) {
	if s.store == nil {
		return []approval.ActionEntry{}, nil
	}
	entries, err := s.store.ListApprovalActions(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("list approval actions: %w", err)
	}
	return entries, nil
}

// StartSubscriber dispatches approve/reject messages from the queue to
// PerformApprovalAction.
func (s *ApprovalService) StartSubscriber(ctx context.Context) (cancel func(), err error) {
	if s.queue == nil {
		return func() {}, nil
	}
	return s.queue.Subscribe(ctx, messagequeue.SubjectActions, s.HandleActionMessage)
}

// HandleActionMessage handles one inbound action message. Malformed and
// invalid actions are logged and dropped; engine errors are returned so the
// message is redelivered.
func (s *ApprovalService) HandleActionMessage(ctx context.Context, subject string, data []byte) error {
	var approved bool
	switch subject {
	case messagequeue.SubjectActionApprove:
		approved = true
	case messagequeue.SubjectActionReject:
		approved = false
	default:
		slog.WarnContext(ctx, "unknown approval action subject", "subject", subject)
		return nil
	}

	payload, err := messagequeue.DecodeAction(subject, data)
	if err != nil {
		slog.WarnContext(ctx, "invalid approval action message", "error", err)
		return nil
	}
	req := approval.ActionRequest{InstanceID: payload.InstanceID}

	msg, err := s.PerformApprovalAction(ctx, req, approved)
	if err != nil {
		return err
	}
	if !msg.OK() {
		slog.WarnContext(ctx, "approval action message dropped", "instance_id", req.InstanceID, "reason", msg.Message)
	}
	return nil
}

// recordStart writes the start row. Failures are logged only.
func (s *ApprovalService) recordStart(ctx context.Context, instanceID string, req approval.Request) {
	if s.store == nil {
		return
	}
	rec := approval.Record{
		InstanceID:  instanceID,
		RequestID:   req.ID,
		UserEmail:   req.UserEmail,
		TaskName:    req.TaskName,
		RequestedAt: req.RequestedAt,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateApprovalRecord(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "approval audit write failed", "error", err)
	}
}

// recordAction writes an action row. Failures are logged only.
func (s *ApprovalService) recordAction(ctx context.Context, instanceID string, decision approval.Decision, message string) {
	if s.store == nil {
		return
	}
	entry := approval.ActionEntry{
		ID:         uuid.NewString(),
		InstanceID: instanceID,
		Decision:   decision,
		RequestID:  logger.RequestID(ctx),
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.AppendApprovalAction(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "approval action audit write failed", "error", err)
	}
}

func (s *ApprovalService) publish(ctx context.Context, subject string, event any) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "marshal lifecycle event", "subject", subject, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.WarnContext(ctx, "publish lifecycle event failed", "subject", subject, "error", err)
	}
}
