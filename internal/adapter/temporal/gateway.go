package temporal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"

	"github.com/sonntkms/taskapproval/internal/domain"
	"github.com/sonntkms/taskapproval/internal/domain/approval"
	"github.com/sonntkms/taskapproval/internal/port/orchestration"
)

// workflowIDPrefix namespaces approval workflow ids.
const workflowIDPrefix = "approval-"

// workflowClient is the subset of client.Client the gateway needs.
type workflowClient interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow any, args ...any) (client.WorkflowRun, error)
	DescribeWorkflowExecution(ctx context.Context, workflowID, runID string) (*workflowservice.DescribeWorkflowExecutionResponse, error)
	SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg any) error
}

// Gateway implements orchestration.Gateway with the Temporal client.
type Gateway struct {
	client    workflowClient
	taskQueue string
}

var _ orchestration.Gateway = (*Gateway)(nil)

// NewGateway creates a gateway scheduling workflows on taskQueue.
func NewGateway(c workflowClient, taskQueue string) *Gateway {
	return &Gateway{client: c, taskQueue: taskQueue}
}

// WorkflowID returns the workflow id used for a request id.
func WorkflowID(requestID string) string {
	return workflowIDPrefix + requestID
}

// StartInstance starts the workflow registered as kind. A request id that was
// used before, running or closed, is refused with domain.ErrConflict.
func (g *Gateway) StartInstance(ctx context.Context, kind string, req approval.Request) (string, error) {
	opts := client.StartWorkflowOptions{
		ID:                                       WorkflowID(req.ID),
		TaskQueue:                                g.taskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}

	run, err := g.client.ExecuteWorkflow(ctx, opts, kind, req)
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			return "", fmt.Errorf("approval request %s: %w", req.ID, domain.ErrConflict)
		}
		return "", fmt.Errorf("execute workflow %s: %w", kind, err)
	}
	return run.GetID(), nil
}

// GetInstance describes the latest run of instanceID.
func (g *Gateway) GetInstance(ctx context.Context, instanceID string) (*approval.InstanceMetadata, error) {
	resp, err := g.client.DescribeWorkflowExecution(ctx, instanceID, "")
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("instance %s: %w", instanceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("describe workflow %s: %w", instanceID, err)
	}

	info := resp.GetWorkflowExecutionInfo()
	if info == nil {
		return nil, fmt.Errorf("instance %s: %w", instanceID, domain.ErrNotFound)
	}

	meta := &approval.InstanceMetadata{
		InstanceID:    info.GetExecution().GetWorkflowId(),
		Name:          info.GetType().GetName(),
		RuntimeStatus: runtimeStatus(info.GetStatus()),
	}
	if ts := info.GetStartTime(); ts != nil {
		meta.CreatedAt = ts.AsTime()
	}
	if ts := info.GetCloseTime(); ts != nil {
		closed := ts.AsTime()
		meta.ClosedAt = &closed
	}
	return meta, nil
}

// RaiseEvent signals the running instance. A closed or missing instance is
// a no-op.
func (g *Gateway) RaiseEvent(ctx context.Context, instanceID, event string, payload approval.Result) error {
	err := g.client.SignalWorkflow(ctx, instanceID, "", event, payload)
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		slog.WarnContext(ctx, "signal dropped, instance not running", "instance_id", instanceID, "event", event)
		return nil
	}
	return fmt.Errorf("signal workflow %s: %w", instanceID, err)
}

func isNotFound(err error) bool {
	var nf *serviceerror.NotFound
	return errors.As(err, &nf)
}

func runtimeStatus(s enumspb.WorkflowExecutionStatus) approval.RuntimeStatus {
	switch s {
	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING:
		return approval.StatusRunning
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return approval.StatusCompleted
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED:
		return approval.StatusFailed
	case enumspb.WORKFLOW_EXECUTION_STATUS_CANCELED:
		return approval.StatusCanceled
	case enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED:
		return approval.StatusTerminated
	case enumspb.WORKFLOW_EXECUTION_STATUS_CONTINUED_AS_NEW:
		return approval.StatusContinuedAsNew
	case enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
		return approval.StatusTimedOut
	default:
		return approval.StatusUnknown
	}
}
