// Package temporal hosts the approval orchestration on Temporal and
// implements the orchestration gateway with the Temporal client.
package temporal

import (
	"time"

	sdktemporal "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/sonntkms/taskapproval/internal/config"
	"github.com/sonntkms/taskapproval/internal/domain/approval"
	"github.com/sonntkms/taskapproval/internal/service"
)

// Workflows holds the workflow definitions registered with a worker.
type Workflows struct {
	orchestrator *service.ApprovalOrchestrator
	activityOpts workflow.ActivityOptions
}

// NewWorkflows wraps the orchestrator with activity options derived from cfg.
func NewWorkflows(o *service.ApprovalOrchestrator, cfg config.Temporal) *Workflows {
	return &Workflows{orchestrator: o, activityOpts: ActivityOptions(cfg)}
}

// ActivityOptions returns the notification activity options: a bounded
// start-to-close timeout and the engine retry policy.
func ActivityOptions(cfg config.Temporal) workflow.ActivityOptions {
	timeout := cfg.ActivityTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy: &sdktemporal.RetryPolicy{
			InitialInterval:    cfg.ActivityInitialInterval,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    cfg.ActivityMaxAttempts,
		},
	}
}

// ApprovalOrchestration is registered as approval.OrchestrationName and
// returns the terminal outcome tag.
func (w *Workflows) ApprovalOrchestration(ctx workflow.Context, req approval.Request) (string, error) {
	ctx = workflow.WithActivityOptions(ctx, w.activityOpts)
	outcome, err := w.orchestrator.Run(&workflowContext{ctx: ctx}, req)
	if err != nil {
		return "", err
	}
	return string(outcome), nil
}
