package temporal

import (
	"log/slog"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/sonntkms/taskapproval/internal/config"
	"github.com/sonntkms/taskapproval/internal/domain/approval"
)

// registry is the registration surface shared by worker.Worker and the
// test workflow environment.
type registry interface {
	RegisterWorkflowWithOptions(w any, options workflow.RegisterOptions)
	RegisterActivityWithOptions(a any, options activity.RegisterOptions)
}

// Register binds the workflow and activities under their shared names.
func Register(r registry, wf *Workflows, acts *Activities) {
	r.RegisterWorkflowWithOptions(wf.ApprovalOrchestration, workflow.RegisterOptions{Name: approval.OrchestrationName})
	r.RegisterActivityWithOptions(acts.StartApprovalNotification, activity.RegisterOptions{Name: approval.ActivityStartedNotification})
	r.RegisterActivityWithOptions(acts.ApprovedNotification, activity.RegisterOptions{Name: approval.ActivityApprovedNotification})
	r.RegisterActivityWithOptions(acts.RejectedNotification, activity.RegisterOptions{Name: approval.ActivityRejectedNotification})
}

// Dial connects to the Temporal frontend. With tracing enabled the client
// carries the OpenTelemetry interceptor and metrics handler.
func Dial(cfg config.Temporal, log *slog.Logger, tracing bool) (client.Client, error) {
	opts := client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    tlog.NewStructuredLogger(log),
	}
	if tracing {
		ti, err := opentelemetry.NewTracingInterceptor(opentelemetry.TracerOptions{})
		if err != nil {
			return nil, err
		}
		opts.Interceptors = []interceptor.ClientInterceptor{ti}
		opts.MetricsHandler = opentelemetry.NewMetricsHandler(opentelemetry.MetricsHandlerOptions{})
	}
	return client.Dial(opts)
}

// NewWorker creates a worker on the configured task queue with the approval
// workflow and activities registered.
func NewWorker(c client.Client, cfg config.Temporal, wf *Workflows, acts *Activities) worker.Worker {
	w := worker.New(c, cfg.TaskQueue, worker.Options{})
	Register(w, wf, acts)
	return w
}
