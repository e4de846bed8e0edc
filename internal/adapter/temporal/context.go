package temporal

import (
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/sonntkms/taskapproval/internal/domain/approval"
	"github.com/sonntkms/taskapproval/internal/port/orchestration"
)

// workflowContext implements orchestration.Context on a Temporal workflow.
type workflowContext struct {
	ctx workflow.Context
}

var _ orchestration.Context = (*workflowContext)(nil)

func (c *workflowContext) CallActivity(name string, req approval.Request) error {
	return workflow.ExecuteActivity(c.ctx, name, req).Get(c.ctx, nil)
}

// WaitForEvent races the signal channel against a timer. The timer is
// cancelled when the signal wins.
func (c *workflowContext) WaitForEvent(name string, timeout time.Duration) (approval.Result, bool, error) {
	timerCtx, cancelTimer := workflow.WithCancel(c.ctx)
	defer cancelTimer()

	var (
		result   approval.Result
		received bool
		timerErr error
	)

	sel := workflow.NewSelector(c.ctx)
	sel.AddReceive(workflow.GetSignalChannel(c.ctx, name), func(ch workflow.ReceiveChannel, _ bool) {
		ch.Receive(c.ctx, &result)
		received = true
	})
	sel.AddFuture(workflow.NewTimer(timerCtx, timeout), func(f workflow.Future) {
		timerErr = f.Get(timerCtx, nil)
	})
	sel.Select(c.ctx)

	if received {
		return result, true, nil
	}
	if timerErr != nil {
		return approval.Result{}, false, timerErr
	}
	return approval.Result{}, false, nil
}

func (c *workflowContext) Now() time.Time {
	return workflow.Now(c.ctx)
}

// SideEffect records fn's value in history. A decode failure yields "",
// which callers treat as an unset setting.
func (c *workflowContext) SideEffect(fn func() string) string {
	encoded := workflow.SideEffect(c.ctx, func(workflow.Context) any {
		return fn()
	})
	var v string
	if err := encoded.Get(&v); err != nil {
		return ""
	}
	return v
}

func (c *workflowContext) Logger() orchestration.Logger {
	return workflow.GetLogger(c.ctx)
}
