// Package orchestration defines the ports between the approval workflow and
// the durable-execution engine that hosts it.
package orchestration

import (
	"context"
	"time"

	"github.com/sonntkms/taskapproval/internal/domain/approval"
)

// Gateway is the client-side contract used by the dispatching layer.
type Gateway interface {
	// StartInstance schedules a new orchestration of the given kind and
	// returns its instance id. Engine refusals are returned, not masked.
	StartInstance(ctx context.Context, kind string, req approval.Request) (string, error)

	// GetInstance returns the instance metadata or domain.ErrNotFound.
	GetInstance(ctx context.Context, instanceID string) (*approval.InstanceMetadata, error)

	// RaiseEvent delivers payload to the named wait of a running instance.
	// It is a no-op when the instance is no longer waiting.
	RaiseEvent(ctx context.Context, instanceID, event string, payload approval.Result) error
}

// Logger is the replay-aware logger handed to orchestrator code.
type Logger interface {
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
}

// Context is what an orchestrator may touch while it runs. Everything that
// reads the outside world goes through it so replays stay deterministic.
type Context interface {
	// CallActivity runs the named activity with req and waits for it.
	CallActivity(name string, req approval.Request) error

	// WaitForEvent blocks until the named event arrives or timeout elapses.
	// received is false when the timer won.
	WaitForEvent(name string, timeout time.Duration) (result approval.Result, received bool, err error)

	// Now is the engine's deterministic current time.
	Now() time.Time

	// SideEffect runs fn once and replays its recorded value afterwards.
	SideEffect(fn func() string) string

	Logger() Logger
}
