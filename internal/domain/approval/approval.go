// Package approval provides the domain model for the task approval workflow:
// requests, decisions, the uniform response envelope and instance metadata.
package approval

import (
	"time"

	"github.com/google/uuid"
)

// Request asks for approval of a named task. One request drives exactly one
// orchestration instance and is immutable once submitted.
type Request struct {
	ID          string    `json:"id"`
	UserEmail   string    `json:"userEmail"`
	TaskName    string    `json:"taskName"`
	RequestedAt time.Time `json:"requestedAt"`
}

// WithDefaults returns a copy with an id and timestamp filled in when the
// caller left them empty.
func (r Request) WithDefaults() Request {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.RequestedAt.IsZero() {
		r.RequestedAt = time.Now().UTC()
	}
	return r
}

// ActionRequest references a running instance to approve or reject. The
// decision itself comes from the operation invoked, not from the body.
type ActionRequest struct {
	InstanceID string `json:"instanceId"`
}

// Result is the payload of the approval event delivered to a waiting instance.
type Result struct {
	IsApproved bool `json:"isApproved"`
}

// Outcome is the terminal tag returned by an orchestration.
type Outcome string

const (
	OutcomeApproved Outcome = "Approved"
	OutcomeRejected Outcome = "Rejected"
	OutcomeTimedOut Outcome = "TimedOut"
)

// NotificationKind selects the template and activity for an email.
type NotificationKind string

const (
	KindStarted  NotificationKind = "started"
	KindApproved NotificationKind = "approved"
	KindRejected NotificationKind = "rejected"
)
