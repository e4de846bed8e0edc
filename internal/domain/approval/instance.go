package approval

import "time"

// RuntimeStatus is the engine-reported state of an orchestration instance.
// Only StatusCompleted is treated specially by the approval flow.
type RuntimeStatus string

const (
	StatusRunning        RuntimeStatus = "Running"
	StatusCompleted      RuntimeStatus = "Completed"
	StatusFailed         RuntimeStatus = "Failed"
	StatusCanceled       RuntimeStatus = "Canceled"
	StatusTerminated     RuntimeStatus = "Terminated"
	StatusContinuedAsNew RuntimeStatus = "ContinuedAsNew"
	StatusTimedOut       RuntimeStatus = "TimedOut"
	StatusPending        RuntimeStatus = "Pending"
	StatusSuspended      RuntimeStatus = "Suspended"
	StatusUnknown        RuntimeStatus = "Unknown"
)

// InstanceMetadata describes an orchestration instance as seen by the engine.
type InstanceMetadata struct {
	InstanceID    string        `json:"instanceId"`
	Name          string        `json:"name"`
	RuntimeStatus RuntimeStatus `json:"runtimeStatus"`
	CreatedAt     time.Time     `json:"createdAt"`
	ClosedAt      *time.Time    `json:"closedAt,omitempty"`
}

// Record is the audit row written when an instance is started.
type Record struct {
	InstanceID  string    `json:"instance_id"`
	RequestID   string    `json:"request_id"`
	UserEmail   string    `json:"user_email"`
	TaskName    string    `json:"task_name"`
	RequestedAt time.Time `json:"requested_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Decision is the accepted approve/reject choice recorded in the audit trail.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// DecisionFor maps the boolean decision flag to its audit value.
func DecisionFor(approved bool) Decision {
	if approved {
		return DecisionApprove
	}
	return DecisionReject
}

// ActionEntry records one accepted approve/reject call for audit purposes.
type ActionEntry struct {
	ID         string    `json:"id"`
	InstanceID string    `json:"instance_id"`
	Decision   Decision  `json:"decision"`
	RequestID  string    `json:"request_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
