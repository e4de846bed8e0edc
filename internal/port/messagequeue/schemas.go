package messagequeue

// StartedEvent is the schema for approvals.started messages.
type StartedEvent struct {
	InstanceID  string `json:"instanceId"`
	RequestID   string `json:"requestId"`
	UserEmail   string `json:"userEmail"`
	TaskName    string `json:"taskName"`
	RequestedAt string `json:"requestedAt"`
}

// DecidedEvent is the schema for approvals.decided messages.
type DecidedEvent struct {
	InstanceID string `json:"instanceId"`
	Approved   bool   `json:"approved"`
}

// ActionPayload is the schema for approvals.actions.approve and
// approvals.actions.reject messages.
type ActionPayload struct {
	InstanceID string `json:"instanceId"`
}
