package approval

import "fmt"

// User-facing messages carried by ResponseMessage.
const (
	MsgProcessStarted     = "Approval process started successfully"
	MsgAlreadyCompleted   = "Orchestration Instance was already Completed."
	MsgNoProcessFound     = "No approval process found with ID: %s"
	MsgApproveSuccess     = "Request approved successfully"
	MsgRejectSuccess      = "Request rejected successfully"
	MsgRequiredInstanceID = "Instance ID is required"
	MsgRequiredTaskName   = "Task name is required"
	MsgRequiredUserEmail  = "User email is required"
	MsgInvalidBody        = "invalid request body"
	MsgBodyTooLarge       = "request body too large"
	MsgInternalError      = "internal server error"
	MsgDuplicateRequest   = "An approval process already exists for this request"
)

// Failure classifies why an operation produced no instance.
type Failure string

const (
	FailureNone            Failure = ""
	FailureMissingField    Failure = "missing_field"
	FailureNotFound        Failure = "not_found"
	FailureAlreadyComplete Failure = "already_completed"
	FailureDuplicate       Failure = "duplicate_request"
)

// ResponseMessage is the uniform envelope returned by start and action
// operations. InstanceID is nil exactly when the operation failed.
type ResponseMessage struct {
	Message    string  `json:"message"`
	InstanceID *string `json:"instanceId"`
	Failure    Failure `json:"-"`
}

// Succeeded builds a success envelope for the given instance.
func Succeeded(message, instanceID string) ResponseMessage {
	return ResponseMessage{Message: message, InstanceID: &instanceID}
}

// Failed builds a failure envelope with no instance id.
func Failed(reason Failure, message string) ResponseMessage {
	return ResponseMessage{Message: message, Failure: reason}
}

// NotFound builds the failure envelope for an unknown instance id.
func NotFound(instanceID string) ResponseMessage {
	return Failed(FailureNotFound, fmt.Sprintf(MsgNoProcessFound, instanceID))
}

// Duplicate builds the failure envelope for a request id that already
// started an instance.
func Duplicate() ResponseMessage {
	return Failed(FailureDuplicate, MsgDuplicateRequest)
}

// OK reports whether the envelope identifies an instance.
func (m ResponseMessage) OK() bool {
	return m.InstanceID != nil
}

// ID returns the instance id or "" when the operation failed.
func (m ResponseMessage) ID() string {
	if m.InstanceID == nil {
		return ""
	}
	return *m.InstanceID
}
