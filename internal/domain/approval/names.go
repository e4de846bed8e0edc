package approval

// Names shared by the orchestration host and its callers. Handlers are
// registered and invoked under exactly these strings.
const (
	OrchestrationName = "ApprovalOrchestration"
	EventName         = "ApprovalEvent"

	ActivityStartedNotification  = "StartApprovalNotification"
	ActivityApprovedNotification = "ApprovedNotification"
	ActivityRejectedNotification = "RejectedNotification"

	TriggerStartApproval = "StartApproval"
	TriggerApprove       = "Approve"
	TriggerReject        = "Reject"
)

// DefaultTimeoutMonths is the approval window used when no valid setting exists.
const DefaultTimeoutMonths = 6

// MaxTimeoutMonths bounds the approval window. Larger settings are treated
// as invalid because the deadline would overflow time.Time arithmetic.
const MaxTimeoutMonths = 1200

// TriggerFor returns the action trigger name for a decision.
func TriggerFor(approved bool) string {
	if approved {
		return TriggerApprove
	}
	return TriggerReject
}

// ActivityFor returns the notification activity name for a kind.
func ActivityFor(kind NotificationKind) string {
	switch kind {
	case KindApproved:
		return ActivityApprovedNotification
	case KindRejected:
		return ActivityRejectedNotification
	default:
		return ActivityStartedNotification
	}
}
