package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sonntkms/taskapproval/internal/domain/approval"
	"github.com/sonntkms/taskapproval/internal/port/orchestration"
)

// ApprovalOrchestrator is the approval state machine:
// Started -> Approved | Rejected | TimedOut.
// It must only touch the outside world through orchestration.Context.
type ApprovalOrchestrator struct {
	timeoutSetting func() string
}

// NewApprovalOrchestrator creates an orchestrator reading the raw approval
// window setting through timeoutSetting at every start.
func NewApprovalOrchestrator(timeoutSetting func() string) *ApprovalOrchestrator {
	if timeoutSetting == nil {
		timeoutSetting = func() string { return "" }
	}
	return &ApprovalOrchestrator{timeoutSetting: timeoutSetting}
}

// Run drives one instance to its terminal outcome.
func (o *ApprovalOrchestrator) Run(octx orchestration.Context, req approval.Request) (approval.Outcome, error) {
	log := octx.Logger()
	log.Info("approval orchestration started", "request_id", req.ID, "task_name", req.TaskName)

	if err := octx.CallActivity(approval.ActivityStartedNotification, req); err != nil {
		return "", fmt.Errorf("started notification: %w", err)
	}

	months := ParseTimeoutMonths(octx.SideEffect(o.timeoutSetting))
	now := octx.Now()
	deadline := now.AddDate(0, months, 0)
	if !deadline.After(now) {
		deadline = now.AddDate(0, approval.DefaultTimeoutMonths, 0)
	}

	result, received, err := octx.WaitForEvent(approval.EventName, deadline.Sub(now))
	if err != nil {
		return "", fmt.Errorf("wait for %s: %w", approval.EventName, err)
	}

	switch {
	case !received:
		log.Warn("approval timed out", "request_id", req.ID, "deadline", deadline)
		if err := octx.CallActivity(approval.ActivityRejectedNotification, req); err != nil {
			return "", fmt.Errorf("rejected notification: %w", err)
		}
		return approval.OutcomeTimedOut, nil
	case result.IsApproved:
		log.Info("approval granted", "request_id", req.ID)
		if err := octx.CallActivity(approval.ActivityApprovedNotification, req); err != nil {
			return "", fmt.Errorf("approved notification: %w", err)
		}
		return approval.OutcomeApproved, nil
	default:
		log.Info("approval rejected", "request_id", req.ID)
		if err := octx.CallActivity(approval.ActivityRejectedNotification, req); err != nil {
			return "", fmt.Errorf("rejected notification: %w", err)
		}
		return approval.OutcomeRejected, nil
	}
}

// ParseTimeoutMonths parses the approval window in months. Anything that is
// not an integer in [1, approval.MaxTimeoutMonths] yields the default.
func ParseTimeoutMonths(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 || n > approval.MaxTimeoutMonths {
		return approval.DefaultTimeoutMonths
	}
	return n
}
