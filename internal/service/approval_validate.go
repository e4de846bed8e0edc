package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sonntkms/taskapproval/internal/domain"
	"github.com/sonntkms/taskapproval/internal/domain/approval"
	"github.com/sonntkms/taskapproval/internal/port/orchestration"
)

// ValidateStart checks a start request. It returns nil when the request may
// be scheduled.
func ValidateStart(req *approval.Request) *approval.ResponseMessage {
	if req.UserEmail == "" {
		msg := approval.Failed(approval.FailureMissingField, approval.MsgRequiredUserEmail)
		return &msg
	}
	if req.TaskName == "" {
		msg := approval.Failed(approval.FailureMissingField, approval.MsgRequiredTaskName)
		return &msg
	}
	return nil
}

// ValidateAction checks that an action targets a known instance that has not
// completed. A non-nil error means the engine could not be asked.
func ValidateAction(ctx context.Context, req approval.ActionRequest, gw orchestration.Gateway) (*approval.ResponseMessage, error) {
	if req.InstanceID == "" {
		msg := approval.Failed(approval.FailureMissingField, approval.MsgRequiredInstanceID)
		return &msg, nil
	}

	meta, err := gw.GetInstance(ctx, req.InstanceID)
	if errors.Is(err, domain.ErrNotFound) {
		msg := approval.NotFound(req.InstanceID)
		return &msg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get instance %s: %w", req.InstanceID, err)
	}
	if meta == nil {
		msg := approval.NotFound(req.InstanceID)
		return &msg, nil
	}

	if meta.RuntimeStatus == approval.StatusCompleted {
		msg := approval.Failed(approval.FailureAlreadyComplete, approval.MsgAlreadyCompleted)
		return &msg, nil
	}
	return nil, nil
}
