// Package database defines the approval audit store port (interface).
package database

import (
	"context"

	"github.com/sonntkms/taskapproval/internal/domain/approval"
)

// Store is the port interface for the approval audit trail.
type Store interface {
	// CreateApprovalRecord stores the start of an instance.
	CreateApprovalRecord(ctx context.Context, rec approval.Record) error

	// GetApprovalRecord returns the start record or domain.ErrNotFound.
	GetApprovalRecord(ctx context.Context, instanceID string) (*approval.Record, error)

	// AppendApprovalAction stores one accepted approve/reject call.
	AppendApprovalAction(ctx context.Context, entry approval.ActionEntry) error

	// ListApprovalActions returns the actions for an instance, oldest first.
	ListApprovalActions(ctx context.Context, instanceID string) ([]approval.ActionEntry, error)
}
