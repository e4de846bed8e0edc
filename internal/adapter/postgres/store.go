package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sonntkms/taskapproval/internal/domain/approval"
	"github.com/sonntkms/taskapproval/internal/port/database"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ database.Store = (*Store)(nil)

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --- Approval requests ---

func (s *Store) CreateApprovalRecord(ctx context.Context, rec approval.Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO approval_requests (instance_id, request_id, user_email, task_name, requested_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.InstanceID, rec.RequestID, rec.UserEmail, rec.TaskName, rec.RequestedAt, rec.CreatedAt)
	if err != nil {
		return conflictWrap(err, "create approval record %s", rec.InstanceID)
	}
	return nil
}

func (s *Store) GetApprovalRecord(ctx context.Context, instanceID string) (*approval.Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT instance_id, request_id, user_email, task_name, requested_at, created_at
		 FROM approval_requests WHERE instance_id = $1`, instanceID)

	var rec approval.Record
	if err := row.Scan(&rec.InstanceID, &rec.RequestID, &rec.UserEmail, &rec.TaskName, &rec.RequestedAt, &rec.CreatedAt); err != nil {
		return nil, notFoundWrap(err, "get approval record %s", instanceID)
	}
	return &rec, nil
}

// --- Approval actions ---

func (s *Store) AppendApprovalAction(ctx context.Context, e approval.ActionEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO approval_actions (id, instance_id, decision, request_id, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.InstanceID, string(e.Decision), e.RequestID, e.Message, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append approval action %s: %w", e.InstanceID, err)
	}
	return nil
}

func (s *Store) ListApprovalActions(ctx context.Context, instanceID string) ([]approval.ActionEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, instance_id, decision, request_id, message, created_at
		 FROM approval_actions WHERE instance_id = $1 ORDER BY created_at, id`, instanceID)
	if err != nil {
		return nil, fmt.Errorf("list approval actions: %w", err)
	}
	defer rows.Close()

	var entries []approval.ActionEntry
	for rows.Next() {
		e, err := scanActionEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list approval actions: %w", err)
	}
	return orEmpty(entries), nil
}

func scanActionEntry(row scannable) (approval.ActionEntry, error) {
	var (
		e        approval.ActionEntry
		decision string
	)
	if err := row.Scan(&e.ID, &e.InstanceID, &decision, &e.RequestID, &e.Message, &e.CreatedAt); err != nil {
		return approval.ActionEntry{}, fmt.Errorf("scan approval action: %w", err)
	}
	e.Decision = approval.Decision(decision)
	return e, nil
}
