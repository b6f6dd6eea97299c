package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApprovalRequest is a queued mutation intent awaiting an admin decision.
// The payload is a full snapshot of the target entity's write shape and is
// immutable after creation; only the status and decision fields change.
type ApprovalRequest struct {
	ID          string
	Action      string
	Entity      string
	Payload     json.RawMessage
	RequestedBy string
	Status      string
	CreatedAt   time.Time
	DecidedAt   *time.Time
	DecidedBy   *string
}

// ApprovalRepository defines approval queue data operations
type ApprovalRepository interface {
	Create(ctx context.Context, request *ApprovalRequest) error
	FindByID(ctx context.Context, id string) (*ApprovalRequest, error)
	FindPending(ctx context.Context) ([]*ApprovalRequest, error)
	FindByRequester(ctx context.Context, userID string) ([]*ApprovalRequest, error)
	CountPending(ctx context.Context) (int, error)
	MarkDecided(ctx context.Context, id, status, decidedBy string) error
}

type pgApprovalRepository struct {
	pool *pgxpool.Pool
}

// NewApprovalRepository creates a new PostgreSQL approval repository
func NewApprovalRepository(pool *pgxpool.Pool) ApprovalRepository {
	return &pgApprovalRepository{pool: pool}
}

func (r *pgApprovalRepository) Create(ctx context.Context, request *ApprovalRequest) error {
	query := `
		INSERT INTO approval_requests (action, entity, payload, requested_by, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		request.Action, request.Entity, request.Payload, request.RequestedBy, request.Status,
	).Scan(&request.ID, &request.CreatedAt)
}

func (r *pgApprovalRepository) FindByID(ctx context.Context, id string) (*ApprovalRequest, error) {
	query := `
		SELECT id, action, entity, payload, requested_by, status, created_at, decided_at, decided_by
		FROM approval_requests WHERE id = $1
	`
	request := &ApprovalRequest{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID, &request.Action, &request.Entity, &request.Payload,
		&request.RequestedBy, &request.Status, &request.CreatedAt,
		&request.DecidedAt, &request.DecidedBy,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *pgApprovalRepository) FindPending(ctx context.Context) ([]*ApprovalRequest, error) {
	query := `
		SELECT id, action, entity, payload, requested_by, status, created_at, decided_at, decided_by
		FROM approval_requests WHERE status = 'pending'
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanApprovals(rows)
}

func (r *pgApprovalRepository) FindByRequester(ctx context.Context, userID string) ([]*ApprovalRequest, error) {
	query := `
		SELECT id, action, entity, payload, requested_by, status, created_at, decided_at, decided_by
		FROM approval_requests WHERE requested_by = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanApprovals(rows)
}

func scanApprovals(rows pgx.Rows) ([]*ApprovalRequest, error) {
	var requests []*ApprovalRequest
	for rows.Next() {
		request := &ApprovalRequest{}
		if err := rows.Scan(
			&request.ID, &request.Action, &request.Entity, &request.Payload,
			&request.RequestedBy, &request.Status, &request.CreatedAt,
			&request.DecidedAt, &request.DecidedBy,
		); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}

func (r *pgApprovalRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM approval_requests WHERE status = 'pending'`).Scan(&count)
	return count, err
}

// MarkDecided flips a pending row to its terminal status. The status
// guard makes the flip conditional: when two admins race on the same
// request, only the first one matches a row and the loser gets
// pgx.ErrNoRows.
func (r *pgApprovalRepository) MarkDecided(ctx context.Context, id, status, decidedBy string) error {
	query := `
		UPDATE approval_requests
		SET status = $2, decided_at = NOW(), decided_by = $3
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.pool.Exec(ctx, query, id, status, decidedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
