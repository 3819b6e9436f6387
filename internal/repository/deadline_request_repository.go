package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/operai/workforce-api/internal/models"
)

const deadlineViewColumns = `d.id, d.task_id, d.requested_by, d.requested_new_deadline, d.reason, d.status,
	d.decided_by, d.response_note, d.created_at, d.updated_at,
	t.title AS task_title, t.deadline AS task_deadline,
	u.full_name AS requester_name, u.email AS requester_email`

// DeadlineRequestRepository provides database access for deadline extension
// requests.
type DeadlineRequestRepository struct {
	db *sqlx.DB
}

// NewDeadlineRequestRepository creates a new instance of
// DeadlineRequestRepository.
func NewDeadlineRequestRepository(db *sqlx.DB) *DeadlineRequestRepository {
	return &DeadlineRequestRepository{db: db}
}

// Create inserts a pending deadline request.
func (r *DeadlineRequestRepository) Create(ctx context.Context, req *models.DeadlineRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	req.Status = models.DeadlineRequestPending

	const query = `INSERT INTO deadline_requests (id, task_id, requested_by, requested_new_deadline, reason, status, decided_by, response_note, created_at, updated_at)
		VALUES (:id, :task_id, :requested_by, :requested_new_deadline, :reason, :status, :decided_by, :response_note, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create deadline request: %w", err)
	}
	return nil
}

// FindByID returns a deadline request.
func (r *DeadlineRequestRepository) FindByID(ctx context.Context, id string) (*models.DeadlineRequest, error) {
	const query = `SELECT id, task_id, requested_by, requested_new_deadline, reason, status, decided_by, response_note, created_at, updated_at FROM deadline_requests WHERE id = $1 LIMIT 1`
	var req models.DeadlineRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find deadline request by id: %w", err)
	}
	return &req, nil
}

// HasPendingForTask reports whether the task already has a pending request.
func (r *DeadlineRequestRepository) HasPendingForTask(ctx context.Context, taskID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM deadline_requests WHERE task_id = $1 AND status = 'pending'`
	var count int
	if err := r.db.GetContext(ctx, &count, query, taskID); err != nil {
		return false, fmt.Errorf("check pending deadline request: %w", err)
	}
	return count > 0, nil
}

// List returns enriched deadline requests, newest first. Status and
// requestedBy are optional filters.
func (r *DeadlineRequestRepository) List(ctx context.Context, status *models.DeadlineRequestStatus, requestedBy string, limit int) ([]models.DeadlineRequestView, error) {
	var conditions []string
	var args []interface{}

	if status != nil {
		conditions = append(conditions, fmt.Sprintf("d.status = $%d", len(args)+1))
		args = append(args, *status)
	}
	if requestedBy != "" {
		conditions = append(conditions, fmt.Sprintf("d.requested_by = $%d", len(args)+1))
		args = append(args, requestedBy)
	}

	query := fmt.Sprintf(`SELECT %s FROM deadline_requests d
		JOIN tasks t ON t.id = d.task_id
		JOIN users u ON u.id = d.requested_by`, deadlineViewColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY d.created_at DESC"

	if limit <= 0 || limit > 200 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	var requests []models.DeadlineRequestView
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list deadline requests: %w", err)
	}
	return requests, nil
}

// Approve decides a pending request and moves the task deadline in the same
// transaction. The update guards on the pending status so a concurrent
// decision loses; a false return means the request was not pending.
func (r *DeadlineRequestRepository) Approve(ctx context.Context, id, decidedBy string, responseNote *string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin approve deadline request: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	const decide = `UPDATE deadline_requests SET status = 'approved', decided_by = $2, response_note = $3, updated_at = $4 WHERE id = $1 AND status = 'pending' RETURNING task_id, requested_new_deadline`
	var taskID, newDeadline string
	if err := tx.QueryRowxContext(ctx, decide, id, decidedBy, responseNote, now).Scan(&taskID, &newDeadline); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("approve deadline request: %w", err)
	}

	const moveDeadline = `UPDATE tasks SET deadline = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, moveDeadline, taskID, newDeadline, now); err != nil {
		return false, fmt.Errorf("move task deadline: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit approve deadline request: %w", err)
	}
	return true, nil
}

// Reject decides a pending request without touching the task.
func (r *DeadlineRequestRepository) Reject(ctx context.Context, id, decidedBy string, responseNote *string) (bool, error) {
	const query = `UPDATE deadline_requests SET status = 'rejected', decided_by = $2, response_note = $3, updated_at = $4 WHERE id = $1 AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, id, decidedBy, responseNote, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("reject deadline request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reject deadline request rows affected: %w", err)
	}
	return rows > 0, nil
}
