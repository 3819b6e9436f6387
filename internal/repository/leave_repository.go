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

const leaveViewColumns = `l.id, l.user_id, l.leave_type, l.start_date, l.end_date, l.reason, l.status,
	l.approved_by, l.rejection_reason, l.created_at, l.updated_at,
	u.full_name AS user_name, u.email AS user_email`

// LeaveRepository provides database access for leave requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository creates a new instance of LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a new leave request in pending state.
func (r *LeaveRepository) Create(ctx context.Context, leave *models.Leave) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	leave.CreatedAt = now
	leave.UpdatedAt = now
	leave.Status = models.LeaveStatusPending

	const query = `INSERT INTO leaves (id, user_id, leave_type, start_date, end_date, reason, status, approved_by, rejection_reason, created_at, updated_at)
		VALUES (:id, :user_id, :leave_type, :start_date, :end_date, :reason, :status, :approved_by, :rejection_reason, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, leave); err != nil {
		return fmt.Errorf("create leave: %w", err)
	}
	return nil
}

// FindByID returns a leave request.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.Leave, error) {
	const query = `SELECT id, user_id, leave_type, start_date, end_date, reason, status, approved_by, rejection_reason, created_at, updated_at FROM leaves WHERE id = $1 LIMIT 1`
	var leave models.Leave
	if err := r.db.GetContext(ctx, &leave, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find leave by id: %w", err)
	}
	return &leave, nil
}

// List returns enriched leave requests matching the filter, newest first.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveView, error) {
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("l.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	query := fmt.Sprintf(`SELECT %s FROM leaves l JOIN users u ON u.id = l.user_id`, leaveViewColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY l.created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	var leaves []models.LeaveView
	if err := r.db.SelectContext(ctx, &leaves, query, args...); err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	return leaves, nil
}

// HasOverlap reports whether the user already has a pending or approved
// leave overlapping the given date range.
func (r *LeaveRepository) HasOverlap(ctx context.Context, userID, startDate, endDate string) (bool, error) {
	const query = `SELECT COUNT(*) FROM leaves WHERE user_id = $1 AND status IN ('pending', 'approved') AND start_date <= $3 AND end_date >= $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, startDate, endDate); err != nil {
		return false, fmt.Errorf("check leave overlap: %w", err)
	}
	return count > 0, nil
}

// Decide transitions a pending leave to approved or rejected. The WHERE
// clause guards on the pending status so a concurrent decision loses; the
// caller treats a false return as a state conflict.
func (r *LeaveRepository) Decide(ctx context.Context, id string, status models.LeaveStatus, decidedBy string, rejectionReason *string) (bool, error) {
	const query = `UPDATE leaves SET status = $2, approved_by = $3, rejection_reason = $4, updated_at = $5 WHERE id = $1 AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, id, status, decidedBy, rejectionReason, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("decide leave: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decide leave rows affected: %w", err)
	}
	return rows > 0, nil
}

// Cancel transitions a pending leave to cancelled, guarded the same way as
// Decide.
func (r *LeaveRepository) Cancel(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE leaves SET status = 'cancelled', updated_at = $2 WHERE id = $1 AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("cancel leave: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel leave rows affected: %w", err)
	}
	return rows > 0, nil
}
