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

// AttendanceRepository provides database access for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create inserts an attendance record. The (user_id, date) pair is unique;
// a duplicate insert surfaces as a constraint violation from the driver.
func (r *AttendanceRepository) Create(ctx context.Context, att *models.Attendance) error {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance (id, user_id, date, work_mode, status, check_in, check_out, notes, created_at)
		VALUES (:id, :user_id, :date, :work_mode, :status, :check_in, :check_out, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, att); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// FindByUserAndDate returns the attendance record for a user on a date.
func (r *AttendanceRepository) FindByUserAndDate(ctx context.Context, userID, date string) (*models.Attendance, error) {
	const query = `SELECT id, user_id, date, work_mode, status, check_in, check_out, notes, created_at FROM attendance WHERE user_id = $1 AND date = $2 LIMIT 1`
	var att models.Attendance
	if err := r.db.GetContext(ctx, &att, query, userID, date); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &att, nil
}

// List returns attendance records matching the filter, newest date first.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, filter.DateTo)
	}

	query := `SELECT id, user_id, date, work_mode, status, check_in, check_out, notes, created_at FROM attendance`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// UpdateWorkMode changes the work mode and derived status of an existing
// record.
func (r *AttendanceRepository) UpdateWorkMode(ctx context.Context, id string, mode models.WorkMode, status models.AttendanceStatus) error {
	const query = `UPDATE attendance SET work_mode = $2, status = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, mode, status)
	if err != nil {
		return fmt.Errorf("update work mode: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update work mode rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetCheckOut stamps the check-out time on a record.
func (r *AttendanceRepository) SetCheckOut(ctx context.Context, id string, checkOut time.Time) error {
	const query = `UPDATE attendance SET check_out = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, checkOut)
	if err != nil {
		return fmt.Errorf("set check out: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set check out rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus returns per-status day counts for a user within a date range.
func (r *AttendanceRepository) CountByStatus(ctx context.Context, userID, dateFrom, dateTo string) (map[models.AttendanceStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS count FROM attendance WHERE user_id = $1 AND date >= $2 AND date <= $3 GROUP BY status`
	rows := []struct {
		Status models.AttendanceStatus `db:"status"`
		Count  int                     `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, userID, dateFrom, dateTo); err != nil {
		return nil, fmt.Errorf("count attendance by status: %w", err)
	}

	counts := make(map[models.AttendanceStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
