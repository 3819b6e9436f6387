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

const taskViewColumns = `t.id, t.title, t.description, t.assigned_to, t.created_by, t.status, t.priority,
	t.progress, t.deadline, t.notes, t.created_at, t.updated_at,
	a.full_name AS assigned_to_name, a.email AS assigned_to_email,
	c.full_name AS created_by_name, c.email AS created_by_email`

const taskViewJoins = `FROM tasks t
	JOIN users a ON a.id = t.assigned_to
	JOIN users c ON c.id = t.created_by`

// TaskRepository provides database access for tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new instance of TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	const query = `INSERT INTO tasks (id, title, description, assigned_to, created_by, status, priority, progress, deadline, notes, created_at, updated_at)
		VALUES (:id, :title, :description, :assigned_to, :created_by, :status, :priority, :progress, :deadline, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindByID returns a single task.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	const query = `SELECT id, title, description, assigned_to, created_by, status, priority, progress, deadline, notes, created_at, updated_at FROM tasks WHERE id = $1 LIMIT 1`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task by id: %w", err)
	}
	return &task, nil
}

// FindViewByID returns a single task enriched with user names.
func (r *TaskRepository) FindViewByID(ctx context.Context, id string) (*models.TaskView, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE t.id = $1 LIMIT 1`, taskViewColumns, taskViewJoins)
	var view models.TaskView
	if err := r.db.GetContext(ctx, &view, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task view by id: %w", err)
	}
	return &view, nil
}

// List returns enriched tasks matching the filter, newest first.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.TaskView, error) {
	var conditions []string
	var args []interface{}

	if filter.AssignedTo != "" {
		conditions = append(conditions, fmt.Sprintf("t.assigned_to = $%d", len(args)+1))
		args = append(args, filter.AssignedTo)
	}
	if filter.CreatedBy != "" {
		conditions = append(conditions, fmt.Sprintf("t.created_by = $%d", len(args)+1))
		args = append(args, filter.CreatedBy)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("t.priority = $%d", len(args)+1))
		args = append(args, *filter.Priority)
	}

	query := fmt.Sprintf("SELECT %s %s", taskViewColumns, taskViewJoins)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	var tasks []models.TaskView
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies a partial update to a task. Nil patch fields are untouched.
func (r *TaskRepository) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	sets := []string{}
	args := []interface{}{id}

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		appendSet("title", *patch.Title)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Status != nil {
		appendSet("status", *patch.Status)
	}
	if patch.Priority != nil {
		appendSet("priority", *patch.Priority)
	}
	if patch.Progress != nil {
		appendSet("progress", *patch.Progress)
	}
	if patch.Deadline != nil {
		appendSet("deadline", *patch.Deadline)
	}
	if patch.Notes != nil {
		appendSet("notes", *patch.Notes)
	}
	if len(sets) == 0 {
		return nil
	}
	appendSet("updated_at", time.Now().UTC())

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $1", strings.Join(sets, ", "))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Reassign moves a task to a new assignee.
func (r *TaskRepository) Reassign(ctx context.Context, id, assignedTo string) error {
	const query = `UPDATE tasks SET assigned_to = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, assignedTo, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reassign task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reassign task rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus returns the number of tasks per status for an assignee.
// An empty assignee counts across all tasks.
func (r *TaskRepository) CountByStatus(ctx context.Context, assignedTo string) (map[models.TaskStatus]int, error) {
	query := `SELECT status, COUNT(*) AS count FROM tasks`
	var args []interface{}
	if assignedTo != "" {
		query += ` WHERE assigned_to = $1`
		args = append(args, assignedTo)
	}
	query += ` GROUP BY status`

	rows := []struct {
		Status models.TaskStatus `db:"status"`
		Count  int               `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}

	counts := make(map[models.TaskStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
