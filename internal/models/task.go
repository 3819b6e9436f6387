package models

import "time"

// TaskStatus enumerates the task lifecycle.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// Valid reports whether the status is part of the lifecycle.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	}
	return false
}

// TaskPriority enumerates task priorities.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether the priority is known.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Rank orders priorities for urgency sorting, lower is more urgent.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityUrgent:
		return 0
	case TaskPriorityHigh:
		return 1
	case TaskPriorityMedium:
		return 2
	default:
		return 3
	}
}

// Task represents a unit of work assigned to a user. Deadline is a calendar
// date stored as its ISO-8601 string form.
type Task struct {
	ID          string       `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	AssignedTo  string       `db:"assigned_to" json:"assigned_to"`
	CreatedBy   string       `db:"created_by" json:"created_by"`
	Status      TaskStatus   `db:"status" json:"status"`
	Priority    TaskPriority `db:"priority" json:"priority"`
	Progress    int          `db:"progress" json:"progress"`
	Deadline    *string      `db:"deadline" json:"deadline,omitempty"`
	Notes       string       `db:"notes" json:"notes"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// TaskFilter captures list criteria for tasks.
type TaskFilter struct {
	AssignedTo string
	CreatedBy  string
	Status     *TaskStatus
	Priority   *TaskPriority
	Limit      int
}

// TaskPatch captures a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	Progress    *int
	Deadline    *string
	Notes       *string
}

// TaskView is the enriched projection returned to callers.
type TaskView struct {
	Task
	AssignedToName  string `json:"assigned_to_name"`
	AssignedToEmail string `json:"assigned_to_email"`
	CreatedByName   string `json:"created_by_name"`
	CreatedByEmail  string `json:"created_by_email"`
}

// ClampProgress bounds a requested progress value to [0, 100].
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
