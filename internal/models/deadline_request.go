package models

import "time"

// DeadlineRequestStatus enumerates the deadline request lifecycle.
type DeadlineRequestStatus string

const (
	DeadlineRequestPending  DeadlineRequestStatus = "pending"
	DeadlineRequestApproved DeadlineRequestStatus = "approved"
	DeadlineRequestRejected DeadlineRequestStatus = "rejected"
)

// DeadlineRequest asks for a task's deadline to be moved. Only the task's
// current assignee may raise one, and at most one pending request may exist
// per task.
type DeadlineRequest struct {
	ID                   string                `db:"id" json:"id"`
	TaskID               string                `db:"task_id" json:"task_id"`
	RequestedBy          string                `db:"requested_by" json:"requested_by"`
	RequestedNewDeadline string                `db:"requested_new_deadline" json:"requested_new_deadline"`
	Reason               string                `db:"reason" json:"reason"`
	Status               DeadlineRequestStatus `db:"status" json:"status"`
	DecidedBy            *string               `db:"decided_by" json:"decided_by,omitempty"`
	ResponseNote         *string               `db:"response_note" json:"response_note,omitempty"`
	CreatedAt            time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time             `db:"updated_at" json:"updated_at"`
}

// DeadlineRequestView enriches a request with task and requester context.
type DeadlineRequestView struct {
	DeadlineRequest
	TaskTitle      string  `json:"task_title"`
	TaskDeadline   *string `json:"task_deadline,omitempty"`
	RequesterName  string  `json:"requester_name"`
	RequesterEmail string  `json:"requester_email"`
}
