package models

import "time"

// NotificationType labels the event that produced a notification.
type NotificationType string

const (
	NotificationTaskAssigned     NotificationType = "task_assigned"
	NotificationTaskUpdated      NotificationType = "task_updated"
	NotificationLeaveDecision    NotificationType = "leave_decision"
	NotificationDeadlineDecision NotificationType = "deadline_decision"
	NotificationAnnouncement     NotificationType = "announcement"
)

// Notification targets either a single user or a whole role.
type Notification struct {
	ID         string           `db:"id" json:"id"`
	UserID     *string          `db:"user_id" json:"user_id,omitempty"`
	TargetRole *string          `db:"target_role" json:"target_role,omitempty"`
	Type       NotificationType `db:"type" json:"type"`
	Title      string           `db:"title" json:"title"`
	Body       string           `db:"body" json:"body"`
	IsRead     bool             `db:"is_read" json:"is_read"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}
