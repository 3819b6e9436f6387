package models

import (
	"time"

	"github.com/lib/pq"
)

// Announcement is a company-wide or role-targeted broadcast. An empty target
// role list means every role sees it.
type Announcement struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Content     string         `db:"content" json:"content"`
	CreatedBy   string         `db:"created_by" json:"created_by"`
	TargetRoles pq.StringArray `db:"target_roles" json:"target_roles"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
