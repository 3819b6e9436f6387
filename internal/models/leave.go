package models

import "time"

// LeaveType enumerates the leave categories.
type LeaveType string

const (
	LeaveTypeSick   LeaveType = "sick"
	LeaveTypeCasual LeaveType = "casual"
	LeaveTypeEarned LeaveType = "earned"
	LeaveTypeUnpaid LeaveType = "unpaid"
)

// Valid reports whether the leave type is known.
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypeSick, LeaveTypeCasual, LeaveTypeEarned, LeaveTypeUnpaid:
		return true
	}
	return false
}

// LeaveStatus enumerates the leave request lifecycle. Only pending requests
// may move; approved/rejected/cancelled are terminal.
type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "pending"
	LeaveStatusApproved  LeaveStatus = "approved"
	LeaveStatusRejected  LeaveStatus = "rejected"
	LeaveStatusCancelled LeaveStatus = "cancelled"
)

// Leave represents a leave request. Start and end are calendar dates in
// ISO-8601 string form.
type Leave struct {
	ID              string      `db:"id" json:"id"`
	UserID          string      `db:"user_id" json:"user_id"`
	LeaveType       LeaveType   `db:"leave_type" json:"leave_type"`
	StartDate       string      `db:"start_date" json:"start_date"`
	EndDate         string      `db:"end_date" json:"end_date"`
	Reason          string      `db:"reason" json:"reason"`
	Status          LeaveStatus `db:"status" json:"status"`
	ApprovedBy      *string     `db:"approved_by" json:"approved_by,omitempty"`
	RejectionReason *string     `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// LeaveFilter captures list criteria for leave requests.
type LeaveFilter struct {
	UserID string
	Status *LeaveStatus
	Limit  int
}

// LeaveView enriches a leave request with the owner's identity.
type LeaveView struct {
	Leave
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
