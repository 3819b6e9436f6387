package models

import "time"

// WorkMode enumerates where the user works from on a given day.
type WorkMode string

const (
	WorkModeWFO    WorkMode = "wfo"
	WorkModeWFH    WorkMode = "wfh"
	WorkModeHybrid WorkMode = "hybrid"
)

// Valid reports whether the work mode is known.
func (m WorkMode) Valid() bool {
	switch m {
	case WorkModeWFO, WorkModeWFH, WorkModeHybrid:
		return true
	}
	return false
}

// AttendanceStatus is derived from the work mode: wfo maps to present,
// everything else to wfh.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusWFH     AttendanceStatus = "wfh"
)

// StatusForMode derives the attendance status from the work mode.
func StatusForMode(mode WorkMode) AttendanceStatus {
	if mode == WorkModeWFO {
		return AttendanceStatusPresent
	}
	return AttendanceStatusWFH
}

// Attendance represents one user's record for one calendar date. Date is an
// ISO-8601 date string; there is at most one record per user per date.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Date      string           `db:"date" json:"date"`
	WorkMode  WorkMode         `db:"work_mode" json:"work_mode"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CheckIn   *time.Time       `db:"check_in" json:"check_in,omitempty"`
	CheckOut  *time.Time       `db:"check_out" json:"check_out,omitempty"`
	Notes     *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceFilter captures list criteria for attendance records.
type AttendanceFilter struct {
	UserID   string
	DateFrom string
	DateTo   string
	Limit    int
}

// AttendanceSummary aggregates a user's recent attendance.
type AttendanceSummary struct {
	Today       *Attendance `json:"today,omitempty"`
	TotalDays   int         `json:"total_days"`
	PresentDays int         `json:"present_days"`
	AbsentDays  int         `json:"absent_days"`
	WFHDays     int         `json:"wfh_days"`
}
