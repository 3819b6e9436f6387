package models

import "time"

// UserRole represents the available roles for the RBAC system. The string
// values are part of the assistant wire contract and must not change.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleHR       UserRole = "hr"
	RoleTeamLead UserRole = "team_lead"
	RoleEmployee UserRole = "employee"
	RoleIntern   UserRole = "intern"
)

// Valid reports whether the role is one of the closed set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleTeamLead, RoleEmployee, RoleIntern:
		return true
	}
	return false
}

// Managerial reports whether the role carries people-management authority.
func (r UserRole) Managerial() bool {
	return r == RoleAdmin || r == RoleHR || r == RoleTeamLead
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Roles        []UserRole
	DepartmentID *string
	Active       *bool
	Search       string
	Page         int
	PageSize     int
}

// UserInfo is the public projection of a user embedded in responses.
type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
