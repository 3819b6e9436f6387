package assistant

import "github.com/operai/workforce-api/internal/models"

// ActionName identifies one operation in the closed action set. The string
// values are part of the model-facing wire contract and must not change.
type ActionName string

const (
	ActionCreateTask               ActionName = "create_task"
	ActionUpdateTaskStatus         ActionName = "update_task_status"
	ActionReassignTask             ActionName = "reassign_task"
	ActionListUserTasks            ActionName = "list_user_tasks"
	ActionGetTeamMembers           ActionName = "get_team_members"
	ActionSummarizeTasks           ActionName = "summarize_tasks"
	ActionApplyLeave               ActionName = "apply_leave"
	ActionCancelLeave              ActionName = "cancel_leave"
	ActionApproveLeave             ActionName = "approve_leave"
	ActionRejectLeave              ActionName = "reject_leave"
	ActionListPendingLeaves        ActionName = "list_pending_leaves"
	ActionMarkAttendance           ActionName = "mark_attendance"
	ActionUpdateWorkMode           ActionName = "update_work_mode"
	ActionGetAttendanceSummary     ActionName = "get_attendance_summary"
	ActionCreateAnnouncement       ActionName = "create_announcement"
	ActionListTeamTasks            ActionName = "list_team_tasks"
	ActionGenerateTeamSummary      ActionName = "generate_team_summary"
	ActionGenerateEmployeeReport   ActionName = "generate_employee_report"
	ActionGenerateInternEvaluation ActionName = "generate_intern_evaluation"
	ActionSummarizeNotifications   ActionName = "summarize_notifications"
	ActionRequestDeadline          ActionName = "request_deadline_extension"
	ActionApproveDeadlineRequest   ActionName = "approve_deadline_request"
	ActionRejectDeadlineRequest    ActionName = "reject_deadline_request"
)

var (
	allRoles        = []models.UserRole{models.RoleAdmin, models.RoleHR, models.RoleTeamLead, models.RoleEmployee, models.RoleIntern}
	managerialRoles = []models.UserRole{models.RoleAdmin, models.RoleHR, models.RoleTeamLead}
	adminHRRoles    = []models.UserRole{models.RoleAdmin, models.RoleHR}
)

// Definition declares one action: its role gate and a human-readable
// parameter contract used to build the model-facing system prompt. Handlers
// re-validate parameters; this table is documentation and coarse gating only.
type Definition struct {
	Name        ActionName
	Description string
	Parameters  map[string]string
	Roles       []models.UserRole
}

// Allows reports whether the role passes the static gate.
func (d Definition) Allows(role models.UserRole) bool {
	for _, r := range d.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CatalogEntry is the role-filtered projection of a Definition.
type CatalogEntry struct {
	Name        ActionName        `json:"name"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
	Allowed     bool              `json:"allowed"`
}

// Catalog is the immutable permission table. Construct it once at startup
// with DefaultCatalog and pass it into the engine.
type Catalog struct {
	defs  []Definition
	index map[ActionName]Definition
}

// NewCatalog builds a catalog from the given definitions.
func NewCatalog(defs []Definition) *Catalog {
	index := make(map[ActionName]Definition, len(defs))
	for _, d := range defs {
		index[d.Name] = d
	}
	return &Catalog{defs: defs, index: index}
}

// Lookup returns the definition for an action name.
func (c *Catalog) Lookup(name ActionName) (Definition, bool) {
	d, ok := c.index[name]
	return d, ok
}

// ForRole returns every action with an Allowed flag for the given role.
func (c *Catalog) ForRole(role models.UserRole) []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(c.defs))
	for _, d := range c.defs {
		entries = append(entries, CatalogEntry{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
			Allowed:     d.Allows(role),
		})
	}
	return entries
}

// AllowedForRole returns only the actions the role may invoke.
func (c *Catalog) AllowedForRole(role models.UserRole) []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(c.defs))
	for _, d := range c.defs {
		if d.Allows(role) {
			entries = append(entries, CatalogEntry{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
				Allowed:     true,
			})
		}
	}
	return entries
}

// DefaultCatalog returns the full action set.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Definition{
		{
			Name:        ActionCreateTask,
			Description: "Create a new task and assign it to a user",
			Parameters: map[string]string{
				"title":             "Task title (required)",
				"description":       "Task description (optional)",
				"assigned_to":       "User ID to assign (optional, defaults to self)",
				"assigned_to_email": "User email to assign (optional, alternative to assigned_to)",
				"priority":          "low/medium/high/urgent (optional, default: medium)",
				"deadline":          "Deadline YYYY-MM-DD (optional)",
			},
			Roles: managerialRoles,
		},
		{
			Name:        ActionUpdateTaskStatus,
			Description: "Update status or progress of a task",
			Parameters: map[string]string{
				"task_id":  "Task ID (required)",
				"status":   "todo/in_progress/completed/blocked (optional)",
				"progress": "Progress 0-100 (optional)",
			},
			Roles: allRoles,
		},
		{
			Name:        ActionReassignTask,
			Description: "Reassign a task to another user",
			Parameters: map[string]string{
				"task_id":            "Task ID (required)",
				"new_assignee_email": "New assignee email (required)",
			},
			Roles: managerialRoles,
		},
		{
			Name:        ActionListUserTasks,
			Description: "List tasks for current user or specified user (with hierarchy checks)",
			Parameters: map[string]string{
				"user_id":    "User ID (optional, defaults to current user)",
				"user_email": "Target user email (Admin/HR/TeamLead only, optional)",
				"status":     "Filter by status: todo/in_progress/completed/blocked (optional)",
			},
			Roles: allRoles,
		},
		{
			Name:        ActionGetTeamMembers,
			Description: "Get team members under a team lead based on department",
			Parameters: map[string]string{
				"team_lead_email": "Team lead email (optional, used by HR/Admin to inspect specific team)",
			},
			Roles: managerialRoles,
		},
		{
			Name:        ActionSummarizeTasks,
			Description: "Summarize current user's tasks with counts by status and highlight top 5 urgent tasks",
			Parameters:  map[string]string{},
			Roles:       allRoles,
		},
		{
			Name:        ActionApplyLeave,
			Description: "Apply for leave",
			Parameters: map[string]string{
				"leave_type": "sick/casual/earned/unpaid (optional, default: casual)",
				"start_date": "Start date YYYY-MM-DD (required)",
				"end_date":   "End date YYYY-MM-DD (required)",
				"reason":     "Reason for leave (optional)",
			},
			Roles: allRoles,
		},
		{
			Name:        ActionCancelLeave,
			Description: "Cancel own pending leave request",
			Parameters: map[string]string{
				"leave_id": "Leave ID (required)",
			},
			Roles: allRoles,
		},
		{
			Name:        ActionApproveLeave,
			Description: "Approve a pending leave request",
			Parameters: map[string]string{
				"leave_id": "Leave ID (required)",
			},
			Roles: managerialRoles,
		},
		{
			Name:        ActionRejectLeave,
			Description: "Reject a pending leave request",
			Parameters: map[string]string{
				"leave_id": "Leave ID (required)",
				"reason":   "Rejection reason (optional)",
			},
			Roles: managerialRoles,
		},
		{
			Name:        ActionListPendingLeaves,
			Description: "List all pending leave requests",
			Parameters:  map[string]string{},
			Roles:       managerialRoles,
		},
		{
			Name:        ActionMarkAttendance,
			Description: "Mark attendance for today",
			Parameters: map[string]string{
				"work_mode": "wfo/wfh/hybrid (required)",
			},
			Roles: allRoles,
		},
		{
			Name:        ActionUpdateWorkMode,
			Description: "Update work mode for today",
			Parameters: map[string]string{
				"work_mode": "wfo/wfh/hybrid (required)",
			},
			Roles: allRoles,
		},
		{
			Name:        ActionGetAttendanceSummary,
			Description: "Get today's attendance and last 7-day summary for the current user",
			Parameters:  map[string]string{},
			Roles:       allRoles,
		},
		{
			Name:        ActionCreateAnnouncement,
			Description: "Create company announcement",
			Parameters: map[string]string{
				"title":        "Announcement title (required)",
				"content":      "Announcement content (required)",
				"target_roles": "Target roles array (optional, empty = everyone)",
			},
			Roles: adminHRRoles,
		},
		{
			Name:        ActionListTeamTasks,
			Description: "List all tasks created by the caller for their team",
			Parameters:  map[string]string{},
			Roles:       managerialRoles,
		},
		{
			Name:        ActionGenerateTeamSummary,
			Description: "Generate team performance summary",
			Parameters:  map[string]string{},
			Roles:       managerialRoles,
		},
		{
			Name:        ActionGenerateEmployeeReport,
			Description: "Generate detailed employee report",
			Parameters: map[string]string{
				"employee_email": "Employee email (required)",
			},
			Roles: adminHRRoles,
		},
		{
			Name:        ActionGenerateInternEvaluation,
			Description: "Generate intern performance evaluation",
			Parameters: map[string]string{
				"intern_email": "Intern email (required)",
			},
			Roles: adminHRRoles,
		},
		{
			Name:        ActionSummarizeNotifications,
			Description: "Summarize recent notifications for current user with counts by type and unread items",
			Parameters:  map[string]string{},
			Roles:       allRoles,
		},
		{
			Name:        ActionRequestDeadline,
			Description: "Request a deadline extension for one of your tasks",
			Parameters: map[string]string{
				"task_id":      "Task ID (required, must be assigned to you)",
				"new_deadline": "Requested new deadline YYYY-MM-DD (required)",
				"reason":       "Why the extension is needed (required)",
			},
			Roles: allRoles,
		},
		{
			Name:        ActionApproveDeadlineRequest,
			Description: "Approve a pending deadline extension request and move the task deadline",
			Parameters: map[string]string{
				"request_id":    "Deadline request ID (required)",
				"response_note": "Note to the requester (optional)",
			},
			Roles: managerialRoles,
		},
		{
			Name:        ActionRejectDeadlineRequest,
			Description: "Reject a pending deadline extension request",
			Parameters: map[string]string{
				"request_id":    "Deadline request ID (required)",
				"response_note": "Note to the requester (optional)",
			},
			Roles: managerialRoles,
		},
	})
}
