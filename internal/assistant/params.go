package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/operai/workforce-api/pkg/errors"
)

// Per-action parameter structs. Each is decoded strictly (unknown fields
// rejected) and validated before its handler runs, so handler bodies never
// touch an untyped parameter bag.

type createTaskParams struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	AssignedTo      string `json:"assigned_to"`
	AssignedToEmail string `json:"assigned_to_email" validate:"omitempty,email"`
	Priority        string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Deadline        string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

type updateTaskStatusParams struct {
	TaskID   string `json:"task_id" validate:"required"`
	Status   string `json:"status" validate:"omitempty,oneof=todo in_progress completed blocked"`
	Progress *int   `json:"progress"`
}

type reassignTaskParams struct {
	TaskID           string `json:"task_id" validate:"required"`
	NewAssigneeEmail string `json:"new_assignee_email" validate:"omitempty,email"`
	NewAssigneeID    string `json:"new_assignee_id"`
}

type listUserTasksParams struct {
	UserID string `json:"user_id"`
	// employee_email is an accepted alias for user_email; models emit both.
	UserEmail     string `json:"user_email" validate:"omitempty,email"`
	EmployeeEmail string `json:"employee_email" validate:"omitempty,email"`
	Status        string `json:"status" validate:"omitempty,oneof=todo in_progress completed blocked"`
}

type getTeamMembersParams struct {
	TeamLeadEmail string `json:"team_lead_email" validate:"omitempty,email"`
}

type applyLeaveParams struct {
	LeaveType string `json:"leave_type" validate:"omitempty,oneof=sick casual earned unpaid"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason"`
}

type cancelLeaveParams struct {
	LeaveID string `json:"leave_id" validate:"required"`
}

type approveLeaveParams struct {
	LeaveID string `json:"leave_id" validate:"required"`
}

type rejectLeaveParams struct {
	LeaveID string `json:"leave_id" validate:"required"`
	Reason  string `json:"reason"`
}

type markAttendanceParams struct {
	WorkMode string `json:"work_mode" validate:"omitempty,oneof=wfo wfh hybrid"`
}

type updateWorkModeParams struct {
	WorkMode string `json:"work_mode" validate:"required,oneof=wfo wfh hybrid"`
}

type createAnnouncementParams struct {
	Title       string   `json:"title" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	TargetRoles []string `json:"target_roles" validate:"omitempty,dive,oneof=admin hr team_lead employee intern"`
}

type employeeReportParams struct {
	EmployeeEmail string `json:"employee_email" validate:"required,email"`
}

type internEvaluationParams struct {
	InternEmail string `json:"intern_email" validate:"required,email"`
}

type requestDeadlineParams struct {
	TaskID      string `json:"task_id" validate:"required"`
	NewDeadline string `json:"new_deadline" validate:"required,datetime=2006-01-02"`
	Reason      string `json:"reason" validate:"required"`
}

type decideDeadlineParams struct {
	RequestID    string `json:"request_id" validate:"required"`
	ResponseNote string `json:"response_note"`
}

type noParams struct{}

// decodeParams strictly decodes raw params into T and validates it. A nil or
// empty payload decodes as the zero value so optional-only actions accept a
// missing params object.
func decodeParams[T any](validate *validator.Validate, raw json.RawMessage) (*T, error) {
	var params T
	if len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&params); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid parameters: %v", err))
		}
	}
	if err := validate.Struct(&params); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid parameters: %v", err))
	}
	return &params, nil
}
