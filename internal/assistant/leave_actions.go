package assistant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

// leaveByID resolves a leave request or fails with a validation error.
func (e *Engine) leaveByID(ctx context.Context, id string) (*models.Leave, error) {
	leave, err := e.stores.Leaves.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("leave request not found: %s", id))
		}
		return nil, err
	}
	return leave, nil
}

func (e *Engine) applyLeave(ctx context.Context, actor Actor, params *applyLeaveParams) (interface{}, error) {
	if params.EndDate < params.StartDate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}

	leaveType := models.LeaveType(params.LeaveType)
	if leaveType == "" {
		leaveType = models.LeaveTypeCasual
	}
	reason := params.Reason
	if reason == "" {
		reason = "Personal"
	}

	leave := &models.Leave{
		UserID:    actor.ID,
		LeaveType: leaveType,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
		Reason:    reason,
	}
	if err := e.stores.Leaves.Create(ctx, leave); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"leave_id":   leave.ID,
		"leave_type": leave.LeaveType,
		"start_date": leave.StartDate,
		"end_date":   leave.EndDate,
		"status":     leave.Status,
	}, nil
}

func (e *Engine) cancelLeave(ctx context.Context, actor Actor, params *cancelLeaveParams) (interface{}, error) {
	leave, err := e.leaveByID(ctx, params.LeaveID)
	if err != nil {
		return nil, err
	}
	if leave.UserID != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only cancel your own leave requests")
	}

	cancelled, err := e.stores.Leaves.Cancel(ctx, leave.ID)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, fmt.Sprintf("cannot cancel %s leave", leave.Status))
	}

	return map[string]interface{}{
		"leave_id": leave.ID,
		"status":   models.LeaveStatusCancelled,
	}, nil
}

func (e *Engine) approveLeave(ctx context.Context, actor Actor, params *approveLeaveParams) (interface{}, error) {
	leave, err := e.leaveByID(ctx, params.LeaveID)
	if err != nil {
		return nil, err
	}

	decided, err := e.stores.Leaves.Decide(ctx, leave.ID, models.LeaveStatusApproved, actor.ID, nil)
	if err != nil {
		return nil, err
	}
	if !decided {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, fmt.Sprintf("leave is %s, cannot approve", leave.Status))
	}

	owner, err := e.userByID(ctx, leave.UserID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"leave_id": leave.ID,
		"user":     owner.FullName,
		"dates":    fmt.Sprintf("%s to %s", leave.StartDate, leave.EndDate),
		"status":   models.LeaveStatusApproved,
	}, nil
}

func (e *Engine) rejectLeave(ctx context.Context, actor Actor, params *rejectLeaveParams) (interface{}, error) {
	leave, err := e.leaveByID(ctx, params.LeaveID)
	if err != nil {
		return nil, err
	}

	reason := params.Reason
	if reason == "" {
		reason = "Not approved"
	}

	decided, err := e.stores.Leaves.Decide(ctx, leave.ID, models.LeaveStatusRejected, actor.ID, &reason)
	if err != nil {
		return nil, err
	}
	if !decided {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, fmt.Sprintf("leave is %s, cannot reject", leave.Status))
	}

	owner, err := e.userByID(ctx, leave.UserID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"leave_id": leave.ID,
		"user":     owner.FullName,
		"status":   models.LeaveStatusRejected,
		"reason":   reason,
	}, nil
}

func (e *Engine) listPendingLeaves(ctx context.Context, _ Actor, _ *noParams) (interface{}, error) {
	pending := models.LeaveStatusPending
	leaves, err := e.stores.Leaves.List(ctx, models.LeaveFilter{Status: &pending})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"count":  len(leaves),
		"leaves": leaves,
	}, nil
}
