package assistant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

// deadlineRequestByID resolves a request or fails with a validation error.
func (e *Engine) deadlineRequestByID(ctx context.Context, id string) (*models.DeadlineRequest, error) {
	req, err := e.stores.Deadlines.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("deadline request not found: %s", id))
		}
		return nil, err
	}
	return req, nil
}

func (e *Engine) requestDeadline(ctx context.Context, actor Actor, params *requestDeadlineParams) (interface{}, error) {
	task, err := e.taskByID(ctx, params.TaskID)
	if err != nil {
		return nil, err
	}
	if task.AssignedTo != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the task's current assignee can request a deadline extension")
	}

	pending, err := e.stores.Deadlines.HasPendingForTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, "a pending deadline request already exists for this task")
	}

	req := &models.DeadlineRequest{
		TaskID:               task.ID,
		RequestedBy:          actor.ID,
		RequestedNewDeadline: params.NewDeadline,
		Reason:               params.Reason,
	}
	if err := e.stores.Deadlines.Create(ctx, req); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"request_id":       req.ID,
		"task_id":          task.ID,
		"task_title":       task.Title,
		"current_deadline": task.Deadline,
		"new_deadline":     req.RequestedNewDeadline,
		"status":           req.Status,
	}, nil
}

// approveDeadlineRequest decides a pending request and propagates the new
// date onto the task. The task must still exist at approval time.
func (e *Engine) approveDeadlineRequest(ctx context.Context, actor Actor, params *decideDeadlineParams) (interface{}, error) {
	req, err := e.deadlineRequestByID(ctx, params.RequestID)
	if err != nil {
		return nil, err
	}

	task, err := e.taskByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	var note *string
	if params.ResponseNote != "" {
		note = &params.ResponseNote
	}
	decided, err := e.stores.Deadlines.Approve(ctx, req.ID, actor.ID, note)
	if err != nil {
		return nil, err
	}
	if !decided {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, fmt.Sprintf("deadline request is %s, cannot approve", req.Status))
	}

	return map[string]interface{}{
		"request_id":   req.ID,
		"task_id":      task.ID,
		"task_title":   task.Title,
		"new_deadline": req.RequestedNewDeadline,
		"status":       models.DeadlineRequestApproved,
	}, nil
}

func (e *Engine) rejectDeadlineRequest(ctx context.Context, actor Actor, params *decideDeadlineParams) (interface{}, error) {
	req, err := e.deadlineRequestByID(ctx, params.RequestID)
	if err != nil {
		return nil, err
	}

	var note *string
	if params.ResponseNote != "" {
		note = &params.ResponseNote
	}
	decided, err := e.stores.Deadlines.Reject(ctx, req.ID, actor.ID, note)
	if err != nil {
		return nil, err
	}
	if !decided {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, fmt.Sprintf("deadline request is %s, cannot reject", req.Status))
	}

	return map[string]interface{}{
		"request_id": req.ID,
		"task_id":    req.TaskID,
		"status":     models.DeadlineRequestRejected,
	}, nil
}
