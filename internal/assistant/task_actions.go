package assistant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

// taskByID resolves a task or fails with a validation error.
func (e *Engine) taskByID(ctx context.Context, id string) (*models.Task, error) {
	task, err := e.stores.Tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("task not found: %s", id))
		}
		return nil, err
	}
	return task, nil
}

func (e *Engine) createTask(ctx context.Context, actor Actor, params *createTaskParams) (interface{}, error) {
	assignedTo := params.AssignedTo
	if params.AssignedToEmail != "" {
		user, err := e.userByEmail(ctx, params.AssignedToEmail)
		if err != nil {
			return nil, err
		}
		assignedTo = user.ID
	}
	if assignedTo == "" {
		assignedTo = actor.ID
	}

	assignee, err := e.userByID(ctx, assignedTo)
	if err != nil {
		return nil, err
	}

	priority := models.TaskPriority(params.Priority)
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		Title:       params.Title,
		Description: params.Description,
		AssignedTo:  assignee.ID,
		CreatedBy:   actor.ID,
		Status:      models.TaskStatusTodo,
		Priority:    priority,
	}
	if params.Deadline != "" {
		task.Deadline = &params.Deadline
	}
	if err := e.stores.Tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"task_id":           task.ID,
		"title":             task.Title,
		"assigned_to":       assignee.FullName,
		"assigned_to_email": assignee.Email,
		"priority":          task.Priority,
		"deadline":          task.Deadline,
	}, nil
}

// updateTaskStatus updates status and/or progress. The assignee may change
// both on their own task; managerial roles may change any task. Completed
// forces progress to 100, entering in_progress from a fresh task nudges
// progress to 30 unless an explicit value is given.
func (e *Engine) updateTaskStatus(ctx context.Context, actor Actor, params *updateTaskStatusParams) (interface{}, error) {
	if params.Status == "" && params.Progress == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status or progress required")
	}

	task, err := e.taskByID(ctx, params.TaskID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Managerial() && task.AssignedTo != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only update tasks assigned to you")
	}

	patch := models.TaskPatch{}
	if params.Progress != nil {
		clamped := models.ClampProgress(*params.Progress)
		patch.Progress = &clamped
	}
	if params.Status != "" {
		status := models.TaskStatus(params.Status)
		patch.Status = &status
		if status == models.TaskStatusInProgress && params.Progress == nil && task.Progress == 0 {
			started := 30
			patch.Progress = &started
		}
		// Completed wins over any explicit progress value.
		if status == models.TaskStatusCompleted {
			done := 100
			patch.Progress = &done
		}
	}

	if err := e.stores.Tasks.Update(ctx, task.ID, patch); err != nil {
		return nil, err
	}

	progress := task.Progress
	if patch.Progress != nil {
		progress = *patch.Progress
	}
	return map[string]interface{}{
		"task_id":    task.ID,
		"task_title": task.Title,
		"new_status": params.Status,
		"progress":   progress,
	}, nil
}

func (e *Engine) reassignTask(ctx context.Context, actor Actor, params *reassignTaskParams) (interface{}, error) {
	task, err := e.taskByID(ctx, params.TaskID)
	if err != nil {
		return nil, err
	}

	assigneeID := params.NewAssigneeID
	if params.NewAssigneeEmail != "" {
		user, err := e.userByEmail(ctx, params.NewAssigneeEmail)
		if err != nil {
			return nil, err
		}
		assigneeID = user.ID
	}
	if assigneeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "new assignee required")
	}

	assignee, err := e.userByID(ctx, assigneeID)
	if err != nil {
		return nil, err
	}

	if err := e.stores.Tasks.Reassign(ctx, task.ID, assignee.ID); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"task_id":      task.ID,
		"task_title":   task.Title,
		"new_assignee": assignee.FullName,
	}, nil
}

func (e *Engine) listUserTasks(ctx context.Context, actor Actor, params *listUserTasksParams) (interface{}, error) {
	targetID := params.UserID
	email := params.UserEmail
	if email == "" {
		email = params.EmployeeEmail
	}
	if email != "" && targetID == "" {
		user, err := e.userByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		targetID = user.ID
	}
	if targetID == "" {
		targetID = actor.ID
	}

	if err := e.canViewUser(ctx, actor, targetID); err != nil {
		return nil, err
	}

	filter := models.TaskFilter{AssignedTo: targetID}
	if params.Status != "" {
		status := models.TaskStatus(params.Status)
		filter.Status = &status
	}
	tasks, err := e.stores.Tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	target, err := e.userByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"user":  target.FullName,
		"count": len(tasks),
		"tasks": tasks,
	}, nil
}

func (e *Engine) getTeamMembers(ctx context.Context, actor Actor, params *getTeamMembersParams) (interface{}, error) {
	var lead *models.User
	var err error

	if params.TeamLeadEmail != "" {
		if actor.Role != models.RoleAdmin && actor.Role != models.RoleHR {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only admin/hr can query other team leads' members")
		}
		lead, err = e.userByEmail(ctx, params.TeamLeadEmail)
		if err != nil {
			return nil, err
		}
		if lead.Role != models.RoleTeamLead {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("team lead not found with email: %s", params.TeamLeadEmail))
		}
	} else {
		if actor.Role != models.RoleTeamLead {
			return nil, appErrors.Clone(appErrors.ErrValidation, "team_lead_email required")
		}
		lead, err = e.userByID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
	}

	members, err := e.teamMembers(ctx, lead)
	if err != nil {
		return nil, err
	}

	memberList := make([]models.UserInfo, 0, len(members))
	for _, m := range members {
		memberList = append(memberList, models.UserInfo{ID: m.ID, Email: m.Email, FullName: m.FullName, Role: m.Role})
	}

	return map[string]interface{}{
		"team_lead": models.UserInfo{ID: lead.ID, Email: lead.Email, FullName: lead.FullName, Role: lead.Role},
		"members":   memberList,
		"count":     len(memberList),
	}, nil
}

func (e *Engine) summarizeTasks(ctx context.Context, actor Actor, _ *noParams) (interface{}, error) {
	tasks, err := e.stores.Tasks.List(ctx, models.TaskFilter{AssignedTo: actor.ID})
	if err != nil {
		return nil, err
	}

	byStatus := map[models.TaskStatus]int{
		models.TaskStatusTodo:       0,
		models.TaskStatusInProgress: 0,
		models.TaskStatusCompleted:  0,
		models.TaskStatusBlocked:    0,
	}
	var open []models.TaskView
	for _, t := range tasks {
		byStatus[t.Status]++
		if t.Status == models.TaskStatusTodo || t.Status == models.TaskStatusInProgress {
			open = append(open, t)
		}
	}

	// Earliest deadline first, priority breaks ties. Tasks without a
	// deadline sort last.
	sort.SliceStable(open, func(i, j int) bool {
		di, dj := deadlineKey(open[i].Deadline), deadlineKey(open[j].Deadline)
		if di != dj {
			return di < dj
		}
		return open[i].Priority.Rank() < open[j].Priority.Rank()
	})
	if len(open) > 5 {
		open = open[:5]
	}

	return map[string]interface{}{
		"total":        len(tasks),
		"by_status":    byStatus,
		"urgent_tasks": open,
	}, nil
}

func (e *Engine) listTeamTasks(ctx context.Context, actor Actor, _ *noParams) (interface{}, error) {
	tasks, err := e.stores.Tasks.List(ctx, models.TaskFilter{CreatedBy: actor.ID})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"count": len(tasks),
		"tasks": tasks,
	}, nil
}

func deadlineKey(deadline *string) string {
	if deadline == nil || *deadline == "" {
		return "9999-12-31"
	}
	return *deadline
}
