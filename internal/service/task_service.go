package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

type taskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	FindViewByID(ctx context.Context, id string) (*models.TaskView, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.TaskView, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) error
	Reassign(ctx context.Context, id, assignedTo string) error
	Delete(ctx context.Context, id string) error
}

type notificationDispatcher interface {
	Dispatch(ctx context.Context, n *models.Notification) error
}

// CreateTaskRequest creates a task for an assignee.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	AssignedTo  string  `json:"assigned_to" validate:"required"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Deadline    *string `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateTaskRequest patches a task. Nil fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress completed blocked"`
	Priority    *string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Progress    *int    `json:"progress,omitempty"`
	Deadline    *string `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes,omitempty"`
}

// ReassignTaskRequest moves a task to a new assignee.
type ReassignTaskRequest struct {
	AssignedTo string `json:"assigned_to" validate:"required"`
}

// TaskService manages the task lifecycle.
type TaskService struct {
	tasks     taskRepository
	users     userDirectory
	notifier  notificationDispatcher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTaskService constructs a TaskService.
func NewTaskService(tasks taskRepository, users userDirectory, notifier notificationDispatcher, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{tasks: tasks, users: users, notifier: notifier, validator: validate, logger: logger}
}

// Create assigns a new task and notifies the assignee.
func (s *TaskService) Create(ctx context.Context, claims *models.JWTClaims, req CreateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}

	assignee, err := s.users.FindByID(ctx, req.AssignedTo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assignee does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignee")
	}

	priority := models.TaskPriority(req.Priority)
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  assignee.ID,
		CreatedBy:   claims.UserID,
		Status:      models.TaskStatusTodo,
		Priority:    priority,
		Deadline:    req.Deadline,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}

	s.notifyUser(ctx, assignee.ID, models.NotificationTaskAssigned,
		"New task assigned",
		fmt.Sprintf("%s assigned you a task: %s", claims.FullName, task.Title))

	return task, nil
}

// Get returns one task view if the caller may see it.
func (s *TaskService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.TaskView, error) {
	view, err := s.tasks.FindViewByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch task")
	}
	if view.CreatedBy != claims.UserID {
		if err := ensureCanViewUser(ctx, s.users, claims, view.AssignedTo); err != nil {
			return nil, err
		}
	}
	return view, nil
}

// List returns tasks matching the filter subject to the visibility rule.
// Callers without directory-wide visibility asking for someone else's tasks
// get a forbidden error rather than a silently narrowed result.
func (s *TaskService) List(ctx context.Context, claims *models.JWTClaims, filter models.TaskFilter) ([]models.TaskView, error) {
	if filter.AssignedTo == "" && filter.CreatedBy == "" && !claims.Role.Managerial() {
		filter.AssignedTo = claims.UserID
	}
	if filter.AssignedTo != "" && filter.AssignedTo != claims.UserID {
		if err := ensureCanViewUser(ctx, s.users, claims, filter.AssignedTo); err != nil {
			return nil, err
		}
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return tasks, nil
}

// Update patches a task. Managers may change anything; the assignee may only
// move status, progress and notes.
func (s *TaskService) Update(ctx context.Context, claims *models.JWTClaims, id string, req UpdateTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task patch")
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch task")
	}

	isAssignee := task.AssignedTo == claims.UserID
	if !claims.Role.Managerial() && !isAssignee {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only managers or the assignee can update this task")
	}
	if !claims.Role.Managerial() && (req.Title != nil || req.Description != nil || req.Priority != nil || req.Deadline != nil) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "assignees can only update status, progress and notes")
	}

	patch := models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Notes:       req.Notes,
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Progress != nil {
		progress := models.ClampProgress(*req.Progress)
		patch.Progress = &progress
	}

	// Status transitions carry progress with them. Starting work nudges a
	// fresh task to 30, completing forces 100.
	if patch.Status != nil {
		switch *patch.Status {
		case models.TaskStatusInProgress:
			if patch.Progress == nil && task.Progress == 0 {
				progress := 30
				patch.Progress = &progress
			}
		case models.TaskStatusCompleted:
			progress := 100
			patch.Progress = &progress
		}
	}

	if err := s.tasks.Update(ctx, id, patch); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task")
	}

	updated, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload task")
	}

	if task.AssignedTo != claims.UserID {
		s.notifyUser(ctx, task.AssignedTo, models.NotificationTaskUpdated,
			"Task updated",
			fmt.Sprintf("%s updated task: %s", claims.FullName, task.Title))
	}
	return updated, nil
}

// Reassign moves a task to a new assignee and notifies them.
func (s *TaskService) Reassign(ctx context.Context, claims *models.JWTClaims, id string, req ReassignTaskRequest) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassign payload")
	}

	assignee, err := s.users.FindByID(ctx, req.AssignedTo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assignee does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignee")
	}

	if err := s.tasks.Reassign(ctx, id, assignee.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign task")
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload task")
	}

	s.notifyUser(ctx, assignee.ID, models.NotificationTaskAssigned,
		"Task reassigned to you",
		fmt.Sprintf("%s reassigned task to you: %s", claims.FullName, task.Title))
	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete task")
	}
	return nil
}

func (s *TaskService) notifyUser(ctx context.Context, userID string, typ models.NotificationType, title, body string) {
	n := &models.Notification{
		UserID:    &userID,
		Type:      typ,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notifier.Dispatch(ctx, n); err != nil {
		s.logger.Warn("failed to dispatch task notification", zap.Error(err))
	}
}
