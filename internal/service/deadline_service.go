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

type deadlineRepository interface {
	Create(ctx context.Context, req *models.DeadlineRequest) error
	FindByID(ctx context.Context, id string) (*models.DeadlineRequest, error)
	HasPendingForTask(ctx context.Context, taskID string) (bool, error)
	List(ctx context.Context, status *models.DeadlineRequestStatus, requestedBy string, limit int) ([]models.DeadlineRequestView, error)
	Approve(ctx context.Context, id, decidedBy string, responseNote *string) (bool, error)
	Reject(ctx context.Context, id, decidedBy string, responseNote *string) (bool, error)
}

type deadlineTaskLookup interface {
	FindByID(ctx context.Context, id string) (*models.Task, error)
}

// RequestDeadlineExtensionRequest asks for a task's deadline to move.
type RequestDeadlineExtensionRequest struct {
	TaskID      string `json:"task_id" validate:"required"`
	NewDeadline string `json:"new_deadline" validate:"required,datetime=2006-01-02"`
	Reason      string `json:"reason" validate:"required"`
}

// DecideDeadlineRequest carries the optional decision note.
type DecideDeadlineRequest struct {
	ResponseNote string `json:"response_note"`
}

// DeadlineService manages deadline extension requests.
type DeadlineService struct {
	requests  deadlineRepository
	tasks     deadlineTaskLookup
	notifier  notificationDispatcher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDeadlineService constructs a DeadlineService.
func NewDeadlineService(requests deadlineRepository, tasks deadlineTaskLookup, notifier notificationDispatcher, validate *validator.Validate, logger *zap.Logger) *DeadlineService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeadlineService{requests: requests, tasks: tasks, notifier: notifier, validator: validate, logger: logger}
}

// Request raises a deadline extension request. Only the task's current
// assignee may raise one, and at most one pending request exists per task.
func (s *DeadlineService) Request(ctx context.Context, claims *models.JWTClaims, req RequestDeadlineExtensionRequest) (*models.DeadlineRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid deadline request payload")
	}

	task, err := s.tasks.FindByID(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch task")
	}
	if task.AssignedTo != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the task assignee can request a deadline extension")
	}

	pending, err := s.requests.HasPendingForTask(ctx, req.TaskID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending requests")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, "a pending deadline request already exists for this task")
	}

	request := &models.DeadlineRequest{
		TaskID:               req.TaskID,
		RequestedBy:          claims.UserID,
		RequestedNewDeadline: req.NewDeadline,
		Reason:               req.Reason,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create deadline request")
	}

	creator := task.CreatedBy
	s.notify(ctx, &creator, nil,
		"Deadline extension requested",
		fmt.Sprintf("%s requested moving the deadline of %q to %s", claims.FullName, task.Title, req.NewDeadline))
	return request, nil
}

// List returns deadline requests. Non-managers only see their own.
func (s *DeadlineService) List(ctx context.Context, claims *models.JWTClaims, status *models.DeadlineRequestStatus, limit int) ([]models.DeadlineRequestView, error) {
	requestedBy := ""
	if !claims.Role.Managerial() {
		requestedBy = claims.UserID
	}
	requests, err := s.requests.List(ctx, status, requestedBy, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list deadline requests")
	}
	return requests, nil
}

// Decide approves or rejects a pending deadline request. Approval also moves
// the task deadline atomically; an already decided request is a state
// conflict.
func (s *DeadlineService) Decide(ctx context.Context, claims *models.JWTClaims, id string, approve bool, req DecideDeadlineRequest) (*models.DeadlineRequest, error) {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	var note *string
	if req.ResponseNote != "" {
		note = &req.ResponseNote
	}

	var ok bool
	verb := "approve"
	if approve {
		if _, err := s.tasks.FindByID(ctx, request.TaskID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrStateConflict, "the task for this request no longer exists")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch task")
		}
		ok, err = s.requests.Approve(ctx, id, claims.UserID, note)
	} else {
		verb = "reject"
		ok, err = s.requests.Reject(ctx, id, claims.UserID, note)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decide deadline request")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, fmt.Sprintf("deadline request is %s, cannot %s", request.Status, verb))
	}

	owner := request.RequestedBy
	s.notify(ctx, &owner, nil,
		"Deadline request decided",
		fmt.Sprintf("Your deadline request was %sd by %s", verb, claims.FullName))
	return s.findRequest(ctx, id)
}

func (s *DeadlineService) findRequest(ctx context.Context, id string) (*models.DeadlineRequest, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "deadline request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch deadline request")
	}
	return request, nil
}

func (s *DeadlineService) notify(ctx context.Context, userID, targetRole *string, title, body string) {
	n := &models.Notification{
		UserID:     userID,
		TargetRole: targetRole,
		Type:       models.NotificationDeadlineDecision,
		Title:      title,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.notifier.Dispatch(ctx, n); err != nil {
		s.logger.Warn("failed to dispatch deadline notification", zap.Error(err))
	}
}
