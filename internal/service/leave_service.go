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

type leaveRepository interface {
	Create(ctx context.Context, leave *models.Leave) error
	FindByID(ctx context.Context, id string) (*models.Leave, error)
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveView, error)
	HasOverlap(ctx context.Context, userID, startDate, endDate string) (bool, error)
	Decide(ctx context.Context, id string, status models.LeaveStatus, decidedBy string, rejectionReason *string) (bool, error)
	Cancel(ctx context.Context, id string) (bool, error)
}

// ApplyLeaveRequest raises a leave request for the caller.
type ApplyLeaveRequest struct {
	LeaveType string `json:"leave_type" validate:"omitempty,oneof=sick casual earned unpaid"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason"`
}

// DecideLeaveRequest carries the optional rejection reason.
type DecideLeaveRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

// LeaveService manages the leave request lifecycle.
type LeaveService struct {
	leaves    leaveRepository
	notifier  notificationDispatcher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeaveService constructs a LeaveService.
func NewLeaveService(leaves leaveRepository, notifier notificationDispatcher, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveService{leaves: leaves, notifier: notifier, validator: validate, logger: logger}
}

// Apply raises a leave request. Overlapping pending or approved leave is
// rejected up front.
func (s *LeaveService) Apply(ctx context.Context, claims *models.JWTClaims, req ApplyLeaveRequest) (*models.Leave, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}
	if req.EndDate < req.StartDate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date cannot be before start date")
	}

	overlap, err := s.leaves.HasOverlap(ctx, claims.UserID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check overlapping leave")
	}
	if overlap {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, "an overlapping leave request already exists")
	}

	leaveType := models.LeaveType(req.LeaveType)
	if leaveType == "" {
		leaveType = models.LeaveTypeCasual
	}
	reason := req.Reason
	if reason == "" {
		reason = "Personal"
	}

	leave := &models.Leave{
		UserID:    claims.UserID,
		LeaveType: leaveType,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    reason,
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave request")
	}

	s.notifyRole(ctx, models.RoleHR, models.NotificationLeaveDecision,
		"New leave request",
		fmt.Sprintf("%s applied for %s leave from %s to %s", claims.FullName, leaveType, req.StartDate, req.EndDate))
	return leave, nil
}

// List returns leave requests. Non-managers only see their own.
func (s *LeaveService) List(ctx context.Context, claims *models.JWTClaims, filter models.LeaveFilter) ([]models.LeaveView, error) {
	if !claims.Role.Managerial() {
		filter.UserID = claims.UserID
	}
	leaves, err := s.leaves.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}
	return leaves, nil
}

// Cancel withdraws the caller's own pending leave request.
func (s *LeaveService) Cancel(ctx context.Context, claims *models.JWTClaims, id string) (*models.Leave, error) {
	leave, err := s.findLeave(ctx, id)
	if err != nil {
		return nil, err
	}
	if leave.UserID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only cancel your own leave requests")
	}

	ok, err := s.leaves.Cancel(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel leave")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, fmt.Sprintf("cannot cancel %s leave", leave.Status))
	}
	return s.findLeave(ctx, id)
}

// Decide approves or rejects a pending leave request and notifies the owner.
// An already decided request is a state conflict, not a silent overwrite.
func (s *LeaveService) Decide(ctx context.Context, claims *models.JWTClaims, id string, approve bool, req DecideLeaveRequest) (*models.Leave, error) {
	leave, err := s.findLeave(ctx, id)
	if err != nil {
		return nil, err
	}

	status := models.LeaveStatusApproved
	verb := "approve"
	var rejectionReason *string
	if !approve {
		status = models.LeaveStatusRejected
		verb = "reject"
		reason := req.RejectionReason
		if reason == "" {
			reason = "Not approved"
		}
		rejectionReason = &reason
	}

	ok, err := s.leaves.Decide(ctx, id, status, claims.UserID, rejectionReason)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decide leave")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, fmt.Sprintf("leave is %s, cannot %s", leave.Status, verb))
	}

	owner := leave.UserID
	body := fmt.Sprintf("Your %s leave from %s to %s was %sd by %s", leave.LeaveType, leave.StartDate, leave.EndDate, verb, claims.FullName)
	s.notifyUserLeave(ctx, owner, body)

	return s.findLeave(ctx, id)
}

func (s *LeaveService) findLeave(ctx context.Context, id string) (*models.Leave, error) {
	leave, err := s.leaves.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch leave request")
	}
	return leave, nil
}

func (s *LeaveService) notifyUserLeave(ctx context.Context, userID, body string) {
	n := &models.Notification{
		UserID:    &userID,
		Type:      models.NotificationLeaveDecision,
		Title:     "Leave request decided",
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notifier.Dispatch(ctx, n); err != nil {
		s.logger.Warn("failed to dispatch leave notification", zap.Error(err))
	}
}

func (s *LeaveService) notifyRole(ctx context.Context, role models.UserRole, typ models.NotificationType, title, body string) {
	roleStr := string(role)
	n := &models.Notification{
		TargetRole: &roleStr,
		Type:       typ,
		Title:      title,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.notifier.Dispatch(ctx, n); err != nil {
		s.logger.Warn("failed to dispatch leave notification", zap.Error(err))
	}
}
