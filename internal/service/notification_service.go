package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
	"github.com/operai/workforce-api/pkg/jobs"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID string, role models.UserRole, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string, role models.UserRole) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string, role models.UserRole) error
}

// NotificationService persists notifications and fans them out through a
// background queue so callers never block on delivery.
type NotificationService struct {
	repo   notificationRepository
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs the service and its delivery queue.
func NewNotificationService(repo notificationRepository, queueCfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{repo: repo, logger: logger}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("notifications", s.deliver, queueCfg)
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Dispatch queues a notification for asynchronous persistence. If the queue
// is not running the notification is written synchronously instead.
func (s *NotificationService) Dispatch(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      n.ID,
		Type:    string(n.Type),
		Payload: n,
	})
	if err == nil {
		return nil
	}
	s.logger.Warn("notification queue unavailable, persisting inline", zap.Error(err))
	if err := s.repo.Create(ctx, n); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist notification")
	}
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(*models.Notification)
	if !ok {
		return fmt.Errorf("notification job %s carries unexpected payload %T", job.ID, job.Payload)
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("persist notification %s: %w", n.ID, err)
	}
	return nil
}

// List returns notifications visible to the user, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, role models.UserRole, unreadOnly bool, limit int) ([]models.Notification, error) {
	notifications, err := s.repo.ListForUser(ctx, userID, role, unreadOnly, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// CountUnread returns the unread badge count.
func (s *NotificationService) CountUnread(ctx context.Context, userID string, role models.UserRole) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID, role)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}

// MarkRead marks one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead marks every notification visible to the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string, role models.UserRole) error {
	if err := s.repo.MarkAllRead(ctx, userID, role); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}
