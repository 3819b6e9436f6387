package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

type announcementRepository interface {
	Create(ctx context.Context, ann *models.Announcement) error
	FindByID(ctx context.Context, id string) (*models.Announcement, error)
	ListForRole(ctx context.Context, role models.UserRole, limit int) ([]models.Announcement, error)
	Delete(ctx context.Context, id string) error
}

// CreateAnnouncementRequest broadcasts a message. Empty target roles means
// everyone.
type CreateAnnouncementRequest struct {
	Title       string   `json:"title" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	TargetRoles []string `json:"target_roles" validate:"omitempty,dive,oneof=admin hr team_lead employee intern"`
}

// AnnouncementService manages role-targeted broadcasts.
type AnnouncementService struct {
	announcements announcementRepository
	notifier      notificationDispatcher
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAnnouncementService constructs an AnnouncementService.
func NewAnnouncementService(announcements announcementRepository, notifier notificationDispatcher, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{announcements: announcements, notifier: notifier, validator: validate, logger: logger}
}

// Create publishes an announcement and fans a notification out to every
// targeted role.
func (s *AnnouncementService) Create(ctx context.Context, claims *models.JWTClaims, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}

	ann := &models.Announcement{
		Title:       req.Title,
		Content:     req.Content,
		CreatedBy:   claims.UserID,
		TargetRoles: pq.StringArray(req.TargetRoles),
	}
	if err := s.announcements.Create(ctx, ann); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}

	roles := req.TargetRoles
	if len(roles) == 0 {
		roles = []string{
			string(models.RoleAdmin), string(models.RoleHR), string(models.RoleTeamLead),
			string(models.RoleEmployee), string(models.RoleIntern),
		}
	}
	for _, role := range roles {
		role := role
		n := &models.Notification{
			TargetRole: &role,
			Type:       models.NotificationAnnouncement,
			Title:      req.Title,
			Body:       req.Content,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.notifier.Dispatch(ctx, n); err != nil {
			s.logger.Warn("failed to dispatch announcement notification", zap.String("role", role), zap.Error(err))
		}
	}
	return ann, nil
}

// List returns announcements visible to the caller's role.
func (s *AnnouncementService) List(ctx context.Context, role models.UserRole, limit int) ([]models.Announcement, error) {
	announcements, err := s.announcements.ListForRole(ctx, role, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return announcements, nil
}

// Delete removes an announcement. Admins may delete any; other managers only
// their own.
func (s *AnnouncementService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	ann, err := s.announcements.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch announcement")
	}
	if claims.Role != models.RoleAdmin && ann.CreatedBy != claims.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "you can only delete your own announcements")
	}
	if err := s.announcements.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	return nil
}
