package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

type attendanceRepository interface {
	Create(ctx context.Context, att *models.Attendance) error
	FindByUserAndDate(ctx context.Context, userID, date string) (*models.Attendance, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
	UpdateWorkMode(ctx context.Context, id string, mode models.WorkMode, status models.AttendanceStatus) error
	SetCheckOut(ctx context.Context, id string, checkOut time.Time) error
	CountByStatus(ctx context.Context, userID, dateFrom, dateTo string) (map[models.AttendanceStatus]int, error)
}

// MarkAttendanceRequest checks the caller in for today.
type MarkAttendanceRequest struct {
	WorkMode string  `json:"work_mode" validate:"omitempty,oneof=wfo wfh hybrid"`
	Notes    *string `json:"notes,omitempty"`
}

// UpdateWorkModeRequest changes today's work mode.
type UpdateWorkModeRequest struct {
	WorkMode string `json:"work_mode" validate:"required,oneof=wfo wfh hybrid"`
}

const summaryWindowDays = 7

// AttendanceService manages daily attendance records.
type AttendanceService struct {
	attendance attendanceRepository
	users      userDirectory
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(attendance attendanceRepository, users userDirectory, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendance: attendance,
		users:      users,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
}

// CheckIn marks attendance for today. At most one record exists per user per
// day; a second check-in is a state conflict.
func (s *AttendanceService) CheckIn(ctx context.Context, claims *models.JWTClaims, req MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	now := s.now().UTC()
	today := now.Format("2006-01-02")

	if _, err := s.attendance.FindByUserAndDate(ctx, claims.UserID, today); err == nil {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, "attendance already marked for today")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check attendance")
	}

	mode := models.WorkMode(req.WorkMode)
	if mode == "" {
		mode = models.WorkModeWFO
	}

	att := &models.Attendance{
		UserID:   claims.UserID,
		Date:     today,
		WorkMode: mode,
		Status:   models.StatusForMode(mode),
		CheckIn:  &now,
		Notes:    req.Notes,
	}
	if err := s.attendance.Create(ctx, att); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	return att, nil
}

// CheckOut stamps the check-out time on today's record. Requires a prior
// check-in and happens at most once.
func (s *AttendanceService) CheckOut(ctx context.Context, claims *models.JWTClaims) (*models.Attendance, error) {
	now := s.now().UTC()
	today := now.Format("2006-01-02")

	att, err := s.attendance.FindByUserAndDate(ctx, claims.UserID, today)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStateConflict, "no attendance record for today, mark attendance first")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if att.CheckOut != nil {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, "already checked out today")
	}

	if err := s.attendance.SetCheckOut(ctx, att.ID, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check out")
	}
	att.CheckOut = &now
	return att, nil
}

// UpdateWorkMode changes today's work mode and its derived status.
func (s *AttendanceService) UpdateWorkMode(ctx context.Context, claims *models.JWTClaims, req UpdateWorkModeRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid work mode payload")
	}

	today := s.now().UTC().Format("2006-01-02")
	att, err := s.attendance.FindByUserAndDate(ctx, claims.UserID, today)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStateConflict, "no attendance record for today, mark attendance first")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	mode := models.WorkMode(req.WorkMode)
	status := models.StatusForMode(mode)
	if err := s.attendance.UpdateWorkMode(ctx, att.ID, mode, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update work mode")
	}
	att.WorkMode = mode
	att.Status = status
	return att, nil
}

// History lists a user's attendance records subject to the visibility rule.
func (s *AttendanceService) History(ctx context.Context, claims *models.JWTClaims, filter models.AttendanceFilter) ([]models.Attendance, error) {
	if filter.UserID == "" {
		filter.UserID = claims.UserID
	}
	if err := ensureCanViewUser(ctx, s.users, claims, filter.UserID); err != nil {
		return nil, err
	}

	records, err := s.attendance.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// Summary aggregates a user's attendance over the trailing week.
func (s *AttendanceService) Summary(ctx context.Context, claims *models.JWTClaims, userID string) (*models.AttendanceSummary, error) {
	if userID == "" {
		userID = claims.UserID
	}
	if err := ensureCanViewUser(ctx, s.users, claims, userID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	today := now.Format("2006-01-02")
	from := now.AddDate(0, 0, -(summaryWindowDays - 1)).Format("2006-01-02")

	summary := &models.AttendanceSummary{TotalDays: summaryWindowDays}

	todayRecord, err := s.attendance.FindByUserAndDate(ctx, userID, today)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's attendance")
	}
	summary.Today = todayRecord

	counts, err := s.attendance.CountByStatus(ctx, userID, from, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}

	summary.WFHDays = counts[models.AttendanceStatusWFH]
	summary.PresentDays = counts[models.AttendanceStatusPresent] + counts[models.AttendanceStatusWFH]
	summary.AbsentDays = summary.TotalDays - summary.PresentDays
	if summary.AbsentDays < 0 {
		summary.AbsentDays = 0
	}
	return summary, nil
}
