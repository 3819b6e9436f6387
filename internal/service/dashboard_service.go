package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/operai/workforce-api/internal/models"
	"github.com/operai/workforce-api/pkg/config"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type dashboardUserLister interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

type dashboardTaskCounter interface {
	CountByStatus(ctx context.Context, assignedTo string) (map[models.TaskStatus]int, error)
}

type dashboardLeaveLister interface {
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveView, error)
}

type dashboardAttendanceLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
}

// DashboardStats is the cached aggregate served to the dashboard.
type DashboardStats struct {
	TotalUsers      int                       `json:"total_users"`
	TasksByStatus   map[models.TaskStatus]int `json:"tasks_by_status"`
	PendingLeaves   int                       `json:"pending_leaves"`
	PresentToday    int                       `json:"present_today"`
	WFHToday        int                       `json:"wfh_today"`
	GeneratedAt     time.Time                 `json:"generated_at"`
	RefreshInterval string                    `json:"refresh_interval"`
}

const dashboardStatsKey = "dashboard:stats"

// DashboardService aggregates platform-wide counters behind a short-lived
// cache.
type DashboardService struct {
	cache      statsCache
	users      dashboardUserLister
	tasks      dashboardTaskCounter
	leaves     dashboardLeaveLister
	attendance dashboardAttendanceLister
	cfg        config.DashboardConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(
	cache statsCache,
	users dashboardUserLister,
	tasks dashboardTaskCounter,
	leaves dashboardLeaveLister,
	attendance dashboardAttendanceLister,
	cfg config.DashboardConfig,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		cache:      cache,
		users:      users,
		tasks:      tasks,
		leaves:     leaves,
		attendance: attendance,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Stats returns the dashboard aggregate, served from cache when fresh.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var cached DashboardStats
	err := s.cache.Get(ctx, dashboardStatsKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, dashboardStatsKey, stats, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return stats, nil
}

// Invalidate drops the cached aggregate, forcing the next read to recompute.
func (s *DashboardService) Invalidate(ctx context.Context) error {
	if err := s.cache.DeleteByPattern(ctx, dashboardStatsKey); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate dashboard cache")
	}
	return nil
}

func (s *DashboardService) compute(ctx context.Context) (*DashboardStats, error) {
	_, totalUsers, err := s.users.List(ctx, models.UserFilter{PageSize: 1})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}

	taskCounts, err := s.tasks.CountByStatus(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count tasks")
	}

	pendingStatus := models.LeaveStatusPending
	pendingLeaves, err := s.leaves.List(ctx, models.LeaveFilter{Status: &pendingStatus, Limit: 200})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending leaves")
	}

	today := s.now().UTC().Format("2006-01-02")
	todayRecords, err := s.attendance.List(ctx, models.AttendanceFilter{DateFrom: today, DateTo: today, Limit: 200})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list today's attendance")
	}

	present, wfh := 0, 0
	for _, record := range todayRecords {
		switch record.Status {
		case models.AttendanceStatusPresent:
			present++
		case models.AttendanceStatusWFH:
			wfh++
		}
	}

	return &DashboardStats{
		TotalUsers:      totalUsers,
		TasksByStatus:   taskCounts,
		PendingLeaves:   len(pendingLeaves),
		PresentToday:    present,
		WFHToday:        wfh,
		GeneratedAt:     s.now().UTC(),
		RefreshInterval: s.cfg.CacheTTL.String(),
	}, nil
}
