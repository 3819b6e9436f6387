package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operai/workforce-api/internal/models"
	"github.com/operai/workforce-api/pkg/config"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

type cacheStub struct {
	entries map[string][]byte
	sets    int
}

func newCacheStub() *cacheStub {
	return &cacheStub{entries: map[string][]byte{}}
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = raw
	s.sets++
	return nil
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	delete(s.entries, pattern)
	return nil
}

type dashboardSourcesStub struct {
	userTotal  int
	taskCounts map[models.TaskStatus]int
	listCalls  int
}

func (s *dashboardSourcesStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	s.listCalls++
	return nil, s.userTotal, nil
}

func (s *dashboardSourcesStub) CountByStatus(ctx context.Context, assignedTo string) (map[models.TaskStatus]int, error) {
	return s.taskCounts, nil
}

type dashboardLeavesStub struct{ leaves []models.LeaveView }

func (s *dashboardLeavesStub) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveView, error) {
	return s.leaves, nil
}

type dashboardAttendanceStub struct{ records []models.Attendance }

func (s *dashboardAttendanceStub) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	return s.records, nil
}

func newDashboardFixture() (*DashboardService, *cacheStub, *dashboardSourcesStub) {
	cache := newCacheStub()
	sources := &dashboardSourcesStub{
		userTotal: 12,
		taskCounts: map[models.TaskStatus]int{
			models.TaskStatusTodo:      4,
			models.TaskStatusCompleted: 8,
		},
	}
	leaves := &dashboardLeavesStub{leaves: []models.LeaveView{{}, {}}}
	attendance := &dashboardAttendanceStub{records: []models.Attendance{
		{Status: models.AttendanceStatusPresent},
		{Status: models.AttendanceStatusPresent},
		{Status: models.AttendanceStatusWFH},
	}}
	svc := NewDashboardService(cache, sources, sources, leaves, attendance, config.DashboardConfig{Enabled: true, CacheTTL: time.Minute}, nil)
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC) }
	return svc, cache, sources
}

func TestStatsComputesAndCaches(t *testing.T) {
	svc, cache, sources := newDashboardFixture()

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalUsers)
	assert.Equal(t, 4, stats.TasksByStatus[models.TaskStatusTodo])
	assert.Equal(t, 2, stats.PendingLeaves)
	assert.Equal(t, 2, stats.PresentToday)
	assert.Equal(t, 1, stats.WFHToday)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, sources.listCalls)

	// Second read is served from cache without touching the sources.
	again, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.TotalUsers, again.TotalUsers)
	assert.Equal(t, 1, sources.listCalls)
}

func TestInvalidateForcesRecompute(t *testing.T) {
	svc, _, sources := newDashboardFixture()

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(context.Background()))

	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sources.listCalls)
}
