package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

type attendanceRepoStub struct {
	records map[string]*models.Attendance
	nextID  int
}

func newAttendanceRepoStub() *attendanceRepoStub {
	return &attendanceRepoStub{records: map[string]*models.Attendance{}}
}

func attKey(userID, date string) string { return userID + "|" + date }

func (s *attendanceRepoStub) Create(ctx context.Context, att *models.Attendance) error {
	s.nextID++
	att.ID = fmt.Sprintf("att-%d", s.nextID)
	clone := *att
	s.records[attKey(att.UserID, att.Date)] = &clone
	return nil
}

func (s *attendanceRepoStub) FindByUserAndDate(ctx context.Context, userID, date string) (*models.Attendance, error) {
	att, ok := s.records[attKey(userID, date)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *att
	return &clone, nil
}

func (s *attendanceRepoStub) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	var records []models.Attendance
	for _, att := range s.records {
		if filter.UserID != "" && att.UserID != filter.UserID {
			continue
		}
		if filter.DateFrom != "" && att.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && att.Date > filter.DateTo {
			continue
		}
		records = append(records, *att)
	}
	return records, nil
}

func (s *attendanceRepoStub) UpdateWorkMode(ctx context.Context, id string, mode models.WorkMode, status models.AttendanceStatus) error {
	for _, att := range s.records {
		if att.ID == id {
			att.WorkMode = mode
			att.Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *attendanceRepoStub) SetCheckOut(ctx context.Context, id string, checkOut time.Time) error {
	for _, att := range s.records {
		if att.ID == id {
			att.CheckOut = &checkOut
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *attendanceRepoStub) CountByStatus(ctx context.Context, userID, dateFrom, dateTo string) (map[models.AttendanceStatus]int, error) {
	counts := map[models.AttendanceStatus]int{}
	for _, att := range s.records {
		if att.UserID != userID || att.Date < dateFrom || att.Date > dateTo {
			continue
		}
		counts[att.Status]++
	}
	return counts, nil
}

func newAttendanceFixture(t *testing.T) (*AttendanceService, *attendanceRepoStub) {
	t.Helper()
	repo := newAttendanceRepoStub()
	svc := NewAttendanceService(repo, testDirectory(), nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC) }
	return svc, repo
}

func TestCheckInThenConflict(t *testing.T) {
	svc, _ := newAttendanceFixture(t)
	emp := claimsFor("emp-1", models.RoleEmployee)

	att, err := svc.CheckIn(context.Background(), emp, MarkAttendanceRequest{WorkMode: "wfh"})
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", att.Date)
	assert.Equal(t, models.AttendanceStatusWFH, att.Status)
	require.NotNil(t, att.CheckIn)

	_, err = svc.CheckIn(context.Background(), emp, MarkAttendanceRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)
}

func TestCheckInDefaultsToOffice(t *testing.T) {
	svc, _ := newAttendanceFixture(t)

	att, err := svc.CheckIn(context.Background(), claimsFor("emp-1", models.RoleEmployee), MarkAttendanceRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.WorkModeWFO, att.WorkMode)
	assert.Equal(t, models.AttendanceStatusPresent, att.Status)
}

func TestCheckOutRequiresCheckIn(t *testing.T) {
	svc, _ := newAttendanceFixture(t)
	emp := claimsFor("emp-1", models.RoleEmployee)

	_, err := svc.CheckOut(context.Background(), emp)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.CheckIn(context.Background(), emp, MarkAttendanceRequest{})
	require.NoError(t, err)

	att, err := svc.CheckOut(context.Background(), emp)
	require.NoError(t, err)
	require.NotNil(t, att.CheckOut)

	_, err = svc.CheckOut(context.Background(), emp)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)
}

func TestUpdateWorkModeWithoutRecord(t *testing.T) {
	svc, _ := newAttendanceFixture(t)

	_, err := svc.UpdateWorkMode(context.Background(), claimsFor("emp-1", models.RoleEmployee), UpdateWorkModeRequest{WorkMode: "wfh"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)
}

func TestUpdateWorkModeDerivesStatus(t *testing.T) {
	svc, _ := newAttendanceFixture(t)
	emp := claimsFor("emp-1", models.RoleEmployee)

	_, err := svc.CheckIn(context.Background(), emp, MarkAttendanceRequest{WorkMode: "wfo"})
	require.NoError(t, err)

	att, err := svc.UpdateWorkMode(context.Background(), emp, UpdateWorkModeRequest{WorkMode: "wfh"})
	require.NoError(t, err)
	assert.Equal(t, models.WorkModeWFH, att.WorkMode)
	assert.Equal(t, models.AttendanceStatusWFH, att.Status)
}

func TestSummaryCountsTrailingWeek(t *testing.T) {
	svc, repo := newAttendanceFixture(t)
	emp := claimsFor("emp-1", models.RoleEmployee)

	for _, day := range []string{"2026-08-27", "2026-08-28", "2026-08-31"} {
		require.NoError(t, repo.Create(context.Background(), &models.Attendance{
			UserID: "emp-1", Date: day, WorkMode: models.WorkModeWFO, Status: models.AttendanceStatusPresent,
		}))
	}
	require.NoError(t, repo.Create(context.Background(), &models.Attendance{
		UserID: "emp-1", Date: "2026-09-01", WorkMode: models.WorkModeWFH, Status: models.AttendanceStatusWFH,
	}))

	summary, err := svc.Summary(context.Background(), emp, "")
	require.NoError(t, err)
	assert.Equal(t, 7, summary.TotalDays)
	assert.Equal(t, 4, summary.PresentDays)
	assert.Equal(t, 1, summary.WFHDays)
	assert.Equal(t, 3, summary.AbsentDays)
	require.NotNil(t, summary.Today)
	assert.Equal(t, models.WorkModeWFH, summary.Today.WorkMode)
}

func TestSummaryCrossUserForbidden(t *testing.T) {
	svc, _ := newAttendanceFixture(t)

	_, err := svc.Summary(context.Background(), claimsFor("emp-1", models.RoleEmployee), "emp-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
