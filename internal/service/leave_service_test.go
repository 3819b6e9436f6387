package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

type leaveRepoStub struct {
	leaves map[string]*models.Leave
	nextID int
}

func newLeaveRepoStub() *leaveRepoStub {
	return &leaveRepoStub{leaves: map[string]*models.Leave{}}
}

func (s *leaveRepoStub) Create(ctx context.Context, leave *models.Leave) error {
	s.nextID++
	leave.ID = fmt.Sprintf("leave-%d", s.nextID)
	leave.Status = models.LeaveStatusPending
	clone := *leave
	s.leaves[leave.ID] = &clone
	return nil
}

func (s *leaveRepoStub) FindByID(ctx context.Context, id string) (*models.Leave, error) {
	leave, ok := s.leaves[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *leave
	return &clone, nil
}

func (s *leaveRepoStub) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveView, error) {
	var views []models.LeaveView
	for _, leave := range s.leaves {
		if filter.UserID != "" && leave.UserID != filter.UserID {
			continue
		}
		if filter.Status != nil && leave.Status != *filter.Status {
			continue
		}
		views = append(views, models.LeaveView{Leave: *leave})
	}
	return views, nil
}

func (s *leaveRepoStub) HasOverlap(ctx context.Context, userID, startDate, endDate string) (bool, error) {
	for _, leave := range s.leaves {
		if leave.UserID != userID {
			continue
		}
		if leave.Status != models.LeaveStatusPending && leave.Status != models.LeaveStatusApproved {
			continue
		}
		if leave.StartDate <= endDate && leave.EndDate >= startDate {
			return true, nil
		}
	}
	return false, nil
}

func (s *leaveRepoStub) Decide(ctx context.Context, id string, status models.LeaveStatus, decidedBy string, rejectionReason *string) (bool, error) {
	leave, ok := s.leaves[id]
	if !ok || leave.Status != models.LeaveStatusPending {
		return false, nil
	}
	leave.Status = status
	leave.ApprovedBy = &decidedBy
	leave.RejectionReason = rejectionReason
	return true, nil
}

func (s *leaveRepoStub) Cancel(ctx context.Context, id string) (bool, error) {
	leave, ok := s.leaves[id]
	if !ok || leave.Status != models.LeaveStatusPending {
		return false, nil
	}
	leave.Status = models.LeaveStatusCancelled
	return true, nil
}

func TestApplyLeaveDefaults(t *testing.T) {
	svc := NewLeaveService(newLeaveRepoStub(), &dispatcherStub{}, nil, nil)

	leave, err := svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{
		StartDate: "2026-09-10",
		EndDate:   "2026-09-12",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveTypeCasual, leave.LeaveType)
	assert.Equal(t, "Personal", leave.Reason)
	assert.Equal(t, models.LeaveStatusPending, leave.Status)
}

func TestApplyLeaveOverlapConflict(t *testing.T) {
	svc := NewLeaveService(newLeaveRepoStub(), &dispatcherStub{}, nil, nil)
	emp := claimsFor("emp-1", models.RoleEmployee)

	_, err := svc.Apply(context.Background(), emp, ApplyLeaveRequest{StartDate: "2026-09-10", EndDate: "2026-09-12"})
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), emp, ApplyLeaveRequest{StartDate: "2026-09-11", EndDate: "2026-09-13"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)
}

func TestApplyLeaveEndBeforeStart(t *testing.T) {
	svc := NewLeaveService(newLeaveRepoStub(), &dispatcherStub{}, nil, nil)

	_, err := svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{
		StartDate: "2026-09-12",
		EndDate:   "2026-09-10",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDecideLeaveNotifiesOwner(t *testing.T) {
	repo := newLeaveRepoStub()
	notifier := &dispatcherStub{}
	svc := NewLeaveService(repo, notifier, nil, nil)

	leave, err := svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{StartDate: "2026-09-10", EndDate: "2026-09-12"})
	require.NoError(t, err)

	decided, err := svc.Decide(context.Background(), claimsFor("admin-1", models.RoleAdmin), leave.ID, true, DecideLeaveRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, decided.Status)

	last := notifier.sent[len(notifier.sent)-1]
	require.NotNil(t, last.UserID)
	assert.Equal(t, "emp-1", *last.UserID)
	assert.Equal(t, models.NotificationLeaveDecision, last.Type)
}

func TestDecideLeaveAlreadyDecided(t *testing.T) {
	repo := newLeaveRepoStub()
	svc := NewLeaveService(repo, &dispatcherStub{}, nil, nil)
	admin := claimsFor("admin-1", models.RoleAdmin)

	leave, err := svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{StartDate: "2026-09-10", EndDate: "2026-09-12"})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), admin, leave.ID, true, DecideLeaveRequest{})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), admin, leave.ID, false, DecideLeaveRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)
}

func TestRejectLeaveDefaultReason(t *testing.T) {
	repo := newLeaveRepoStub()
	svc := NewLeaveService(repo, &dispatcherStub{}, nil, nil)

	leave, err := svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{StartDate: "2026-09-10", EndDate: "2026-09-12"})
	require.NoError(t, err)

	decided, err := svc.Decide(context.Background(), claimsFor("admin-1", models.RoleAdmin), leave.ID, false, DecideLeaveRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusRejected, decided.Status)
	require.NotNil(t, decided.RejectionReason)
	assert.Equal(t, "Not approved", *decided.RejectionReason)
}

func TestCancelLeaveOwnership(t *testing.T) {
	repo := newLeaveRepoStub()
	svc := NewLeaveService(repo, &dispatcherStub{}, nil, nil)

	leave, err := svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{StartDate: "2026-09-10", EndDate: "2026-09-12"})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), claimsFor("emp-2", models.RoleEmployee), leave.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	cancelled, err := svc.Cancel(context.Background(), claimsFor("emp-1", models.RoleEmployee), leave.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusCancelled, cancelled.Status)
}

func TestListLeavesForcedToSelf(t *testing.T) {
	repo := newLeaveRepoStub()
	svc := NewLeaveService(repo, &dispatcherStub{}, nil, nil)

	_, err := svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{StartDate: "2026-09-10", EndDate: "2026-09-12"})
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), claimsFor("emp-2", models.RoleEmployee), ApplyLeaveRequest{StartDate: "2026-09-10", EndDate: "2026-09-12"})
	require.NoError(t, err)

	leaves, err := svc.List(context.Background(), claimsFor("emp-1", models.RoleEmployee), models.LeaveFilter{})
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, "emp-1", leaves[0].UserID)
}
