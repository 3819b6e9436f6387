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

type deadlineRepoStub struct {
	requests map[string]*models.DeadlineRequest
	nextID   int
}

func newDeadlineRepoStub() *deadlineRepoStub {
	return &deadlineRepoStub{requests: map[string]*models.DeadlineRequest{}}
}

func (s *deadlineRepoStub) Create(ctx context.Context, req *models.DeadlineRequest) error {
	s.nextID++
	req.ID = fmt.Sprintf("dr-%d", s.nextID)
	req.Status = models.DeadlineRequestPending
	clone := *req
	s.requests[req.ID] = &clone
	return nil
}

func (s *deadlineRepoStub) FindByID(ctx context.Context, id string) (*models.DeadlineRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *req
	return &clone, nil
}

func (s *deadlineRepoStub) HasPendingForTask(ctx context.Context, taskID string) (bool, error) {
	for _, req := range s.requests {
		if req.TaskID == taskID && req.Status == models.DeadlineRequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *deadlineRepoStub) List(ctx context.Context, status *models.DeadlineRequestStatus, requestedBy string, limit int) ([]models.DeadlineRequestView, error) {
	var views []models.DeadlineRequestView
	for _, req := range s.requests {
		if status != nil && req.Status != *status {
			continue
		}
		if requestedBy != "" && req.RequestedBy != requestedBy {
			continue
		}
		views = append(views, models.DeadlineRequestView{DeadlineRequest: *req})
	}
	return views, nil
}

func (s *deadlineRepoStub) decide(id, decidedBy string, status models.DeadlineRequestStatus, note *string) (bool, error) {
	req, ok := s.requests[id]
	if !ok || req.Status != models.DeadlineRequestPending {
		return false, nil
	}
	req.Status = status
	req.DecidedBy = &decidedBy
	req.ResponseNote = note
	return true, nil
}

func (s *deadlineRepoStub) Approve(ctx context.Context, id, decidedBy string, note *string) (bool, error) {
	return s.decide(id, decidedBy, models.DeadlineRequestApproved, note)
}

func (s *deadlineRepoStub) Reject(ctx context.Context, id, decidedBy string, note *string) (bool, error) {
	return s.decide(id, decidedBy, models.DeadlineRequestRejected, note)
}

func newDeadlineFixture(t *testing.T) (*DeadlineService, *taskRepoStub, *deadlineRepoStub, *dispatcherStub) {
	t.Helper()
	tasks := newTaskRepoStub()
	requests := newDeadlineRepoStub()
	notifier := &dispatcherStub{}
	return NewDeadlineService(requests, tasks, notifier, nil, nil), tasks, requests, notifier
}

func seedTask(t *testing.T, tasks *taskRepoStub, assignedTo string) *models.Task {
	t.Helper()
	task := &models.Task{Title: "Quarterly report", AssignedTo: assignedTo, CreatedBy: "lead-1"}
	require.NoError(t, tasks.Create(context.Background(), task))
	return task
}

func TestRequestDeadlineExtensionNotifiesCreator(t *testing.T) {
	svc, tasks, _, notifier := newDeadlineFixture(t)
	task := seedTask(t, tasks, "emp-1")

	req, err := svc.Request(context.Background(), claimsFor("emp-1", models.RoleEmployee), RequestDeadlineExtensionRequest{
		TaskID:      task.ID,
		NewDeadline: "2026-09-15",
		Reason:      "Waiting on upstream data",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DeadlineRequestPending, req.Status)

	require.Len(t, notifier.sent, 1)
	require.NotNil(t, notifier.sent[0].UserID)
	assert.Equal(t, "lead-1", *notifier.sent[0].UserID)
}

func TestRequestDeadlineExtensionOnlyAssignee(t *testing.T) {
	svc, tasks, _, _ := newDeadlineFixture(t)
	task := seedTask(t, tasks, "emp-1")

	_, err := svc.Request(context.Background(), claimsFor("emp-2", models.RoleEmployee), RequestDeadlineExtensionRequest{
		TaskID:      task.ID,
		NewDeadline: "2026-09-15",
		Reason:      "Not my task",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestRequestDeadlineExtensionSinglePending(t *testing.T) {
	svc, tasks, _, _ := newDeadlineFixture(t)
	task := seedTask(t, tasks, "emp-1")
	emp := claimsFor("emp-1", models.RoleEmployee)

	_, err := svc.Request(context.Background(), emp, RequestDeadlineExtensionRequest{
		TaskID: task.ID, NewDeadline: "2026-09-15", Reason: "First ask",
	})
	require.NoError(t, err)

	_, err = svc.Request(context.Background(), emp, RequestDeadlineExtensionRequest{
		TaskID: task.ID, NewDeadline: "2026-09-20", Reason: "Second ask",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)
}

func TestDecideDeadlineRequestApproveNotifiesRequester(t *testing.T) {
	svc, tasks, _, notifier := newDeadlineFixture(t)
	task := seedTask(t, tasks, "emp-1")

	req, err := svc.Request(context.Background(), claimsFor("emp-1", models.RoleEmployee), RequestDeadlineExtensionRequest{
		TaskID: task.ID, NewDeadline: "2026-09-15", Reason: "Waiting on review",
	})
	require.NoError(t, err)

	decided, err := svc.Decide(context.Background(), claimsFor("lead-1", models.RoleTeamLead), req.ID, true, DecideDeadlineRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.DeadlineRequestApproved, decided.Status)

	last := notifier.sent[len(notifier.sent)-1]
	require.NotNil(t, last.UserID)
	assert.Equal(t, "emp-1", *last.UserID)
}

func TestDecideDeadlineRequestAlreadyDecided(t *testing.T) {
	svc, tasks, _, _ := newDeadlineFixture(t)
	task := seedTask(t, tasks, "emp-1")
	lead := claimsFor("lead-1", models.RoleTeamLead)

	req, err := svc.Request(context.Background(), claimsFor("emp-1", models.RoleEmployee), RequestDeadlineExtensionRequest{
		TaskID: task.ID, NewDeadline: "2026-09-15", Reason: "Slipping",
	})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), lead, req.ID, false, DecideDeadlineRequest{ResponseNote: "Hold the date"})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), lead, req.ID, true, DecideDeadlineRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)
}

func TestDecideDeadlineRequestTaskDeleted(t *testing.T) {
	svc, tasks, _, _ := newDeadlineFixture(t)
	task := seedTask(t, tasks, "emp-1")

	req, err := svc.Request(context.Background(), claimsFor("emp-1", models.RoleEmployee), RequestDeadlineExtensionRequest{
		TaskID: task.ID, NewDeadline: "2026-09-15", Reason: "Slipping",
	})
	require.NoError(t, err)

	require.NoError(t, tasks.Delete(context.Background(), task.ID))

	_, err = svc.Decide(context.Background(), claimsFor("lead-1", models.RoleTeamLead), req.ID, true, DecideDeadlineRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStateConflict.Code, appErrors.FromError(err).Code)
}

func TestListDeadlineRequestsEmployeeForcedToSelf(t *testing.T) {
	svc, tasks, _, _ := newDeadlineFixture(t)
	mine := seedTask(t, tasks, "emp-1")
	theirs := seedTask(t, tasks, "emp-2")

	_, err := svc.Request(context.Background(), claimsFor("emp-1", models.RoleEmployee), RequestDeadlineExtensionRequest{
		TaskID: mine.ID, NewDeadline: "2026-09-15", Reason: "Mine",
	})
	require.NoError(t, err)
	_, err = svc.Request(context.Background(), claimsFor("emp-2", models.RoleEmployee), RequestDeadlineExtensionRequest{
		TaskID: theirs.ID, NewDeadline: "2026-09-16", Reason: "Theirs",
	})
	require.NoError(t, err)

	requests, err := svc.List(context.Background(), claimsFor("emp-1", models.RoleEmployee), nil, 0)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "emp-1", requests[0].RequestedBy)
}
