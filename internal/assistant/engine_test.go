package assistant

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operai/workforce-api/internal/models"
)

type userStoreStub struct {
	users map[string]*models.User
}

func (s *userStoreStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userStoreStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userStoreStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range s.users {
		if len(filter.Roles) > 0 {
			match := false
			for _, r := range filter.Roles {
				if u.Role == r {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		if filter.DepartmentID != nil {
			if u.DepartmentID == nil || *u.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

type taskStoreStub struct {
	tasks   map[string]*models.Task
	nextID  int
	patches map[string]models.TaskPatch
	panicOn string
}

func (s *taskStoreStub) Create(ctx context.Context, task *models.Task) error {
	s.nextID++
	task.ID = fmt.Sprintf("task-%d", s.nextID)
	s.tasks[task.ID] = task
	return nil
}

func (s *taskStoreStub) FindByID(ctx context.Context, id string) (*models.Task, error) {
	if s.panicOn == "find" {
		panic("store exploded")
	}
	if t, ok := s.tasks[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *taskStoreStub) List(ctx context.Context, filter models.TaskFilter) ([]models.TaskView, error) {
	var out []models.TaskView
	for _, t := range s.tasks {
		if filter.AssignedTo != "" && t.AssignedTo != filter.AssignedTo {
			continue
		}
		if filter.CreatedBy != "" && t.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, models.TaskView{Task: *t})
	}
	return out, nil
}

func (s *taskStoreStub) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	t, ok := s.tasks[id]
	if !ok {
		return sql.ErrNoRows
	}
	if s.patches == nil {
		s.patches = map[string]models.TaskPatch{}
	}
	s.patches[id] = patch
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Progress != nil {
		t.Progress = *patch.Progress
	}
	if patch.Deadline != nil {
		t.Deadline = patch.Deadline
	}
	return nil
}

func (s *taskStoreStub) Reassign(ctx context.Context, id, assignedTo string) error {
	t, ok := s.tasks[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.AssignedTo = assignedTo
	return nil
}

func (s *taskStoreStub) CountByStatus(ctx context.Context, assignedTo string) (map[models.TaskStatus]int, error) {
	counts := map[models.TaskStatus]int{}
	for _, t := range s.tasks {
		if assignedTo != "" && t.AssignedTo != assignedTo {
			continue
		}
		counts[t.Status]++
	}
	return counts, nil
}

type leaveStoreStub struct {
	leaves map[string]*models.Leave
	nextID int
}

func (s *leaveStoreStub) Create(ctx context.Context, leave *models.Leave) error {
	s.nextID++
	leave.ID = fmt.Sprintf("leave-%d", s.nextID)
	leave.Status = models.LeaveStatusPending
	s.leaves[leave.ID] = leave
	return nil
}

func (s *leaveStoreStub) FindByID(ctx context.Context, id string) (*models.Leave, error) {
	if l, ok := s.leaves[id]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *leaveStoreStub) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveView, error) {
	var out []models.LeaveView
	for _, l := range s.leaves {
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		out = append(out, models.LeaveView{Leave: *l})
	}
	return out, nil
}

func (s *leaveStoreStub) Decide(ctx context.Context, id string, status models.LeaveStatus, decidedBy string, rejectionReason *string) (bool, error) {
	l, ok := s.leaves[id]
	if !ok || l.Status != models.LeaveStatusPending {
		return false, nil
	}
	l.Status = status
	l.ApprovedBy = &decidedBy
	l.RejectionReason = rejectionReason
	return true, nil
}

func (s *leaveStoreStub) Cancel(ctx context.Context, id string) (bool, error) {
	l, ok := s.leaves[id]
	if !ok || l.Status != models.LeaveStatusPending {
		return false, nil
	}
	l.Status = models.LeaveStatusCancelled
	return true, nil
}

type attendanceStoreStub struct {
	records map[string]*models.Attendance
	nextID  int
}

func attKey(userID, date string) string { return userID + "|" + date }

func (s *attendanceStoreStub) Create(ctx context.Context, att *models.Attendance) error {
	s.nextID++
	att.ID = fmt.Sprintf("att-%d", s.nextID)
	s.records[attKey(att.UserID, att.Date)] = att
	return nil
}

func (s *attendanceStoreStub) FindByUserAndDate(ctx context.Context, userID, date string) (*models.Attendance, error) {
	if a, ok := s.records[attKey(userID, date)]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *attendanceStoreStub) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, a := range s.records {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		if filter.DateFrom != "" && a.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && a.Date > filter.DateTo {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *attendanceStoreStub) UpdateWorkMode(ctx context.Context, id string, mode models.WorkMode, status models.AttendanceStatus) error {
	for _, a := range s.records {
		if a.ID == id {
			a.WorkMode = mode
			a.Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

type deadlineStoreStub struct {
	requests map[string]*models.DeadlineRequest
	tasks    *taskStoreStub
	nextID   int
}

func (s *deadlineStoreStub) Create(ctx context.Context, req *models.DeadlineRequest) error {
	s.nextID++
	req.ID = fmt.Sprintf("dr-%d", s.nextID)
	req.Status = models.DeadlineRequestPending
	s.requests[req.ID] = req
	return nil
}

func (s *deadlineStoreStub) FindByID(ctx context.Context, id string) (*models.DeadlineRequest, error) {
	if r, ok := s.requests[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *deadlineStoreStub) HasPendingForTask(ctx context.Context, taskID string) (bool, error) {
	for _, r := range s.requests {
		if r.TaskID == taskID && r.Status == models.DeadlineRequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *deadlineStoreStub) Approve(ctx context.Context, id, decidedBy string, responseNote *string) (bool, error) {
	r, ok := s.requests[id]
	if !ok || r.Status != models.DeadlineRequestPending {
		return false, nil
	}
	r.Status = models.DeadlineRequestApproved
	r.DecidedBy = &decidedBy
	if t, ok := s.tasks.tasks[r.TaskID]; ok {
		deadline := r.RequestedNewDeadline
		t.Deadline = &deadline
	}
	return true, nil
}

func (s *deadlineStoreStub) Reject(ctx context.Context, id, decidedBy string, responseNote *string) (bool, error) {
	r, ok := s.requests[id]
	if !ok || r.Status != models.DeadlineRequestPending {
		return false, nil
	}
	r.Status = models.DeadlineRequestRejected
	r.DecidedBy = &decidedBy
	return true, nil
}

type announcementStoreStub struct {
	created []*models.Announcement
}

func (s *announcementStoreStub) Create(ctx context.Context, ann *models.Announcement) error {
	ann.ID = fmt.Sprintf("ann-%d", len(s.created)+1)
	s.created = append(s.created, ann)
	return nil
}

type notificationStoreStub struct {
	notifications []models.Notification
}

func (s *notificationStoreStub) ListForUser(ctx context.Context, userID string, role models.UserRole, unreadOnly bool, limit int) ([]models.Notification, error) {
	return s.notifications, nil
}

type engineFixture struct {
	engine        *Engine
	users         *userStoreStub
	tasks         *taskStoreStub
	leaves        *leaveStoreStub
	attendance    *attendanceStoreStub
	deadlines     *deadlineStoreStub
	announcements *announcementStoreStub
	notifications *notificationStoreStub
}

func newFixture(t *testing.T) *engineFixture {
	t.Helper()

	deptEng := "dept-eng"
	deptOps := "dept-ops"
	users := &userStoreStub{users: map[string]*models.User{
		"admin-1":  {ID: "admin-1", Email: "admin@operai.test", FullName: "Ada Admin", Role: models.RoleAdmin, Active: true},
		"hr-1":     {ID: "hr-1", Email: "hr@operai.test", FullName: "Harper HR", Role: models.RoleHR, Active: true},
		"lead-1":   {ID: "lead-1", Email: "lead@operai.test", FullName: "Lena Lead", Role: models.RoleTeamLead, DepartmentID: &deptEng, Active: true},
		"emp-1":    {ID: "emp-1", Email: "emp@operai.test", FullName: "Evan Employee", Role: models.RoleEmployee, DepartmentID: &deptEng, Active: true},
		"emp-2":    {ID: "emp-2", Email: "other@operai.test", FullName: "Olive Outsider", Role: models.RoleEmployee, DepartmentID: &deptOps, Active: true},
		"intern-1": {ID: "intern-1", Email: "intern@operai.test", FullName: "Iris Intern", Role: models.RoleIntern, DepartmentID: &deptEng, Active: true},
	}}

	tasks := &taskStoreStub{tasks: map[string]*models.Task{}}
	leaves := &leaveStoreStub{leaves: map[string]*models.Leave{}}
	attendance := &attendanceStoreStub{records: map[string]*models.Attendance{}}
	deadlines := &deadlineStoreStub{requests: map[string]*models.DeadlineRequest{}, tasks: tasks}
	announcements := &announcementStoreStub{}
	notifications := &notificationStoreStub{}

	engine := NewEngine(Stores{
		Users:         users,
		Tasks:         tasks,
		Leaves:        leaves,
		Attendance:    attendance,
		Deadlines:     deadlines,
		Announcements: announcements,
		Notifications: notifications,
	}, nil, nil, nil)
	engine.now = func() time.Time {
		return time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	}

	return &engineFixture{
		engine:        engine,
		users:         users,
		tasks:         tasks,
		leaves:        leaves,
		attendance:    attendance,
		deadlines:     deadlines,
		announcements: announcements,
		notifications: notifications,
	}
}

func run(t *testing.T, f *engineFixture, actor Actor, name ActionName, params string) ActionResult {
	t.Helper()
	var raw json.RawMessage
	if params != "" {
		raw = json.RawMessage(params)
	}
	return f.engine.executeAction(context.Background(), actor, ActionRequest{Name: name, Params: raw})
}

var (
	adminActor  = Actor{ID: "admin-1", Role: models.RoleAdmin, Email: "admin@operai.test"}
	leadActor   = Actor{ID: "lead-1", Role: models.RoleTeamLead, Email: "lead@operai.test"}
	empActor    = Actor{ID: "emp-1", Role: models.RoleEmployee, Email: "emp@operai.test"}
	internActor = Actor{ID: "intern-1", Role: models.RoleIntern, Email: "intern@operai.test"}
)

func TestMarkAttendanceThenConflict(t *testing.T) {
	f := newFixture(t)

	first := run(t, f, empActor, ActionMarkAttendance, `{"work_mode": "wfh"}`)
	require.True(t, first.Success, "first mark should succeed: %+v", first.Error)
	details := first.Details.(map[string]interface{})
	assert.Equal(t, models.AttendanceStatusWFH, details["status"])

	second := run(t, f, empActor, ActionMarkAttendance, `{"work_mode": "wfh"}`)
	require.False(t, second.Success)
	assert.Equal(t, "STATE_CONFLICT", second.Error.Code)
}

func TestApproveAlreadyDecidedLeave(t *testing.T) {
	f := newFixture(t)
	approver := "hr-1"
	f.leaves.leaves["leave-9"] = &models.Leave{
		ID: "leave-9", UserID: "emp-1", LeaveType: models.LeaveTypeCasual,
		StartDate: "2026-09-10", EndDate: "2026-09-11",
		Status: models.LeaveStatusApproved, ApprovedBy: &approver,
	}

	result := run(t, f, leadActor, ActionApproveLeave, `{"leave_id": "leave-9"}`)
	require.False(t, result.Success)
	assert.Equal(t, "STATE_CONFLICT", result.Error.Code)
	assert.Equal(t, models.LeaveStatusApproved, f.leaves.leaves["leave-9"].Status)
}

func TestEmployeeCannotCreateTask(t *testing.T) {
	f := newFixture(t)

	result := run(t, f, empActor, ActionCreateTask, `{"title": "sneaky"}`)
	require.False(t, result.Success)
	assert.Equal(t, "FORBIDDEN", result.Error.Code)
	assert.Empty(t, f.tasks.tasks)
}

func TestBatchFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t)
	f.tasks.tasks["task-7"] = &models.Task{ID: "task-7", Title: "Ship it", AssignedTo: "lead-1", CreatedBy: "lead-1", Status: models.TaskStatusTodo}

	intent := &Intent{
		Thought: "create then update",
		Actions: []ActionRequest{
			{Name: ActionCreateTask, Params: json.RawMessage(`{"description": "missing title"}`)},
			{Name: ActionUpdateTaskStatus, Params: json.RawMessage(`{"task_id": "task-7", "status": "in_progress"}`)},
		},
	}

	out := f.engine.Execute(context.Background(), leadActor, intent)
	require.Len(t, out.Results, 2)
	assert.False(t, out.Results[0].Success)
	assert.Equal(t, "VALIDATION_ERROR", out.Results[0].Error.Code)
	assert.True(t, out.Results[1].Success)
	assert.Equal(t, models.TaskStatusInProgress, f.tasks.tasks["task-7"].Status)
}

func TestUnknownAction(t *testing.T) {
	f := newFixture(t)

	result := run(t, f, adminActor, "launch_rocket", `{}`)
	require.False(t, result.Success)
	assert.Equal(t, "UNKNOWN_ACTION", result.Error.Code)
}

func TestActionEntryMissingName(t *testing.T) {
	f := newFixture(t)

	intent := &Intent{Actions: []ActionRequest{
		{Name: "", Params: json.RawMessage(`{}`)},
		{Name: ActionGetAttendanceSummary},
	}}
	out := f.engine.Execute(context.Background(), empActor, intent)
	require.Len(t, out.Results, 2)
	assert.False(t, out.Results[0].Success)
	assert.Equal(t, "VALIDATION_ERROR", out.Results[0].Error.Code)
	assert.True(t, out.Results[1].Success)
}

func TestTeamLeadVisibility(t *testing.T) {
	f := newFixture(t)
	f.tasks.tasks["task-1"] = &models.Task{ID: "task-1", Title: "In team", AssignedTo: "emp-1", CreatedBy: "lead-1", Status: models.TaskStatusTodo}
	f.tasks.tasks["task-2"] = &models.Task{ID: "task-2", Title: "Out of team", AssignedTo: "emp-2", CreatedBy: "admin-1", Status: models.TaskStatusTodo}

	outside := run(t, f, leadActor, ActionListUserTasks, `{"user_id": "emp-2"}`)
	require.False(t, outside.Success)
	assert.Equal(t, "FORBIDDEN", outside.Error.Code)

	inside := run(t, f, leadActor, ActionListUserTasks, `{"user_id": "emp-1"}`)
	require.True(t, inside.Success, "in-department listing should succeed: %+v", inside.Error)
	details := inside.Details.(map[string]interface{})
	assert.Equal(t, 1, details["count"])
}

func TestEmployeeListForcedToSelf(t *testing.T) {
	f := newFixture(t)

	result := run(t, f, empActor, ActionListUserTasks, `{"user_id": "emp-2"}`)
	require.False(t, result.Success)
	assert.Equal(t, "FORBIDDEN", result.Error.Code)
}

func TestProgressClamp(t *testing.T) {
	f := newFixture(t)
	f.tasks.tasks["task-3"] = &models.Task{ID: "task-3", Title: "Clamp me", AssignedTo: "emp-1", CreatedBy: "lead-1", Status: models.TaskStatusInProgress, Progress: 10}

	over := run(t, f, empActor, ActionUpdateTaskStatus, `{"task_id": "task-3", "progress": 150}`)
	require.True(t, over.Success)
	assert.Equal(t, 100, f.tasks.tasks["task-3"].Progress)

	under := run(t, f, empActor, ActionUpdateTaskStatus, `{"task_id": "task-3", "progress": -5}`)
	require.True(t, under.Success)
	assert.Equal(t, 0, f.tasks.tasks["task-3"].Progress)
}

func TestCompletedForcesFullProgress(t *testing.T) {
	f := newFixture(t)
	f.tasks.tasks["task-4"] = &models.Task{ID: "task-4", Title: "Almost", AssignedTo: "emp-1", CreatedBy: "lead-1", Status: models.TaskStatusInProgress, Progress: 60}

	result := run(t, f, empActor, ActionUpdateTaskStatus, `{"task_id": "task-4", "status": "completed"}`)
	require.True(t, result.Success)
	assert.Equal(t, 100, f.tasks.tasks["task-4"].Progress)
	assert.Equal(t, models.TaskStatusCompleted, f.tasks.tasks["task-4"].Status)
}

func TestCompletedOverridesExplicitProgress(t *testing.T) {
	f := newFixture(t)
	f.tasks.tasks["task-10"] = &models.Task{ID: "task-10", Title: "Done early", AssignedTo: "emp-1", CreatedBy: "lead-1", Status: models.TaskStatusInProgress, Progress: 40}

	result := run(t, f, empActor, ActionUpdateTaskStatus, `{"task_id": "task-10", "status": "completed", "progress": 50}`)
	require.True(t, result.Success, "update should succeed: %+v", result.Error)
	assert.Equal(t, models.TaskStatusCompleted, f.tasks.tasks["task-10"].Status)
	assert.Equal(t, 100, f.tasks.tasks["task-10"].Progress)
}

func TestListUserTasksEmployeeEmailAlias(t *testing.T) {
	f := newFixture(t)
	f.tasks.tasks["task-11"] = &models.Task{ID: "task-11", Title: "Aliased", AssignedTo: "emp-1", CreatedBy: "lead-1", Status: models.TaskStatusTodo}

	result := run(t, f, adminActor, ActionListUserTasks, `{"employee_email": "emp@operai.test"}`)
	require.True(t, result.Success, "alias lookup should succeed: %+v", result.Error)
	details := result.Details.(map[string]interface{})
	assert.Equal(t, 1, details["count"])
	assert.Equal(t, "Evan Employee", details["user"])
}

func TestAssigneeOnlyUpdatesOwnTask(t *testing.T) {
	f := newFixture(t)
	f.tasks.tasks["task-5"] = &models.Task{ID: "task-5", Title: "Not yours", AssignedTo: "emp-2", CreatedBy: "admin-1", Status: models.TaskStatusTodo}

	result := run(t, f, empActor, ActionUpdateTaskStatus, `{"task_id": "task-5", "status": "completed"}`)
	require.False(t, result.Success)
	assert.Equal(t, "FORBIDDEN", result.Error.Code)
}

func TestCancelLeaveOwnershipAndState(t *testing.T) {
	f := newFixture(t)
	f.leaves.leaves["leave-1"] = &models.Leave{ID: "leave-1", UserID: "emp-2", Status: models.LeaveStatusPending}
	f.leaves.leaves["leave-2"] = &models.Leave{ID: "leave-2", UserID: "emp-1", Status: models.LeaveStatusRejected}

	notOwner := run(t, f, empActor, ActionCancelLeave, `{"leave_id": "leave-1"}`)
	require.False(t, notOwner.Success)
	assert.Equal(t, "FORBIDDEN", notOwner.Error.Code)

	decided := run(t, f, empActor, ActionCancelLeave, `{"leave_id": "leave-2"}`)
	require.False(t, decided.Success)
	assert.Equal(t, "STATE_CONFLICT", decided.Error.Code)
}

func TestDuplicateDeadlineRequest(t *testing.T) {
	f := newFixture(t)
	deadline := "2026-09-15"
	f.tasks.tasks["task-6"] = &models.Task{ID: "task-6", Title: "Due soon", AssignedTo: "emp-1", CreatedBy: "lead-1", Status: models.TaskStatusInProgress, Deadline: &deadline}

	first := run(t, f, empActor, ActionRequestDeadline, `{"task_id": "task-6", "new_deadline": "2026-09-20", "reason": "blocked on review"}`)
	require.True(t, first.Success, "first request should succeed: %+v", first.Error)

	second := run(t, f, empActor, ActionRequestDeadline, `{"task_id": "task-6", "new_deadline": "2026-09-25", "reason": "still blocked"}`)
	require.False(t, second.Success)
	assert.Equal(t, "STATE_CONFLICT", second.Error.Code)
}

func TestApproveDeadlineRequestPropagates(t *testing.T) {
	f := newFixture(t)
	old := "2026-09-15"
	f.tasks.tasks["task-8"] = &models.Task{ID: "task-8", Title: "Slipping", AssignedTo: "emp-1", CreatedBy: "lead-1", Deadline: &old}
	f.deadlines.requests["dr-1"] = &models.DeadlineRequest{ID: "dr-1", TaskID: "task-8", RequestedBy: "emp-1", RequestedNewDeadline: "2026-09-22", Status: models.DeadlineRequestPending}

	result := run(t, f, leadActor, ActionApproveDeadlineRequest, `{"request_id": "dr-1"}`)
	require.True(t, result.Success, "approval should succeed: %+v", result.Error)
	require.NotNil(t, f.tasks.tasks["task-8"].Deadline)
	assert.Equal(t, "2026-09-22", *f.tasks.tasks["task-8"].Deadline)

	again := run(t, f, leadActor, ActionApproveDeadlineRequest, `{"request_id": "dr-1"}`)
	require.False(t, again.Success)
	assert.Equal(t, "STATE_CONFLICT", again.Error.Code)
}

func TestDeadlineRequestRequiresAssignee(t *testing.T) {
	f := newFixture(t)
	f.tasks.tasks["task-9"] = &models.Task{ID: "task-9", Title: "Someone else's", AssignedTo: "emp-2", CreatedBy: "lead-1"}

	result := run(t, f, empActor, ActionRequestDeadline, `{"task_id": "task-9", "new_deadline": "2026-09-20", "reason": "nope"}`)
	require.False(t, result.Success)
	assert.Equal(t, "FORBIDDEN", result.Error.Code)
}

func TestHandlerPanicBecomesInternalFailure(t *testing.T) {
	f := newFixture(t)
	f.tasks.panicOn = "find"

	intent := &Intent{Actions: []ActionRequest{
		{Name: ActionUpdateTaskStatus, Params: json.RawMessage(`{"task_id": "task-1", "status": "completed"}`)},
		{Name: ActionGetAttendanceSummary},
	}}
	out := f.engine.Execute(context.Background(), empActor, intent)
	require.Len(t, out.Results, 2)
	assert.False(t, out.Results[0].Success)
	assert.Equal(t, "INTERNAL_ERROR", out.Results[0].Error.Code)
	assert.True(t, out.Results[1].Success)
}

func TestUnknownParamsRejected(t *testing.T) {
	f := newFixture(t)

	result := run(t, f, empActor, ActionMarkAttendance, `{"work_mode": "wfh", "surprise": true}`)
	require.False(t, result.Success)
	assert.Equal(t, "VALIDATION_ERROR", result.Error.Code)
}

func TestInternCanApplyLeave(t *testing.T) {
	f := newFixture(t)

	result := run(t, f, internActor, ActionApplyLeave, `{"start_date": "2026-09-10", "end_date": "2026-09-11"}`)
	require.True(t, result.Success, "apply should succeed: %+v", result.Error)
	details := result.Details.(map[string]interface{})
	assert.Equal(t, models.LeaveStatusPending, details["status"])
	assert.Equal(t, models.LeaveTypeCasual, details["leave_type"])
}

func TestExecuteIntentMalformed(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ExecuteIntent(context.Background(), empActor, "no json here")
	require.Error(t, err)
	assert.Empty(t, f.attendance.records)
}

func TestCatalogFiltersByRole(t *testing.T) {
	f := newFixture(t)

	entries := f.engine.Catalog(models.RoleIntern)
	byName := map[ActionName]CatalogEntry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.False(t, byName[ActionCreateTask].Allowed)
	assert.False(t, byName[ActionGenerateEmployeeReport].Allowed)
	assert.True(t, byName[ActionMarkAttendance].Allowed)
	assert.True(t, byName[ActionApplyLeave].Allowed)
}

func TestBuildSystemPromptListsOnlyAllowedActions(t *testing.T) {
	f := newFixture(t)

	prompt := f.engine.BuildSystemPrompt(empActor)
	assert.Contains(t, prompt, "mark_attendance")
	assert.Contains(t, prompt, "Today: 2026-09-01")
	assert.NotContains(t, prompt, "create_announcement")
}
