package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

type taskStore interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.TaskView, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) error
	Reassign(ctx context.Context, id, assignedTo string) error
	CountByStatus(ctx context.Context, assignedTo string) (map[models.TaskStatus]int, error)
}

type leaveStore interface {
	Create(ctx context.Context, leave *models.Leave) error
	FindByID(ctx context.Context, id string) (*models.Leave, error)
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveView, error)
	Decide(ctx context.Context, id string, status models.LeaveStatus, decidedBy string, rejectionReason *string) (bool, error)
	Cancel(ctx context.Context, id string) (bool, error)
}

type attendanceStore interface {
	Create(ctx context.Context, att *models.Attendance) error
	FindByUserAndDate(ctx context.Context, userID, date string) (*models.Attendance, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
	UpdateWorkMode(ctx context.Context, id string, mode models.WorkMode, status models.AttendanceStatus) error
}

type deadlineStore interface {
	Create(ctx context.Context, req *models.DeadlineRequest) error
	FindByID(ctx context.Context, id string) (*models.DeadlineRequest, error)
	HasPendingForTask(ctx context.Context, taskID string) (bool, error)
	Approve(ctx context.Context, id, decidedBy string, responseNote *string) (bool, error)
	Reject(ctx context.Context, id, decidedBy string, responseNote *string) (bool, error)
}

type announcementStore interface {
	Create(ctx context.Context, ann *models.Announcement) error
}

type notificationStore interface {
	ListForUser(ctx context.Context, userID string, role models.UserRole, unreadOnly bool, limit int) ([]models.Notification, error)
}

// Actor identifies the authenticated caller for one engine invocation.
type Actor struct {
	ID    string
	Role  models.UserRole
	Email string
}

// ActionError is the failure half of a result envelope.
type ActionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ActionResult is the uniform per-action envelope. It is created once per
// executed action and never mutated afterwards.
type ActionResult struct {
	Action  ActionName   `json:"action"`
	Success bool         `json:"success"`
	Details interface{}  `json:"details,omitempty"`
	Error   *ActionError `json:"error,omitempty"`
}

// ExecutionResult is the engine's reply for one raw model output.
type ExecutionResult struct {
	Thought  string         `json:"thought"`
	Response string         `json:"response"`
	Results  []ActionResult `json:"results"`
}

// Stores bundles the entity store collaborators the engine mutates through.
type Stores struct {
	Users         userStore
	Tasks         taskStore
	Leaves        leaveStore
	Attendance    attendanceStore
	Deadlines     deadlineStore
	Announcements announcementStore
	Notifications notificationStore
}

// Engine translates parsed intents into gated, validated entity mutations.
// Actions within one intent run strictly sequentially; a failure in one
// produces a failure envelope and never aborts the rest of the batch.
type Engine struct {
	stores   Stores
	catalog  *Catalog
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine constructs the engine. The catalog is immutable configuration
// built once at startup.
func NewEngine(stores Stores, catalog *Catalog, validate *validator.Validate, logger *zap.Logger) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		stores:   stores,
		catalog:  catalog,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

// Catalog exposes the permission table filtered by role.
func (e *Engine) Catalog(role models.UserRole) []CatalogEntry {
	return e.catalog.ForRole(role)
}

// ExecuteIntent parses raw model output and executes every requested action
// in order. Only a parse failure is returned as an error; all per-action
// failures are reported inside the result envelopes.
func (e *Engine) ExecuteIntent(ctx context.Context, actor Actor, rawText string) (*ExecutionResult, error) {
	intent, err := ParseIntent(rawText)
	if err != nil {
		e.logger.Warn("malformed intent",
			zap.String("user_id", actor.ID),
			zap.Error(err),
		)
		return nil, err
	}
	return e.Execute(ctx, actor, intent), nil
}

// Execute runs a parsed intent's actions sequentially and aggregates one
// envelope per action.
func (e *Engine) Execute(ctx context.Context, actor Actor, intent *Intent) *ExecutionResult {
	results := make([]ActionResult, 0, len(intent.Actions))
	for _, req := range intent.Actions {
		results = append(results, e.executeAction(ctx, actor, req))
	}
	return &ExecutionResult{
		Thought:  intent.Thought,
		Response: intent.Response,
		Results:  results,
	}
}

// executeAction gates and runs one action. A panic inside a handler becomes
// an InternalFailure envelope for that action only.
func (e *Engine) executeAction(ctx context.Context, actor Actor, req ActionRequest) (result ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("action handler panicked",
				zap.String("action", string(req.Name)),
				zap.String("user_id", actor.ID),
				zap.Any("panic", r),
			)
			result = failure(req.Name, appErrors.ErrInternal)
		}
	}()

	if req.Name == "" {
		return failure(req.Name, appErrors.Clone(appErrors.ErrValidation, "action entry missing name"))
	}

	def, ok := e.catalog.Lookup(req.Name)
	if !ok {
		return failure(req.Name, appErrors.Clone(appErrors.ErrUnknownAction, fmt.Sprintf("unknown action: %s", req.Name)))
	}
	if !def.Allows(actor.Role) {
		return failure(req.Name, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %s is not permitted to call %s", actor.Role, req.Name)))
	}

	details, err := e.dispatch(ctx, actor, req)
	if err != nil {
		e.logger.Info("action failed",
			zap.String("action", string(req.Name)),
			zap.String("user_id", actor.ID),
			zap.Error(err),
		)
		return failure(req.Name, err)
	}
	return ActionResult{Action: req.Name, Success: true, Details: details}
}

// dispatch resolves the action name to its handler. The switch is exhaustive
// over the closed action set; adding a catalog entry without a case here is a
// bug caught by the default branch.
func (e *Engine) dispatch(ctx context.Context, actor Actor, req ActionRequest) (interface{}, error) {
	switch req.Name {
	case ActionCreateTask:
		return runAction(e, ctx, actor, req, e.createTask)
	case ActionUpdateTaskStatus:
		return runAction(e, ctx, actor, req, e.updateTaskStatus)
	case ActionReassignTask:
		return runAction(e, ctx, actor, req, e.reassignTask)
	case ActionListUserTasks:
		return runAction(e, ctx, actor, req, e.listUserTasks)
	case ActionGetTeamMembers:
		return runAction(e, ctx, actor, req, e.getTeamMembers)
	case ActionSummarizeTasks:
		return runAction(e, ctx, actor, req, e.summarizeTasks)
	case ActionApplyLeave:
		return runAction(e, ctx, actor, req, e.applyLeave)
	case ActionCancelLeave:
		return runAction(e, ctx, actor, req, e.cancelLeave)
	case ActionApproveLeave:
		return runAction(e, ctx, actor, req, e.approveLeave)
	case ActionRejectLeave:
		return runAction(e, ctx, actor, req, e.rejectLeave)
	case ActionListPendingLeaves:
		return runAction(e, ctx, actor, req, e.listPendingLeaves)
	case ActionMarkAttendance:
		return runAction(e, ctx, actor, req, e.markAttendance)
	case ActionUpdateWorkMode:
		return runAction(e, ctx, actor, req, e.updateWorkMode)
	case ActionGetAttendanceSummary:
		return runAction(e, ctx, actor, req, e.attendanceSummary)
	case ActionCreateAnnouncement:
		return runAction(e, ctx, actor, req, e.createAnnouncement)
	case ActionListTeamTasks:
		return runAction(e, ctx, actor, req, e.listTeamTasks)
	case ActionGenerateTeamSummary:
		return runAction(e, ctx, actor, req, e.generateTeamSummary)
	case ActionGenerateEmployeeReport:
		return runAction(e, ctx, actor, req, e.generateEmployeeReport)
	case ActionGenerateInternEvaluation:
		return runAction(e, ctx, actor, req, e.generateInternEvaluation)
	case ActionSummarizeNotifications:
		return runAction(e, ctx, actor, req, e.summarizeNotifications)
	case ActionRequestDeadline:
		return runAction(e, ctx, actor, req, e.requestDeadline)
	case ActionApproveDeadlineRequest:
		return runAction(e, ctx, actor, req, e.approveDeadlineRequest)
	case ActionRejectDeadlineRequest:
		return runAction(e, ctx, actor, req, e.rejectDeadlineRequest)
	default:
		return nil, appErrors.Clone(appErrors.ErrUnknownAction, fmt.Sprintf("unknown action: %s", req.Name))
	}
}

// runAction decodes the raw params into the handler's typed struct and
// invokes it.
func runAction[T any](e *Engine, ctx context.Context, actor Actor, req ActionRequest, handler func(context.Context, Actor, *T) (interface{}, error)) (interface{}, error) {
	params, err := decodeParams[T](e.validate, req.Params)
	if err != nil {
		return nil, err
	}
	return handler(ctx, actor, params)
}

func failure(name ActionName, err error) ActionResult {
	appErr := appErrors.FromError(err)
	return ActionResult{
		Action:  name,
		Success: false,
		Error:   &ActionError{Code: appErr.Code, Message: appErr.Message},
	}
}
