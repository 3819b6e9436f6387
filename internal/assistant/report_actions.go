package assistant

import (
	"context"
	"fmt"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

func (e *Engine) generateTeamSummary(ctx context.Context, actor Actor, _ *noParams) (interface{}, error) {
	tasks, err := e.stores.Tasks.List(ctx, models.TaskFilter{CreatedBy: actor.ID})
	if err != nil {
		return nil, err
	}

	total := len(tasks)
	byStatus := map[models.TaskStatus]int{}
	for _, t := range tasks {
		byStatus[t.Status]++
	}

	completionRate := "0%"
	if total > 0 {
		completionRate = fmt.Sprintf("%.1f%%", float64(byStatus[models.TaskStatusCompleted])/float64(total)*100)
	}

	return map[string]interface{}{
		"total_tasks":     total,
		"completed":       byStatus[models.TaskStatusCompleted],
		"in_progress":     byStatus[models.TaskStatusInProgress],
		"pending":         byStatus[models.TaskStatusTodo],
		"blocked":         byStatus[models.TaskStatusBlocked],
		"completion_rate": completionRate,
	}, nil
}

func (e *Engine) generateEmployeeReport(ctx context.Context, actor Actor, params *employeeReportParams) (interface{}, error) {
	employee, err := e.userByEmail(ctx, params.EmployeeEmail)
	if err != nil {
		return nil, err
	}

	counts, err := e.stores.Tasks.CountByStatus(ctx, employee.ID)
	if err != nil {
		return nil, err
	}
	totalTasks := 0
	for _, n := range counts {
		totalTasks += n
	}
	completed := counts[models.TaskStatusCompleted]

	completionRate := "0%"
	if totalTasks > 0 {
		completionRate = fmt.Sprintf("%.1f%%", float64(completed)/float64(totalTasks)*100)
	}

	now := e.now().UTC()
	monthAgo := now.AddDate(0, 0, -30).Format(dateLayout)
	attendance, err := e.stores.Attendance.List(ctx, models.AttendanceFilter{
		UserID:   employee.ID,
		DateFrom: monthAgo,
		DateTo:   now.Format(dateLayout),
	})
	if err != nil {
		return nil, err
	}
	presentDays := len(attendance)

	leaves, err := e.stores.Leaves.List(ctx, models.LeaveFilter{UserID: employee.ID})
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"employee": employee.FullName,
		"email":    employee.Email,
		"role":     employee.Role,
		"tasks": map[string]interface{}{
			"total":           totalTasks,
			"completed":       completed,
			"completion_rate": completionRate,
		},
		"attendance": map[string]interface{}{
			"present_days":    presentDays,
			"period":          "last_30_days",
			"attendance_rate": fmt.Sprintf("%.1f%%", float64(presentDays)/30*100),
		},
		"leaves": map[string]interface{}{
			"total_requests": len(leaves),
		},
	}, nil
}

// generateInternEvaluation scores an intern from task completion, average
// progress, and attendance. Aggregate scores are sensitive, so the action's
// role gate stays narrow even though it only reads data.
func (e *Engine) generateInternEvaluation(ctx context.Context, actor Actor, params *internEvaluationParams) (interface{}, error) {
	intern, err := e.userByEmail(ctx, params.InternEmail)
	if err != nil {
		return nil, err
	}
	if intern.Role != models.RoleIntern {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("intern not found with email: %s", params.InternEmail))
	}

	tasks, err := e.stores.Tasks.List(ctx, models.TaskFilter{AssignedTo: intern.ID})
	if err != nil {
		return nil, err
	}
	totalTasks := len(tasks)
	completed := 0
	progressSum := 0
	for _, t := range tasks {
		if t.Status == models.TaskStatusCompleted {
			completed++
		}
		progressSum += t.Progress
	}
	avgProgress := 0.0
	if totalTasks > 0 {
		avgProgress = float64(progressSum) / float64(totalTasks)
	}

	attendance, err := e.stores.Attendance.List(ctx, models.AttendanceFilter{UserID: intern.ID})
	if err != nil {
		return nil, err
	}
	totalDays := len(attendance)
	presentDays := totalDays

	score := 0.0
	if totalTasks > 0 && totalDays > 0 {
		score = float64(completed)/float64(totalTasks)*50 + avgProgress*0.3 + float64(presentDays)/float64(totalDays)*20
	}

	recommendation := "Needs improvement"
	if score > 70 {
		recommendation = "Good performance"
	}

	attendanceRate := "0%"
	if totalDays > 0 {
		attendanceRate = fmt.Sprintf("%.1f%%", float64(presentDays)/float64(totalDays)*100)
	}

	return map[string]interface{}{
		"intern": intern.FullName,
		"email":  intern.Email,
		"tasks": map[string]interface{}{
			"total":        totalTasks,
			"completed":    completed,
			"avg_progress": fmt.Sprintf("%.1f%%", avgProgress),
		},
		"attendance": map[string]interface{}{
			"total_days":   totalDays,
			"present_days": presentDays,
			"rate":         attendanceRate,
		},
		"performance_score": fmt.Sprintf("%.1f/100", score),
		"recommendation":    recommendation,
	}, nil
}

func (e *Engine) summarizeNotifications(ctx context.Context, actor Actor, _ *noParams) (interface{}, error) {
	notifications, err := e.stores.Notifications.ListForUser(ctx, actor.ID, actor.Role, false, 20)
	if err != nil {
		return nil, err
	}

	byType := map[models.NotificationType]int{}
	unread := 0
	var recentUnread []map[string]interface{}
	for _, n := range notifications {
		byType[n.Type]++
		if !n.IsRead {
			unread++
			if len(recentUnread) < 5 {
				recentUnread = append(recentUnread, map[string]interface{}{
					"title":      n.Title,
					"type":       n.Type,
					"created_at": n.CreatedAt,
				})
			}
		}
	}

	return map[string]interface{}{
		"total_notifications": len(notifications),
		"unread_count":        unread,
		"by_type":             byType,
		"recent_unread":       recentUnread,
	}, nil
}
