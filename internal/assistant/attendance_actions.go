package assistant

import (
	"context"
	"database/sql"
	"errors"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

const dateLayout = "2006-01-02"

func (e *Engine) markAttendance(ctx context.Context, actor Actor, params *markAttendanceParams) (interface{}, error) {
	now := e.now().UTC()
	today := now.Format(dateLayout)

	_, err := e.stores.Attendance.FindByUserAndDate(ctx, actor.ID, today)
	if err == nil {
		return nil, appErrors.Clone(appErrors.ErrStateConflict, "attendance already marked for today")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	mode := models.WorkMode(params.WorkMode)
	if mode == "" {
		mode = models.WorkModeWFO
	}

	att := &models.Attendance{
		UserID:   actor.ID,
		Date:     today,
		WorkMode: mode,
		Status:   models.StatusForMode(mode),
		CheckIn:  &now,
	}
	if err := e.stores.Attendance.Create(ctx, att); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"date":      today,
		"work_mode": mode,
		"status":    att.Status,
		"check_in":  now.Format("15:04"),
	}, nil
}

func (e *Engine) updateWorkMode(ctx context.Context, actor Actor, params *updateWorkModeParams) (interface{}, error) {
	today := e.now().UTC().Format(dateLayout)

	att, err := e.stores.Attendance.FindByUserAndDate(ctx, actor.ID, today)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStateConflict, "no attendance record for today, mark attendance first")
		}
		return nil, err
	}

	mode := models.WorkMode(params.WorkMode)
	if err := e.stores.Attendance.UpdateWorkMode(ctx, att.ID, mode, models.StatusForMode(mode)); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"date":      today,
		"work_mode": mode,
	}, nil
}

func (e *Engine) attendanceSummary(ctx context.Context, actor Actor, _ *noParams) (interface{}, error) {
	now := e.now().UTC()
	today := now.Format(dateLayout)

	var todayData map[string]interface{}
	att, err := e.stores.Attendance.FindByUserAndDate(ctx, actor.ID, today)
	switch {
	case err == nil:
		todayData = map[string]interface{}{
			"date":      att.Date,
			"status":    att.Status,
			"work_mode": att.WorkMode,
			"check_in":  att.CheckIn,
			"check_out": att.CheckOut,
		}
	case errors.Is(err, sql.ErrNoRows):
		todayData = map[string]interface{}{
			"date":   today,
			"status": "not_marked",
		}
	default:
		return nil, err
	}

	weekAgo := now.AddDate(0, 0, -7).Format(dateLayout)
	recent, err := e.stores.Attendance.List(ctx, models.AttendanceFilter{
		UserID:   actor.ID,
		DateFrom: weekAgo,
		DateTo:   today,
	})
	if err != nil {
		return nil, err
	}

	const totalDays = 7
	presentDays := 0
	wfhDays := 0
	for _, a := range recent {
		switch a.Status {
		case models.AttendanceStatusPresent:
			presentDays++
		case models.AttendanceStatusWFH:
			presentDays++
			wfhDays++
		}
	}

	return map[string]interface{}{
		"today": todayData,
		"last_7_days": map[string]interface{}{
			"total_days":   totalDays,
			"present_days": presentDays,
			"absent_days":  totalDays - presentDays,
			"wfh_days":     wfhDays,
		},
	}, nil
}
