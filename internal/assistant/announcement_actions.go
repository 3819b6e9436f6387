package assistant

import (
	"context"
	"strings"

	"github.com/lib/pq"

	"github.com/operai/workforce-api/internal/models"
)

func (e *Engine) createAnnouncement(ctx context.Context, actor Actor, params *createAnnouncementParams) (interface{}, error) {
	ann := &models.Announcement{
		Title:       params.Title,
		Content:     params.Content,
		CreatedBy:   actor.ID,
		TargetRoles: pq.StringArray(params.TargetRoles),
	}
	if err := e.stores.Announcements.Create(ctx, ann); err != nil {
		return nil, err
	}

	audience := "All employees"
	if len(params.TargetRoles) > 0 {
		audience = strings.Join(params.TargetRoles, ", ")
	}

	return map[string]interface{}{
		"announcement_id": ann.ID,
		"title":           ann.Title,
		"target_audience": audience,
	}, nil
}
