package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

type userDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ensureCanViewUser enforces the three-tier visibility rule. Everyone sees
// themselves, admin and hr see everyone, team leads see employees and interns
// of their own department. Violations are reported as forbidden, never as an
// empty result.
func ensureCanViewUser(ctx context.Context, users userDirectory, claims *models.JWTClaims, targetID string) error {
	if targetID == claims.UserID {
		return nil
	}
	switch claims.Role {
	case models.RoleAdmin, models.RoleHR:
		return nil
	case models.RoleTeamLead:
		actor, err := users.FindByID(ctx, claims.UserID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requester")
		}
		target, err := users.FindByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "user not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target user")
		}
		if actor.DepartmentID != nil && target.DepartmentID != nil &&
			*actor.DepartmentID == *target.DepartmentID &&
			(target.Role == models.RoleEmployee || target.Role == models.RoleIntern) {
			return nil
		}
		return appErrors.Clone(appErrors.ErrForbidden, "team leads can only view members of their own department")
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "you can only view your own records")
	}
}
