package assistant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/operai/workforce-api/internal/models"
	appErrors "github.com/operai/workforce-api/pkg/errors"
)

// userByID resolves a user or fails with a validation error naming the id.
func (e *Engine) userByID(ctx context.Context, id string) (*models.User, error) {
	user, err := e.stores.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("user not found: %s", id))
		}
		return nil, err
	}
	return user, nil
}

// userByEmail resolves a user or fails with a validation error naming the
// email.
func (e *Engine) userByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := e.stores.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("user not found with email: %s", email))
		}
		return nil, err
	}
	return user, nil
}

// teamMembers returns the employees and interns in the lead's department. A
// lead without a department sees no one.
func (e *Engine) teamMembers(ctx context.Context, lead *models.User) ([]models.User, error) {
	if lead.DepartmentID == nil {
		return nil, nil
	}
	members, _, err := e.stores.Users.List(ctx, models.UserFilter{
		Roles:        []models.UserRole{models.RoleEmployee, models.RoleIntern},
		DepartmentID: lead.DepartmentID,
		PageSize:     100,
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// canViewUser enforces the three-tier visibility rule: admin/hr see
// everyone, a team lead sees only employees/interns in their own department,
// everyone else sees only themselves. A violation is a permission error, not
// an empty result.
func (e *Engine) canViewUser(ctx context.Context, actor Actor, targetID string) error {
	if targetID == actor.ID {
		return nil
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleHR:
		return nil
	case models.RoleTeamLead:
		lead, err := e.userByID(ctx, actor.ID)
		if err != nil {
			return err
		}
		members, err := e.teamMembers(ctx, lead)
		if err != nil {
			return err
		}
		for _, m := range members {
			if m.ID == targetID {
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrForbidden, "team leads can only view members of their own department")
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "you can only view your own records")
	}
}
