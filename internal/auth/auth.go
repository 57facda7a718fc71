// Package auth gates mutating actions by actor role. The policy is a
// pure table over (role, action); callers load the actor themselves and
// pass the freshly read role, both when a workflow starts and again when
// its transaction commits.
package auth

import (
	"errors"

	"github.com/dkazmin/pvzbot/internal/domain"
)

var ErrDenied = errors.New("доступ запрещен")

type Action string

const (
	ActionRegister     Action = "register"
	ActionViewPoints   Action = "view_points"
	ActionManagePoints Action = "manage_points"
	ActionManageShifts Action = "manage_shifts"
	ActionViewSchedule Action = "view_schedule"
	ActionLeaveReview  Action = "leave_review"
	ActionViewRatings  Action = "view_ratings"
)

// Allowed reports whether an actor with the given role may perform the
// action. RoleUnset is an unregistered actor.
func Allowed(role domain.UserRole, action Action) bool {
	switch action {
	case ActionRegister, ActionViewSchedule, ActionViewRatings:
		return true
	case ActionViewPoints, ActionManagePoints, ActionManageShifts:
		return role == domain.RoleOwner
	case ActionLeaveReview:
		return role != domain.RoleUnset
	}
	return false
}

// Check is Allowed as an error: nil on allow, ErrDenied otherwise.
func Check(role domain.UserRole, action Action) error {
	if !Allowed(role, action) {
		return ErrDenied
	}
	return nil
}
