package auth

import (
	"testing"

	"github.com/dkazmin/pvzbot/internal/domain"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		role   domain.UserRole
		action Action
		want   bool
	}{
		{domain.RoleUnset, ActionRegister, true},
		{domain.RoleOwner, ActionRegister, true},
		{domain.RoleWorker, ActionRegister, true},

		{domain.RoleOwner, ActionManagePoints, true},
		{domain.RoleWorker, ActionManagePoints, false},
		{domain.RoleUnset, ActionManagePoints, false},

		{domain.RoleOwner, ActionManageShifts, true},
		{domain.RoleWorker, ActionManageShifts, false},
		{domain.RoleUnset, ActionManageShifts, false},

		{domain.RoleOwner, ActionViewPoints, true},
		{domain.RoleWorker, ActionViewPoints, false},
		{domain.RoleUnset, ActionViewPoints, false},

		{domain.RoleOwner, ActionLeaveReview, true},
		{domain.RoleWorker, ActionLeaveReview, true},
		{domain.RoleUnset, ActionLeaveReview, false},

		{domain.RoleUnset, ActionViewSchedule, true},
		{domain.RoleUnset, ActionViewRatings, true},

		{domain.RoleOwner, Action("unknown"), false},
	}

	for _, tt := range tests {
		if got := Allowed(tt.role, tt.action); got != tt.want {
			t.Errorf("Allowed(%q, %q) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	if err := Check(domain.RoleOwner, ActionManagePoints); err != nil {
		t.Fatalf("owner manage points: %v", err)
	}
	if err := Check(domain.RoleWorker, ActionManagePoints); err != ErrDenied {
		t.Fatalf("worker manage points: got %v, want ErrDenied", err)
	}
}
