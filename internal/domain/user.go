package domain

import "time"

type UserRole string

const (
	RoleUnset  UserRole = ""
	RoleOwner  UserRole = "owner"
	RoleWorker UserRole = "worker"
)

// ParseRole maps raw user input to an assignable role. RoleUnset is the
// pre-registration state and is never assignable.
func ParseRole(s string) (UserRole, bool) {
	switch UserRole(s) {
	case RoleOwner:
		return RoleOwner, true
	case RoleWorker:
		return RoleWorker, true
	}
	return RoleUnset, false
}

type User struct {
	ID         int64
	TelegramID int64
	Role       UserRole
	Rating     float64
	CreatedAt  time.Time
}

// Registered reports whether the user completed registration. A user row
// only exists after a successful /register, so any persisted role counts.
func (u *User) Registered() bool {
	return u != nil && u.Role != RoleUnset
}
