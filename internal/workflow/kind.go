package workflow

import "github.com/dkazmin/pvzbot/internal/auth"

// Kind names one multi-step workflow. Every kind has a fixed step table
// (see steps.go) ending in a commit.
type Kind string

const (
	KindRegister    Kind = "register"
	KindAddPoint    Kind = "addpoint"
	KindEditPoint   Kind = "editpoint"
	KindDeletePoint Kind = "deletepoint"
	KindAddShift    Kind = "addshift"
	KindEditShift   Kind = "editshift"
	KindDeleteShift Kind = "deleteshift"
)

// Title is the user-facing name of the workflow.
func (k Kind) Title() string {
	switch k {
	case KindRegister:
		return "регистрация"
	case KindAddPoint:
		return "добавление пункта выдачи"
	case KindEditPoint:
		return "редактирование пункта выдачи"
	case KindDeletePoint:
		return "удаление пункта выдачи"
	case KindAddShift:
		return "добавление смены"
	case KindEditShift:
		return "редактирование смены"
	case KindDeleteShift:
		return "удаление смены"
	}
	return string(k)
}

// Action maps the workflow to the authorizer action checked at start
// and re-checked at commit.
func (k Kind) Action() auth.Action {
	switch k {
	case KindRegister:
		return auth.ActionRegister
	case KindAddPoint, KindEditPoint, KindDeletePoint:
		return auth.ActionManagePoints
	case KindAddShift, KindEditShift, KindDeleteShift:
		return auth.ActionManageShifts
	}
	return auth.Action(k)
}
