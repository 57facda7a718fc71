package workflow

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dkazmin/pvzbot/internal/domain"
)

// Field names the collected values are stored under.
const (
	FieldRole       = "role"
	FieldName       = "name"
	FieldAddress    = "address"
	FieldPointID    = "point_id"
	FieldNewName    = "new_name"
	FieldNewAddress = "new_address"
	FieldShiftID    = "shift_id"
	FieldDate       = "date"
)

// Step is one node of a workflow's transition table: the prompt shown
// on entry, the event shape it accepts, the validator and the field the
// canonical value is stored under. A failed validation re-prompts the
// same step without touching collected fields.
type Step struct {
	Name     string
	Prompt   Prompt
	Shape    Shape
	Field    string
	Validate func(raw string) (string, error)
}

var errEmptyText = errors.New("текст не может быть пустым")

func validateText(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", errEmptyText
	}
	if len([]rune(v)) > 200 {
		return "", errors.New("слишком длинный текст, максимум 200 символов")
	}
	return v, nil
}

func validateID(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return "", errors.New("укажите числовой id")
	}
	return strconv.FormatInt(id, 10), nil
}

const roleTokenPrefix = "role:"

func validateRole(raw string) (string, error) {
	v := strings.TrimPrefix(raw, roleTokenPrefix)
	role, ok := domain.ParseRole(v)
	if !ok {
		return "", errors.New("выберите роль кнопкой")
	}
	return string(role), nil
}

func roleChoices() [][]Choice {
	return [][]Choice{{
		{Label: "Владелец", Data: roleTokenPrefix + string(domain.RoleOwner)},
		{Label: "Соискатель", Data: roleTokenPrefix + string(domain.RoleWorker)},
	}}
}

var stepTables = map[Kind][]Step{
	KindRegister: {
		{
			Name:     "role",
			Prompt:   Prompt{Text: "Выберите роль:", Choices: roleChoices()},
			Shape:    ExpectChoice,
			Field:    FieldRole,
			Validate: validateRole,
		},
	},
	KindAddPoint: {
		{
			Name:     "name",
			Prompt:   Prompt{Text: "Введите название пункта выдачи:"},
			Shape:    ExpectText,
			Field:    FieldName,
			Validate: validateText,
		},
		{
			Name:     "address",
			Prompt:   Prompt{Text: "Введите адрес пункта выдачи:"},
			Shape:    ExpectText,
			Field:    FieldAddress,
			Validate: validateText,
		},
	},
	KindEditPoint: {
		{
			Name:     "point_id",
			Prompt:   Prompt{Text: "Введите ID пункта выдачи, который хотите изменить:"},
			Shape:    ExpectText,
			Field:    FieldPointID,
			Validate: validateID,
		},
		{
			Name:     "new_name",
			Prompt:   Prompt{Text: "Введите новое название пункта выдачи:"},
			Shape:    ExpectText,
			Field:    FieldNewName,
			Validate: validateText,
		},
		{
			Name:     "new_address",
			Prompt:   Prompt{Text: "Введите новый адрес пункта выдачи:"},
			Shape:    ExpectText,
			Field:    FieldNewAddress,
			Validate: validateText,
		},
	},
	KindDeletePoint: {
		{
			Name:     "point_id",
			Prompt:   Prompt{Text: "Введите ID пункта выдачи, который хотите удалить:"},
			Shape:    ExpectText,
			Field:    FieldPointID,
			Validate: validateID,
		},
	},
	KindAddShift: {
		{
			Name:     "point_id",
			Prompt:   Prompt{Text: "Введите ID пункта выдачи:"},
			Shape:    ExpectText,
			Field:    FieldPointID,
			Validate: validateID,
		},
		{
			Name:  "date",
			Shape: ExpectCalendar,
			Field: FieldDate,
		},
	},
	KindEditShift: {
		{
			Name:     "shift_id",
			Prompt:   Prompt{Text: "Введите ID смены, которую хотите изменить:"},
			Shape:    ExpectText,
			Field:    FieldShiftID,
			Validate: validateID,
		},
		{
			Name:  "date",
			Shape: ExpectCalendar,
			Field: FieldDate,
		},
	},
	KindDeleteShift: {
		{
			Name:     "shift_id",
			Prompt:   Prompt{Text: "Введите ID смены, которую хотите удалить:"},
			Shape:    ExpectText,
			Field:    FieldShiftID,
			Validate: validateID,
		},
	},
}

// Steps returns the transition table of a workflow kind.
func Steps(k Kind) []Step {
	return stepTables[k]
}
