package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dkazmin/pvzbot/internal/auth"
	"github.com/dkazmin/pvzbot/internal/domain"
	"github.com/dkazmin/pvzbot/internal/service"
	"github.com/dkazmin/pvzbot/internal/storage"
	"github.com/dkazmin/pvzbot/internal/workflow"
)

// commit executes the transaction of a completed workflow. The services
// re-load the actor and re-run the authorizer, so a role change during
// the conversation is caught here, not just at start.
func (e *Engine) commit(ctx context.Context, inst *workflow.Instance) (string, error) {
	switch inst.Kind {
	case workflow.KindRegister:
		role, _ := domain.ParseRole(inst.Fields[workflow.FieldRole])
		if _, err := e.users.Register(ctx, inst.UserID, role); err != nil {
			return "", err
		}
		return "Регистрация прошла успешно.", nil

	case workflow.KindAddPoint:
		name := inst.Fields[workflow.FieldName]
		address := inst.Fields[workflow.FieldAddress]
		p, err := e.points.Create(ctx, inst.UserID, name, address)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Пункт выдачи «%s» по адресу «%s» добавлен (id %d).", p.Name, p.Address, p.ID), nil

	case workflow.KindEditPoint:
		pointID := fieldID(inst, workflow.FieldPointID)
		name := inst.Fields[workflow.FieldNewName]
		address := inst.Fields[workflow.FieldNewAddress]
		if err := e.points.Update(ctx, inst.UserID, pointID, name, address); err != nil {
			return "", err
		}
		return fmt.Sprintf("Пункт выдачи %d изменен на «%s», адрес «%s».", pointID, name, address), nil

	case workflow.KindDeletePoint:
		pointID := fieldID(inst, workflow.FieldPointID)
		if err := e.points.Delete(ctx, inst.UserID, pointID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Пункт выдачи %d удален.", pointID), nil

	case workflow.KindAddShift:
		pointID := fieldID(inst, workflow.FieldPointID)
		date, err := fieldDate(inst)
		if err != nil {
			return "", err
		}
		sh, err := e.shifts.Create(ctx, inst.UserID, pointID, date)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Смена %d на %s добавлена.", sh.ID, date.Format("02.01.2006")), nil

	case workflow.KindEditShift:
		shiftID := fieldID(inst, workflow.FieldShiftID)
		date, err := fieldDate(inst)
		if err != nil {
			return "", err
		}
		if err := e.shifts.Reschedule(ctx, inst.UserID, shiftID, date); err != nil {
			return "", err
		}
		return fmt.Sprintf("Смена %d перенесена на %s.", shiftID, date.Format("02.01.2006")), nil

	case workflow.KindDeleteShift:
		shiftID := fieldID(inst, workflow.FieldShiftID)
		if err := e.shifts.Delete(ctx, inst.UserID, shiftID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Смена %d удалена.", shiftID), nil
	}
	return "", fmt.Errorf("unknown workflow kind %q", inst.Kind)
}

// fieldID reads a validated id field; the validator guarantees the
// canonical decimal form.
func fieldID(inst *workflow.Instance, field string) int64 {
	id, _ := strconv.ParseInt(inst.Fields[field], 10, 64)
	return id
}

func fieldDate(inst *workflow.Instance) (time.Time, error) {
	return time.Parse(time.RFC3339, inst.Fields[workflow.FieldDate])
}

// rejectionText maps the error taxonomy to the single user-visible
// rejection that terminates the workflow.
func rejectionText(kind workflow.Kind, err error) string {
	switch {
	case errors.Is(err, auth.ErrDenied):
		return "У вас нет прав на эту операцию."
	case errors.Is(err, service.ErrAlreadyRegistered):
		return "Вы уже зарегистрированы."
	case errors.Is(err, storage.ErrNotFound):
		return "Запись с таким id не найдена."
	case errors.Is(err, storage.ErrConflict):
		return "Пункт выдачи нельзя удалить: на нем запланированы смены."
	default:
		return "Не удалось выполнить операцию (" + kind.Title() + "), попробуйте позже."
	}
}
