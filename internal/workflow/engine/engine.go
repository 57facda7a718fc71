// Package engine advances workflow instances in response to inbound
// events. It owns the session registry handshake: every event acquires
// the user's slot, so two concurrent messages from one user can never
// push the same instance into diverging steps.
package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dkazmin/pvzbot/internal/auth"
	"github.com/dkazmin/pvzbot/internal/domain"
	"github.com/dkazmin/pvzbot/internal/service"
	"github.com/dkazmin/pvzbot/internal/session"
	"github.com/dkazmin/pvzbot/internal/storage"
	"github.com/dkazmin/pvzbot/internal/workflow"
)

type Engine struct {
	registry *session.Registry
	users    *service.UserService
	points   *service.PointService
	shifts   *service.ShiftService
	now      func() time.Time
}

// Option customizes the engine instance.
type Option func(*Engine)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

func New(registry *session.Registry, users *service.UserService, points *service.PointService, shifts *service.ShiftService, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		users:    users,
		points:   points,
		shifts:   shifts,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Status classifies the single response produced for an event.
type Status int

const (
	// StatusNone: the event did not belong to any workflow.
	StatusNone Status = iota
	// StatusPrompt: the workflow continues, ask the user the next (or
	// re-ask the same) step.
	StatusPrompt
	// StatusDone: the workflow committed.
	StatusDone
	// StatusRejected: the workflow terminated without committing.
	StatusRejected
	// StatusCancelled: the user cancelled the workflow.
	StatusCancelled
	// StatusExpired: the instance sat idle past the TTL and was evicted.
	StatusExpired
)

// Result is the outbound effect request: the transport renders Text and
// the optional choice rows, nothing else.
type Result struct {
	Status  Status
	Text    string
	Choices [][]workflow.Choice
}

// Start begins a workflow for the user, force-replacing any active one.
// The authorizer runs here against the actor's current role and runs
// again inside the transaction at commit.
func (e *Engine) Start(ctx context.Context, userID int64, kind workflow.Kind) Result {
	role := e.actorRole(ctx, userID)
	if !auth.Allowed(role, kind.Action()) {
		return Result{Status: StatusRejected, Text: "У вас нет прав на эту операцию."}
	}

	sess := e.registry.Acquire(userID)
	defer sess.Release()

	inst := workflow.NewInstance(userID, kind, e.now())
	replaced := sess.Begin(inst, e.now())

	prompt := e.enterStep(inst)
	text := prompt.Text
	if replaced != nil {
		text = "Предыдущая операция (" + replaced.Kind.Title() + ") отменена.\n\n" + text
		log.Printf("workflow %s replaced %s for user %d", inst.ID, replaced.ID, userID)
	}
	return Result{Status: StatusPrompt, Text: text, Choices: prompt.Choices}
}

// HandleText feeds a free-text message into the user's active workflow.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) Result {
	return e.advance(ctx, userID, text, workflow.ExpectText)
}

// HandleCallback feeds inline-keyboard callback data into the user's
// active workflow.
func (e *Engine) HandleCallback(ctx context.Context, userID int64, data string) Result {
	shape := workflow.ExpectChoice
	if workflow.IsCalendarToken(data) {
		shape = workflow.ExpectCalendar
	}
	return e.advance(ctx, userID, data, shape)
}

// Cancel terminates the user's active workflow, if any. Holding the
// session lock makes it race-safe against a concurrent advance.
func (e *Engine) Cancel(userID int64) Result {
	sess := e.registry.Acquire(userID)
	defer sess.Release()

	inst := sess.Active()
	if inst == nil {
		return Result{Status: StatusNone, Text: "Нет активной операции."}
	}
	sess.Clear()
	return Result{Status: StatusCancelled, Text: "Операция (" + inst.Kind.Title() + ") отменена."}
}

func (e *Engine) advance(ctx context.Context, userID int64, raw string, shape workflow.Shape) Result {
	sess := e.registry.Acquire(userID)
	defer sess.Release()

	inst := sess.Active()
	if inst == nil {
		if sess.Expired() {
			return Result{Status: StatusExpired, Text: "Сессия истекла, начните операцию заново."}
		}
		return Result{Status: StatusNone}
	}

	step := inst.CurrentStep()
	if step == nil {
		// Step table exhausted without a commit: should be impossible.
		log.Printf("workflow %s has no current step (kind=%s step=%d)", inst.ID, inst.Kind, inst.Step)
		sess.Clear()
		return Result{Status: StatusRejected, Text: "Некорректное состояние операции, начните заново."}
	}

	if step.Shape != shape {
		prompt := e.stepPrompt(inst, step)
		return Result{
			Status:  StatusPrompt,
			Text:    "Ответ не подходит к текущему шагу.\n\n" + prompt.Text,
			Choices: prompt.Choices,
		}
	}

	value, err := e.validate(inst, step, raw)
	if err != nil {
		prompt := e.stepPrompt(inst, step)
		return Result{
			Status:  StatusPrompt,
			Text:    err.Error() + "\n\n" + prompt.Text,
			Choices: prompt.Choices,
		}
	}
	if step.Shape == workflow.ExpectCalendar && value == "" {
		// Picker advanced an inner round; re-send the updated page.
		sess.Touch(e.now())
		prompt := inst.Calendar.Prompt(e.now())
		return Result{Status: StatusPrompt, Text: prompt.Text, Choices: prompt.Choices}
	}

	if done := inst.Advance(value); !done {
		sess.Touch(e.now())
		prompt := e.enterStep(inst)
		return Result{Status: StatusPrompt, Text: prompt.Text, Choices: prompt.Choices}
	}

	// Terminal step: run the transaction. The slot is freed no matter
	// how the commit ends, so exactly one response closes the workflow.
	defer sess.Clear()
	text, err := e.commit(ctx, inst)
	if err != nil {
		log.Printf("workflow %s (%s) commit rejected for user %d: %v", inst.ID, inst.Kind, inst.UserID, err)
		return Result{Status: StatusRejected, Text: rejectionText(inst.Kind, err)}
	}
	return Result{Status: StatusDone, Text: text}
}

// validate runs the step's validator. Calendar steps delegate to the
// nested picker state machine; an empty value with nil error means the
// picker needs another round.
func (e *Engine) validate(inst *workflow.Instance, step *workflow.Step, raw string) (string, error) {
	if step.Shape == workflow.ExpectCalendar {
		date, done, err := inst.Calendar.Advance(raw, e.now())
		if err != nil {
			return "", err
		}
		if !done {
			return "", nil
		}
		return date.Format(time.RFC3339), nil
	}
	return step.Validate(raw)
}

// enterStep initializes per-step state (the calendar picker) and
// returns the step's prompt.
func (e *Engine) enterStep(inst *workflow.Instance) workflow.Prompt {
	step := inst.CurrentStep()
	if step == nil {
		return workflow.Prompt{}
	}
	if step.Shape == workflow.ExpectCalendar {
		inst.Calendar = workflow.NewCalendarState()
	}
	return e.stepPrompt(inst, step)
}

func (e *Engine) stepPrompt(inst *workflow.Instance, step *workflow.Step) workflow.Prompt {
	if step.Shape == workflow.ExpectCalendar {
		return inst.Calendar.Prompt(e.now())
	}
	return step.Prompt
}

func (e *Engine) actorRole(ctx context.Context, userID int64) domain.UserRole {
	u, err := e.users.GetByTelegramID(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("load actor %d: %v", userID, err)
		}
		return domain.RoleUnset
	}
	return u.Role
}
