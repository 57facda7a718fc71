package workflow

import (
	"time"

	"github.com/google/uuid"
)

// Instance is the live state of one in-progress workflow: the kind, the
// current step and the fields collected so far. Instances are in-memory
// only; an abandoned one is simply restarted by re-issuing the command.
type Instance struct {
	ID        string
	UserID    int64
	Kind      Kind
	Step      int
	Fields    map[string]string
	Calendar  *CalendarState
	StartedAt time.Time
}

func NewInstance(userID int64, kind Kind, now time.Time) *Instance {
	return &Instance{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Fields:    make(map[string]string),
		StartedAt: now,
	}
}

// CurrentStep returns the step the instance is waiting on, or nil when
// the step table is exhausted.
func (in *Instance) CurrentStep() *Step {
	steps := Steps(in.Kind)
	if in.Step < 0 || in.Step >= len(steps) {
		return nil
	}
	return &steps[in.Step]
}

// Advance stores the validated value of the current step and moves to
// the next one, reporting whether the commit step has been reached.
func (in *Instance) Advance(value string) (done bool) {
	step := in.CurrentStep()
	if step == nil {
		return true
	}
	if step.Field != "" {
		in.Fields[step.Field] = value
	}
	in.Step++
	return in.Step >= len(Steps(in.Kind))
}
