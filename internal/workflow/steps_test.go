package workflow

import (
	"strings"
	"testing"
	"time"
)

func TestEveryKindHasSteps(t *testing.T) {
	kinds := []Kind{
		KindRegister, KindAddPoint, KindEditPoint, KindDeletePoint,
		KindAddShift, KindEditShift, KindDeleteShift,
	}
	for _, k := range kinds {
		steps := Steps(k)
		if len(steps) == 0 {
			t.Errorf("kind %q has no steps", k)
			continue
		}
		for i, s := range steps {
			if s.Field == "" {
				t.Errorf("%s step %d stores no field", k, i)
			}
			if s.Shape != ExpectCalendar && s.Validate == nil {
				t.Errorf("%s step %d has no validator", k, i)
			}
			if s.Shape == ExpectChoice && len(s.Prompt.Choices) == 0 {
				t.Errorf("%s step %d expects a choice but offers none", k, i)
			}
		}
	}
}

func TestValidateText(t *testing.T) {
	if v, err := validateText("  Точка А  "); err != nil || v != "Точка А" {
		t.Fatalf("got %q, %v", v, err)
	}
	if _, err := validateText("   "); err == nil {
		t.Fatal("blank text accepted")
	}
	if _, err := validateText(strings.Repeat("я", 201)); err == nil {
		t.Fatal("overlong text accepted")
	}
}

func TestValidateID(t *testing.T) {
	if v, err := validateID(" 042 "); err != nil || v != "42" {
		t.Fatalf("got %q, %v", v, err)
	}
	for _, raw := range []string{"", "abc", "-5", "0", "1.5"} {
		if _, err := validateID(raw); err == nil {
			t.Errorf("id %q accepted", raw)
		}
	}
}

func TestValidateRole(t *testing.T) {
	if v, err := validateRole("role:owner"); err != nil || v != "owner" {
		t.Fatalf("got %q, %v", v, err)
	}
	if v, err := validateRole("role:worker"); err != nil || v != "worker" {
		t.Fatalf("got %q, %v", v, err)
	}
	if _, err := validateRole("role:admin"); err == nil {
		t.Fatal("unknown role accepted")
	}
}

func TestInstanceAdvanceCollectsFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	inst := NewInstance(5, KindAddPoint, now)

	if inst.ID == "" {
		t.Fatal("instance has no id")
	}
	if step := inst.CurrentStep(); step == nil || step.Field != FieldName {
		t.Fatalf("first step = %+v", step)
	}

	if done := inst.Advance("Точка А"); done {
		t.Fatal("done after first of two steps")
	}
	if step := inst.CurrentStep(); step == nil || step.Field != FieldAddress {
		t.Fatalf("second step = %+v", step)
	}

	if done := inst.Advance("ул. Ленина 1"); !done {
		t.Fatal("not done after last step")
	}
	if inst.Fields[FieldName] != "Точка А" || inst.Fields[FieldAddress] != "ул. Ленина 1" {
		t.Fatalf("collected fields = %v", inst.Fields)
	}
	if inst.CurrentStep() != nil {
		t.Fatal("current step past the table")
	}
}
