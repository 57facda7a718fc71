package workflow

import (
	"testing"
	"time"
)

var calNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestCalendarResolvesDate(t *testing.T) {
	c := NewCalendarState()

	p := c.Prompt(calNow)
	if len(p.Choices) != 1 || len(p.Choices[0]) != 3 {
		t.Fatalf("year page: %+v", p.Choices)
	}
	if p.Choices[0][0].Data != "cal:y:2026" {
		t.Fatalf("first year token = %q", p.Choices[0][0].Data)
	}

	if _, done, err := c.Advance("cal:y:2027", calNow); err != nil || done {
		t.Fatalf("year: done=%v err=%v", done, err)
	}
	if _, done, err := c.Advance("cal:m:2", calNow); err != nil || done {
		t.Fatalf("month: done=%v err=%v", done, err)
	}

	p = c.Prompt(calNow)
	total := 0
	for _, row := range p.Choices {
		total += len(row)
	}
	if total != 28 {
		t.Fatalf("february 2027 page has %d days, want 28", total)
	}

	date, done, err := c.Advance("cal:d:14", calNow)
	if err != nil || !done {
		t.Fatalf("day: done=%v err=%v", done, err)
	}
	want := time.Date(2027, time.February, 14, 0, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Fatalf("resolved %v, want %v", date, want)
	}
}

func TestCalendarLeapFebruary(t *testing.T) {
	c := &CalendarState{stage: stageDay, year: 2028, month: time.February}

	if _, done, err := c.Advance("cal:d:29", calNow); err != nil || !done {
		t.Fatalf("29 Feb 2028: done=%v err=%v", done, err)
	}
}

func TestCalendarRejectsBadTokens(t *testing.T) {
	tests := []struct {
		name  string
		state CalendarState
		token string
	}{
		{"not a calendar token", CalendarState{stage: stageYear}, "role:owner"},
		{"garbage payload", CalendarState{stage: stageYear}, "cal:y:abc"},
		{"missing unit", CalendarState{stage: stageYear}, "cal:2026"},
		{"month during year stage", CalendarState{stage: stageYear}, "cal:m:5"},
		{"day during month stage", CalendarState{stage: stageMonth, year: 2026}, "cal:d:5"},
		{"year in the past", CalendarState{stage: stageYear}, "cal:y:2020"},
		{"month out of range", CalendarState{stage: stageMonth, year: 2026}, "cal:m:13"},
		{"day out of range", CalendarState{stage: stageDay, year: 2026, month: time.April}, "cal:d:31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.state
			before := c
			if _, done, err := c.Advance(tt.token, calNow); err == nil || done {
				t.Fatalf("token %q accepted (done=%v)", tt.token, done)
			}
			// A rejected token must not move the picker.
			if c != before {
				t.Fatalf("state moved on bad token: %+v -> %+v", before, c)
			}
		})
	}
}

func TestIsCalendarToken(t *testing.T) {
	if !IsCalendarToken("cal:y:2026") {
		t.Fatal("calendar token not recognized")
	}
	if IsCalendarToken("role:owner") {
		t.Fatal("role token misrecognized as calendar")
	}
}
