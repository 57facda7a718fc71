package workflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Calendar date selection is a nested state machine: the user resolves
// year, then month, then day, each round re-sending an updated picker.
// Tokens travel as opaque callback data with the "cal:" prefix.

const calTokenPrefix = "cal:"

// IsCalendarToken reports whether callback data belongs to the picker.
func IsCalendarToken(data string) bool {
	return strings.HasPrefix(data, calTokenPrefix)
}

type calendarStage int

const (
	stageYear calendarStage = iota
	stageMonth
	stageDay
)

// CalendarState is the picker's progress for one workflow instance.
type CalendarState struct {
	stage calendarStage
	year  int
	month time.Month
}

func NewCalendarState() *CalendarState {
	return &CalendarState{stage: stageYear}
}

var errBadCalendarToken = errors.New("выберите дату кнопками")

var monthLabels = [...]string{
	"Янв", "Фев", "Мар", "Апр", "Май", "Июн",
	"Июл", "Авг", "Сен", "Окт", "Ноя", "Дек",
}

// Prompt builds the picker page for the current stage. The year page
// offers the current and next two years.
func (c *CalendarState) Prompt(now time.Time) Prompt {
	switch c.stage {
	case stageYear:
		var row []Choice
		for y := now.Year(); y < now.Year()+3; y++ {
			row = append(row, Choice{
				Label: strconv.Itoa(y),
				Data:  fmt.Sprintf("%sy:%d", calTokenPrefix, y),
			})
		}
		return Prompt{Text: "Выберите год смены:", Choices: [][]Choice{row}}

	case stageMonth:
		var rows [][]Choice
		for m := time.January; m <= time.December; m += 3 {
			var row []Choice
			for i := 0; i < 3; i++ {
				month := m + time.Month(i)
				row = append(row, Choice{
					Label: monthLabels[month-1],
					Data:  fmt.Sprintf("%sm:%d", calTokenPrefix, month),
				})
			}
			rows = append(rows, row)
		}
		return Prompt{
			Text:    fmt.Sprintf("Выберите месяц смены (%d год):", c.year),
			Choices: rows,
		}

	default:
		days := daysIn(c.year, c.month)
		var rows [][]Choice
		var row []Choice
		for d := 1; d <= days; d++ {
			row = append(row, Choice{
				Label: strconv.Itoa(d),
				Data:  fmt.Sprintf("%sd:%d", calTokenPrefix, d),
			})
			if len(row) == 7 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
		return Prompt{
			Text:    fmt.Sprintf("Выберите день смены (%s %d):", monthLabels[c.month-1], c.year),
			Choices: rows,
		}
	}
}

// Advance consumes one picker token. It returns the resolved date once
// the day is chosen; a malformed or out-of-stage token is a validation
// error and the caller re-prompts the same page.
func (c *CalendarState) Advance(token string, now time.Time) (time.Time, bool, error) {
	rest, ok := strings.CutPrefix(token, calTokenPrefix)
	if !ok {
		return time.Time{}, false, errBadCalendarToken
	}
	unit, raw, ok := strings.Cut(rest, ":")
	if !ok {
		return time.Time{}, false, errBadCalendarToken
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return time.Time{}, false, errBadCalendarToken
	}

	switch {
	case unit == "y" && c.stage == stageYear:
		if n < now.Year() || n > now.Year()+10 {
			return time.Time{}, false, errBadCalendarToken
		}
		c.year = n
		c.stage = stageMonth
		return time.Time{}, false, nil

	case unit == "m" && c.stage == stageMonth:
		if n < 1 || n > 12 {
			return time.Time{}, false, errBadCalendarToken
		}
		c.month = time.Month(n)
		c.stage = stageDay
		return time.Time{}, false, nil

	case unit == "d" && c.stage == stageDay:
		if n < 1 || n > daysIn(c.year, c.month) {
			return time.Time{}, false, errBadCalendarToken
		}
		date := time.Date(c.year, c.month, n, 0, 0, 0, 0, time.UTC)
		return date, true, nil
	}
	return time.Time{}, false, errBadCalendarToken
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
