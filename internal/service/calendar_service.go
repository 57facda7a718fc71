package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dkazmin/pvzbot/internal/domain"
	"github.com/dkazmin/pvzbot/internal/storage"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

// CalendarService renders the shift schedule as an iCalendar document,
// so owners can drop it into a regular calendar app.
type CalendarService struct {
	storage *storage.Storage
	timeout time.Duration
}

func NewCalendarService(s *storage.Storage, timeout time.Duration) *CalendarService {
	return &CalendarService{storage: s, timeout: timeout}
}

// ExportSchedule returns all shifts as ICS bytes, one all-day VEVENT
// per shift.
func (s *CalendarService) ExportSchedule(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	shifts, err := s.storage.ListShifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	points, err := s.storage.ListPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}

	pointByID := make(map[int64]*domain.Point, len(points))
	for _, p := range points {
		pointByID[p.ID] = p
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//pvzbot//Schedule//EN")

	now := time.Now().UTC()
	for _, sh := range shifts {
		summary := fmt.Sprintf("Смена #%d", sh.ID)
		location := ""
		if p, ok := pointByID[sh.PointID]; ok {
			summary = fmt.Sprintf("Смена #%d — %s", sh.ID, p.Name)
			location = p.Address
		}

		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, uuid.NewString())
		ev.Props.SetText(ical.PropSummary, summary)
		if location != "" {
			ev.Props.SetText(ical.PropLocation, location)
		}
		ev.Props.SetDate(ical.PropDateTimeStart, sh.Date)
		ev.Props.SetDate(ical.PropDateTimeEnd, sh.Date.AddDate(0, 0, 1))
		ev.Props.SetDateTime(ical.PropDateTimeStamp, now)
		cal.Children = append(cal.Children, ev.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}
