package service

import (
	"context"
	"time"

	"github.com/dkazmin/pvzbot/internal/auth"
	"github.com/dkazmin/pvzbot/internal/domain"
	"github.com/dkazmin/pvzbot/internal/storage"
)

type ShiftService struct {
	storage *storage.Storage
	timeout time.Duration
}

func NewShiftService(s *storage.Storage, timeout time.Duration) *ShiftService {
	return &ShiftService{storage: s, timeout: timeout}
}

func (s *ShiftService) Create(ctx context.Context, actorTelegramID, pointID int64, date time.Time) (*domain.Shift, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, role, err := loadActor(ctx, s.storage, actorTelegramID)
	if err != nil {
		return nil, err
	}
	if err := auth.Check(role, auth.ActionManageShifts); err != nil {
		return nil, err
	}

	sh := &domain.Shift{PointID: pointID, Date: date}
	if err := s.storage.CreateShift(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *ShiftService) Reschedule(ctx context.Context, actorTelegramID, shiftID int64, date time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, role, err := loadActor(ctx, s.storage, actorTelegramID)
	if err != nil {
		return err
	}
	if err := auth.Check(role, auth.ActionManageShifts); err != nil {
		return err
	}

	return s.storage.UpdateShiftDate(ctx, shiftID, date)
}

func (s *ShiftService) Delete(ctx context.Context, actorTelegramID, shiftID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, role, err := loadActor(ctx, s.storage, actorTelegramID)
	if err != nil {
		return err
	}
	if err := auth.Check(role, auth.ActionManageShifts); err != nil {
		return err
	}

	return s.storage.DeleteShift(ctx, shiftID)
}

// List returns the full schedule. Viewing it is open to everyone, as is
// the schedule board in a pickup hall.
func (s *ShiftService) List(ctx context.Context) ([]*domain.Shift, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.storage.ListShifts(ctx)
}
