package service

import (
	"context"
	"time"

	"github.com/dkazmin/pvzbot/internal/auth"
	"github.com/dkazmin/pvzbot/internal/domain"
	"github.com/dkazmin/pvzbot/internal/storage"
)

type PointService struct {
	storage *storage.Storage
	timeout time.Duration
}

func NewPointService(s *storage.Storage, timeout time.Duration) *PointService {
	return &PointService{storage: s, timeout: timeout}
}

func (s *PointService) Create(ctx context.Context, actorTelegramID int64, name, address string) (*domain.Point, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	actor, role, err := loadActor(ctx, s.storage, actorTelegramID)
	if err != nil {
		return nil, err
	}
	if err := auth.Check(role, auth.ActionManagePoints); err != nil {
		return nil, err
	}

	p := &domain.Point{Name: name, Address: address, OwnerID: actor.ID}
	if err := s.storage.CreatePoint(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PointService) Update(ctx context.Context, actorTelegramID, pointID int64, name, address string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, role, err := loadActor(ctx, s.storage, actorTelegramID)
	if err != nil {
		return err
	}
	if err := auth.Check(role, auth.ActionManagePoints); err != nil {
		return err
	}

	return s.storage.UpdatePoint(ctx, pointID, name, address)
}

// Delete removes a point. A point with shifts still scheduled on it is
// rejected with storage.ErrConflict rather than orphaning the shifts.
func (s *PointService) Delete(ctx context.Context, actorTelegramID, pointID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, role, err := loadActor(ctx, s.storage, actorTelegramID)
	if err != nil {
		return err
	}
	if err := auth.Check(role, auth.ActionManagePoints); err != nil {
		return err
	}

	return s.storage.DeletePoint(ctx, pointID)
}

func (s *PointService) List(ctx context.Context, actorTelegramID int64) ([]*domain.Point, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, role, err := loadActor(ctx, s.storage, actorTelegramID)
	if err != nil {
		return nil, err
	}
	if err := auth.Check(role, auth.ActionViewPoints); err != nil {
		return nil, err
	}

	return s.storage.ListPoints(ctx)
}

func (s *PointService) Get(ctx context.Context, pointID int64) (*domain.Point, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.storage.GetPoint(ctx, pointID)
}
