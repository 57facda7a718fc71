package service

import (
	"context"
	"time"

	"github.com/dkazmin/pvzbot/internal/auth"
	"github.com/dkazmin/pvzbot/internal/domain"
	"github.com/dkazmin/pvzbot/internal/storage"
)

type ReviewService struct {
	storage *storage.Storage
	timeout time.Duration
}

func NewReviewService(s *storage.Storage, timeout time.Duration) *ReviewService {
	return &ReviewService{storage: s, timeout: timeout}
}

// RatePoint records a review of a pickup point. Any registered user may
// review any point; the target's aggregate rating is recomputed in the
// same transaction as the insert.
func (s *ReviewService) RatePoint(ctx context.Context, actorTelegramID, pointID int64, rating float64, comment string) (*domain.Review, error) {
	return s.rate(ctx, actorTelegramID, &pointID, nil, rating, comment)
}

// RateWorker records a review of a worker.
func (s *ReviewService) RateWorker(ctx context.Context, actorTelegramID, workerID int64, rating float64, comment string) (*domain.Review, error) {
	return s.rate(ctx, actorTelegramID, nil, &workerID, rating, comment)
}

func (s *ReviewService) rate(ctx context.Context, actorTelegramID int64, pointID, workerID *int64, rating float64, comment string) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	actor, role, err := loadActor(ctx, s.storage, actorTelegramID)
	if err != nil {
		return nil, err
	}
	if !auth.Allowed(role, auth.ActionLeaveReview) {
		return nil, ErrNotRegistered
	}
	if !domain.ValidRating(rating) {
		return nil, ErrRatingRange
	}

	r := &domain.Review{
		AuthorID: actor.ID,
		PointID:  pointID,
		WorkerID: workerID,
		Rating:   rating,
		Comment:  comment,
	}
	if err := s.storage.CreateReview(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListForID returns reviews targeting the point or the worker with the
// given id, matching the original lookup where one id queries both.
func (s *ReviewService) ListForID(ctx context.Context, id int64) ([]*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	forPoint, err := s.storage.ListReviewsForPoint(ctx, id)
	if err != nil {
		return nil, err
	}
	forWorker, err := s.storage.ListReviewsForWorker(ctx, id)
	if err != nil {
		return nil, err
	}
	return append(forPoint, forWorker...), nil
}
