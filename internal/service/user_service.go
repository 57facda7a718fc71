package service

import (
	"context"
	"errors"
	"time"

	"github.com/dkazmin/pvzbot/internal/domain"
	"github.com/dkazmin/pvzbot/internal/storage"
)

type UserService struct {
	storage *storage.Storage
	timeout time.Duration
}

func NewUserService(s *storage.Storage, timeout time.Duration) *UserService {
	return &UserService{storage: s, timeout: timeout}
}

// Register creates the user with the chosen role. Registration is
// one-time: an existing user is rejected, never reassigned.
func (s *UserService) Register(ctx context.Context, telegramID int64, role domain.UserRole) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.storage.GetUserByTelegramID(ctx, telegramID)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	u := &domain.User{TelegramID: telegramID, Role: role}
	if err := s.storage.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// Lost a race with a concurrent registration.
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	return u, nil
}

// GetByTelegramID returns the registered user, or storage.ErrNotFound.
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.storage.GetUserByTelegramID(ctx, telegramID)
}
