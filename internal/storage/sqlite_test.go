package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkazmin/pvzbot/internal/domain"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateUser(t *testing.T, s *Storage, telegramID int64, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{TelegramID: telegramID, Role: role}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %d: %v", telegramID, err)
	}
	return u
}

func mustCreatePoint(t *testing.T, s *Storage, ownerID int64, name, address string) *domain.Point {
	t.Helper()
	p := &domain.Point{Name: name, Address: address, OwnerID: ownerID}
	if err := s.CreatePoint(context.Background(), p); err != nil {
		t.Fatalf("create point %s: %v", name, err)
	}
	return p
}

func TestCreateUserRejectsDuplicateTelegramID(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	mustCreateUser(t, s, 100, domain.RoleOwner)

	err := s.CreateUser(ctx, &domain.User{TelegramID: 100, Role: domain.RoleWorker})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate telegram_id: got %v, want ErrDuplicate", err)
	}

	// The original role must be untouched.
	u, err := s.GetUserByTelegramID(ctx, 100)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Role != domain.RoleOwner {
		t.Fatalf("role overwritten to %q", u.Role)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStorage(t)

	if _, err := s.GetUserByTelegramID(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestPointRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, 1, domain.RoleOwner)
	p := mustCreatePoint(t, s, owner.ID, "A", "Addr1")

	if err := s.UpdatePoint(ctx, p.ID, "B", "Addr2"); err != nil {
		t.Fatalf("update point: %v", err)
	}

	got, err := s.GetPoint(ctx, p.ID)
	if err != nil {
		t.Fatalf("get point: %v", err)
	}
	if got.Name != "B" || got.Address != "Addr2" {
		t.Fatalf("point after edit = %q/%q, want B/Addr2", got.Name, got.Address)
	}
	if got.OwnerID != owner.ID {
		t.Fatalf("owner changed to %d", got.OwnerID)
	}

	if err := s.DeletePoint(ctx, p.ID); err != nil {
		t.Fatalf("delete point: %v", err)
	}
	if _, err := s.GetPoint(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted point: got %v, want ErrNotFound", err)
	}
}

func TestUpdateMissingPoint(t *testing.T) {
	s := newTestStorage(t)

	if err := s.UpdatePoint(context.Background(), 12345, "X", "Y"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing point: got %v, want ErrNotFound", err)
	}
}

func TestDeletePointBlockedByShifts(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, 1, domain.RoleOwner)
	p := mustCreatePoint(t, s, owner.ID, "A", "Addr1")

	sh := &domain.Shift{PointID: p.ID, Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}
	if err := s.CreateShift(ctx, sh); err != nil {
		t.Fatalf("create shift: %v", err)
	}

	if err := s.DeletePoint(ctx, p.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("delete referenced point: got %v, want ErrConflict", err)
	}

	// Both rows survive the rejected delete.
	if _, err := s.GetPoint(ctx, p.ID); err != nil {
		t.Fatalf("point gone after rejected delete: %v", err)
	}
	if _, err := s.GetShift(ctx, sh.ID); err != nil {
		t.Fatalf("shift gone after rejected delete: %v", err)
	}

	if err := s.DeleteShift(ctx, sh.ID); err != nil {
		t.Fatalf("delete shift: %v", err)
	}
	if err := s.DeletePoint(ctx, p.ID); err != nil {
		t.Fatalf("delete point after shifts removed: %v", err)
	}
}

func TestCreateShiftRequiresPoint(t *testing.T) {
	s := newTestStorage(t)

	sh := &domain.Shift{PointID: 777, Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}
	if err := s.CreateShift(context.Background(), sh); !errors.Is(err, ErrNotFound) {
		t.Fatalf("shift for missing point: got %v, want ErrNotFound", err)
	}
}

func TestShiftRescheduleAndDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, 1, domain.RoleOwner)
	p := mustCreatePoint(t, s, owner.ID, "A", "Addr1")

	sh := &domain.Shift{PointID: p.ID, Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}
	if err := s.CreateShift(ctx, sh); err != nil {
		t.Fatalf("create shift: %v", err)
	}

	newDate := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	if err := s.UpdateShiftDate(ctx, sh.ID, newDate); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	got, err := s.GetShift(ctx, sh.ID)
	if err != nil {
		t.Fatalf("get shift: %v", err)
	}
	if !got.Date.Equal(newDate) {
		t.Fatalf("date = %v, want %v", got.Date, newDate)
	}

	if err := s.DeleteShift(ctx, sh.ID); err != nil {
		t.Fatalf("delete shift: %v", err)
	}
	if err := s.DeleteShift(ctx, sh.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestReviewRecomputesPointRating(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, 1, domain.RoleOwner)
	author := mustCreateUser(t, s, 2, domain.RoleWorker)
	p := mustCreatePoint(t, s, owner.ID, "A", "Addr1")

	// Before any review the aggregate stays at the default.
	got, _ := s.GetPoint(ctx, p.ID)
	if got.Rating != 0.0 {
		t.Fatalf("fresh point rating = %v, want 0.0", got.Rating)
	}

	ratings := []float64{4.0, 5.0, 3.0}
	var sum float64
	for i, r := range ratings {
		review := &domain.Review{AuthorID: author.ID, PointID: &p.ID, Rating: r, Comment: "ok"}
		if err := s.CreateReview(ctx, review); err != nil {
			t.Fatalf("create review %d: %v", i, err)
		}
		sum += r

		got, err := s.GetPoint(ctx, p.ID)
		if err != nil {
			t.Fatalf("get point: %v", err)
		}
		want := sum / float64(i+1)
		if got.Rating != want {
			t.Fatalf("after %d reviews rating = %v, want %v", i+1, got.Rating, want)
		}
	}

	reviews, err := s.ListReviewsForPoint(ctx, p.ID)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != len(ratings) {
		t.Fatalf("stored %d reviews, want %d", len(reviews), len(ratings))
	}
}

func TestReviewRecomputesWorkerRating(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	worker := mustCreateUser(t, s, 1, domain.RoleWorker)
	author := mustCreateUser(t, s, 2, domain.RoleOwner)

	review := &domain.Review{AuthorID: author.ID, WorkerID: &worker.ID, Rating: 4.0, Comment: "хорошо"}
	if err := s.CreateReview(ctx, review); err != nil {
		t.Fatalf("create review: %v", err)
	}

	got, err := s.GetUser(ctx, worker.ID)
	if err != nil {
		t.Fatalf("get worker: %v", err)
	}
	// The mean of a single review equals that review.
	if got.Rating != 4.0 {
		t.Fatalf("worker rating = %v, want 4.0", got.Rating)
	}
}

func TestReviewMissingTarget(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	author := mustCreateUser(t, s, 2, domain.RoleOwner)
	missing := int64(404)
	review := &domain.Review{AuthorID: author.ID, PointID: &missing, Rating: 4.0}
	if err := s.CreateReview(ctx, review); !errors.Is(err, ErrNotFound) {
		t.Fatalf("review of missing point: got %v, want ErrNotFound", err)
	}
}
