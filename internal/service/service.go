// Package service implements the transactions executed when a workflow
// commits, plus the one-shot read and review operations. Every mutating
// method re-loads the actor and re-runs the authorizer against the
// actor's current role; the check done at workflow start is not trusted
// at commit time.
package service

import (
	"context"
	"errors"

	"github.com/dkazmin/pvzbot/internal/domain"
	"github.com/dkazmin/pvzbot/internal/storage"
)

// loadActor resolves the acting user. An unregistered actor is not an
// error here: it comes back with RoleUnset and the authorizer denies
// whatever the role does not permit.
func loadActor(ctx context.Context, st *storage.Storage, telegramID int64) (*domain.User, domain.UserRole, error) {
	u, err := st.GetUserByTelegramID(ctx, telegramID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.RoleUnset, nil
	}
	if err != nil {
		return nil, domain.RoleUnset, err
	}
	return u, u.Role, nil
}
