package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/internal/admin/store"
	"github.com/userdesk/userdesk/pkg/cryptox"
	"github.com/userdesk/userdesk/pkg/idx"
	"github.com/userdesk/userdesk/pkg/slogx"
)

// BootstrapService seeds the initial admin account at startup. The seeding is
// create-if-absent: restarts and horizontally scaled replicas are safe.
type BootstrapService struct {
	Store store.Store

	AdminUsername string
	AdminPassword string
}

// EnsureInitialAdmin creates the configured admin account unless an active
// user already holds the username. It never touches an existing account, so
// rotating AUTH_FIRST_ADMIN_PASSWORD has no effect on an already-seeded
// system.
func (s *BootstrapService) EnsureInitialAdmin(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	if err := domain.ValidateUsername(s.AdminUsername); err != nil {
		return err
	}
	if err := domain.ValidatePassword(s.AdminPassword); err != nil {
		return err
	}

	if _, err := s.Store.Users().GetUserByUsername(ctx, s.AdminUsername, false); err == nil {
		l.Debug("initial admin already present", slog.String("username", s.AdminUsername))
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := cryptox.HashPassword(s.AdminPassword)
	if err != nil {
		return err
	}

	admin := domain.User{
		ID:             idx.New().String(),
		Username:       s.AdminUsername,
		HashedPassword: hash,
		IsAdmin:        true,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Re-check inside the transaction: another replica may have seeded
		// between our read and this write.
		if _, err := tx.Users().GetUserByUsername(ctx, s.AdminUsername, false); err == nil {
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.Users().CreateUser(ctx, admin)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil // lost the race, someone else seeded
	}
	if err != nil {
		return err
	}

	l.Info("initial admin seeded",
		slog.String("user_id", admin.ID),
		slog.String("username", admin.Username),
	)
	return nil
}
