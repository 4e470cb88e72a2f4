package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/internal/admin/store"
	"github.com/userdesk/userdesk/pkg/cryptox"
	"github.com/userdesk/userdesk/pkg/idx"
	"github.com/userdesk/userdesk/pkg/slogx"
)

// UserService owns the user lifecycle: registration, lookup, partial update,
// soft delete and permanent removal. Authorization is enforced here, at the
// operation boundary, against the resolved caller:
//
//   - mutating a user requires the caller to be that user or an admin
//   - granting or revoking the admin flag requires an admin
//   - deleting (soft or hard) requires an admin
type UserService struct {
	Store store.Store
}

// Create registers a new user. Registration is open - actor may be nil for
// unauthenticated callers - but requesting the admin flag requires an admin
// caller. The plaintext password is hashed before the transaction opens so
// the slow hash never holds a write lock.
func (s *UserService) Create(ctx context.Context, actor *domain.User, in domain.UserCreate) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if in.IsAdmin && (actor == nil || !actor.IsAdmin) {
		return domain.User{}, domain.ErrPermission
	}
	if err := in.Validate(); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:             idx.New().String(),
		Username:       strings.TrimSpace(in.Username),
		HashedPassword: hash,
		FullName:       strings.TrimSpace(in.FullName),
		StageName:      strings.TrimSpace(in.StageName),
		Nickname:       strings.TrimSpace(in.Nickname),
		IsAdmin:        in.IsAdmin,
	}
	if in.GroupID != nil && *in.GroupID != "" {
		user.GroupID = in.GroupID
	}

	// The duplicate check and the insert share one transaction so two
	// concurrent creates for the same username cannot both pass the check.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByUsername(ctx, user.Username, false); err == nil {
			return domain.ErrConflict
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if user.GroupID != nil {
			if _, err := tx.Groups().GetGroupByID(ctx, *user.GroupID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("group: %w", domain.ErrNotFound)
				}
				return err
			}
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domain.ErrConflict
			}
			return err
		}

		created, err := tx.Users().GetUserByID(ctx, user.ID, false)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("user created",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.Bool("is_admin", user.IsAdmin),
	)
	return user, nil
}

// Get returns a single user. Non-admin callers may only fetch themselves;
// includeDeleted is an admin-only escape hatch.
func (s *UserService) Get(ctx context.Context, actor domain.User, id string, includeDeleted bool) (domain.User, error) {
	if actor.ID != id && !actor.IsAdmin {
		return domain.User{}, domain.ErrPermission
	}
	if includeDeleted && !actor.IsAdmin {
		return domain.User{}, domain.ErrPermission
	}

	user, err := s.Store.Users().GetUserByID(ctx, id, includeDeleted)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// List returns all users. Admin only.
func (s *UserService) List(ctx context.Context, actor domain.User, includeDeleted bool) ([]domain.User, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrPermission
	}
	return s.Store.Users().ListUsers(ctx, includeDeleted)
}

// Update applies a field-level partial update to the target user. The
// self-or-admin rule applies; touching IsAdmin at all - even writing the
// value it already holds - requires an admin caller.
func (s *UserService) Update(ctx context.Context, actor domain.User, id string, in domain.UserUpdate) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if actor.ID != id && !actor.IsAdmin {
		return domain.User{}, domain.ErrPermission
	}
	if in.IsAdmin != nil && !actor.IsAdmin {
		return domain.User{}, domain.ErrPermission
	}
	if err := in.Validate(); err != nil {
		return domain.User{}, err
	}

	patch := store.UserPatch{
		FullName:  in.FullName,
		StageName: in.StageName,
		Nickname:  in.Nickname,
		IsAdmin:   in.IsAdmin,
	}
	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		patch.Username = &trimmed
	}
	if in.Password != nil {
		// Hash outside the transaction, same as Create.
		hash, err := cryptox.HashPassword(*in.Password)
		if err != nil {
			return domain.User{}, err
		}
		patch.HashedPassword = &hash
	}
	if in.GroupID != nil {
		if *in.GroupID == "" {
			patch.ClearGroup = true
		} else {
			patch.GroupID = in.GroupID
		}
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Users().GetUserByID(ctx, id, false)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		if patch.Username != nil && *patch.Username != current.Username {
			if _, err := tx.Users().GetUserByUsername(ctx, *patch.Username, false); err == nil {
				return domain.ErrConflict
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		if patch.GroupID != nil {
			if _, err := tx.Groups().GetGroupByID(ctx, *patch.GroupID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("group: %w", domain.ErrNotFound)
				}
				return err
			}
		}

		updated, err = tx.Users().UpdateUser(ctx, id, patch)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// The target was soft-deleted between the read and the write.
			return domain.ErrNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.ErrConflict
		}
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("user updated", slog.String("user_id", id), slog.String("by", actor.ID))
	return updated, nil
}

// SoftDelete stamps the user as deleted. Admin only; admins cannot delete
// themselves, which keeps the system from locking every admin out.
func (s *UserService) SoftDelete(ctx context.Context, actor domain.User, id string) error {
	l := slogx.FromContext(ctx)

	if !actor.IsAdmin {
		return domain.ErrPermission
	}
	if actor.ID == id {
		return domain.ErrPermission
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().SoftDeleteUser(ctx, id)
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	l.Info("user soft-deleted", slog.String("user_id", id), slog.String("by", actor.ID))
	return nil
}

// HardDelete physically removes the row, soft-deleted or not. Admin only and
// irreversible; same self-delete guard as SoftDelete.
func (s *UserService) HardDelete(ctx context.Context, actor domain.User, id string) error {
	l := slogx.FromContext(ctx)

	if !actor.IsAdmin {
		return domain.ErrPermission
	}
	if actor.ID == id {
		return domain.ErrPermission
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().HardDeleteUser(ctx, id)
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	l.Info("user hard-deleted", slog.String("user_id", id), slog.String("by", actor.ID))
	return nil
}
