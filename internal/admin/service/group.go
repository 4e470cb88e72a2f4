package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/internal/admin/store"
	"github.com/userdesk/userdesk/pkg/idx"
	"github.com/userdesk/userdesk/pkg/slogx"
)

// GroupService owns the group lifecycle. Groups have no soft-delete: deletion
// is always physical, and members keep existing with their membership
// cleared. Reads are open to any authenticated caller; writes are admin only.
type GroupService struct {
	Store store.Store
}

// Create adds a new group. Duplicate groupnames are allowed.
func (s *GroupService) Create(ctx context.Context, actor domain.User, groupname string) (domain.Group, error) {
	l := slogx.FromContext(ctx)

	if !actor.IsAdmin {
		return domain.Group{}, domain.ErrPermission
	}
	if err := domain.ValidateGroupname(groupname); err != nil {
		return domain.Group{}, err
	}

	group := domain.Group{
		ID:        idx.New().String(),
		Groupname: strings.TrimSpace(groupname),
	}
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Groups().CreateGroup(ctx, group); err != nil {
			return err
		}
		created, err := tx.Groups().GetGroupByID(ctx, group.ID)
		if err != nil {
			return err
		}
		group = created
		return nil
	})
	if err != nil {
		return domain.Group{}, err
	}

	l.Info("group created", slog.String("group_id", group.ID), slog.String("groupname", group.Groupname))
	return group, nil
}

// Get returns a single group.
func (s *GroupService) Get(ctx context.Context, id string) (domain.Group, error) {
	group, err := s.Store.Groups().GetGroupByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Group{}, domain.ErrNotFound
		}
		return domain.Group{}, err
	}
	return group, nil
}

// List returns all groups.
func (s *GroupService) List(ctx context.Context) ([]domain.Group, error) {
	return s.Store.Groups().ListGroups(ctx)
}

// Update renames a group. Admin only.
func (s *GroupService) Update(ctx context.Context, actor domain.User, id string, in domain.GroupUpdate) (domain.Group, error) {
	l := slogx.FromContext(ctx)

	if !actor.IsAdmin {
		return domain.Group{}, domain.ErrPermission
	}
	if err := in.Validate(); err != nil {
		return domain.Group{}, err
	}
	if in.Empty() {
		return s.Get(ctx, id)
	}

	trimmed := strings.TrimSpace(*in.Groupname)

	var updated domain.Group
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		updated, err = tx.Groups().UpdateGroup(ctx, id, store.GroupPatch{Groupname: &trimmed})
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	})
	if err != nil {
		return domain.Group{}, err
	}

	l.Info("group updated", slog.String("group_id", id), slog.String("by", actor.ID))
	return updated, nil
}

// Delete removes the group permanently. Admin only, unconditional and
// irreversible.
func (s *GroupService) Delete(ctx context.Context, actor domain.User, id string) error {
	l := slogx.FromContext(ctx)

	if !actor.IsAdmin {
		return domain.ErrPermission
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Groups().DeleteGroup(ctx, id)
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	l.Info("group deleted", slog.String("group_id", id), slog.String("by", actor.ID))
	return nil
}
