package sqlite

import (
	"context"
	"time"

	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/internal/admin/store"
)

type groupsRepo struct {
	db dbtx
}

func (r *groupsRepo) CreateGroup(ctx context.Context, g domain.Group) error {
	now := time.Now().UTC()
	if !g.CreatedAt.IsZero() {
		now = g.CreatedAt
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO groups (id, groupname, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		g.ID, g.Groupname, now, now,
	)
	return mapConflict(err)
}

func (r *groupsRepo) GetGroupByID(ctx context.Context, id string) (domain.Group, error) {
	g, err := scanGroup(r.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE id = ?`, id))
	if err != nil {
		return domain.Group{}, mapNotFound(err)
	}
	return g, nil
}

func (r *groupsRepo) ListGroups(ctx context.Context) ([]domain.Group, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM groups ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *groupsRepo) UpdateGroup(ctx context.Context, id string, patch store.GroupPatch) (domain.Group, error) {
	if patch.Empty() {
		return r.GetGroupByID(ctx, id)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE groups SET groupname = ?, updated_at = ? WHERE id = ?`,
		*patch.Groupname, time.Now().UTC(), id,
	)
	if err != nil {
		return domain.Group{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Group{}, err
	}
	if affected == 0 {
		return domain.Group{}, store.ErrNotFound
	}

	return r.GetGroupByID(ctx, id)
}

func (r *groupsRepo) DeleteGroup(ctx context.Context, id string) error {
	// Physical delete; users.group_id rows are cleared by ON DELETE SET NULL.
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
