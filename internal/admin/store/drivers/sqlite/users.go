package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/internal/admin/store"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if !u.CreatedAt.IsZero() {
		now = u.CreatedAt
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, hashed_password, full_name, stage_name, nickname, is_admin, group_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.HashedPassword, u.FullName, u.StageName, u.Nickname,
		u.IsAdmin, mapOptionalString(u.GroupID), now, now,
	)
	return mapConflict(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string, includeDeleted bool) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string, includeDeleted bool) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	} else {
		// Multiple soft-deleted rows may share the username; prefer the
		// active one, then the most recently created.
		query += ` ORDER BY deleted_at IS NULL DESC, created_at DESC LIMIT 1`
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) ListUsers(ctx context.Context, includeDeleted bool) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) UpdateUser(ctx context.Context, id string, patch store.UserPatch) (domain.User, error) {
	if patch.Empty() {
		return r.GetUserByID(ctx, id, false)
	}

	var (
		sets []string
		args []any
	)
	if patch.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *patch.Username)
	}
	if patch.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *patch.FullName)
	}
	if patch.StageName != nil {
		sets = append(sets, "stage_name = ?")
		args = append(args, *patch.StageName)
	}
	if patch.Nickname != nil {
		sets = append(sets, "nickname = ?")
		args = append(args, *patch.Nickname)
	}
	if patch.IsAdmin != nil {
		sets = append(sets, "is_admin = ?")
		args = append(args, *patch.IsAdmin)
	}
	switch {
	case patch.ClearGroup:
		sets = append(sets, "group_id = NULL")
	case patch.GroupID != nil:
		sets = append(sets, "group_id = ?")
		args = append(args, *patch.GroupID)
	}
	if patch.HashedPassword != nil {
		sets = append(sets, "hashed_password = ?")
		args = append(args, *patch.HashedPassword)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	// The deleted_at guard makes an update racing a soft delete lose cleanly.
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ? AND deleted_at IS NULL`,
		args...,
	)
	if err != nil {
		return domain.User{}, mapConflict(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, err
	}
	if affected == 0 {
		return domain.User{}, store.ErrNotFound
	}

	return r.GetUserByID(ctx, id, false)
}

func (r *usersRepo) SoftDeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Nothing stamped: either the row is already soft-deleted (idempotent
	// success) or it never existed.
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (r *usersRepo) HardDeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
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
