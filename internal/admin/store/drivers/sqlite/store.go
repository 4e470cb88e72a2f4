// Package sqlite implements store.Store on top of a SQLite database using
// the modernc.org/sqlite driver (pure Go, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/internal/admin/store"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dbtx is the common surface of *sql.DB and *sql.Tx the repos run on.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", applyPragmas(dsn))
	if err != nil {
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

// applyPragmas appends per-connection pragmas to the DSN so every pooled
// connection enforces foreign keys (needed for ON DELETE SET NULL on
// users.group_id) and waits on a locked database instead of failing.
func applyPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err // rollback happens in defer
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users   { return &usersRepo{db: s.db} }
func (s *Store) Groups() store.Groups { return &groupsRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConflict translates a unique constraint violation into the store
// sentinel so callers don't have to know sqlite error codes.
func mapConflict(err error) error {
	var se *sqlitedrv.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return store.ErrAlreadyExists
	}
	return err
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

// userColumns is the SELECT list every user query shares, in scanUser order.
const userColumns = `id, username, hashed_password, full_name, stage_name, nickname, is_admin, group_id, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u       domain.User
		groupID sql.NullString
		deleted sql.NullTime
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.HashedPassword,
		&u.FullName,
		&u.StageName,
		&u.Nickname,
		&u.IsAdmin,
		&groupID,
		&u.CreatedAt,
		&u.UpdatedAt,
		&deleted,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.GroupID = mapNullStringPtr(groupID)
	u.DeletedAt = mapNullTimePtr(deleted)
	return u, nil
}

const groupColumns = `id, groupname, created_at, updated_at`

func scanGroup(row rowScanner) (domain.Group, error) {
	var g domain.Group
	err := row.Scan(&g.ID, &g.Groupname, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return domain.Group{}, err
	}
	return g, nil
}
