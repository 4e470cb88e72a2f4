package store

import (
	"context"
	"errors"

	"github.com/userdesk/userdesk/internal/admin/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Groups() Groups

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to make check-then-write sequences atomic (e.g. the
	// username uniqueness check before an insert).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// UserPatch is the store-level partial update for a user. Nil fields are left
// untouched. HashedPassword is already hashed by the caller - the store never
// sees plaintext. ClearGroup removes the group membership.
type UserPatch struct {
	Username       *string
	FullName       *string
	StageName      *string
	Nickname       *string
	IsAdmin        *bool
	GroupID        *string
	ClearGroup     bool
	HashedPassword *string
}

// Empty reports whether the patch would change nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.FullName == nil && p.StageName == nil &&
		p.Nickname == nil && p.IsAdmin == nil && p.GroupID == nil &&
		!p.ClearGroup && p.HashedPassword == nil
}

// GroupPatch is the store-level partial update for a group.
type GroupPatch struct {
	Groupname *string
}

func (p GroupPatch) Empty() bool { return p.Groupname == nil }

type Users interface {
	// CreateUser inserts a new user (id is provided by app via ULID).
	// A duplicate active username surfaces as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id. Soft-deleted rows are invisible
	// unless includeDeleted is set.
	GetUserByID(ctx context.Context, id string, includeDeleted bool) (domain.User, error)

	// GetUserByUsername is used during login and duplicate checking. Same
	// visibility rule as GetUserByID.
	GetUserByUsername(ctx context.Context, username string, includeDeleted bool) (domain.User, error)

	// ListUsers returns all users, soft-deleted rows included only when
	// includeDeleted is set.
	ListUsers(ctx context.Context, includeDeleted bool) ([]domain.User, error)

	// UpdateUser applies the present patch fields and bumps updated_at.
	// Returns ErrNotFound if the target is missing or was soft-deleted in
	// the meantime; ErrAlreadyExists on a username collision.
	UpdateUser(ctx context.Context, id string, patch UserPatch) (domain.User, error)

	// SoftDeleteUser stamps deleted_at = now. Idempotent for already-deleted
	// rows; ErrNotFound only when no row exists at all.
	SoftDeleteUser(ctx context.Context, id string) error

	// HardDeleteUser physically removes the row, deleted or not.
	// ErrNotFound when no row exists. Irreversible.
	HardDeleteUser(ctx context.Context, id string) error
}

type Groups interface {
	// CreateGroup inserts a new group. Duplicate groupnames are allowed.
	CreateGroup(ctx context.Context, g domain.Group) error

	// GetGroupByID returns a group by id.
	GetGroupByID(ctx context.Context, id string) (domain.Group, error)

	// ListGroups returns all groups ordered by id.
	ListGroups(ctx context.Context) ([]domain.Group, error)

	// UpdateGroup applies the present patch fields and bumps updated_at.
	UpdateGroup(ctx context.Context, id string, patch GroupPatch) (domain.Group, error)

	// DeleteGroup physically removes the group. Members keep existing with
	// their group_id cleared (ON DELETE SET NULL).
	DeleteGroup(ctx context.Context, id string) error
}
