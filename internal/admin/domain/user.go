package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Timestamps are the write-tracking fields the store stamps on every row.
// Embedded by value rather than inherited.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is an account in the administration backend.
type User struct {
	ID             string
	Username       string
	HashedPassword string // bcrypt encoded, never the plaintext
	FullName       string
	StageName      string // display alias, free-form
	Nickname       string // display alias, free-form
	IsAdmin        bool
	GroupID        *string // optional group membership (nullable FK)

	Timestamps

	// DeletedAt is the soft-delete marker: nil means active. Soft-deleted
	// users are excluded from every default-scoped query.
	DeletedAt *time.Time
}

// Deleted reports whether the user is soft-deleted.
func (u User) Deleted() bool { return u.DeletedAt != nil }

// UserCreate is the validated payload for creating a user. Password is the
// plaintext credential; it is hashed before it ever reaches the store.
type UserCreate struct {
	Username  string
	Password  string
	FullName  string
	StageName string
	Nickname  string
	IsAdmin   bool
	GroupID   *string
}

// Validate checks the create payload against the input policy.
func (c UserCreate) Validate() error {
	if err := ValidateUsername(c.Username); err != nil {
		return err
	}
	return ValidatePassword(c.Password)
}

// UserUpdate carries a field-level partial update. Nil fields are untouched;
// present fields are applied by replacement. A present Password is re-hashed,
// never stored as plaintext. Setting GroupID to an empty string clears the
// membership.
type UserUpdate struct {
	Username  *string
	FullName  *string
	StageName *string
	Nickname  *string
	IsAdmin   *bool
	GroupID   *string
	Password  *string
}

// Empty reports whether the update carries no fields at all.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.FullName == nil && u.StageName == nil &&
		u.Nickname == nil && u.IsAdmin == nil && u.GroupID == nil && u.Password == nil
}

// Validate checks every present field against the input policy.
func (u UserUpdate) Validate() error {
	if u.Username != nil {
		if err := ValidateUsername(*u.Username); err != nil {
			return err
		}
	}
	if u.Password != nil {
		if err := ValidatePassword(*u.Password); err != nil {
			return err
		}
	}
	return nil
}

const (
	nameMinLen = 3
	nameMaxLen = 100

	passwordMinLen = 8
	passwordMaxLen = 30
)

// ValidateUsername enforces the 3-100 character, non-blank-after-trim policy.
func ValidateUsername(username string) error {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return validationErrorf("username", "must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < nameMinLen || n > nameMaxLen {
		return validationErrorf("username", "must be between %d and %d characters", nameMinLen, nameMaxLen)
	}
	return nil
}

// ValidatePassword enforces the 8-30 character, non-blank policy on plaintext
// passwords before they are hashed.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return validationErrorf("password", "must not be empty")
	}
	if n := utf8.RuneCountInString(password); n < passwordMinLen || n > passwordMaxLen {
		return validationErrorf("password", "must be between %d and %d characters", passwordMinLen, passwordMaxLen)
	}
	return nil
}
