package domain

import (
	"strings"
	"unicode/utf8"
)

// Group is a named collection of users. Groups have no soft-delete state:
// deletion is always physical. Duplicate groupnames are permitted by design.
type Group struct {
	ID        string
	Groupname string

	Timestamps
}

// GroupUpdate carries a field-level partial update for a group.
type GroupUpdate struct {
	Groupname *string
}

func (u GroupUpdate) Empty() bool { return u.Groupname == nil }

func (u GroupUpdate) Validate() error {
	if u.Groupname != nil {
		return ValidateGroupname(*u.Groupname)
	}
	return nil
}

// ValidateGroupname enforces the same length policy as usernames.
func ValidateGroupname(groupname string) error {
	trimmed := strings.TrimSpace(groupname)
	if trimmed == "" {
		return validationErrorf("groupname", "must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < nameMinLen || n > nameMaxLen {
		return validationErrorf("groupname", "must be between %d and %d characters", nameMinLen, nameMaxLen)
	}
	return nil
}
