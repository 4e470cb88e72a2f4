package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateUsername("bob"))
	require.NoError(t, ValidateUsername(strings.Repeat("a", 100)))

	require.Error(t, ValidateUsername(""))
	require.Error(t, ValidateUsername("   "))
	require.Error(t, ValidateUsername("ab"))
	require.Error(t, ValidateUsername(strings.Repeat("a", 101)))
}

func TestValidateLengthCountsCharactersNotBytes(t *testing.T) {
	t.Parallel()

	// 40 runes but 120 bytes; within the 100-character limit.
	require.NoError(t, ValidateUsername(strings.Repeat("あ", 40)))
	require.NoError(t, ValidateGroupname(strings.Repeat("あ", 100)))
	require.Error(t, ValidateUsername(strings.Repeat("あ", 101)))

	// 12 runes but 36 bytes; within the 30-character limit.
	require.NoError(t, ValidatePassword(strings.Repeat("あ", 12)))
	require.Error(t, ValidatePassword(strings.Repeat("あ", 31)))
	// 2 runes is below the minimum even though it is 6 bytes.
	require.Error(t, ValidateUsername("あい"))
	require.Error(t, ValidatePassword("あいうえおかき"))
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidatePassword("password123"))
	require.NoError(t, ValidatePassword(strings.Repeat("p", 30)))

	require.Error(t, ValidatePassword(""))
	require.Error(t, ValidatePassword("        "))
	require.Error(t, ValidatePassword("short"))
	require.Error(t, ValidatePassword(strings.Repeat("p", 31)))
}

func TestValidateGroupname(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateGroupname("eng"))
	require.Error(t, ValidateGroupname("ab"))
	require.Error(t, ValidateGroupname(" \t "))
}

func TestValidationErrorsMatchTaxonomy(t *testing.T) {
	t.Parallel()

	err := ValidateUsername("")
	require.True(t, IsValidation(err))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "username", ve.Field)
}

func TestUserUpdateValidate(t *testing.T) {
	t.Parallel()

	name := "newname"
	badName := "x"
	pass := "newpassword1"
	badPass := "nope"

	require.NoError(t, UserUpdate{Username: &name, Password: &pass}.Validate())
	require.Error(t, UserUpdate{Username: &badName}.Validate())
	require.Error(t, UserUpdate{Password: &badPass}.Validate())
	require.True(t, UserUpdate{}.Empty())
	require.False(t, UserUpdate{Username: &name}.Empty())
}
