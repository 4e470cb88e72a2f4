package cryptox_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/userdesk/userdesk/pkg/cryptox"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.HashPassword("password123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotContains(t, hash, "password123")

	require.True(t, cryptox.VerifyPassword("password123", hash))
	require.False(t, cryptox.VerifyPassword("password124", hash))
	require.False(t, cryptox.VerifyPassword("", hash))
}

func TestHashPasswordSalted(t *testing.T) {
	t.Parallel()

	h1, err := cryptox.HashPassword("correct horse battery")
	require.NoError(t, err)
	h2, err := cryptox.HashPassword("correct horse battery")
	require.NoError(t, err)

	// Same plaintext, different salt, different encoded hashes.
	require.NotEqual(t, h1, h2)
	require.True(t, cryptox.VerifyPassword("correct horse battery", h1))
	require.True(t, cryptox.VerifyPassword("correct horse battery", h2))
}

func TestHashPasswordRejectsOversizedInput(t *testing.T) {
	t.Parallel()

	_, err := cryptox.HashPassword(strings.Repeat("x", 73))
	require.Error(t, err)
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	t.Parallel()

	require.False(t, cryptox.VerifyPassword("password123", "not-a-bcrypt-hash"))
}
