package jwtx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/userdesk/userdesk/pkg/jwtx"
)

const (
	testIssuer = "userdesk"
)

var (
	accessSecret  = []byte("access-secret-for-tests")
	refreshSecret = []byte("refresh-secret-for-tests")
)

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	signer, err := jwtx.NewSignerHMAC(jwtx.AlgorithmHS256, accessSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHMAC(jwtx.AlgorithmHS256, accessSecret, testIssuer)
	require.NoError(t, err)

	now := time.Now().UTC()
	token, err := signer.Sign(jwtx.NewClaims("alice", testIssuer, time.Minute, now))
	require.NoError(t, err)

	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, testIssuer, claims.Issuer)
	require.WithinDuration(t, now.Add(time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signer, err := jwtx.NewSignerHMAC(jwtx.AlgorithmHS256, accessSecret)
	require.NoError(t, err)

	// A structurally valid access token must not verify against the refresh
	// secret - the two token families are never interchangeable.
	refreshVerifier, err := jwtx.NewVerifierHMAC(jwtx.AlgorithmHS256, refreshSecret, testIssuer)
	require.NoError(t, err)

	token, err := signer.Sign(jwtx.NewClaims("alice", testIssuer, time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = refreshVerifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrSignature)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	signer, err := jwtx.NewSignerHMAC(jwtx.AlgorithmHS256, accessSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHMAC(jwtx.AlgorithmHS256, accessSecret, testIssuer)
	require.NoError(t, err)

	now := time.Now().UTC()

	// Still inside the TTL: verifies.
	fresh, err := signer.Sign(jwtx.NewClaims("alice", testIssuer, time.Hour, now))
	require.NoError(t, err)
	_, err = verifier.Verify(fresh)
	require.NoError(t, err)

	// Issued with an expiry already in the past: rejected.
	stale, err := signer.Sign(jwtx.NewClaims("alice", testIssuer, -time.Second, now))
	require.NoError(t, err)
	_, err = verifier.Verify(stale)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	signer, err := jwtx.NewSignerHMAC(jwtx.AlgorithmHS256, accessSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHMAC(jwtx.AlgorithmHS256, accessSecret, "someone-else")
	require.NoError(t, err)

	token, err := signer.Sign(jwtx.NewClaims("alice", testIssuer, time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	verifier, err := jwtx.NewVerifierHMAC(jwtx.AlgorithmHS256, accessSecret, testIssuer)
	require.NoError(t, err)

	_, err = verifier.Verify("not.a.jwt")
	require.Error(t, err)

	_, err = verifier.Verify("")
	require.Error(t, err)
}

func TestIssuanceIsUniquePerCall(t *testing.T) {
	t.Parallel()

	signer, err := jwtx.NewSignerHMAC(jwtx.AlgorithmHS512, refreshSecret)
	require.NoError(t, err)

	// Two tokens minted at the exact same instant still differ: the jti claim
	// carries fresh entropy on every call.
	now := time.Now().UTC()
	a, err := signer.Sign(jwtx.NewClaims("alice", testIssuer, time.Minute, now))
	require.NoError(t, err)
	b, err := signer.Sign(jwtx.NewClaims("alice", testIssuer, time.Minute, now))
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestUnsupportedAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := jwtx.NewSignerHMAC("RS256", accessSecret)
	require.Error(t, err)

	_, err = jwtx.NewVerifierHMAC("none", accessSecret, testIssuer)
	require.Error(t, err)

	_, err = jwtx.NewSignerHMAC(jwtx.AlgorithmHS256, nil)
	require.Error(t, err)
}
