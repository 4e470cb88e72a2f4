package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verification errors. Callers match with errors.Is; anything else coming out
// of Verify is a malformed-token condition wrapped around ErrMalformed.
var (
	ErrMalformed = errors.New("jwtx: malformed token")
	ErrSignature = errors.New("jwtx: signature verification failed")
	ErrExpired   = errors.New("jwtx: token expired")
	ErrIssuer    = errors.New("jwtx: unexpected issuer")
)

// Verifier validates a raw JWT string and returns its parsed Claims.
type Verifier interface {
	Verify(tokenStr string) (*Claims, error)
}

// HMACVerifier validates JWTs signed with an HMAC-SHA family algorithm.
// Only the configured algorithm is accepted; tokens signed with a different
// method are rejected before signature verification.
type HMACVerifier struct {
	parser *jwt.Parser
	secret []byte
	issuer string
}

// NewVerifierHMAC creates a verifier for the given algorithm, secret, and
// expected issuer. An empty issuer disables issuer validation.
func NewVerifierHMAC(algorithm string, secret []byte, issuer string) (*HMACVerifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty verification secret")
	}

	method, err := hmacMethod(algorithm)
	if err != nil {
		return nil, err
	}

	return &HMACVerifier{
		parser: jwt.NewParser(jwt.WithValidMethods([]string{method.Alg()})),
		secret: secret,
		issuer: issuer,
	}, nil
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *HMACVerifier) Verify(tokenStr string) (*Claims, error) {
	token, err := v.parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}

	// Now check the claim requirements the parser doesn't cover.
	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return nil, err
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrSignature
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
