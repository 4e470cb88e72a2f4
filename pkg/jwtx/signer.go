// Package jwtx wraps golang-jwt with the small signing surface this service
// needs: HMAC-signed bearer tokens built from a secret and algorithm pair.
// Access and refresh tokens use separate pairs so the two are never
// interchangeable, even if one secret leaks.
package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Supported JWT signing algorithms.
const (
	AlgorithmHS256 = "HS256"
	AlgorithmHS384 = "HS384"
	AlgorithmHS512 = "HS512"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HMACSigner implements Signer using an HMAC-SHA family algorithm and a
// shared secret.
type HMACSigner struct {
	method *jwt.SigningMethodHMAC
	secret []byte
}

// NewSignerHMAC creates a signer for the given algorithm and secret.
func NewSignerHMAC(algorithm string, secret []byte) (*HMACSigner, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}

	method, err := hmacMethod(algorithm)
	if err != nil {
		return nil, err
	}

	return &HMACSigner{method: method, secret: secret}, nil
}

func (s *HMACSigner) Alg() string { return s.method.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HMACSigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(s.method, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

func hmacMethod(algorithm string) (*jwt.SigningMethodHMAC, error) {
	switch algorithm {
	case AlgorithmHS256:
		return jwt.SigningMethodHS256, nil
	case AlgorithmHS384:
		return jwt.SigningMethodHS384, nil
	case AlgorithmHS512:
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf(
			"jwtx: unsupported algorithm %q (supported: HS256, HS384, HS512)",
			algorithm,
		)
	}
}
