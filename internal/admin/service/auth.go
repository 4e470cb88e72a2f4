package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/internal/admin/store"
	"github.com/userdesk/userdesk/pkg/cryptox"
	"github.com/userdesk/userdesk/pkg/jwtx"
	"github.com/userdesk/userdesk/pkg/slogx"
)

// AuthService binds credential checking to token issuance. Access and refresh
// tokens are signed with separate secret/algorithm pairs so an access secret
// leak never mints refresh tokens, and vice versa.
type AuthService struct {
	Store store.Store

	AccessSigner    jwtx.Signer
	RefreshSigner   jwtx.Signer
	AccessVerifier  jwtx.Verifier
	RefreshVerifier jwtx.Verifier

	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// dummyPasswordHash gives Authenticate a hash to verify against when the
// username does not exist, so unknown-user and wrong-password take
// comparable time.
func dummyPasswordHash() string {
	dummyHashOnce.Do(func() {
		dummyHash, _ = cryptox.HashPassword("userdesk.dummy.credential")
	})
	return dummyHash
}

// Authenticate validates a username/password pair against the active user
// set. Every failure mode - unknown username, soft-deleted account, wrong
// password - surfaces as the same domain.ErrAuth so responses never reveal
// which part was wrong.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username, false)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cryptox.VerifyPassword(password, dummyPasswordHash())
			l.Info("authentication failed", slog.String("username", username))
			return domain.User{}, domain.ErrAuth
		}
		return domain.User{}, err
	}

	if !cryptox.VerifyPassword(password, user.HashedPassword) {
		l.Info("authentication failed", slog.String("username", username))
		return domain.User{}, domain.ErrAuth
	}

	return user, nil
}

// IssueTokens mints a fresh access/refresh pair for the user. The subject of
// both tokens is the username.
func (s *AuthService) IssueTokens(ctx context.Context, user domain.User) (*domain.TokenPair, error) {
	now := time.Now()

	access, err := s.AccessSigner.Sign(jwtx.NewClaims(user.Username, s.Issuer, s.accessTTL(), now))
	if err != nil {
		return nil, err
	}
	refresh, err := s.RefreshSigner.Sign(jwtx.NewClaims(user.Username, s.Issuer, s.refreshTTL(), now))
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.accessTTL().Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a brand new pair. Both tokens
// rotate: the old access token simply ages out and the caller is expected to
// discard the old refresh token for the returned one.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.RefreshVerifier.Verify(refreshToken)
	if err != nil {
		l.Info("refresh token rejected", slog.Any("error", err))
		return nil, domain.ErrAuth
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, claims.Subject, false)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The account was deleted after the token was issued.
			return nil, domain.ErrAuth
		}
		return nil, err
	}

	return s.IssueTokens(ctx, user)
}

// ResolveCurrentUser turns a bearer access token into the active user it was
// issued for. Any verification or lookup failure is the uniform domain.ErrAuth.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, accessToken string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.AccessVerifier.Verify(accessToken)
	if err != nil {
		l.Info("access token rejected", slog.Any("error", err))
		return domain.User{}, domain.ErrAuth
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, claims.Subject, false)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.ErrAuth
		}
		return domain.User{}, err
	}

	return user, nil
}

// ResolveCurrentAdmin passes the user through unchanged when it holds the
// admin flag, and fails with domain.ErrPermission otherwise.
func (s *AuthService) ResolveCurrentAdmin(ctx context.Context, user domain.User) (domain.User, error) {
	if !user.IsAdmin {
		return domain.User{}, domain.ErrPermission
	}
	return user, nil
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}
