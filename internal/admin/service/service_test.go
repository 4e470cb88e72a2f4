package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/internal/admin/store/drivers/sqlite"
	"github.com/userdesk/userdesk/pkg/jwtx"
)

type testEnv struct {
	store  *sqlite.Store
	auth   *AuthService
	users  *UserService
	groups *GroupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "admin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	const issuer = "userdesk-test"
	accessSecret := []byte("access-secret-0123456789abcdef")
	refreshSecret := []byte("refresh-secret-0123456789abcdef")

	accessSigner, err := jwtx.NewSignerHMAC(jwtx.AlgorithmHS256, accessSecret)
	require.NoError(t, err)
	refreshSigner, err := jwtx.NewSignerHMAC(jwtx.AlgorithmHS256, refreshSecret)
	require.NoError(t, err)
	accessVerifier, err := jwtx.NewVerifierHMAC(jwtx.AlgorithmHS256, accessSecret, issuer)
	require.NoError(t, err)
	refreshVerifier, err := jwtx.NewVerifierHMAC(jwtx.AlgorithmHS256, refreshSecret, issuer)
	require.NoError(t, err)

	return &testEnv{
		store: st,
		auth: &AuthService{
			Store:           st,
			AccessSigner:    accessSigner,
			RefreshSigner:   refreshSigner,
			AccessVerifier:  accessVerifier,
			RefreshVerifier: refreshVerifier,
			Issuer:          issuer,
			AccessTTL:       time.Minute,
			RefreshTTL:      time.Hour,
		},
		users:  &UserService{Store: st},
		groups: &GroupService{Store: st},
	}
}

// seedAdmin bootstraps the initial admin the same way the app does at startup.
func seedAdmin(t *testing.T, env *testEnv) domain.User {
	t.Helper()
	ctx := context.Background()

	bootstrap := &BootstrapService{Store: env.store, AdminUsername: "root", AdminPassword: "root-password"}
	require.NoError(t, bootstrap.EnsureInitialAdmin(ctx))

	admin, err := env.auth.Authenticate(ctx, "root", "root-password")
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)
	return admin
}

func registerUser(t *testing.T, env *testEnv, username, password string) domain.User {
	t.Helper()
	u, err := env.users.Create(context.Background(), nil, domain.UserCreate{
		Username: username,
		Password: password,
	})
	require.NoError(t, err)
	return u
}

func TestAuthenticateUniformFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice", "password123")

	got, err := env.auth.Authenticate(ctx, "alice", "password123")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)

	// Wrong password and unknown username fail with the identical error.
	_, err = env.auth.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, domain.ErrAuth)
	_, unknownErr := env.auth.Authenticate(ctx, "nobody", "password123")
	require.ErrorIs(t, unknownErr, domain.ErrAuth)
	require.Equal(t, err.Error(), unknownErr.Error())
}

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice", "password123")

	pair, err := env.auth.IssueTokens(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, "bearer", pair.TokenType)
	require.Equal(t, int64(60), pair.ExpiresIn)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	got, err := env.auth.ResolveCurrentUser(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)

	// The two token families are not interchangeable: different secrets.
	_, err = env.auth.ResolveCurrentUser(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, domain.ErrAuth)
	_, err = env.auth.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, domain.ErrAuth)

	// Refresh rotates the whole pair.
	rotated, err := env.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.AccessToken, rotated.AccessToken)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	got, err = env.auth.ResolveCurrentUser(ctx, rotated.AccessToken)
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)
}

func TestExpiredTokenRejected(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	alice := registerUser(t, env, "alice", "password123")

	env.auth.AccessTTL = -time.Second
	pair, err := env.auth.IssueTokens(ctx, alice)
	require.NoError(t, err)

	_, err = env.auth.ResolveCurrentUser(ctx, pair.AccessToken)
	require.ErrorIs(t, err, domain.ErrAuth)
}

func TestRefreshAfterAccountDeleted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := seedAdmin(t, env)
	alice := registerUser(t, env, "alice", "password123")

	pair, err := env.auth.IssueTokens(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, env.users.SoftDelete(ctx, admin, alice.ID))

	_, err = env.auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, domain.ErrAuth)
	_, err = env.auth.ResolveCurrentUser(ctx, pair.AccessToken)
	require.ErrorIs(t, err, domain.ErrAuth)
}

func TestResolveCurrentAdmin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := seedAdmin(t, env)
	alice := registerUser(t, env, "alice", "password123")

	got, err := env.auth.ResolveCurrentAdmin(ctx, admin)
	require.NoError(t, err)
	require.Equal(t, admin.ID, got.ID)

	_, err = env.auth.ResolveCurrentAdmin(ctx, alice)
	require.ErrorIs(t, err, domain.ErrPermission)
}

func TestCreateUserPolicy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := seedAdmin(t, env)

	// Open registration, but the admin flag is gated.
	_, err := env.users.Create(ctx, nil, domain.UserCreate{Username: "eve", Password: "password123", IsAdmin: true})
	require.ErrorIs(t, err, domain.ErrPermission)

	second, err := env.users.Create(ctx, &admin, domain.UserCreate{Username: "eve", Password: "password123", IsAdmin: true})
	require.NoError(t, err)
	require.True(t, second.IsAdmin)

	// Duplicate active usernames are a conflict.
	_, err = env.users.Create(ctx, nil, domain.UserCreate{Username: "eve", Password: "password123"})
	require.ErrorIs(t, err, domain.ErrConflict)

	// Password policy: 8 to 30 characters.
	_, err = env.users.Create(ctx, nil, domain.UserCreate{Username: "mallory", Password: "short"})
	require.True(t, domain.IsValidation(err))

	// Unknown group is a not-found, not a silent orphan.
	groupID := "01ARZ3NDEKTSV4RRFFQ69G5FAV"
	_, err = env.users.Create(ctx, nil, domain.UserCreate{Username: "mallory", Password: "password123", GroupID: &groupID})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateUserPolicy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := seedAdmin(t, env)
	alice := registerUser(t, env, "alice", "password123")
	bob := registerUser(t, env, "bob", "password123")

	// Self update of profile fields is allowed.
	fullName := "Alice Liddell"
	updated, err := env.users.Update(ctx, alice, alice.ID, domain.UserUpdate{FullName: &fullName})
	require.NoError(t, err)
	require.Equal(t, "Alice Liddell", updated.FullName)

	// Another non-admin's record is off limits.
	_, err = env.users.Update(ctx, alice, bob.ID, domain.UserUpdate{FullName: &fullName})
	require.ErrorIs(t, err, domain.ErrPermission)

	// Touching the admin flag is admin only, even self, even same value.
	notAdmin := false
	_, err = env.users.Update(ctx, alice, alice.ID, domain.UserUpdate{IsAdmin: &notAdmin})
	require.ErrorIs(t, err, domain.ErrPermission)

	isAdmin := true
	updated, err = env.users.Update(ctx, admin, alice.ID, domain.UserUpdate{IsAdmin: &isAdmin})
	require.NoError(t, err)
	require.True(t, updated.IsAdmin)

	// Renaming onto an active username is a conflict.
	name := "bob"
	_, err = env.users.Update(ctx, admin, alice.ID, domain.UserUpdate{Username: &name})
	require.ErrorIs(t, err, domain.ErrConflict)

	// A password update re-hashes: the new credential logs in, the old fails.
	newPassword := "better-password"
	_, err = env.users.Update(ctx, bob, bob.ID, domain.UserUpdate{Password: &newPassword})
	require.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, "bob", "password123")
	require.ErrorIs(t, err, domain.ErrAuth)
	got, err := env.auth.Authenticate(ctx, "bob", "better-password")
	require.NoError(t, err)
	require.Equal(t, bob.ID, got.ID)
}

func TestDeleteUserPolicy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := seedAdmin(t, env)
	alice := registerUser(t, env, "alice", "password123")
	bob := registerUser(t, env, "bob", "password123")

	// Deletion is admin only, and admins cannot remove themselves.
	require.ErrorIs(t, env.users.SoftDelete(ctx, alice, bob.ID), domain.ErrPermission)
	require.ErrorIs(t, env.users.SoftDelete(ctx, admin, admin.ID), domain.ErrPermission)
	require.ErrorIs(t, env.users.HardDelete(ctx, alice, bob.ID), domain.ErrPermission)

	require.NoError(t, env.users.SoftDelete(ctx, admin, alice.ID))

	// The soft-deleted row is gone from default reads but admins can peek.
	_, err := env.users.Get(ctx, admin, alice.ID, false)
	require.ErrorIs(t, err, domain.ErrNotFound)
	got, err := env.users.Get(ctx, admin, alice.ID, true)
	require.NoError(t, err)
	require.True(t, got.Deleted())

	// The username is free for a newcomer.
	again := registerUser(t, env, "alice", "password123")
	require.NotEqual(t, alice.ID, again.ID)

	// Hard delete removes the original row for good.
	require.NoError(t, env.users.HardDelete(ctx, admin, alice.ID))
	_, err = env.users.Get(ctx, admin, alice.ID, true)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, env.users.HardDelete(ctx, admin, alice.ID), domain.ErrNotFound)
}

func TestListUsersAdminOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := seedAdmin(t, env)
	alice := registerUser(t, env, "alice", "password123")

	_, err := env.users.List(ctx, alice, false)
	require.ErrorIs(t, err, domain.ErrPermission)

	users, err := env.users.List(ctx, admin, false)
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestGroupLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := seedAdmin(t, env)
	alice := registerUser(t, env, "alice", "password123")

	_, err := env.groups.Create(ctx, alice, "eng")
	require.ErrorIs(t, err, domain.ErrPermission)

	eng, err := env.groups.Create(ctx, admin, "eng")
	require.NoError(t, err)

	// Duplicate groupnames are fine.
	_, err = env.groups.Create(ctx, admin, "eng")
	require.NoError(t, err)

	groups, err := env.groups.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	name := "engineering"
	renamed, err := env.groups.Update(ctx, admin, eng.ID, domain.GroupUpdate{Groupname: &name})
	require.NoError(t, err)
	require.Equal(t, "engineering", renamed.Groupname)

	// Member joins, group dies, member survives groupless.
	updated, err := env.users.Update(ctx, admin, alice.ID, domain.UserUpdate{GroupID: &eng.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.GroupID)

	require.ErrorIs(t, env.groups.Delete(ctx, alice, eng.ID), domain.ErrPermission)
	require.NoError(t, env.groups.Delete(ctx, admin, eng.ID))

	got, err := env.users.Get(ctx, alice, alice.ID, false)
	require.NoError(t, err)
	require.Nil(t, got.GroupID)

	_, err = env.groups.Get(ctx, eng.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, env.groups.Delete(ctx, admin, eng.ID), domain.ErrNotFound)
}

func TestBootstrapIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	bootstrap := &BootstrapService{Store: env.store, AdminUsername: "root", AdminPassword: "root-password"}
	require.NoError(t, bootstrap.EnsureInitialAdmin(ctx))
	require.NoError(t, bootstrap.EnsureInitialAdmin(ctx))

	// A changed password never rewrites an existing account.
	bootstrap.AdminPassword = "rotated-password"
	require.NoError(t, bootstrap.EnsureInitialAdmin(ctx))
	_, err := env.auth.Authenticate(ctx, "root", "root-password")
	require.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, "root", "rotated-password")
	require.ErrorIs(t, err, domain.ErrAuth)

	// Weak bootstrap credentials are refused outright.
	bad := &BootstrapService{Store: env.store, AdminUsername: "ab", AdminPassword: "root-password"}
	require.True(t, domain.IsValidation(bad.EnsureInitialAdmin(ctx)))
}
