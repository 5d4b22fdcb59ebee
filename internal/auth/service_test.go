package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quanty/quanty-backend/internal/profiles"
	"github.com/quanty/quanty-backend/internal/users"
	pkgAuth "github.com/quanty/quanty-backend/pkg/auth"
	"github.com/quanty/quanty-backend/pkg/auth/session"
	"github.com/quanty/quanty-backend/pkg/config"
	"github.com/quanty/quanty-backend/pkg/db/dbtest"
	"github.com/quanty/quanty-backend/pkg/enums"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	// accessID -> refresh token
	tokens map[string]string
	owners map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]string{}, owners: map[string]string{}}
}

func (f *fakeSessions) Generate(_ context.Context, userID, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.tokens[accessID] = token
	f.owners[accessID] = userID
	return token, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, userID, oldAccessID, provided string) (string, string, error) {
	if stored, ok := f.tokens[oldAccessID]; !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.tokens, oldAccessID)
	delete(f.owners, oldAccessID)
	next := session.NewAccessID()
	token, _ := f.Generate(ctx, userID, next)
	return next, token, nil
}

func (f *fakeSessions) Revoke(_ context.Context, _ string, accessID string) error {
	delete(f.tokens, accessID)
	delete(f.owners, accessID)
	return nil
}

func (f *fakeSessions) RevokeAll(_ context.Context, userID string) (int, error) {
	n := 0
	for id, owner := range f.owners {
		if owner == userID {
			delete(f.tokens, id)
			delete(f.owners, id)
			n++
		}
	}
	return n, nil
}

type fixture struct {
	svc      Service
	sessions *fakeSessions
	users    *users.Repository
	profiles *profiles.Repository
	jwt      config.JWTConfig
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.New(t)
	f := &fixture{
		sessions: newFakeSessions(),
		users:    users.NewRepository(client.DB()),
		profiles: profiles.NewRepository(client.DB()),
		jwt:      config.JWTConfig{Secret: "secret", Issuer: "quanty", ExpirationMinutes: 60},
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	svc, err := NewService(ServiceParams{
		DB:             client,
		UserRepo:       f.users,
		SessionManager: f.sessions,
		JWTConfig:      f.jwt,
		PasswordConfig: config.PasswordConfig{MinLength: 6},
		Now:            func() time.Time { return f.now },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestSignupCreatesUserAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	name := "  Jane Doe "

	sess, err := f.svc.Signup(ctx, SignupRequest{Email: " Jane@Example.com ", Password: "hunter22", FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", sess.User.Email)
	assert.Equal(t, "bearer", sess.TokenType)
	assert.Equal(t, f.now.Add(time.Hour).Unix(), sess.ExpiresAt)
	assert.Equal(t, int64(3600), sess.ExpiresIn)

	claims, err := pkgAuth.ParseAccessTokenAllowExpired(f.jwt, sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)
	assert.Equal(t, "refresh-"+claims.ID, sess.RefreshToken)

	profile, err := f.profiles.FindByID(ctx, sess.User.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.FullName)
	assert.Equal(t, "Jane Doe", *profile.FullName)
	require.NotNil(t, profile.Role)
	assert.Equal(t, enums.ProfileRoleUser, *profile.Role)

	_, err = f.svc.Signup(ctx, SignupRequest{Email: "jane@example.com", Password: "another1"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestSignupRejectsShortPassword(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Signup(context.Background(), SignupRequest{Email: "a@b.com", Password: "abc"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Signup(ctx, SignupRequest{Email: "a@b.com", Password: "secret-pass"})
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour)
	sess, err := f.svc.Login(ctx, LoginRequest{Email: "A@B.com", Password: "secret-pass"})
	require.NoError(t, err)

	user, err := f.users.FindByID(ctx, sess.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.LastLoginAt)
	assert.True(t, user.LastLoginAt.Equal(f.now))

	_, err = f.svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "wrong-pass"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	_, err = f.svc.Login(ctx, LoginRequest{Email: "nobody@b.com", Password: "secret-pass"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLoginWithIdentityCreatesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	identity := Identity{Provider: users.ProviderGoogle, Subject: "g-1", Email: "G@Example.com", Name: "Grace Hopper"}

	first, err := f.svc.LoginWithIdentity(ctx, identity)
	require.NoError(t, err)
	second, err := f.svc.LoginWithIdentity(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	user, err := f.users.FindByID(ctx, first.User.ID)
	require.NoError(t, err)
	assert.Equal(t, users.ProviderGoogle, user.Provider)
	profile, err := f.profiles.FindByID(ctx, first.User.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.FullName)
	assert.Equal(t, "Grace Hopper", *profile.FullName)

	_, err = f.svc.LoginWithIdentity(ctx, Identity{Subject: "g-2"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.svc.Signup(ctx, SignupRequest{Email: "a@b.com", Password: "secret-pass"})
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	next, err := f.svc.Refresh(ctx, sess.AccessToken, sess.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.RefreshToken, next.RefreshToken)
	assert.Equal(t, sess.User, next.User)

	_, err = f.svc.Refresh(ctx, sess.AccessToken, sess.RefreshToken)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "old refresh token must be revoked")

	_, err = f.svc.Refresh(ctx, "garbage", next.RefreshToken)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLogoutScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.svc.Signup(ctx, SignupRequest{Email: "a@b.com", Password: "secret-pass"})
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "secret-pass"})
	require.NoError(t, err)
	third, err := f.svc.Login(ctx, LoginRequest{Email: "a@b.com", Password: "secret-pass"})
	require.NoError(t, err)
	require.Len(t, f.sessions.tokens, 3)

	require.NoError(t, f.svc.Logout(ctx, first.AccessToken, ScopeLocal))
	assert.Len(t, f.sessions.tokens, 2)

	require.NoError(t, f.svc.Logout(ctx, second.AccessToken, ScopeGlobal))
	assert.Empty(t, f.sessions.tokens)

	_, err = f.svc.Refresh(ctx, third.AccessToken, third.RefreshToken)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestGetUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.svc.Signup(ctx, SignupRequest{Email: "a@b.com", Password: "secret-pass"})
	require.NoError(t, err)

	user, err := f.svc.GetUser(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)

	_, err = f.svc.GetUser(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestParseScope(t *testing.T) {
	scope, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeLocal, scope)
	scope, err = ParseScope("GLOBAL")
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, scope)
	_, err = ParseScope("others")
	assert.Error(t, err)
}
