package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-rbac/internal/infrastructure/memory"
)

type authFixture struct {
	store  *memory.Store
	tokens *fakeTokens
	events *recordingPublisher
	svc    *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := memory.NewStore()
	tokens := newFakeTokens(store.Users())
	events := &recordingPublisher{}
	svc := NewAuthService(store.Users(), tokens, Hooks{Events: events})

	users := NewUserService(store.Users(), store.Roles(), nil, vo.GuardOrDefault(""), Hooks{})
	_, err := users.Create(context.Background(), CreateUserInput{
		Name: "Admin", Email: "admin@farmacia.com", Password: "password123",
	})
	require.NoError(t, err)
	return &authFixture{store: store, tokens: tokens, events: events, svc: svc}
}

func TestLoginUnknownEmailIssuesNoToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "secret123"})
	require.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	require.Equal(t, "Invalid email or password.", err.Error())
	require.Zero(t, f.tokens.issued)
}

func TestLoginWrongPasswordLooksTheSame(t *testing.T) {
	f := newAuthFixture(t)

	_, unknown := f.svc.Login(context.Background(), LoginInput{Email: "nobody@farmacia.com", Password: "password123"})
	_, wrong := f.svc.Login(context.Background(), LoginInput{Email: "admin@farmacia.com", Password: "password124"})
	require.ErrorIs(t, wrong, apperr.ErrInvalidCredentials)
	require.Equal(t, unknown.Error(), wrong.Error())
	require.Zero(t, f.tokens.issued)
}

func TestLoginRejectsMalformedEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Login(context.Background(), LoginInput{Email: "not-an-email", Password: "password123"})
	require.ErrorIs(t, err, apperr.ErrInvalidValue)
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.svc.Login(context.Background(), LoginInput{Email: " Admin@Farmacia.com ", Password: "password123"})
	require.NoError(t, err)
	require.Equal(t, "bearer", res.TokenType)
	require.Equal(t, 3600, res.ExpiresIn)
	require.NotEmpty(t, res.AccessToken)
	require.Equal(t, "admin@farmacia.com", res.User.Email().Value())
	require.Equal(t, []string{"auth.login"}, f.events.types())
}

func TestLoginWrapsIssuanceFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.tokens.failOn = "issue"

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "admin@farmacia.com", Password: "password123"})
	require.ErrorIs(t, err, apperr.ErrTokenIssuanceFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExpiresInUsesTokenTTL(t *testing.T) {
	f := newAuthFixture(t)
	f.svc.Tokens = ttlTokens{fakeTokens: f.tokens, ttl: 15 * time.Minute}

	res, err := f.svc.Login(context.Background(), LoginInput{Email: "admin@farmacia.com", Password: "password123"})
	require.NoError(t, err)
	require.Equal(t, 900, res.ExpiresIn)
}

func TestUserWithoutTokenIsEmpty(t *testing.T) {
	f := newAuthFixture(t)
	u, err := f.svc.User(context.Background(), staticToken{})
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestUserWithBadToken(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.User(context.Background(), bearer("garbage"))
	require.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestRefreshWithoutSession(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Refresh(context.Background(), staticToken{})
	require.ErrorIs(t, err, apperr.ErrNoActiveSession)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, LoginInput{Email: "admin@farmacia.com", Password: "password123"})
	require.NoError(t, err)

	res, err := f.svc.Refresh(ctx, bearer(login.AccessToken))
	require.NoError(t, err)
	require.NotEqual(t, login.AccessToken, res.AccessToken)
	require.Equal(t, "bearer", res.TokenType)
	require.Equal(t, 3600, res.ExpiresIn)
	require.Equal(t, "admin@farmacia.com", res.User.Email().Value())

	_, err = f.svc.Refresh(ctx, bearer(login.AccessToken))
	require.ErrorIs(t, err, apperr.ErrTokenRefreshFailed)
}

func TestLogoutEventCarriesUserID(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, LoginInput{Email: "admin@farmacia.com", Password: "password123"})
	require.NoError(t, err)
	uid, _ := login.User.ID()

	require.NoError(t, f.svc.Logout(ctx, bearer(login.AccessToken)))
	// A second logout of the revoked token emits nothing.
	require.NoError(t, f.svc.Logout(ctx, bearer(login.AccessToken)))

	require.Equal(t, []string{"auth.login", "auth.logout"}, f.events.types())
	require.Equal(t, uid.Value(), f.events.events[1].SubjectID)
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Logout(ctx, staticToken{}))

	login, err := f.svc.Login(ctx, LoginInput{Email: "admin@farmacia.com", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, bearer(login.AccessToken)))
	require.NoError(t, f.svc.Logout(ctx, bearer(login.AccessToken)))

	_, err = f.svc.User(ctx, bearer(login.AccessToken))
	require.ErrorIs(t, err, apperr.ErrTokenInvalid)
}
