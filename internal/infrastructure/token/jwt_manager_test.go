package token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-rbac/internal/infrastructure/memory"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newManager(t *testing.T) (*JWTManager, *entity.User, *clock) {
	t.Helper()
	store := memory.NewStore()
	name, _ := vo.NewUserName("Admin")
	email, _ := vo.NewEmail("admin@farmacia.com")
	pw, _ := vo.PasswordFromHash("hash")
	u, err := store.Users().Save(context.Background(), entity.NewUser(name, email, pw, vo.RoleSet{}))
	require.NoError(t, err)

	clk := &clock{t: time.Now()}
	revoked := NewMemoryRevocationStore()
	revoked.now = clk.now
	m := NewJWTManager(Options{Secret: "test-secret", Issuer: "rbac-test", TTL: time.Hour, RefreshTTL: 24 * time.Hour}, store.Users(), revoked)
	m.now = clk.now
	return m, u, clk
}

func TestIssueAndResolve(t *testing.T) {
	m, u, _ := newManager(t)
	ctx := context.Background()

	tok, err := m.IssueToken(ctx, u)
	require.NoError(t, err)

	got, err := m.UserFromToken(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "admin@farmacia.com", got.Email().Value())
	require.Equal(t, time.Hour, m.TTL())
}

func TestIssueRequiresPersistedUser(t *testing.T) {
	m, _, _ := newManager(t)
	name, _ := vo.NewUserName("Ghost")
	email, _ := vo.NewEmail("ghost@farmacia.com")
	pw, _ := vo.PasswordFromHash("hash")

	_, err := m.IssueToken(context.Background(), entity.NewUser(name, email, pw, vo.RoleSet{}))
	require.ErrorIs(t, err, apperr.ErrTokenIssuanceFailed)
}

func TestUserFromTokenRejectsTampering(t *testing.T) {
	m, u, _ := newManager(t)
	ctx := context.Background()

	garbage, _ := vo.NewAuthToken("not.a.jwt")
	_, err := m.UserFromToken(ctx, garbage)
	require.ErrorIs(t, err, apperr.ErrTokenInvalid)

	other := NewJWTManager(Options{Secret: "other-secret", Issuer: "rbac-test"}, m.users, NewMemoryRevocationStore())
	foreign, err := other.IssueToken(ctx, u)
	require.NoError(t, err)
	_, err = m.UserFromToken(ctx, foreign)
	require.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestExpiredTokenCanBeRefreshedInsideWindow(t *testing.T) {
	m, u, clk := newManager(t)
	ctx := context.Background()
	tok, err := m.IssueToken(ctx, u)
	require.NoError(t, err)

	clk.t = clk.t.Add(2 * time.Hour)
	_, err = m.UserFromToken(ctx, tok)
	require.ErrorIs(t, err, apperr.ErrTokenInvalid)

	fresh, err := m.RefreshToken(ctx, tok)
	require.NoError(t, err)
	require.NotEqual(t, tok.Value(), fresh.Value())

	got, err := m.UserFromToken(ctx, fresh)
	require.NoError(t, err)
	id, _ := got.ID()
	uid, _ := u.ID()
	require.True(t, id.Equals(uid))

	// The superseded token is revoked.
	_, err = m.RefreshToken(ctx, tok)
	require.ErrorIs(t, err, apperr.ErrTokenRefreshFailed)
}

func TestConcurrentRefreshSucceedsOnce(t *testing.T) {
	m, u, _ := newManager(t)
	ctx := context.Background()
	tok, err := m.IssueToken(ctx, u)
	require.NoError(t, err)

	var ok, failed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.RefreshToken(ctx, tok); err != nil {
				failed.Add(1)
				return
			}
			ok.Add(1)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), ok.Load())
	require.Equal(t, int32(31), failed.Load())
}

func TestMemoryRevokeOnce(t *testing.T) {
	s := NewMemoryRevocationStore()
	ctx := context.Background()
	until := time.Now().Add(time.Minute)

	first, err := s.RevokeOnce(ctx, "jti-1", until)
	require.NoError(t, err)
	require.True(t, first)

	again, err := s.RevokeOnce(ctx, "jti-1", until)
	require.NoError(t, err)
	require.False(t, again)

	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestRefreshWindowPassed(t *testing.T) {
	m, u, clk := newManager(t)
	ctx := context.Background()
	tok, err := m.IssueToken(ctx, u)
	require.NoError(t, err)

	clk.t = clk.t.Add(25 * time.Hour)
	_, err = m.RefreshToken(ctx, tok)
	require.ErrorIs(t, err, apperr.ErrTokenRefreshFailed)
}

func TestInvalidateIsIdempotent(t *testing.T) {
	m, u, _ := newManager(t)
	ctx := context.Background()
	tok, err := m.IssueToken(ctx, u)
	require.NoError(t, err)

	require.NoError(t, m.InvalidateToken(ctx, tok))
	require.NoError(t, m.InvalidateToken(ctx, tok))

	_, err = m.UserFromToken(ctx, tok)
	require.ErrorIs(t, err, apperr.ErrTokenInvalid)
	_, err = m.RefreshToken(ctx, tok)
	require.ErrorIs(t, err, apperr.ErrTokenRefreshFailed)

	garbage, _ := vo.NewAuthToken("garbage")
	require.NoError(t, m.InvalidateToken(ctx, garbage))
}

func TestUserFromTokenForDeletedUser(t *testing.T) {
	m, u, _ := newManager(t)
	ctx := context.Background()
	tok, err := m.IssueToken(ctx, u)
	require.NoError(t, err)

	id, _ := u.ID()
	require.NoError(t, m.users.Delete(ctx, id))
	_, err = m.UserFromToken(ctx, tok)
	require.ErrorIs(t, err, apperr.ErrUserResolutionFailed)
}

func TestRequestToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	tok, err := FromRequest(req).CurrentToken()
	require.NoError(t, err)
	require.Nil(t, tok)

	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "from-cookie"})
	tok, err = FromRequest(req).CurrentToken()
	require.NoError(t, err)
	require.Equal(t, "from-cookie", tok.Value())

	req.Header.Set("Authorization", "Bearer  from-header ")
	tok, err = FromRequest(req).CurrentToken()
	require.NoError(t, err)
	require.Equal(t, "from-header", tok.Value())

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = FromRequest(req).CurrentToken()
	require.ErrorIs(t, err, apperr.ErrTokenInvalid)

	req.Header.Set("Authorization", "Bearer")
	_, err = FromRequest(req).CurrentToken()
	require.ErrorIs(t, err, apperr.ErrTokenInvalid)
}
