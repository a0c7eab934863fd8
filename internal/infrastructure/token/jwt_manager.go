// Package token implements the TokenManager contract with signed JWTs and a
// revocation list keyed by token id (jti).
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// Claims carries the user id and the login session id. A refreshed token keeps
// the session id and gets a new jti.
type Claims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// RevocationStore remembers revoked token ids until they could no longer be used.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	// RevokeOnce revokes jti atomically and reports false when it was
	// already revoked.
	RevokeOnce(ctx context.Context, jti string, until time.Time) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Options struct {
	Secret string
	Issuer string
	// TTL is the access token lifetime.
	TTL time.Duration
	// RefreshTTL is how long after issuance an expired token may still be refreshed.
	RefreshTTL time.Duration
}

type JWTManager struct {
	secret     []byte
	issuer     string
	ttl        time.Duration
	refreshTTL time.Duration
	users      repo.UserRepository
	revoked    RevocationStore
	now        func() time.Time
}

var _ repo.TokenManager = (*JWTManager)(nil)
var _ repo.TTLProvider = (*JWTManager)(nil)

func NewJWTManager(opts Options, users repo.UserRepository, revoked RevocationStore) *JWTManager {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.RefreshTTL < opts.TTL {
		opts.RefreshTTL = opts.TTL
	}
	return &JWTManager{
		secret:     []byte(opts.Secret),
		issuer:     opts.Issuer,
		ttl:        opts.TTL,
		refreshTTL: opts.RefreshTTL,
		users:      users,
		revoked:    revoked,
		now:        time.Now,
	}
}

func (m *JWTManager) TTL() time.Duration { return m.ttl }

func (m *JWTManager) IssueToken(_ context.Context, u *entity.User) (vo.AuthToken, error) {
	if u == nil {
		return vo.AuthToken{}, apperr.Wrap(apperr.KindTokenIssuanceFailed, nil, "Cannot issue a token without a user.")
	}
	id, ok := u.ID()
	if !ok {
		return vo.AuthToken{}, apperr.Wrap(apperr.KindTokenIssuanceFailed, nil, "Cannot issue a token for an unsaved user.")
	}
	return m.sign(id.Value(), uuid.NewString(), apperr.KindTokenIssuanceFailed)
}

// RefreshToken accepts a token that is expired but still within the refresh
// window. The old token is revoked in the same step that claims it, so a
// token is refreshed at most once.
func (m *JWTManager) RefreshToken(ctx context.Context, token vo.AuthToken) (vo.AuthToken, error) {
	claims, err := m.parse(token.Value(), false)
	if err != nil {
		return vo.AuthToken{}, apperr.Wrap(apperr.KindTokenRefreshFailed, err, "Token cannot be refreshed.")
	}
	if m.now().After(m.refreshDeadline(claims)) {
		return vo.AuthToken{}, apperr.Wrap(apperr.KindTokenRefreshFailed, nil, "Token refresh window has passed.")
	}
	claimed, err := m.revoked.RevokeOnce(ctx, claims.ID, m.refreshDeadline(claims))
	if err != nil {
		return vo.AuthToken{}, apperr.Wrap(apperr.KindTokenRefreshFailed, err, "Token cannot be refreshed.")
	}
	if !claimed {
		return vo.AuthToken{}, apperr.Wrap(apperr.KindTokenRefreshFailed, nil, "Token has been revoked.")
	}
	return m.sign(claims.UserID, claims.SessionID, apperr.KindTokenRefreshFailed)
}

// InvalidateToken revokes token. Unparseable tokens are already unusable, so
// they are accepted silently.
func (m *JWTManager) InvalidateToken(ctx context.Context, token vo.AuthToken) error {
	claims, err := m.parse(token.Value(), false)
	if err != nil {
		return nil
	}
	if err := m.revoked.Revoke(ctx, claims.ID, m.refreshDeadline(claims)); err != nil {
		return apperr.Wrap(apperr.KindInternal, err, "Unable to revoke token.")
	}
	return nil
}

func (m *JWTManager) UserFromToken(ctx context.Context, token vo.AuthToken) (*entity.User, error) {
	claims, err := m.parse(token.Value(), true)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTokenInvalid, err, "Token is invalid.")
	}
	revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTokenInvalid, err, "Token is invalid.")
	}
	if revoked {
		return nil, apperr.Wrap(apperr.KindTokenInvalid, nil, "Token has been revoked.")
	}
	id, err := vo.NewID(claims.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUserResolutionFailed, err, "Token subject is not a valid user id.")
	}
	u, err := m.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUserResolutionFailed, err, "Unable to resolve user from token.")
	}
	if u == nil {
		return nil, apperr.Wrap(apperr.KindUserResolutionFailed, nil, "User not found for token.")
	}
	return u, nil
}

func (m *JWTManager) sign(userID, sessionID string, failKind apperr.Kind) (vo.AuthToken, error) {
	now := m.now()
	claims := &Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return vo.AuthToken{}, apperr.Wrap(failKind, err, "Unable to sign token.")
	}
	return vo.NewAuthToken(s)
}

// parse verifies the signature. Time-based claims are only checked when
// validateTimes is set.
func (m *JWTManager) parse(raw string, validateTimes bool) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if validateTimes {
		opts = append(opts, jwt.WithTimeFunc(m.now), jwt.WithIssuedAt())
		if m.issuer != "" {
			opts = append(opts, jwt.WithIssuer(m.issuer))
		}
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" || claims.UserID == "" || claims.IssuedAt == nil {
		return nil, errors.New("token is missing required claims")
	}
	if !validateTimes && m.issuer != "" && claims.Issuer != m.issuer {
		return nil, errors.New("token issuer mismatch")
	}
	return claims, nil
}

func (m *JWTManager) refreshDeadline(c *Claims) time.Time {
	return c.IssuedAt.Add(m.refreshTTL)
}
