package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// TokenManager abstracts the token technology. A token is either issued or
// revoked; refreshing supersedes it with a new issued token, and a revoked
// token can no longer be refreshed or resolved.
type TokenManager interface {
	// IssueToken fails with apperr.TokenIssuanceFailed.
	IssueToken(ctx context.Context, u *entity.User) (vo.AuthToken, error)
	// RefreshToken fails with apperr.TokenRefreshFailed.
	RefreshToken(ctx context.Context, token vo.AuthToken) (vo.AuthToken, error)
	// InvalidateToken is idempotent.
	InvalidateToken(ctx context.Context, token vo.AuthToken) error
	// UserFromToken fails with apperr.TokenInvalid or apperr.UserResolutionFailed.
	UserFromToken(ctx context.Context, token vo.AuthToken) (*entity.User, error)
}

// TTLProvider is implemented by token managers that know their token lifetime.
type TTLProvider interface {
	TTL() time.Duration
}

// CurrentTokenProvider yields the bearer token bound to the current request.
// A nil token with a nil error means no token was presented.
type CurrentTokenProvider interface {
	CurrentToken() (*vo.AuthToken, error)
}
