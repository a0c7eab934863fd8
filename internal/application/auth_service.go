package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

const (
	tokenTypeBearer  = "bearer"
	fallbackTokenTTL = 3600 * time.Second
)

type AuthService struct {
	Users  repo.UserRepository
	Tokens repo.TokenManager
	Hooks
}

func NewAuthService(users repo.UserRepository, tokens repo.TokenManager, hooks Hooks) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, Hooks: hooks}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	User        *entity.User
	AccessToken string
	TokenType   string
	ExpiresIn   int
}

type RefreshResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
	User        *entity.User
}

// Login verifies the credentials and issues a token. Unknown email and wrong
// password fail identically; only the log line tells them apart.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (_ *LoginResult, err error) {
	defer s.observe("auth.login", time.Now(), &err)

	email, err := vo.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.log().WithField("email", email.Value()).Warn("login rejected: unknown email")
		return nil, apperr.InvalidCredentials()
	}
	if !u.Password().Verify(in.Password) {
		s.log().WithField("email", email.Value()).Warn("login rejected: wrong password")
		return nil, apperr.InvalidCredentials()
	}

	token, err := s.Tokens.IssueToken(ctx, u)
	if err != nil {
		s.log().WithError(err).WithField("email", email.Value()).Error("issue token failed")
		return nil, asKind(err, apperr.KindTokenIssuanceFailed, "Unable to issue token.")
	}

	id, _ := u.ID()
	s.publish(ctx, "auth.login", id.Value(), map[string]any{"email": email.Value()})
	return &LoginResult{
		User:        u,
		AccessToken: token.Value(),
		TokenType:   tokenTypeBearer,
		ExpiresIn:   s.expiresIn(),
	}, nil
}

// User resolves the caller. A missing token is not an error: it yields nil.
func (s *AuthService) User(ctx context.Context, current repo.CurrentTokenProvider) (*entity.User, error) {
	token, err := current.CurrentToken()
	if err != nil {
		return nil, asKind(err, apperr.KindTokenInvalid, "Token is invalid.")
	}
	if token == nil {
		return nil, nil
	}
	return s.Tokens.UserFromToken(ctx, *token)
}

// Logout revokes the current token when there is one. The audit event is
// only emitted when the token still resolved to a user.
func (s *AuthService) Logout(ctx context.Context, current repo.CurrentTokenProvider) (err error) {
	defer s.observe("auth.logout", time.Now(), &err)

	token, err := current.CurrentToken()
	if err != nil {
		return asKind(err, apperr.KindTokenInvalid, "Token is invalid.")
	}
	if token == nil {
		return nil
	}
	var subject string
	if u, uerr := s.Tokens.UserFromToken(ctx, *token); uerr == nil && u != nil {
		id, _ := u.ID()
		subject = id.Value()
	}
	if err := s.Tokens.InvalidateToken(ctx, *token); err != nil {
		return err
	}
	if subject != "" {
		s.publish(ctx, "auth.logout", subject, nil)
	}
	return nil
}

func (s *AuthService) Refresh(ctx context.Context, current repo.CurrentTokenProvider) (_ *RefreshResult, err error) {
	defer s.observe("auth.refresh", time.Now(), &err)

	token, err := current.CurrentToken()
	if err != nil {
		return nil, asKind(err, apperr.KindTokenInvalid, "Token is invalid.")
	}
	if token == nil {
		return nil, apperr.NoActiveSession()
	}
	fresh, err := s.Tokens.RefreshToken(ctx, *token)
	if err != nil {
		return nil, asKind(err, apperr.KindTokenRefreshFailed, "Unable to refresh token.")
	}
	u, err := s.Tokens.UserFromToken(ctx, fresh)
	if err != nil {
		return nil, asKind(err, apperr.KindUserResolutionFailed, "Unable to resolve user from token.")
	}
	return &RefreshResult{
		AccessToken: fresh.Value(),
		TokenType:   tokenTypeBearer,
		ExpiresIn:   s.expiresIn(),
		User:        u,
	}, nil
}

func (s *AuthService) expiresIn() int {
	if p, ok := s.Tokens.(repo.TTLProvider); ok {
		if ttl := p.TTL(); ttl > 0 {
			return int(ttl / time.Second)
		}
	}
	return int(fallbackTokenTTL / time.Second)
}

// asKind keeps domain errors as they are and wraps anything else in kind.
func asKind(err error, kind apperr.Kind, message string) error {
	if apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	return apperr.Wrap(kind, err, message)
}
