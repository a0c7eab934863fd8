package application

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// fakeTokens issues "tok-<user id>-<n>" tokens and remembers revocations.
type fakeTokens struct {
	users   repo.UserRepository
	issued  int
	revoked map[string]bool
	failOn  string
}

func newFakeTokens(users repo.UserRepository) *fakeTokens {
	return &fakeTokens{users: users, revoked: map[string]bool{}}
}

func (f *fakeTokens) IssueToken(_ context.Context, u *entity.User) (vo.AuthToken, error) {
	if f.failOn == "issue" {
		return vo.AuthToken{}, context.DeadlineExceeded
	}
	f.issued++
	id, _ := u.ID()
	return vo.NewAuthToken("tok-" + id.Value() + "-" + strconv.Itoa(f.issued))
}

func (f *fakeTokens) RefreshToken(ctx context.Context, token vo.AuthToken) (vo.AuthToken, error) {
	if f.revoked[token.Value()] {
		return vo.AuthToken{}, apperr.Wrap(apperr.KindTokenRefreshFailed, nil, "Token has been revoked.")
	}
	u, err := f.UserFromToken(ctx, token)
	if err != nil {
		return vo.AuthToken{}, err
	}
	f.revoked[token.Value()] = true
	return f.IssueToken(ctx, u)
}

func (f *fakeTokens) InvalidateToken(_ context.Context, token vo.AuthToken) error {
	f.revoked[token.Value()] = true
	return nil
}

func (f *fakeTokens) UserFromToken(ctx context.Context, token vo.AuthToken) (*entity.User, error) {
	if f.revoked[token.Value()] {
		return nil, apperr.Wrap(apperr.KindTokenInvalid, nil, "Token has been revoked.")
	}
	parts := strings.Split(token.Value(), "-")
	if len(parts) < 3 || parts[0] != "tok" {
		return nil, apperr.Wrap(apperr.KindTokenInvalid, nil, "Token is invalid.")
	}
	u, err := f.users.FindByID(ctx, vo.MustID(parts[1]))
	if err != nil || u == nil {
		return nil, apperr.Wrap(apperr.KindUserResolutionFailed, err, "User not found for token.")
	}
	return u, nil
}

type ttlTokens struct {
	*fakeTokens
	ttl time.Duration
}

func (t ttlTokens) TTL() time.Duration { return t.ttl }

type staticToken struct {
	token *vo.AuthToken
	err   error
}

func (s staticToken) CurrentToken() (*vo.AuthToken, error) { return s.token, s.err }

func bearer(raw string) staticToken {
	t, err := vo.NewAuthToken(raw)
	if err != nil {
		panic(err)
	}
	return staticToken{token: &t}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingMetrics struct {
	mu    sync.Mutex
	kinds map[string]apperr.Kind
}

func (m *recordingMetrics) ObserveUseCase(name string, kind apperr.Kind, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.kinds == nil {
		m.kinds = map[string]apperr.Kind{}
	}
	m.kinds[name] = kind
}

type fakeIndex struct {
	indexed map[string]string
	deleted []string
}

func (f *fakeIndex) IndexUser(_ context.Context, u *entity.User) error {
	if f.indexed == nil {
		f.indexed = map[string]string{}
	}
	id, _ := u.ID()
	f.indexed[id.Value()] = u.Email().Value()
	return nil
}

func (f *fakeIndex) DeleteUser(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) SearchUsers(_ context.Context, query string, size int) ([]map[string]any, error) {
	out := []map[string]any{}
	for id, email := range f.indexed {
		if strings.Contains(email, query) && len(out) < size {
			out = append(out, map[string]any{"id": id, "email": email})
		}
	}
	return out, nil
}
