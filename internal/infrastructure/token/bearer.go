package token

import (
	"net/http"
	"strings"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// AccessCookie is the cookie consulted when no Authorization header is sent.
const AccessCookie = "access_token"

// RequestToken extracts the bearer token of one HTTP request.
type RequestToken struct {
	r *http.Request
}

func FromRequest(r *http.Request) RequestToken { return RequestToken{r: r} }

// CurrentToken prefers "Authorization: Bearer <token>" and falls back to the
// access cookie. Any other Authorization scheme is rejected.
func (p RequestToken) CurrentToken() (*vo.AuthToken, error) {
	if p.r == nil {
		return nil, nil
	}
	if h := strings.TrimSpace(p.r.Header.Get("Authorization")); h != "" {
		scheme, raw, _ := strings.Cut(h, " ")
		if !strings.EqualFold(scheme, "bearer") {
			return nil, apperr.Wrap(apperr.KindTokenInvalid, nil, "Unsupported authorization scheme.")
		}
		t, err := vo.NewAuthToken(raw)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindTokenInvalid, err, "Bearer token is empty.")
		}
		return &t, nil
	}
	c, err := p.r.Cookie(AccessCookie)
	if err != nil || strings.TrimSpace(c.Value) == "" {
		return nil, nil
	}
	t, err := vo.NewAuthToken(c.Value)
	if err != nil {
		return nil, nil
	}
	return &t, nil
}
