package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-rbac/internal/application"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/infrastructure/token"
	"github.com/oksasatya/go-ddd-rbac/pkg/helpers"
	"github.com/oksasatya/go-ddd-rbac/pkg/response"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Authz   *application.Authorizer
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, authz *application.Authorizer, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Authz: authz, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenView struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        userView `json:"user"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), application.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	h.Cookies.SetAccess(c, res.AccessToken, time.Now().Add(time.Duration(res.ExpiresIn)*time.Second))
	response.Success(c, http.StatusOK, tokenView{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
		User:        presentUser(res.User),
	}, "login successful", nil)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	res, err := h.Svc.Refresh(c.Request.Context(), token.FromRequest(c.Request))
	if err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	h.Cookies.SetAccess(c, res.AccessToken, time.Now().Add(time.Duration(res.ExpiresIn)*time.Second))
	response.Success(c, http.StatusOK, tokenView{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
		User:        presentUser(res.User),
	}, "token refreshed", nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), token.FromRequest(c.Request)); err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// Me returns the caller together with its effective permissions.
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Svc.User(c.Request.Context(), token.FromRequest(c.Request))
	if err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	if u == nil {
		WriteError(c, h.Logger, apperr.NoActiveSession())
		return
	}
	perms := []string{}
	if h.Authz != nil {
		if perms, err = h.Authz.Permissions(c.Request.Context(), u); err != nil {
			WriteError(c, h.Logger, err)
			return
		}
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":        presentUser(u),
		"permissions": perms,
	}, "profile", nil)
}
