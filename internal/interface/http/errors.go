package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/pkg/response"
	"github.com/oksasatya/go-ddd-rbac/pkg/validation"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidValue, apperr.KindInvalidPermissionReference, apperr.KindInvalidRoleReference:
		return http.StatusUnprocessableEntity
	case apperr.KindInvalidCredentials, apperr.KindNoActiveSession, apperr.KindTokenInvalid,
		apperr.KindTokenRefreshFailed, apperr.KindUserResolutionFailed:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as an error envelope. Internal failures are logged and
// replaced by a generic message.
func WriteError(c *gin.Context, logger *logrus.Logger, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
				"kind":       string(kind),
			}).Error("request failed")
		}
		response.Error[any](c, status, "internal server error", gin.H{"kind": string(kind)})
		return
	}

	detail := gin.H{"kind": string(kind)}
	if refs := apperr.RefsOf(err); len(refs) > 0 {
		detail["invalid"] = refs
	}
	message := err.Error()
	var e *apperr.Error
	if errors.As(err, &e) && e.Message != "" {
		message = e.Message
	}
	response.Error[any](c, status, message, detail)
}

// writeBindError answers a request whose body or query failed to bind.
func writeBindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
