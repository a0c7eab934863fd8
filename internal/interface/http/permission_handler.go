package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-rbac/internal/application"
	"github.com/oksasatya/go-ddd-rbac/pkg/response"
)

type PermissionHandler struct {
	Svc    *application.PermissionService
	Logger *logrus.Logger
}

func NewPermissionHandler(svc *application.PermissionService, logger *logrus.Logger) *PermissionHandler {
	return &PermissionHandler{Svc: svc, Logger: logger}
}

type createPermissionRequest struct {
	Name      string `json:"name" binding:"required,rbacname"`
	GuardName string `json:"guard_name" binding:"omitempty,guard"`
}

type updatePermissionRequest struct {
	Name      *string `json:"name" binding:"omitempty,rbacname"`
	GuardName *string `json:"guard_name" binding:"omitempty,guard"`
}

type listPermissionsQuery struct {
	listQuery
	Name string `form:"name" binding:"omitempty,rbacname"`
}

func (h *PermissionHandler) List(c *gin.Context) {
	var q listPermissionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	page, err := h.Svc.List(c.Request.Context(), application.ListPermissionsInput{ListInput: q.input(), Name: q.Name})
	if err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	items, meta := presentPage(page, presentPermission)
	response.Success(c, http.StatusOK, items, "permissions", meta)
}

func (h *PermissionHandler) Show(c *gin.Context) {
	p, err := h.Svc.Show(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentPermission(p), "permission", nil)
}

func (h *PermissionHandler) Create(c *gin.Context) {
	var req createPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), application.CreatePermissionInput{Name: req.Name, Guard: req.GuardName})
	if err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, presentPermission(p), "permission created", nil)
}

func (h *PermissionHandler) Update(c *gin.Context) {
	var req updatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), application.UpdatePermissionInput{
		ID:    c.Param("id"),
		Name:  req.Name,
		Guard: req.GuardName,
	})
	if err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentPermission(p), "permission updated", nil)
}

func (h *PermissionHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "permission deleted", nil)
}
