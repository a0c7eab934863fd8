package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-rbac/internal/application"
	"github.com/oksasatya/go-ddd-rbac/pkg/response"
)

type RoleHandler struct {
	Svc    *application.RoleService
	Logger *logrus.Logger
}

func NewRoleHandler(svc *application.RoleService, logger *logrus.Logger) *RoleHandler {
	return &RoleHandler{Svc: svc, Logger: logger}
}

type createRoleRequest struct {
	Name        string   `json:"name" binding:"required,rbacname"`
	GuardName   string   `json:"guard_name" binding:"omitempty,guard"`
	Permissions []string `json:"permissions" binding:"omitempty,dive,required"`
}

// updateRoleRequest uses pointers so omitted fields stay untouched.
type updateRoleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,rbacname"`
	GuardName   *string   `json:"guard_name" binding:"omitempty,guard"`
	Permissions *[]string `json:"permissions"`
}

func (h *RoleHandler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	page, err := h.Svc.List(c.Request.Context(), q.input())
	if err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	items, meta := presentPage(page, presentRole)
	response.Success(c, http.StatusOK, items, "roles", meta)
}

func (h *RoleHandler) Show(c *gin.Context) {
	role, err := h.Svc.Show(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentRole(role), "role", nil)
}

func (h *RoleHandler) Create(c *gin.Context) {
	var req createRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	role, err := h.Svc.Create(c.Request.Context(), application.CreateRoleInput{
		Name:        req.Name,
		Guard:       req.GuardName,
		Permissions: req.Permissions,
	})
	if err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, presentRole(role), "role created", nil)
}

func (h *RoleHandler) Update(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	role, err := h.Svc.Update(c.Request.Context(), application.UpdateRoleInput{
		ID:          c.Param("id"),
		Name:        req.Name,
		Guard:       req.GuardName,
		Permissions: req.Permissions,
	})
	if err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, presentRole(role), "role updated", nil)
}

func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		WriteError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "role deleted", nil)
}
