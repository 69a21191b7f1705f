package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deskhaven/authcore/internal/core"
	"github.com/deskhaven/authcore/pkg/response"
)

// RoleHandler exposes role management, including nested subroles.
type RoleHandler struct {
	core *core.Core
}

// NewRoleHandler builds the handler around the shared authorization core.
func NewRoleHandler(authCore *core.Core) *RoleHandler {
	return &RoleHandler{core: authCore}
}

type createRoleRequest struct {
	ID          string `json:"id" validate:"required,min=2,max=128"`
	Name        string `json:"name" validate:"required,max=256"`
	Description string `json:"description" validate:"max=1024"`
}

type rolePermissionRequest struct {
	PermissionID string `json:"permission_id" validate:"required"`
}

type roleSubroleRequest struct {
	SubroleID string `json:"subrole_id" validate:"required"`
}

type roleEntitlementRequest struct {
	EntitlementID string `json:"entitlement_id" validate:"required"`
}

// POST /api/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req createRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.CreateRole(requestToken(c), req.ID, req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

// GET /api/roles
func (h *RoleHandler) List(c *gin.Context) {
	views, err := h.core.ListRoles(requestToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, views)
}

// GET /api/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	view, err := h.core.GetRole(requestToken(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// PATCH /api/roles/:id/description
func (h *RoleHandler) UpdateDescription(c *gin.Context) {
	var req updateDescriptionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.UpdateRoleDescription(requestToken(c), c.Param("id"), req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// DELETE /api/roles/:id
func (h *RoleHandler) Remove(c *gin.Context) {
	if err := h.core.RemoveRole(requestToken(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// POST /api/roles/:id/permissions
func (h *RoleHandler) AddPermission(c *gin.Context) {
	var req rolePermissionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.AddRolePermission(requestToken(c), c.Param("id"), req.PermissionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// DELETE /api/roles/:id/permissions/:permissionID
func (h *RoleHandler) RemovePermission(c *gin.Context) {
	view, err := h.core.RemoveRolePermission(requestToken(c), c.Param("id"), c.Param("permissionID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// POST /api/roles/:id/subroles
func (h *RoleHandler) AddSubrole(c *gin.Context) {
	var req roleSubroleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.AddRoleSubrole(requestToken(c), c.Param("id"), req.SubroleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// DELETE /api/roles/:id/subroles/:subroleID
func (h *RoleHandler) RemoveSubrole(c *gin.Context) {
	view, err := h.core.RemoveRoleSubrole(requestToken(c), c.Param("id"), c.Param("subroleID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// POST /api/roles/:id/entitlements
func (h *RoleHandler) AddEntitlement(c *gin.Context) {
	var req roleEntitlementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.AddRoleEntitlement(requestToken(c), c.Param("id"), req.EntitlementID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}
