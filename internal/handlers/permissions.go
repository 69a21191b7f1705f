package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deskhaven/authcore/internal/core"
	"github.com/deskhaven/authcore/pkg/response"
)

// PermissionHandler exposes permission catalog management.
type PermissionHandler struct {
	core *core.Core
}

// NewPermissionHandler builds the handler around the shared authorization core.
func NewPermissionHandler(authCore *core.Core) *PermissionHandler {
	return &PermissionHandler{core: authCore}
}

type createPermissionRequest struct {
	ID          string `json:"id" validate:"required,min=2,max=128"`
	Name        string `json:"name" validate:"required,max=256"`
	Description string `json:"description" validate:"max=1024"`
}

type updateDescriptionRequest struct {
	Description string `json:"description" validate:"max=1024"`
}

// POST /api/permissions
func (h *PermissionHandler) Create(c *gin.Context) {
	var req createPermissionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.CreatePermission(requestToken(c), req.ID, req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

// GET /api/permissions
func (h *PermissionHandler) List(c *gin.Context) {
	views, err := h.core.ListPermissions(requestToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, views)
}

// GET /api/permissions/:id
func (h *PermissionHandler) Get(c *gin.Context) {
	view, err := h.core.GetPermission(requestToken(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// PATCH /api/permissions/:id/description
func (h *PermissionHandler) UpdateDescription(c *gin.Context) {
	var req updateDescriptionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.UpdatePermissionDescription(requestToken(c), c.Param("id"), req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// DELETE /api/permissions/:id
func (h *PermissionHandler) Remove(c *gin.Context) {
	if err := h.core.RemovePermission(requestToken(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
