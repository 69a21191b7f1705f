package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deskhaven/authcore/internal/core"
	"github.com/deskhaven/authcore/pkg/response"
)

// ServiceHandler exposes management of service descriptors: the catalog of
// which permissions belong to which externally visible capability group.
type ServiceHandler struct {
	core *core.Core
}

// NewServiceHandler builds the handler around the shared authorization core.
func NewServiceHandler(authCore *core.Core) *ServiceHandler {
	return &ServiceHandler{core: authCore}
}

type createServiceRequest struct {
	ID          string `json:"id" validate:"required,min=2,max=128"`
	Name        string `json:"name" validate:"required,max=256"`
	Description string `json:"description" validate:"max=1024"`
}

type servicePermissionRequest struct {
	PermissionID string `json:"permission_id" validate:"required"`
}

// POST /api/services
func (h *ServiceHandler) Create(c *gin.Context) {
	var req createServiceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.CreateService(requestToken(c), req.ID, req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

// GET /api/services
func (h *ServiceHandler) List(c *gin.Context) {
	views, err := h.core.ListServices(requestToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, views)
}

// GET /api/services/:id
func (h *ServiceHandler) Get(c *gin.Context) {
	view, err := h.core.GetService(requestToken(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// PATCH /api/services/:id/description
func (h *ServiceHandler) UpdateDescription(c *gin.Context) {
	var req updateDescriptionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.UpdateServiceDescription(requestToken(c), c.Param("id"), req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// DELETE /api/services/:id
func (h *ServiceHandler) Remove(c *gin.Context) {
	if err := h.core.RemoveService(requestToken(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// POST /api/services/:id/permissions
func (h *ServiceHandler) AddPermission(c *gin.Context) {
	var req servicePermissionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.AddServicePermission(requestToken(c), c.Param("id"), req.PermissionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// DELETE /api/services/:id/permissions/:permissionID
func (h *ServiceHandler) RemovePermission(c *gin.Context) {
	view, err := h.core.RemoveServicePermission(requestToken(c), c.Param("id"), c.Param("permissionID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}
