package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deskhaven/authcore/internal/core"
	"github.com/deskhaven/authcore/pkg/response"
)

// UserHandler exposes principal management: users, credentials, and grants.
type UserHandler struct {
	core *core.Core
}

// NewUserHandler builds the handler around the shared authorization core.
func NewUserHandler(authCore *core.Core) *UserHandler {
	return &UserHandler{core: authCore}
}

type createUserRequest struct {
	ID   string `json:"id" validate:"required,min=2,max=128"`
	Name string `json:"name" validate:"required,max=256"`
}

type updateUserNameRequest struct {
	Name string `json:"name" validate:"required,max=256"`
}

type addCredentialRequest struct {
	LoginID  string `json:"login_id" validate:"required,min=2,max=128"`
	Password string `json:"password" validate:"required,min=8"`
}

type updatePasswordRequest struct {
	LoginID  string `json:"login_id" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type userPermissionRequest struct {
	PermissionID string `json:"permission_id" validate:"required"`
}

type userRoleRequest struct {
	RoleID string `json:"role_id" validate:"required"`
}

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.CreateUser(requestToken(c), req.ID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	views, err := h.core.ListUsers(requestToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, views)
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	view, err := h.core.GetUser(requestToken(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// PATCH /api/users/:id/name
func (h *UserHandler) UpdateName(c *gin.Context) {
	var req updateUserNameRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.UpdateUserName(requestToken(c), c.Param("id"), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// DELETE /api/users/:id
func (h *UserHandler) Remove(c *gin.Context) {
	if err := h.core.RemoveUser(requestToken(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// POST /api/users/:id/credentials
func (h *UserHandler) AddCredential(c *gin.Context) {
	var req addCredentialRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.AddUserCredential(requestToken(c), c.Param("id"), req.LoginID, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// PUT /api/users/password
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.core.UpdateUserPassword(requestToken(c), req.LoginID, req.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// POST /api/users/:id/permissions
func (h *UserHandler) AddPermission(c *gin.Context) {
	var req userPermissionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.AddUserPermission(requestToken(c), c.Param("id"), req.PermissionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// DELETE /api/users/:id/permissions/:permissionID
func (h *UserHandler) RemovePermission(c *gin.Context) {
	view, err := h.core.RemoveUserPermission(requestToken(c), c.Param("id"), c.Param("permissionID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// POST /api/users/:id/roles
func (h *UserHandler) AddRole(c *gin.Context) {
	var req userRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	view, err := h.core.AddUserRole(requestToken(c), c.Param("id"), req.RoleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// DELETE /api/users/:id/roles/:roleID
func (h *UserHandler) RemoveRole(c *gin.Context) {
	view, err := h.core.RemoveUserRole(requestToken(c), c.Param("id"), c.Param("roleID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}
