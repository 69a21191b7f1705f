package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deskhaven/authcore/internal/core"
	"github.com/deskhaven/authcore/pkg/response"
)

// AuthHandler exposes login, logout, access checks, and session introspection.
type AuthHandler struct {
	core *core.Core
}

// NewAuthHandler builds the handler around the shared authorization core.
func NewAuthHandler(authCore *core.Core) *AuthHandler {
	return &AuthHandler{core: authCore}
}

type loginRequest struct {
	LoginID  string `json:"login_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type checkAccessRequest struct {
	PermissionID string `json:"permission_id" validate:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	token, err := h.core.Login(req.LoginID, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":            token.ID,
		"last_access_time": token.LastAccessTime,
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.core.Logout(requestToken(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// POST /api/auth/check
func (h *AuthHandler) CheckAccess(c *gin.Context) {
	var req checkAccessRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.core.CheckAccess(req.PermissionID, requestToken(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"allowed": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	view, err := h.core.Me(requestToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}
