package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/deskhaven/authcore/internal/middleware"
)

// requestToken returns the access token the BearerToken middleware extracted.
func requestToken(c *gin.Context) string {
	return c.GetString(middleware.CtxTokenKey)
}
