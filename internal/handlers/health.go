package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deskhaven/authcore/pkg/response"
)

// Health reports liveness. The core is fully in-memory, so a responding
// process is a healthy one.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
