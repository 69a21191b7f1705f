package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deskhaven/authcore/pkg/errors"
	"github.com/deskhaven/authcore/pkg/response"
)

// CtxTokenKey is the context key carrying the presented access token.
const CtxTokenKey = "accessToken"

// BearerToken extracts the opaque access token from the Authorization header
// and stores it in the request context. Token validity is decided by the
// authorization core on every operation; this middleware only rejects
// requests that carry no token at all.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrInvalidAccessToken)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		if token == "" {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrInvalidAccessToken)
			c.Abort()
			return
		}

		c.Set(CtxTokenKey, token)
		c.Next()
	}
}
