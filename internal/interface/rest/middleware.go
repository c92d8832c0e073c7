package rest

import (
	"net/http"
	"strings"

	"github.com/LockboxHQ/lockboxd/internal/interface/rest/handlers"
	"github.com/gin-gonic/gin"
)

// identityRequired makes the caller identity available to handlers. The
// daemon trusts its deployment perimeter for authentication; the identity
// header only selects which role checks apply to the call.
func identityRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := strings.TrimSpace(c.GetHeader(handlers.IdentityHeader))
		if identity == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + handlers.IdentityHeader + " header",
			})
			return
		}
		c.Set(handlers.IdentityKey, identity)
		c.Next()
	}
}
