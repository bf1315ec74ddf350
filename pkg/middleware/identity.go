package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/noteshare/noteshare/internal/identity"
)

// AdminKeyHeader carries the shared administrative secret.
const AdminKeyHeader = "X-Admin-Key"

const identityKey = "identity"

// Identity returns a Gin middleware that resolves the caller's trust tier
// once per request and stores it in the context. Requests without any
// credential pass through as anonymous; present-but-invalid credentials are
// rejected with 401 before any handler runs.
func Identity(res *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := res.Resolve(c.Request.Context(), c.GetHeader("Authorization"), c.GetHeader(AdminKeyHeader))
		if err != nil {
			if errors.Is(err, identity.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "identity check failed"})
			return
		}
		c.Set(identityKey, ident)
		c.Next()
	}
}

// IdentityFrom returns the identity resolved for this request. Requests that
// did not pass through the Identity middleware read as anonymous.
func IdentityFrom(c *gin.Context) identity.Identity {
	if v, ok := c.Get(identityKey); ok {
		if ident, ok := v.(identity.Identity); ok {
			return ident
		}
	}
	return identity.Identity{Tier: identity.TierAnonymous}
}
