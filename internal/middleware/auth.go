package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"panchayat/internal/apperr"
	"panchayat/internal/models"
	"panchayat/internal/security"
)

const identityKey = "identity"

type Authenticator interface {
	Authenticate(rawToken string) (security.Identity, error)
}

// Auth requires a bearer token and stores the verified identity on the context.
func Auth(guard Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := guard.Authenticate(bearerToken(c))
		if err != nil {
			log := RequestLogger(c)
			event := log.Debug()
			if apperr.KindOf(err) != apperr.KindUnauthenticated {
				event = log.Error()
			}
			event.Err(err).Msg("authentication failed")
			abortWithError(c, err)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRoles lets the request through only when the caller's role is one of roles.
// It must run after Auth.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := security.Roles(roles...)

	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			abortWithError(c, security.ErrUnauthenticated)
			return
		}
		if err := security.Authorize(identity, allowed); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (security.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return security.Identity{}, false
	}
	identity, ok := val.(security.Identity)
	return identity, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
