package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/utils/jwt_parse"
)

const (
	RoleGuest  = "guest"
	RoleVendor = "vendor"
)

// requireRole parses the bearer token and checks the role claim. On success
// the caller's UUID is available via SubjectID.
func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		jwt_parse.ParseJWTToken()(c)
		if c.IsAborted() {
			return
		}

		claimedRole, _ := c.Get("role")
		if claimedRole != role {
			logger.WarnLogger.Warnf("Role mismatch: token has %v, route requires %s", claimedRole, role)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden"})
			return
		}

		rawID, exists := c.Get("user_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Missing user identification from token"})
			return
		}
		idStr, ok := rawID.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid user ID type in token"})
			return
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid user ID in token"})
			return
		}

		c.Set("subject_id", id)
		c.Next()
	}
}

// AuthGuest guards routes that act on behalf of a guest user.
func AuthGuest() gin.HandlerFunc {
	return requireRole(RoleGuest)
}

// AuthVendor guards routes that act on behalf of a vendor.
func AuthVendor() gin.HandlerFunc {
	return requireRole(RoleVendor)
}

// SubjectID returns the authenticated caller's UUID set by the auth guard.
func SubjectID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("subject_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}
