package middleware

import (
	"crypto/subtle"
	"net/http"
	"slices"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/gin-gonic/gin"
)

const (
	HeaderServiceRoleKey = "X-Service-Role-Key"
	HeaderAnonKey        = "apikey"
)

// RequirePermission checks that the caller's role grants the permission.
func RequirePermission(p model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}
		if !id.Can(p) {
			response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

// RequireRole checks that the caller has one of the roles.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}
		if !slices.Contains(roles, id.Role) {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}
		c.Next()
	}
}

// ServiceRoleState describes the service-role header of a request.
type ServiceRoleState int

const (
	ServiceRoleAbsent ServiceRoleState = iota
	ServiceRoleInvalid
	ServiceRoleValid
)

// CheckServiceRole compares the service-role header against key. An empty
// key never validates.
func CheckServiceRole(c *gin.Context, key string) ServiceRoleState {
	got := c.GetHeader(HeaderServiceRoleKey)
	if got == "" {
		return ServiceRoleAbsent
	}
	if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
		return ServiceRoleInvalid
	}
	return ServiceRoleValid
}

// RequireServiceRole guards privileged endpoints: 401 without the header,
// 403 with a wrong key.
func RequireServiceRole(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch CheckServiceRole(c, key) {
		case ServiceRoleAbsent:
			response.AbortFail(c, http.StatusUnauthorized, response.ErrServiceRoleOnly)
		case ServiceRoleInvalid:
			response.AbortFail(c, http.StatusForbidden, response.ErrServiceRoleOnly)
		default:
			c.Next()
		}
	}
}

// RequireAnonKey checks the public apikey header when one is configured.
func RequireAnonKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader(HeaderAnonKey)), []byte(key)) != 1 {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
