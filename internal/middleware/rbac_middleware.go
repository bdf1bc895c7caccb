package middleware

import (
	"context"
	"net/http"

	"github.com/premidisfinal/premidis-fin/internal/domain"
	"github.com/premidisfinal/premidis-fin/internal/shared/apperror"
	"github.com/premidisfinal/premidis-fin/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService resolves a role into its capability set.
type RBACService interface {
	Capabilities(ctx context.Context, role string) (domain.CapabilitySet, error)
}

// Capabilities returns the caller's capability set, resolving and caching it
// on the gin context on first use so a request evaluates its role once.
func Capabilities(c *gin.Context, service RBACService) (domain.CapabilitySet, error) {
	if v, ok := c.Get(CtxCapabilities); ok {
		if caps, ok := v.(domain.CapabilitySet); ok {
			return caps, nil
		}
	}

	caps, err := service.Capabilities(c.Request.Context(), c.GetString(CtxRole))
	if err != nil {
		return nil, err
	}
	c.Set(CtxCapabilities, caps)
	return caps, nil
}

// CapabilitiesFrom reads the set stored by RBACAuthorize. Missing means none.
func CapabilitiesFrom(c *gin.Context) domain.CapabilitySet {
	if v, ok := c.Get(CtxCapabilities); ok {
		if caps, ok := v.(domain.CapabilitySet); ok {
			return caps
		}
	}
	return domain.NewCapabilitySet()
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserID) == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing auth context", nil)
			c.Abort()
			return
		}

		caps, err := Capabilities(c, service)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, "Internal server error", nil)
			c.Abort()
			return
		}

		if !caps.Can(resource, action) {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden,
				"You do not have permission to access this resource",
				gin.H{"required": resource + ":" + action},
			)
			c.Abort()
			return
		}
		c.Next()
	}
}
