package rbac

import (
	"github.com/premidisfinal/premidis-fin/internal/domain"
	"github.com/premidisfinal/premidis-fin/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, service Service, auth gin.HandlerFunc) {
	group := r.Group("/rbac")
	group.Use(auth)
	{
		group.POST("/enforce",
			middleware.RBACAuthorize(service, domain.ResourceRole, domain.ActionRead),
			handler.Enforce,
		)
		group.GET("/permissions",
			middleware.RBACAuthorize(service, domain.ResourceRole, domain.ActionRead),
			handler.ListPermissions,
		)
		group.GET("/roles",
			middleware.RBACAuthorize(service, domain.ResourceRole, domain.ActionRead),
			handler.ListRoles,
		)
		group.GET("/roles/:role",
			middleware.RBACAuthorize(service, domain.ResourceRole, domain.ActionRead),
			handler.GetRole,
		)
		group.PUT("/roles/:role",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(service, domain.ResourceRole, domain.ActionManage),
			handler.UpdateRole,
		)
	}
}
