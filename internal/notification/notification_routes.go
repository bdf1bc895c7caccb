package notification

import (
	"github.com/premidisfinal/premidis-fin/internal/domain"
	"github.com/premidisfinal/premidis-fin/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	auth gin.HandlerFunc,
	logger *zap.Logger,
) {
	notifications := r.Group("/notifications")
	notifications.Use(auth, middleware.ContextLogger(logger))
	notifications.Use(middleware.RBACAuthorize(rbacService, domain.ResourceNotification, domain.ActionRead))
	{
		notifications.GET("", middleware.RateLimitByUser(3, 10), handler.List)
		notifications.PUT("/read-all", middleware.RateLimitByUser(1, 3), handler.MarkAllRead)
		notifications.PUT("/:id/read", middleware.RateLimitByUser(3, 10), handler.MarkRead)
		notifications.DELETE("/:id", middleware.RateLimitByUser(1, 5), handler.Delete)
	}
}
