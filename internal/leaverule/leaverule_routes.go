package leaverule

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
	cfg := r.Group("/config/leave-rules")
	cfg.Use(auth, middleware.ContextLogger(logger))
	{
		cfg.GET("",
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveRule, domain.ActionRead),
			handler.Get,
		)
		cfg.PUT("",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, domain.ResourceLeaveRule, domain.ActionUpdate),
			handler.Update,
		)
	}

	r.GET("/leaves/rules",
		auth,
		middleware.ContextLogger(logger),
		middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionRead),
		handler.Public,
	)
}
