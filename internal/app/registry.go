package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/auth"
	"github.com/premidisfinal/premidis-fin/internal/bootstrap"
	"github.com/premidisfinal/premidis-fin/internal/config"
	"github.com/premidisfinal/premidis-fin/internal/employee"
	"github.com/premidisfinal/premidis-fin/internal/leave"
	"github.com/premidisfinal/premidis-fin/internal/leaverule"
	"github.com/premidisfinal/premidis-fin/internal/mailer"
	"github.com/premidisfinal/premidis-fin/internal/messaging/kafka"
	"github.com/premidisfinal/premidis-fin/internal/middleware"
	"github.com/premidisfinal/premidis-fin/internal/notification"
	"github.com/premidisfinal/premidis-fin/internal/overlap"
	"github.com/premidisfinal/premidis-fin/internal/rbac"
	"github.com/premidisfinal/premidis-fin/internal/rbac/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	advisoryConcurrency = 4
	advisoryTimeout     = 30 * time.Second
)

type modules struct {
	cfg    config.Config
	db     *sql.DB
	gormDB *gorm.DB
	rdb    *redis.Client
	logger *zap.Logger
}

func newMailer(cfg config.Config, logger *zap.Logger) mailer.Mailer {
	return mailer.New(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}, logger)
}

// registerModules wires every module under /api/v1 and returns the hooks
// that must run after the HTTP server has drained.
func registerModules(router *gin.Engine, m modules) ([]func(), error) {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(m.gormDB)
	employeeRepo := employee.NewRepository(m.gormDB)
	leaveRuleRepo := leaverule.NewRepository(m.gormDB)
	leaveRepo := leave.NewRepository(m.gormDB)
	notificationRepo := notification.NewRepository(m.gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return nil, err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, m.logger)
	if err := rbacService.LoadPolicy(context.Background()); err != nil {
		return nil, err
	}

	// --- Services ---
	auditLogger := bootstrap.NewStdoutAuditLogger(m.logger)
	leaveRuleService := leaverule.NewService(leaveRuleRepo, m.rdb, m.logger)
	employeeService := employee.NewService(employeeRepo, m.rdb, m.logger)
	authService := auth.NewService(employeeService, employeeRepo, rbacService, auth.TokenConfig{
		Secret: m.cfg.JWTSecret,
		TTL:    m.cfg.JWTTTL,
	}, m.logger)
	notificationService := notification.NewService(notificationRepo, m.logger)

	deps := leave.Dependencies{
		Employees: employeeRepo,
		Notifier:  notificationService,
		Audit:     auditLogger,
	}

	var cleanup []func()
	if m.cfg.KafkaBroker != "" {
		// the consumer process runs the advisory check off the outbox
		deps.Outbox = kafka.NewOutboxRepository(m.db)
	} else {
		advisor := overlap.NewAdvisor(leaveRepo, employeeRepo, notificationService, newMailer(m.cfg, m.logger), m.cfg.AdminEmail, m.logger)
		dispatcher := overlap.NewDispatcher(advisor, advisoryConcurrency, advisoryTimeout, m.logger)
		deps.Advisory = dispatcher
		cleanup = append(cleanup, dispatcher.Wait)
	}
	leaveService := leave.NewService(m.db, leaveRepo, deps, m.logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, leaveRuleService, m.cfg.IsProduction(), m.logger)
	employeeHandler := employee.NewHandler(employeeService, leaveRuleService, m.logger)
	leaveRuleHandler := leaverule.NewHandler(leaveRuleService, m.logger)
	leaveHandler := leave.NewHandler(leaveService, leaveRuleService, m.logger)
	notificationHandler := notification.NewHandler(notificationService, m.logger)
	rbacHandler := rbac.NewHandler(rbacService, m.logger)

	// --- Routes Registration ---
	authMW := middleware.AuthMiddleware(m.cfg.JWTSecret)
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authMW, m.logger)
		employee.RegisterRoutes(api, employeeHandler, rbacService, authMW, m.logger)
		leaverule.RegisterRoutes(api, leaveRuleHandler, rbacService, authMW, m.logger)
		leave.RegisterRoutes(api, leaveHandler, rbacService, authMW, m.rdb, m.logger)
		notification.RegisterRoutes(api, notificationHandler, rbacService, authMW, m.logger)
		rbac.RegisterRoutes(api, rbacHandler, rbacService, authMW)
	}

	return cleanup, nil
}
