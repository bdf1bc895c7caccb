package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/config"
	"github.com/premidisfinal/premidis-fin/internal/employee"
	"github.com/premidisfinal/premidis-fin/internal/leave"
	"github.com/premidisfinal/premidis-fin/internal/leaverule"
	"github.com/premidisfinal/premidis-fin/internal/messaging/kafka"
	"github.com/premidisfinal/premidis-fin/internal/middleware"
	"github.com/premidisfinal/premidis-fin/internal/notification"
	"github.com/premidisfinal/premidis-fin/internal/rbac"
	"github.com/premidisfinal/premidis-fin/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the assembled HTTP surface plus the hooks that release what
// BuildApp opened, in reverse order of acquisition.
type App struct {
	Router  *gin.Engine
	Cleanup []func()
}

func BuildApp(cfg config.Config, logger *zap.Logger) (*App, error) {
	log := logger.Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(postgresConfig(cfg), cfg.DBRetries)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	app := &App{}
	app.Cleanup = append(app.Cleanup, func() { _ = sqlDB.Close() })

	if cfg.AutoMigrate {
		if err := migrate(gormDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		log.Info("schema migrated")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.DBRetries)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		app.Cleanup = append([]func(){func() { _ = rdb.Close() }}, app.Cleanup...)
		log.Info("redis connection established")
	} else {
		log.Warn("REDIS_ADDR not set, caching and idempotency disabled")
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.CORS(cfg.CORSOrigins))
	registerHealth(router, sqlDB, rdb)

	cleanup, err := registerModules(router, modules{
		cfg:    cfg,
		db:     sqlDB,
		gormDB: gormDB,
		rdb:    rdb,
		logger: logger,
	})
	if err != nil {
		for _, fn := range app.Cleanup {
			fn()
		}
		return nil, err
	}
	app.Cleanup = append(cleanup, app.Cleanup...)
	app.Router = router

	return app, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&employee.Employee{},
		&leaverule.Config{},
		&leave.Leave{},
		&leave.CalendarEntry{},
		&notification.Notification{},
		&kafka.OutboxRecord{},
		&rbac.RolePermissionRow{},
	)
}

func registerHealth(router *gin.Engine, db *sql.DB, rdb *redis.Client) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok"}
		status := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, checks)
	})
}
