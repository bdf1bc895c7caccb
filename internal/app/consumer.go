package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/premidisfinal/premidis-fin/internal/config"
	"github.com/premidisfinal/premidis-fin/internal/employee"
	"github.com/premidisfinal/premidis-fin/internal/events"
	"github.com/premidisfinal/premidis-fin/internal/leave"
	"github.com/premidisfinal/premidis-fin/internal/messaging/kafka/consumer"
	"github.com/premidisfinal/premidis-fin/internal/notification"
	"github.com/premidisfinal/premidis-fin/internal/overlap"
	"github.com/premidisfinal/premidis-fin/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const overlapConsumerGroup = "premidis-overlap-advisory"

// RunConsumer runs the overlap advisory against leave_requested events until
// SIGINT/SIGTERM.
func RunConsumer(cfg config.Config, logger *zap.Logger) error {
	log := logger.Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(postgresConfig(cfg), cfg.DBRetries)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	notificationService := notification.NewService(notification.NewRepository(gormDB), logger)
	advisor := overlap.NewAdvisor(
		leave.NewRepository(gormDB),
		employee.NewRepository(gormDB),
		notificationService,
		newMailer(cfg, logger),
		cfg.AdminEmail,
		logger,
	)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.LeaveRequestedTopic,
		GroupID:        overlapConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer.ConsumeLeaveRequested(ctx, reader, advisor, logger)

	log.Info("consumer shut down")
	return nil
}
