package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/config"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/logging"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/platform/database"
	rabbitmqClient "github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/platform/rabbitmq"
	redisClient "github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/platform/redis"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/platform/telemetry"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/worker"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	Redis    *redis.Client
	MQConn   *amqp.Connection
	Services *Services

	publisher     *rabbitmqClient.EventPublisher
	messageWorker *worker.MessageEventWorker
	shutdownTrace telemetry.ShutdownFunc

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	shutdown, err := telemetry.InitTracing(ctx, cfg.App, cfg.Telemetry)
	if err != nil {
		return err
	}
	a.shutdownTrace = shutdown

	db, err := database.New(ctx, cfg.Database, a.Logger)
	if err != nil {
		return err
	}
	a.DB = db
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	a.Redis = redisCli

	deps := Deps{
		Config: cfg,
		DB:     db,
		Redis:  redisCli,
		Logger: a.Logger,
	}

	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MessageEventQueue)
		if err != nil {
			return err
		}
		a.MQConn = mqConn
		a.publisher = rabbitmqClient.NewEventPublisher(mqConn, cfg.RabbitMQ.MessageEventQueue)
		deps.Publisher = a.publisher
	} else {
		a.Logger.Info("rabbitmq disabled, message events are not published")
	}

	a.Services = NewServices(deps)

	if a.MQConn != nil {
		a.messageWorker = worker.NewMessageEventWorker(a.MQConn, a.Services.Messages, cfg.RabbitMQ.MessageEventQueue, a.Logger)
		if err := a.messageWorker.Start(ctx); err != nil {
			return fmt.Errorf("start message worker failed: %w", err)
		}
	}
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.messageWorker != nil {
		a.messageWorker.Close()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if a.shutdownTrace != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTrace(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}
