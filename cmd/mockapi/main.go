package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/ustamapp/ustamapp-client/internal/config"
	"github.com/ustamapp/ustamapp-client/internal/handler"
	infraredis "github.com/ustamapp/ustamapp-client/internal/infra/redis"
	"github.com/ustamapp/ustamapp-client/internal/observability"
	"github.com/ustamapp/ustamapp-client/internal/queue"
	"github.com/ustamapp/ustamapp-client/internal/transport"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadMockAPI()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()
	checks := map[string]handler.Check{}
	opts := []handler.Option{handler.WithLogger(logger)}

	if cfg.RedisURL != "" {
		rdb, err := infraredis.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis initialization failed", zap.Error(err))
		}
		defer rdb.Close()

		limiter, err := infraredis.NewRateLimiter(rdb, cfg.RateLimit, cfg.RateWindow())
		if err != nil {
			logger.Fatal("rate limiter initialization failed", zap.Error(err))
		}
		opts = append(opts, handler.WithLimiter(limiter))
		checks["redis"] = handler.RedisCheck(rdb)
	}

	if cfg.RabbitMQURL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatal("rabbitmq initialization failed", zap.Error(err))
		}
		publisher := queue.NewRabbitMQPublisher(rabbit)
		defer publisher.Close() //nolint:errcheck

		opts = append(opts, handler.WithPublisher(publisher))
		checks["rabbitmq"] = rabbit.Ping
	}

	app := fiber.New(fiber.Config{
		AppName:               "ustamapp-mockapi",
		ErrorHandler:          transport.ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Header: fiber.HeaderXRequestID}))
	app.Use(metrics.HTTPMiddleware())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, checks)
	if err := handler.RegisterRoutes(app, handler.NewBackend(), opts...); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("ustamapp mock api started", zap.Int("port", cfg.Port))
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Error("mock api stopped", zap.Error(err))
	}
}
