package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"usermgmt/internal/config"
	"usermgmt/pkg/rabbitmq"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	a, err := NewApp(cfg, log)
	if err != nil {
		log.Fatal("failed to create app", zap.Error(err))
	}

	if a.MQ != nil {
		handler := func(msg amqp.Delivery) error {
			event, err := rabbitmq.DecodeUserEvent(msg)
			if err != nil {
				return err
			}
			log.Info("user event received",
				zap.String("event", event.Event),
				zap.String("user_id", event.UserID),
				zap.Time("at", event.At),
			)
			return nil
		}
		if err := a.MQ.ConsumeUserEvents(handler); err != nil {
			log.Warn("failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting server", zap.String("addr", cfg.Port), zap.Int("users", a.Users.Count()))
		if err := a.Fiber.Listen(cfg.Port); err != nil {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down server")
	if err := a.Shutdown(); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
