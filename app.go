package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"usermgmt/internal/config"
	"usermgmt/internal/handlers"
	"usermgmt/internal/repositories"
	"usermgmt/internal/services"
	"usermgmt/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

// App bundles the HTTP app with the resources it must release on shutdown.
type App struct {
	Fiber *fiber.App
	Users *services.UserService
	MQ    *rabbitmq.Client

	closers []func() error
}

// NewApp wires the snapshot store, the user service and the HTTP routes from cfg.
func NewApp(cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{}

	store, err := a.openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	var opts []services.Option
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			_ = a.Shutdown()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.MQ = mqClient
		a.closers = append(a.closers, mqClient.Close)
		opts = append(opts, services.WithPublisher(mqClient))
	} else {
		log.Info("RABBITMQ_URL not set, user events are disabled")
	}

	a.Users, err = services.NewUserService(store, log.Named("users"), opts...)
	if err != nil {
		_ = a.Shutdown()
		return nil, err
	}

	app := fiber.New(fiber.Config{
		// Values from the request must outlive the request buffer once stored.
		Immutable: true,
	})
	app.Use(logger.New())
	app.Use(cors.New())

	handlers.NewUserHandler(a.Users, log.Named("http")).RegisterRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"users":  a.Users.Count(),
			"events": a.MQ != nil,
		})
	})

	app.Static("/static", cfg.StaticDir)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(cfg.StaticDir, "index.html"))
	})

	a.Fiber = app
	return a, nil
}

func (a *App) openStore(cfg config.Config, log *zap.Logger) (repositories.SnapshotStore, error) {
	storeLog := log.Named("store")
	switch cfg.StoreDriver {
	case config.DriverSQLite, config.DriverPostgres:
		db, err := repositories.OpenGORM(cfg.StoreDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		store := repositories.NewGORMSnapshotStore(db, storeLog)
		a.closers = append(a.closers, store.Close)
		log.Info("using SQL snapshot store", zap.String("driver", cfg.StoreDriver))
		return store, nil
	default:
		log.Info("using file snapshot store", zap.String("path", cfg.DBPath))
		return repositories.NewFileSnapshotStore(cfg.DBPath, storeLog), nil
	}
}

// Shutdown stops the HTTP app and releases the store and broker connections.
func (a *App) Shutdown() error {
	var errs []error
	if a.Fiber != nil {
		if err := a.Fiber.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
