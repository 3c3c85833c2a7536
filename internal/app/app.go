// Package app wires configuration, storage, messaging and HTTP handlers into
// a runnable application.
package app

import (
	"context"
	"fmt"
	"os"

	"shelflife/internal/config"
	"shelflife/internal/database"
	"shelflife/internal/handlers"
	"shelflife/internal/middleware"
	"shelflife/internal/repositories"
	"shelflife/internal/services"
	"shelflife/internal/session"
	"shelflife/internal/views"
	"shelflife/pkg/rabbitmq"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App is the assembled application.
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	MQ       *rabbitmq.Client
	Sessions *session.Manager
	Products *services.ProductService
	HTTP     *fiber.App
}

// SetupLogging configures the standard logrus logger.
func SetupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// OpenDatabase connects to the configured database and migrates the schema.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, err
	}
	return db, nil
}

// New builds the application from cfg. Redis and RabbitMQ are optional and
// only connected when configured.
func New(cfg *config.Config) (*App, error) {
	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, DB: db}

	if cfg.RedisAddr != "" {
		a.Redis, err = database.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	if cfg.RabbitMQURL != "" {
		a.MQ, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Sessions, err = session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	if err != nil {
		a.Close()
		return nil, err
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)

	// --- Services ---
	var publisher services.EventPublisher
	if a.MQ != nil {
		publisher = a.MQ
	}
	authService := services.NewAuthService(userRepo)
	profileService := services.NewProfileService(userRepo)
	a.Products = services.NewProductService(productRepo, publisher)

	// --- HTTP ---
	a.HTTP = fiber.New(fiber.Config{
		AppName:      "shelflife",
		Views:        views.NewEngine(),
		ViewsLayout:  views.Layout,
		ErrorHandler: handlers.ErrorHandler(a.Sessions),
	})
	a.HTTP.Use(recover.New())
	a.HTTP.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	a.HTTP.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Output: logrus.StandardLogger().Out,
	}))

	var throttle []fiber.Handler
	if a.Redis != nil {
		limiter := middleware.NewRedisLimiter(a.Redis, "ratelimit:")
		throttle = append(throttle, middleware.RateLimit(limiter, cfg.AuthRateLimit, cfg.AuthRateWindow))
	}
	guard := middleware.AuthRequired(a.Sessions)

	handlers.NewHealthHandler(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}).RegisterRoutes(a.HTTP)
	handlers.NewAuthHandler(authService, a.Sessions).RegisterRoutes(a.HTTP, throttle...)
	handlers.NewProductHandler(a.Products, a.Sessions).RegisterRoutes(a.HTTP, guard)
	handlers.NewProfileHandler(profileService, a.Sessions).RegisterRoutes(a.HTTP, guard)

	return a, nil
}

// StartConsumer runs the product event audit consumer when RabbitMQ is
// configured.
func (a *App) StartConsumer() error {
	if a.MQ == nil {
		logrus.Info("RABBITMQ_URL not set, product events disabled")
		return nil
	}
	return a.MQ.ConsumeProductEvents(rabbitmq.AuditProductEvent)
}

// Close releases every connection held by the application.
func (a *App) Close() error {
	var errs []error
	if a.MQ != nil {
		if err := a.MQ.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors while closing application: %v", errs)
	}
	return nil
}
