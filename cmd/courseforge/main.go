package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/CourseForgeHQ/CourseForge/app/controllers"
	"github.com/CourseForgeHQ/CourseForge/app/repository"
	apiv1 "github.com/CourseForgeHQ/CourseForge/internal/api/v1"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/alerts"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/cache"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/database"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/env"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/logger"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/mail"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/payments"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/router"
)

func main() {
	app, err := NewApplication()
	if err != nil {
		log.Fatal(err)
	}
	err = app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, error) {
	env.SetupEnvFile()

	zlog, err := logger.New(logger.Config{
		Level:       env.GetEnv("LOG_LEVEL", "info"),
		Format:      env.GetEnv("LOG_FORMAT", "json"),
		Development: env.IsDev(),
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := database.Connect(zlog)
	if err != nil {
		return nil, err
	}

	repos := repository.NewFactory(db).GetRepositories()

	users := repos.User
	redisCache := cache.New(env.GetEnv("CACHE_HOST", "127.0.0.1"), env.GetEnv("CACHE_PORT", "6379"))
	if err := redisCache.Ping(context.Background()); err != nil {
		zlog.Warn("cache unreachable, running without user cache", zap.Error(err))
	} else {
		users = repository.NewCachedUserRepository(users, redisCache, zlog)
	}

	mailer := mail.NewSMTPMailerFromEnv(zlog)

	var alerter alerts.Alerter = alerts.NopAlerter{}
	if url := env.GetEnv("ALERT_WEBHOOK_URL", ""); url != "" {
		alerter = alerts.NewWebhookAlerter(url, zlog)
	}

	registry := payments.NewDefaultRegistry(payments.Deps{
		Users:     users,
		Leads:     repos.Lead,
		Purchases: repos.Purchase,
		EmailLogs: repos.EmailLog,
		Checkout:  payments.NewStripeCheckoutClient(env.GetEnv("STRIPE_SECRET_KEY", "")),
		Mailer:    mailer,
		Alerter:   alerter,
		ResetBase: env.GetEnv("APP_PUBLIC_URL", "http://localhost:4000"),
		Logger:    zlog,
	})

	webhooks := controllers.NewWebhookController(
		registry,
		repos.WebhookEvent,
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		zlog,
	)

	app := fiber.New(fiber.Config{
		AppName: "CourseForge",
	})
	app.Use(recover.New(), fiberlogger.New())

	opsAPI := apiv1.NewAPIServer(repos, zlog)
	router.InstallRouter(app,
		router.NewHttpRouter(webhooks),
		router.NewApiRouter(opsAPI, env.GetEnv("OPS_API_KEY", "")),
	)

	return app, nil
}
