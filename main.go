package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realestate-crm/config"
	"realestate-crm/controllers"
	"realestate-crm/database"
	"realestate-crm/middlewares"
	"realestate-crm/reports"
	"realestate-crm/repository"
	"realestate-crm/routes"
	"realestate-crm/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := cfg.Logger()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Database + cache
	db, err := database.Connect(cfg.DSN, cfg.LogLevel)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	if err := database.Migrate(db); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	rdb := database.ConnectRedis(ctx, cfg.RedisAddr)
	if rdb != nil {
		defer rdb.Close()
	}

	// ---- Services
	store := repository.NewGormStore(db)
	opts := services.OptionsFromConfig(cfg, log)
	files := services.NewFileService(store, opts)
	payments := services.NewPaymentService(store, opts)
	reportSvc := reports.NewService(store, rdb, cfg.ReportCacheTTL, log)

	sweepDone := services.StartOverdueSweep(ctx, files, cfg.OverdueSweep, log)

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Idempotency-Key",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWin,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "cache": rdb != nil})
	})

	// ---- Routes
	routes.Register(app, routes.Deps{
		Files:   &controllers.FileController{Files: files, Payments: payments, Cache: reportSvc},
		Reports: &controllers.ReportController{Reports: reportSvc},
	})

	// ---- Start
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("API server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
	}
	stop()
	<-sweepDone
}
