package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"circuitee/internal/common/config"
	"circuitee/internal/common/metrics"
	"circuitee/internal/common/middleware"
	"circuitee/internal/designer/handlers"
	"circuitee/internal/designer/service"
	"circuitee/internal/storage"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Designer Service
// ============================================================

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	middleware.SetLogLevel(cfg.LogLevel)

	kv, closer, err := storage.Open(context.Background(), storage.Options{
		Driver:         cfg.StoreDriver,
		DBPath:         cfg.DBPath,
		MigrationsPath: cfg.MigrationsPath,
		Dir:            cfg.FileStoreDir,
	})
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closer.Close()

	reg := metrics.DefaultRegistry()
	sessions := service.NewSessionManager(kv, reg, cfg.HistoryLimit)
	designHandler := handlers.NewDesignHandler(sessions, kv, cfg.ShareBaseURL)
	healthHandler := handlers.NewHealthHandler(kv)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    cfg.BodyLimit,
		AppName:      "Circuitee Designer",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	handlers.Register(app, designHandler, healthHandler, reg)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Infof("Starting Circuitee Designer on %s (env: %s, store: %s)", addr, cfg.Environment, cfg.StoreDriver)

	if err := app.Listen(addr); err != nil {
		closer.Close()
		log.Errorf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
