package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/joho/godotenv"

	"github.com/meetbridge/meetbridge/internal/adapter/gcal"
	"github.com/meetbridge/meetbridge/internal/adapter/gtasks"
	"github.com/meetbridge/meetbridge/internal/adapter/identity"
	"github.com/meetbridge/meetbridge/internal/adapter/store"
	"github.com/meetbridge/meetbridge/internal/handler"
	"github.com/meetbridge/meetbridge/internal/middleware"
	"github.com/meetbridge/meetbridge/internal/port"
	"github.com/meetbridge/meetbridge/internal/service"
	"github.com/meetbridge/meetbridge/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting MeetBridge",
		"port", cfg.Port,
		"base_url", cfg.BaseURL,
		"watch_ttl", cfg.WatchTTL,
		"durable_channels", cfg.DatabaseURL != "",
	)

	// ── Channel store ────────────────────────────────────────────────────
	var channels port.ChannelStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		channels = pgStore
	} else {
		slog.Warn("DATABASE_URL not set, watch channels are tracked in memory only")
		channels = store.NewMemoryStore()
	}
	defer channels.Close()

	// ── Adapters ─────────────────────────────────────────────────────────
	googleIdentity := identity.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	calendarProvider := gcal.NewProvider()
	taskProvider := gtasks.NewProvider()

	// ── Services ─────────────────────────────────────────────────────────
	authService := service.NewAuthService(googleIdentity, cfg.ProviderTimeout)
	calendarService := service.NewCalendarService(calendarProvider, cfg.ProviderTimeout)
	taskService := service.NewTaskService(taskProvider, cfg.ProviderTimeout)
	watchService := service.NewWatchService(calendarProvider, channels, cfg.NotificationAddress(), cfg.WatchTTL, cfg.ProviderTimeout)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
	}))
	app.Use(session.New())

	// ── Routes ───────────────────────────────────────────────────────────
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Welcome to the Google Meet Link Generator!")
	})
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "app": cfg.AppName})
	})

	authHandler := handler.NewAuthHandler(authService)
	authHandler.Register(app)

	requireTokens := middleware.RequireTokens()
	api := app.Group("/api/google")

	calendarHandler := handler.NewCalendarHandler(calendarService, watchService)
	calendarHandler.Register(api, requireTokens)

	taskHandler := handler.NewTaskHandler(taskService)
	taskHandler.Register(api, requireTokens)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
