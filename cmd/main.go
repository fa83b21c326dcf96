package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	"license-key-server/internal/config"
	"license-key-server/internal/database"
	"license-key-server/internal/handler"
	"license-key-server/internal/middleware"
)

func main() {
	zlog, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	cfg, err := config.Load()
	if err != nil {
		zap.S().Fatalw("config load failed", "error", err)
	}

	if err := database.InitDB(cfg.DataDir); err != nil {
		zap.S().Fatalw("database init failed", "error", err)
	}

	if err := handler.Setup(cfg); err != nil {
		zap.S().Fatalw("handler setup failed", "error", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", handler.HandleHealth)

	// Client-facing license API
	app.Post("/api/verify", handler.HandleVerify)
	app.Post("/api/auth/local", handler.HandleAuthLocal)
	app.Get("/api/config/:key", handler.HandleLicenseConfig)
	app.Get("/users/me", handler.HandleIdentity)

	// Mock upstream endpoints
	app.Get("/api/versions", handler.HandleVersions)
	app.Get("/appconfig.json", handler.HandleAppConfig)

	// Realtime channel mock
	app.Use("/ws", handler.RequireWebSocketUpgrade)
	app.Get("/ws", handler.HandleRealtime())

	// Admin API
	admin := app.Group("/admin")
	admin.Post("/login", handler.HandleAdminLogin)

	protected := admin.Group("/", middleware.AdminAuth([]byte(cfg.SessionSecret)))
	protected.Get("/licenses", handler.HandleListLicenses)
	protected.Post("/licenses", handler.HandleCreateLicense)
	protected.Post("/licenses/:key/extend", handler.HandleExtendLicense)
	protected.Post("/licenses/:key/reset-device", handler.HandleResetDevice)
	protected.Post("/licenses/:key/deactivate", handler.HandleDeactivateLicense)
	protected.Post("/licenses/:key/reactivate", handler.HandleReactivateLicense)
	protected.Delete("/licenses/:key", handler.HandleDeleteLicense)
	protected.Get("/licenses/:key/usage", handler.HandleLicenseUsage)
	protected.Get("/logs", handler.HandleGetAdminLogs)
	protected.Get("/stats", handler.HandleStatistics)

	zap.S().Infow("license server starting", "addr", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		zap.S().Fatalw("server exited", "error", err)
	}
}
