package main

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"preppilot/config"
	"preppilot/routes"
	"preppilot/storage"
	"preppilot/utils"
)

func main() {
	utils.Log.Info("Initializing PrepPilot...")

	cfg, err := config.LoadConfig("config.toml")
	if err != nil {
		utils.Log.Error("Failed to load config: %v", err)
		return
	}

	store, err := storage.NewBoltStore(cfg.Storage.DataDir)
	if err != nil {
		utils.Log.Error("Failed to open storage: %v", err)
		return
	}
	defer store.Close()

	app := fiber.New(fiber.Config{
		ErrorHandler: routes.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New()) // Recover from panics
	app.Use(logger.New())  // Request logging
	app.Use(compress.New())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "no-referrer",
	}))

	routes.Setup(app, cfg, store)

	utils.Log.Info("Starting server on port %d...", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		utils.Log.Error("Error starting server: %v", err)
	}
}
