package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/parkvision/parking-backend-go/internal/api"
	"github.com/parkvision/parking-backend-go/internal/config"
	"github.com/parkvision/parking-backend-go/internal/database"
)

func main() {
	cfg := config.Load()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		log.Fatal("Failed to create data directory:", err)
	}
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	migrations := database.NewMigrationManager(database.GetDB())
	if err := migrations.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	router := api.SetupRouter(cfg)

	log.Printf("Server starting on %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
