package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/parkvision/parking-backend-go/internal/occupancy"
)

// Config holds the application configuration.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// RateLimit is the maximum requests per IP per minute.
	RateLimit int

	// Engine holds the occupancy analysis thresholds.
	Engine occupancy.Config
}

// Load reads configuration from the environment, after loading a local
// .env file when present. Missing values fall back to defaults.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := &Config{
		Port:      envString("PORT", ":8080"),
		DBPath:    envString("DB_PATH", "./data/parking.db"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		RateLimit: envInt("RATE_LIMIT", 300),
		Engine: occupancy.Config{
			IoUThreshold:         envFloat("IOU_THRESHOLD", occupancy.DefaultIoUThreshold),
			ContainmentThreshold: envFloat("CONTAINMENT_THRESHOLD", occupancy.DefaultContainmentThreshold),
			ConfirmFrames:        envInt("CONFIRM_FRAMES", occupancy.DefaultConfirmFrames),
			ConfidenceThreshold:  envFloat("CONFIDENCE_THRESHOLD", occupancy.DefaultConfidenceThreshold),
		},
	}
	cfg.Engine = cfg.Engine.Normalized()

	if cfg.JWTSecret == "" {
		log.Println("JWT_SECRET not set, authentication disabled")
	}
	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}
