package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("IOU_THRESHOLD", "")
	t.Setenv("CONFIRM_FRAMES", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "./data/parking.db", cfg.DBPath)
	assert.Empty(t, cfg.JWTSecret)
	assert.InDelta(t, 0.3, cfg.Engine.IoUThreshold, 1e-9)
	assert.Equal(t, 3, cfg.Engine.ConfirmFrames)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("DB_PATH", "/tmp/parking-test.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("IOU_THRESHOLD", "0.45")
	t.Setenv("CONFIRM_FRAMES", "5")
	t.Setenv("RATE_LIMIT", "10")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "/tmp/parking-test.db", cfg.DBPath)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.InDelta(t, 0.45, cfg.Engine.IoUThreshold, 1e-9)
	assert.Equal(t, 5, cfg.Engine.ConfirmFrames)
	assert.Equal(t, 10, cfg.RateLimit)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("IOU_THRESHOLD", "lots")
	t.Setenv("CONFIRM_FRAMES", "-2")
	t.Setenv("RATE_LIMIT", "many")

	cfg := Load()
	// Unparseable values fall back, out-of-range ones are normalized.
	assert.InDelta(t, 0.3, cfg.Engine.IoUThreshold, 1e-9)
	assert.Equal(t, 3, cfg.Engine.ConfirmFrames)
	assert.Equal(t, 300, cfg.RateLimit)
}
