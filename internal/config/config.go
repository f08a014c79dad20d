package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	// APIBase is the ordering site base URL; endpoints live under /api.
	APIBase string
	// TableNumber is sent with orders; "0" means no table context.
	TableNumber string
	// StateFile backs the local store (cart, guest identity).
	StateFile string
	// RequestTimeout bounds every backend call, checkout included.
	RequestTimeout time.Duration
	// ResetOnStart drops the persisted cart on startup, mirroring the
	// clear-on-reload behavior of the web build.
	ResetOnStart bool
}

// Load reads configuration from environment variables, honoring a local
// .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		APIBase:        "http://localhost:8000",
		TableNumber:    "0",
		StateFile:      "tea_house_state.json",
		RequestTimeout: 15 * time.Second,
	}
	if v := os.Getenv("TEA_HOUSE_API"); v != "" {
		cfg.APIBase = v
	}
	if v := os.Getenv("TEA_HOUSE_TABLE"); v != "" {
		cfg.TableNumber = v
	}
	if v := os.Getenv("TEA_HOUSE_STATE_FILE"); v != "" {
		cfg.StateFile = v
	}
	if v := os.Getenv("TEA_HOUSE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeout = time.Duration(n) * time.Second
		}
	}
	cfg.ResetOnStart = os.Getenv("TEA_HOUSE_RESET_ON_START") == "1"

	return cfg
}
