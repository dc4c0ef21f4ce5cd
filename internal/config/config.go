package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Data     DataConfig
	Analysis AnalysisConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
	// Enabled is false when no DATABASE_URL is set; the pipeline then
	// runs without persistence.
	Enabled bool
}

// DataConfig holds raw-data locations
type DataConfig struct {
	RawRoot string
}

// AnalysisConfig holds per-run analysis defaults
type AnalysisConfig struct {
	// CapacityMAh overrides auto capacity resolution when > 0.
	CapacityMAh float64
	// FirstCRate is the first-cycle C-rate for auto capacity.
	FirstCRate float64
	// CheckIR enables the DCIR enrichment side path.
	CheckIR bool
	// MaxParallel bounds concurrent channel runs.
	MaxParallel int
}

// Load reads configuration from the environment, honoring a local .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] no .env file loaded: %v", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Data: DataConfig{
			RawRoot: getEnvOrDefault("RAW_DATA_ROOT", "Rawdata"),
		},
		Analysis: AnalysisConfig{
			CapacityMAh: getEnvFloatOrDefault("CAPACITY_MAH", 0),
			FirstCRate:  getEnvFloatOrDefault("FIRST_CRATE", 0.2),
			CheckIR:     getEnvBoolOrDefault("CHECK_IR", false),
			MaxParallel: getEnvIntOrDefault("MAX_PARALLEL", 4),
		},
	}
	cfg.Database.Enabled = cfg.Database.URL != ""

	if cfg.Analysis.FirstCRate <= 0 {
		return nil, fmt.Errorf("FIRST_CRATE must be positive, got %v", cfg.Analysis.FirstCRate)
	}
	return cfg, nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloatOrDefault(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBoolOrDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
