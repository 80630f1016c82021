// Package config loads the process configuration once at startup. The
// resulting value is treated as immutable and passed into constructors.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/acadlabs/bibliometer/internal/analysis"
)

// Config holds all runtime configuration.
type Config struct {
	Port      string
	DataDir   string
	UploadDir string

	JWTSecret string
	JWTTTL    time.Duration

	MLServiceURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ModelColumns is the canonical ordered indicator name list shared by
	// the extractor and the remote predictor.
	ModelColumns []string

	AnalyzePerMinute int
	MaxUploadBytes   int64
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() (*Config, error) {
	// missing .env is fine, env vars may come from the deployment
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		DataDir:          getEnvOrDefault("DATA_DIR", "./data"),
		UploadDir:        getEnvOrDefault("UPLOAD_DIR", "./uploads"),
		JWTSecret:        getEnvOrDefault("JWT_SECRET", "change-me-in-production"),
		JWTTTL:           90 * 24 * time.Hour,
		MLServiceURL:     os.Getenv("ML_SERVICE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		AnalyzePerMinute: 10,
		MaxUploadBytes:   50 * 1024 * 1024,
	}

	if ttl := os.Getenv("JWT_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
		}
		cfg.JWTTTL = d
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = n
	}

	if limit := os.Getenv("ANALYZE_PER_MINUTE"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return nil, fmt.Errorf("invalid ANALYZE_PER_MINUTE: %w", err)
		}
		cfg.AnalyzePerMinute = n
	}

	columns, err := loadModelColumns(os.Getenv("MODEL_COLUMNS_FILE"))
	if err != nil {
		return nil, err
	}
	cfg.ModelColumns = columns

	return cfg, nil
}

// loadModelColumns reads the ordered column list from a JSON file, falling
// back to the built-in canonical list when no file is configured.
func loadModelColumns(path string) ([]string, error) {
	if path == "" {
		return analysis.DefaultModelColumns, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model columns file: %w", err)
	}

	var columns []string
	if err := json.Unmarshal(raw, &columns); err != nil {
		return nil, fmt.Errorf("failed to parse model columns file: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("model columns file %s is empty", path)
	}

	slog.Info("Model columns loaded", "path", path, "count", len(columns))
	return columns, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
