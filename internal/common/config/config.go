package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port           string `yaml:"port"`
	Environment    string `yaml:"env"`
	ReadTimeout    int    `yaml:"read_timeout"`
	WriteTimeout   int    `yaml:"write_timeout"`
	LogLevel       string `yaml:"log_level"`
	StoreDriver    string `yaml:"store_driver"`
	DBPath         string `yaml:"db_path"`
	MigrationsPath string `yaml:"migrations_path"`
	FileStoreDir   string `yaml:"file_store_dir"`
	HistoryLimit   int    `yaml:"history_limit"`
	ShareBaseURL   string `yaml:"share_base_url"`
	BodyLimit      int    `yaml:"body_limit"`
}

func defaults() *Config {
	return &Config{
		Port:           "3000",
		Environment:    "development",
		ReadTimeout:    10,
		WriteTimeout:   10,
		LogLevel:       "info",
		StoreDriver:    "sqlite",
		DBPath:         "data/db/circuitee.db",
		MigrationsPath: "migrations/001_init_kv.sql",
		FileStoreDir:   "data/kv",
		HistoryLimit:   50,
		ShareBaseURL:   "http://localhost:3000/",
		BodyLimit:      16 * 1024 * 1024,
	}
}

// Load reads CONFIG_FILE (YAML) when set, then applies environment overrides.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENV", cfg.Environment)
	cfg.ReadTimeout = getEnvAsInt("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.StoreDriver = getEnv("STORE_DRIVER", cfg.StoreDriver)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", cfg.MigrationsPath)
	cfg.FileStoreDir = getEnv("FILE_STORE_DIR", cfg.FileStoreDir)
	cfg.HistoryLimit = getEnvAsInt("HISTORY_LIMIT", cfg.HistoryLimit)
	cfg.ShareBaseURL = getEnv("SHARE_BASE_URL", cfg.ShareBaseURL)
	cfg.BodyLimit = getEnvAsInt("BODY_LIMIT", cfg.BodyLimit)

	return cfg, cfg.validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "sqlite", "file":
	default:
		return fmt.Errorf("store_driver %q: want sqlite or file", c.StoreDriver)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
