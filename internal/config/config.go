package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "tower-takeoff/common/config"
)

// Config tower-takeoff HTTP API configuration.
type Config struct {
	HTTP struct {
		Addr            string
		ShutdownTimeout time.Duration
		StaticDir       string
	}
	DBEnabled bool
	Database  commoncfg.DatabaseConfig
	Catalog   struct {
		Table string
		// Workbook used as the catalog when the DB is disabled or unreachable.
		WorkbookPath string
		SearchLimit  int
	}
	RedisEnabled bool
	Redis        commoncfg.RedisConfig
	OptionsCache struct {
		TTL time.Duration
	}
	Log struct {
		Level  string
		Format string
	}
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.HTTP.ShutdownTimeout = time.Duration(parseInt(getEnv("SHUTDOWN_TIMEOUT", "5"), 5)) * time.Second
	cfg.HTTP.StaticDir = getEnv("STATIC_DIR", "")

	// Local dev default: if the DB is unavailable the service falls back to the workbook catalog.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "desglose_torres"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 10
	cfg.Database.MaxIdle = 2
	cfg.Database.LoadFromEnv("DB")

	cfg.Catalog.Table = getEnv("CATALOG_TABLE", "piezas")
	cfg.Catalog.WorkbookPath = getEnv("CATALOG_XLSX", "")
	cfg.Catalog.SearchLimit = parseInt(getEnv("SEARCH_LIMIT", "500"), 500)

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.OptionsCache.TTL = time.Duration(parseInt(getEnv("OPTIONS_CACHE_TTL", "300"), 300)) * time.Second

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
