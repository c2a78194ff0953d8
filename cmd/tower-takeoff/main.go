package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"tower-takeoff/common/database"
	logpkg "tower-takeoff/common/logger"
	redispkg "tower-takeoff/common/redis"
	"tower-takeoff/internal/config"
	httpapi "tower-takeoff/internal/http"
	"tower-takeoff/internal/repository"
	"tower-takeoff/internal/service"
	"tower-takeoff/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "tower-takeoff")
	if err != nil {
		if logger, err = logpkg.NewLoggerWithDefaults(); err != nil {
			logger = zap.NewNop()
		}
	}
	defer logger.Sync()

	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			logger.Info("DB enabled for tower-takeoff", zap.String("table", cfg.Catalog.Table))
		} else {
			logger.Warn("DB enabled but connection failed, falling back to workbook catalog", zap.Error(err))
		}
	}
	defer database.Close(db)

	var repo repository.CatalogRepository
	if db != nil {
		repo = repository.NewPostgresCatalogRepo(db, cfg.Catalog.Table)
	} else {
		repo = workbookCatalog(cfg.Catalog.WorkbookPath, logger)
	}

	// Option cache is optional; a nil KV disables it.
	var kv store.KV
	if cfg.RedisEnabled {
		client := redispkg.NewRedisClient(&cfg.Redis)
		if err := redispkg.Ping(context.Background(), client); err != nil {
			logger.Warn("Redis enabled but unreachable, option cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = redispkg.Close(client)
		} else {
			defer redispkg.Close(client)
			kv = store.NewRedisKV(client)
			logger.Info("Option cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.OptionsCache.TTL))
		}
	}

	catalog := service.NewCatalogService(repo, kv, service.CatalogServiceOptions{
		CacheTTL:    cfg.OptionsCache.TTL,
		SearchLimit: cfg.Catalog.SearchLimit,
	}, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterCatalogRoutes(httpapi.NewCatalogHandler(catalog, logger))
	router.RegisterStaticRoutes(cfg.HTTP.StaticDir)

	srv := service.NewServer(cfg.HTTP.Addr, router.Handler(), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Failed to stop server gracefully", zap.Error(err))
	}
}

// workbookCatalog loads the consolidated spreadsheet into memory. A missing or
// unreadable workbook leaves an empty catalog so the API still answers.
func workbookCatalog(path string, logger *zap.Logger) *repository.MemoryCatalogRepo {
	if path == "" {
		logger.Warn("No DB and no CATALOG_XLSX configured, serving an empty catalog")
		return repository.NewMemoryCatalogRepo(nil)
	}
	pieces, err := repository.LoadWorkbookCatalogFile(path)
	if err != nil {
		logger.Error("Failed to load workbook catalog", zap.String("path", path), zap.Error(err))
		return repository.NewMemoryCatalogRepo(nil)
	}
	logger.Info("Workbook catalog loaded", zap.String("path", path), zap.Int("rows", len(pieces)))
	return repository.NewMemoryCatalogRepo(pieces)
}
