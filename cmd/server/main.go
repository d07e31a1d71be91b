package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/example/catalogapi/internal/config"
	"github.com/example/catalogapi/internal/database"
	"github.com/example/catalogapi/internal/handlers"
	"github.com/example/catalogapi/internal/logger"
	"github.com/example/catalogapi/internal/metrics"
	"github.com/example/catalogapi/internal/repositories"
	"github.com/example/catalogapi/internal/routes"
	"github.com/example/catalogapi/internal/services"
	"github.com/example/catalogapi/internal/storage"
)

const serviceName = "catalogapi"

func main() {
	cfg := config.Load()

	zlog, err := logger.New(logger.LogConfig{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: serviceName,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	db := database.Connect(cfg.DatabaseURL, zlog, cfg.Environment != "production")

	store, uploadDir := newStorage(cfg, zlog)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(serviceName, reg)

	authService, err := services.NewAuthService(repositories.NewUserRepository(db), cfg.SecretKey, zlog, m)
	if err != nil {
		zlog.Fatal("failed to init auth service", zap.Error(err))
	}
	catalogService := services.NewCatalogService(repositories.NewProductRepository(db), store, cfg.UploadMaxBytes, zlog, m)

	app := fiber.New(fiber.Config{
		AppName:      "Catalog API",
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    int(cfg.UploadMaxBytes) + 1<<20,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(m.Middleware())
	app.Use(logger.Middleware(zlog))

	routes.Register(app, routes.Dependencies{
		Auth:      authService,
		Catalog:   catalogService,
		Verifier:  authService,
		Metrics:   metrics.Handler(reg),
		UploadDir: uploadDir,
	})

	for _, r := range app.GetRoutes(true) {
		zlog.Info("route registered", zap.String("method", r.Method), zap.String("path", r.Path))
	}

	zlog.Info("starting server", zap.String("port", cfg.AppPort), zap.String("storage", cfg.StorageDriver))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		zlog.Fatal("fiber.Listen error", zap.Error(err))
	}
}

// newStorage builds the configured image store. The returned directory is
// non-empty when uploads are served from local disk.
func newStorage(cfg *config.Config, zlog *zap.Logger) (storage.Storage, string) {
	if cfg.StorageDriver == config.StorageS3 {
		s3Store, err := storage.NewS3Storage(context.Background(), storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			zlog.Fatal("failed to init s3 storage", zap.Error(err))
		}
		return s3Store, ""
	}

	local, err := storage.NewLocalStorage(cfg.UploadDir, "/uploads")
	if err != nil {
		zlog.Fatal("failed to init local storage", zap.Error(err))
	}
	return local, local.Dir()
}
