package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/exoplanetdb/exoplanetdb/internal/config"
	"github.com/exoplanetdb/exoplanetdb/internal/ingest"
	"github.com/exoplanetdb/exoplanetdb/internal/observability"
	s3store "github.com/exoplanetdb/exoplanetdb/internal/storage/s3"
	"github.com/exoplanetdb/exoplanetdb/internal/store"
)

func main() {
	cfg, err := config.LoadFromEnv("exoplanet-ingest")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stdout)

	source := cfg.Ingest.Source
	if len(os.Args) > 1 {
		source = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storeCfg := store.Config{
		Driver:          cfg.Store.Driver,
		DSN:             cfg.Store.DSN,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
	}
	if err := store.RequirePersistent(storeCfg); err != nil {
		logger.Error("refusing to ingest", slog.Any("error", err))
		os.Exit(1)
	}
	db, dialect, err := store.Open(ctx, storeCfg)
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	ingestor := &ingest.Ingestor{
		DB:        db,
		Dialect:   dialect,
		Objects:   s3store.NewLazyArchive(objectStoreConfig(cfg)),
		BatchSize: cfg.Ingest.BatchSize,
		Logger:    logger,
	}
	if _, err := ingestor.Ingest(ctx, source); err != nil {
		_ = db.Close()
		os.Exit(1)
	}
}

func objectStoreConfig(cfg config.Config) s3store.ArchiveConfig {
	return s3store.ArchiveConfig{
		Endpoint:        cfg.ObjectStore.Endpoint,
		Region:          cfg.ObjectStore.Region,
		Bucket:          cfg.ObjectStore.Bucket,
		AccessKeyID:     cfg.ObjectStore.AccessKeyID,
		SecretAccessKey: cfg.ObjectStore.SecretAccessKey,
		UseSSL:          cfg.ObjectStore.UseSSL,
		ExportPrefix:    cfg.ObjectStore.Prefix,
	}
}
