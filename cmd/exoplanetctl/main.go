package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/exoplanetdb/exoplanetdb/internal/cli/exoplanetctl"
	"github.com/exoplanetdb/exoplanetdb/internal/config"
	s3store "github.com/exoplanetdb/exoplanetdb/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("exoplanetctl")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	options := exoplanetctl.Options{
		Driver:    cfg.Store.Driver,
		DSN:       cfg.Store.DSN,
		BatchSize: cfg.Ingest.BatchSize,
		Timeout:   parseDurationWithDefault(strings.TrimSpace(os.Getenv("EXOPLANET_CLI_TIMEOUT")), time.Minute),
		Objects: s3store.NewLazyArchive(s3store.ArchiveConfig{
			Endpoint:        cfg.ObjectStore.Endpoint,
			Region:          cfg.ObjectStore.Region,
			Bucket:          cfg.ObjectStore.Bucket,
			AccessKeyID:     cfg.ObjectStore.AccessKeyID,
			SecretAccessKey: cfg.ObjectStore.SecretAccessKey,
			UseSSL:          cfg.ObjectStore.UseSSL,
			ExportPrefix:    cfg.ObjectStore.Prefix,
		}),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	code := exoplanetctl.Run(context.Background(), os.Args[1:], options)
	os.Exit(code)
}

func parseDurationWithDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid EXOPLANET_CLI_TIMEOUT %q; using %s\n", raw, fallback)
		return fallback
	}
	return parsed
}
