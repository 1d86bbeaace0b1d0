package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaultsForDevProfile(t *testing.T) {
	cfg, err := Load("exoplanet-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Store.Driver != "duckdb" || cfg.Store.DSN != "exoplanets.duckdb" {
		t.Fatalf("Store = %+v", cfg.Store)
	}
	if cfg.Ingest.BatchSize != 500 {
		t.Fatalf("Ingest.BatchSize = %d", cfg.Ingest.BatchSize)
	}
	if cfg.Query.DefaultLimit != 0 {
		t.Fatalf("Query.DefaultLimit = %d", cfg.Query.DefaultLimit)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
}

func TestLoadProdProfileDefaults(t *testing.T) {
	cfg, err := Load("exoplanet-api", mapLookup(map[string]string{"EXOPLANET_PROFILE": "PROD"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileProd {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileProd)
	}
	if !cfg.Observability.LogJSON {
		t.Fatal("LogJSON should default to true in prod")
	}
	if cfg.Query.DefaultLimit != 1000 {
		t.Fatalf("Query.DefaultLimit = %d", cfg.Query.DefaultLimit)
	}
	if !cfg.ObjectStore.UseSSL {
		t.Fatal("ObjectStore.UseSSL should default to true in prod")
	}
}

func TestLoadTestProfileUsesInMemoryDuckDB(t *testing.T) {
	cfg, err := Load("exoplanet-api", mapLookup(map[string]string{"EXOPLANET_PROFILE": "test"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.DSN != "" {
		t.Fatalf("Store.DSN = %q", cfg.Store.DSN)
	}
	if cfg.HTTP.Address != ":18080" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"EXOPLANET_SERVICE_NAME":            "exo-custom",
		"EXOPLANET_HTTP_ADDR":               ":9999",
		"EXOPLANET_HTTP_READ_TIMEOUT":       "2s",
		"EXOPLANET_STORE_DRIVER":            "postgres",
		"EXOPLANET_STORE_DSN":               "postgres://example/exo",
		"EXOPLANET_STORE_MAX_OPEN_CONNS":    "12",
		"EXOPLANET_STORE_CONN_MAX_LIFETIME": "5m",
		"EXOPLANET_INGEST_SOURCE":           "s3://raw/PS_2023.csv",
		"EXOPLANET_INGEST_BATCH_SIZE":       "50",
		"EXOPLANET_OBJECTSTORE_ENDPOINT":    "https://s3.example.com",
		"EXOPLANET_OBJECTSTORE_BUCKET":      "archive",
		"EXOPLANET_OBJECTSTORE_USE_SSL":     "true",
		"EXOPLANET_QUERY_DEBUG":             "true",
		"EXOPLANET_QUERY_DEFAULT_LIMIT":     "25",
		"EXOPLANET_LOG_LEVEL":               "error",
		"EXOPLANET_LOG_JSON":                "true",
	})
	cfg, err := Load("exoplanet-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.Name != "exo-custom" {
		t.Fatalf("Service.Name = %q", cfg.Service.Name)
	}
	if cfg.HTTP.Address != ":9999" || cfg.HTTP.ReadTimeout != 2*time.Second {
		t.Fatalf("HTTP = %+v", cfg.HTTP)
	}
	if cfg.Store.Driver != "postgres" || cfg.Store.DSN != "postgres://example/exo" {
		t.Fatalf("Store = %+v", cfg.Store)
	}
	if cfg.Store.MaxOpenConns != 12 || cfg.Store.ConnMaxLifetime != 5*time.Minute {
		t.Fatalf("Store pool = %+v", cfg.Store)
	}
	if cfg.Ingest.Source != "s3://raw/PS_2023.csv" || cfg.Ingest.BatchSize != 50 {
		t.Fatalf("Ingest = %+v", cfg.Ingest)
	}
	if cfg.ObjectStore.Endpoint != "https://s3.example.com" || cfg.ObjectStore.Bucket != "archive" || !cfg.ObjectStore.UseSSL {
		t.Fatalf("ObjectStore = %+v", cfg.ObjectStore)
	}
	if !cfg.Query.Debug || cfg.Query.DefaultLimit != 25 {
		t.Fatalf("Query = %+v", cfg.Query)
	}
	if cfg.Observability.LogLevel != slog.LevelError || !cfg.Observability.LogJSON {
		t.Fatalf("Observability = %+v", cfg.Observability)
	}
}

func TestLoadErrorsOnInvalidValues(t *testing.T) {
	tests := []map[string]string{
		{"EXOPLANET_PROFILE": "oops"},
		{"EXOPLANET_HTTP_READ_TIMEOUT": "NaN"},
		{"EXOPLANET_STORE_MAX_OPEN_CONNS": "oops"},
		{"EXOPLANET_STORE_DRIVER": "sqlite", "EXOPLANET_STORE_DSN": ""},
		{"EXOPLANET_INGEST_BATCH_SIZE": "0"},
		{"EXOPLANET_QUERY_DEFAULT_LIMIT": "-1"},
		{"EXOPLANET_QUERY_DEBUG": "not-bool"},
		{"EXOPLANET_LOG_LEVEL": "verbose"},
		{"EXOPLANET_HTTP_ADDR": " "},
	}
	for _, env := range tests {
		_, err := Load("exoplanet-api", mapLookup(env))
		if err == nil {
			t.Fatalf("Load() expected error for env %#v", env)
		}
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
