package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/exoplanetdb/exoplanetdb/internal/config"
)

func TestNewLoggerJSONCarriesServiceAndProfile(t *testing.T) {
	cfg := config.Config{
		Profile:       config.ProfileTest,
		Service:       config.ServiceConfig{Name: "exoplanet-api"},
		Observability: config.ObservabilityConfig{LogLevel: slog.LevelInfo, LogJSON: true},
	}
	var buf bytes.Buffer
	NewLogger(cfg, &buf).Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["service"] != "exoplanet-api" || entry["profile"] != "test" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestNewLoggerTextRespectsLevel(t *testing.T) {
	cfg := config.Config{
		Service:       config.ServiceConfig{Name: "exoplanetctl"},
		Observability: config.ObservabilityConfig{LogLevel: slog.LevelWarn},
	}
	var buf bytes.Buffer
	logger := NewLogger(cfg, &buf)
	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Fatalf("output = %q", out)
	}
}
