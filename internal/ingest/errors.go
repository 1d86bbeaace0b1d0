package ingest

import (
	"fmt"
	"strings"

	"github.com/exoplanetdb/exoplanetdb/internal/exoplanet"
)

// SchemaMismatchError lists the raw columns the source is missing.
type SchemaMismatchError struct {
	Source  string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("source %q is missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

func (e *SchemaMismatchError) Unwrap() error {
	return exoplanet.ErrSchemaMismatch
}

func ioFailure(format string, args ...any) error {
	return fmt.Errorf("%w: %s", exoplanet.ErrIOFailure, fmt.Sprintf(format, args...))
}
