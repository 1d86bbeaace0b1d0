package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/exoplanetdb/exoplanetdb/internal/exoplanet"
)

// convertCell parses a raw text cell into the Go value stored for kind.
// Empty cells become NULL.
func convertCell(column exoplanet.Column, raw string) (any, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	switch column.Kind {
	case exoplanet.KindInteger:
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed, nil
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || !isInt64(parsed) {
			return nil, fmt.Errorf("%w: column %q: invalid integer %q", exoplanet.ErrSchemaMismatch, column.Raw, raw)
		}
		return int64(parsed), nil
	case exoplanet.KindReal:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: invalid number %q", exoplanet.ErrSchemaMismatch, column.Raw, raw)
		}
		return parsed, nil
	default:
		return value, nil
	}
}

// convertFloat handles numeric source cells that arrive already typed.
func convertFloat(column exoplanet.Column, value float64) (any, error) {
	switch column.Kind {
	case exoplanet.KindInteger:
		if !isInt64(value) {
			return nil, fmt.Errorf("%w: column %q: invalid integer %v", exoplanet.ErrSchemaMismatch, column.Raw, value)
		}
		return int64(value), nil
	case exoplanet.KindReal:
		return value, nil
	default:
		return strconv.FormatFloat(value, 'f', -1, 64), nil
	}
}

func convertInt(column exoplanet.Column, value int64) (any, error) {
	switch column.Kind {
	case exoplanet.KindInteger:
		return value, nil
	case exoplanet.KindReal:
		return float64(value), nil
	default:
		return strconv.FormatInt(value, 10), nil
	}
}

// isInt64 reports whether value is finite, integral and inside int64 range.
func isInt64(value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return false
	}
	return value >= math.MinInt64 && value < math.MaxInt64
}
