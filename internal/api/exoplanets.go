package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/exoplanetdb/exoplanetdb/internal/config"
	"github.com/exoplanetdb/exoplanetdb/internal/exoplanet"
	"github.com/exoplanetdb/exoplanetdb/internal/query"
)

type resultResponse struct {
	Columns []string       `json:"columns"`
	Rows    [][]any        `json:"rows"`
	Stats   map[string]any `json:"stats"`
}

func handleExoplanets(cfg config.Config, deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Catalog == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "QUERY_NOT_CONFIGURED", "query dependencies are not configured", false, nil)
		return
	}

	filter, err := parseFilter(r.URL.Query(), cfg.Query.DefaultLimit)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	result, err := deps.Catalog.Exoplanets(r.Context(), filter)
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(result))
}

func handleDiscoveryMethods(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Catalog == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "QUERY_NOT_CONFIGURED", "query dependencies are not configured", false, nil)
		return
	}
	result, err := deps.Catalog.DiscoveryMethods(r.Context())
	if err != nil {
		writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(result))
}

func newResultResponse(result query.Result) resultResponse {
	rows := result.Rows
	if rows == nil {
		rows = [][]any{}
	}
	return resultResponse{
		Columns: result.Columns,
		Rows:    rows,
		Stats: map[string]any{
			"duration_ms": result.Duration.Milliseconds(),
			"row_count":   len(rows),
		},
	}
}

func writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	details := map[string]any{"details": err.Error()}
	switch {
	case errors.Is(err, exoplanet.ErrInvalidFilter):
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_FILTER", "invalid filter", false, details)
	case errors.Is(err, exoplanet.ErrQuery):
		writeError(r.Context(), w, http.StatusBadRequest, "QUERY_EXECUTION_FAILED", "query execution failed", false, details)
	case errors.Is(err, exoplanet.ErrNotConnected):
		writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_CONNECTED", "store is not connected", true, nil)
	default:
		writeError(r.Context(), w, http.StatusInternalServerError, "INTERNAL", "request failed", true, details)
	}
}

var rangeParams = []struct {
	prefix string
	target func(*query.Filter) *query.Range
}{
	{prefix: "orbital_period", target: func(f *query.Filter) *query.Range { return &f.OrbitalPeriod }},
	{prefix: "vmag", target: func(f *query.Filter) *query.Range { return &f.HostStarVMag }},
	{prefix: "radius", target: func(f *query.Filter) *query.Range { return &f.PlanetRadius }},
	{prefix: "temp", target: func(f *query.Filter) *query.Range { return &f.HostStarTemp }},
}

var knownParams = map[string]struct{}{
	"discovery_method": {}, "disc_year": {}, "columns": {}, "order_by": {}, "limit": {},
	"orbital_period_min": {}, "orbital_period_max": {},
	"vmag_min": {}, "vmag_max": {},
	"radius_min": {}, "radius_max": {},
	"temp_min": {}, "temp_max": {},
}

// parseFilter maps query-string parameters onto a Filter. Empty values count
// as absent; an absent limit falls back to defaultLimit.
func parseFilter(values url.Values, defaultLimit int) (query.Filter, error) {
	for key := range values {
		if _, ok := knownParams[key]; !ok {
			return query.Filter{}, fmt.Errorf("%w: unknown parameter %q", exoplanet.ErrInvalidFilter, key)
		}
	}

	filter := query.Filter{Limit: defaultLimit}
	if raw := values.Get("discovery_method"); strings.TrimSpace(raw) != "" {
		filter.DiscoveryMethod = query.String(raw)
	}
	if raw := strings.TrimSpace(values.Get("disc_year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return query.Filter{}, fmt.Errorf("%w: disc_year must be an integer", exoplanet.ErrInvalidFilter)
		}
		filter.DiscoveryYear = query.Int(year)
	}
	for _, param := range rangeParams {
		target := param.target(&filter)
		var err error
		if target.Min, err = parseBound(values, param.prefix+"_min"); err != nil {
			return query.Filter{}, err
		}
		if target.Max, err = parseBound(values, param.prefix+"_max"); err != nil {
			return query.Filter{}, err
		}
	}
	if raw := values.Get("columns"); raw != "" {
		for _, column := range strings.Split(raw, ",") {
			if column = strings.TrimSpace(column); column != "" {
				filter.Columns = append(filter.Columns, column)
			}
		}
	}
	filter.OrderBy = strings.TrimSpace(values.Get("order_by"))
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return query.Filter{}, fmt.Errorf("%w: limit must be an integer", exoplanet.ErrInvalidFilter)
		}
		filter.Limit = limit
	}
	return filter, nil
}

func parseBound(values url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("%w: %s must be a finite number", exoplanet.ErrInvalidFilter, key)
	}
	return &value, nil
}
