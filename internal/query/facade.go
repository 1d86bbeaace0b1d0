package query

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/exoplanetdb/exoplanetdb/internal/exoplanet"
	"github.com/exoplanetdb/exoplanetdb/internal/observability"
	"github.com/exoplanetdb/exoplanetdb/internal/store"
)

const (
	kindExecute          = "execute"
	kindExoplanets       = "exoplanets"
	kindDiscoveryMethods = "discovery_methods"
)

// Facade is the read-only entry point to the exoplanets table. A Facade is
// created disconnected; Connect or Bind attach a store handle.
type Facade struct {
	Logger *slog.Logger
	// DebugQueries logs every statement, as if debug were passed to Execute.
	DebugQueries bool

	mu      sync.RWMutex
	db      *sql.DB
	dialect store.Dialect
}

func NewFacade(logger *slog.Logger) *Facade {
	return &Facade{Logger: logger}
}

// Connect opens the store and makes it the current handle. A previously held
// handle is closed.
func (f *Facade) Connect(ctx context.Context, cfg store.Config) error {
	db, dialect, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	f.Bind(db, dialect)
	f.log().Info("connected to store", slog.String("driver", dialect.Name))
	return nil
}

// Bind attaches an already open handle, replacing and closing any previous one.
func (f *Facade) Bind(db *sql.DB, dialect store.Dialect) {
	f.mu.Lock()
	previous := f.db
	f.db = db
	f.dialect = dialect
	f.mu.Unlock()

	if previous != nil && previous != db {
		_ = previous.Close()
	}
}

func (f *Facade) Close() error {
	f.mu.Lock()
	db := f.db
	f.db = nil
	f.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

func (f *Facade) Connected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.db != nil
}

func (f *Facade) Ping(ctx context.Context) error {
	db, _, err := f.handle()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping store: %v", exoplanet.ErrIOFailure, err)
	}
	return nil
}

// Execute runs an arbitrary read query with optional bound args.
func (f *Facade) Execute(ctx context.Context, sqlText string, args []any, debug bool) (Result, error) {
	return f.run(ctx, kindExecute, Statement{SQL: sqlText, Args: args}, debug)
}

// Exoplanets returns the rows matching every constraint in filter.
func (f *Facade) Exoplanets(ctx context.Context, filter Filter) (Result, error) {
	_, dialect, err := f.handle()
	if err != nil {
		return Result{}, err
	}
	stmt, err := Build(filter, dialect)
	if err != nil {
		return Result{}, err
	}
	return f.run(ctx, kindExoplanets, stmt, false)
}

func (f *Facade) DiscoveryMethods(ctx context.Context) (Result, error) {
	return f.run(ctx, kindDiscoveryMethods, DiscoveryMethodsStatement(), false)
}

// DiscoveryMethodNames flattens DiscoveryMethods to strings, skipping NULLs.
func (f *Facade) DiscoveryMethodNames(ctx context.Context) ([]string, error) {
	result, err := f.DiscoveryMethods(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		if len(row) == 0 || row[0] == nil {
			continue
		}
		names = append(names, fmt.Sprint(row[0]))
	}
	return names, nil
}

func (f *Facade) run(ctx context.Context, kind string, stmt Statement, debug bool) (Result, error) {
	db, _, err := f.handle()
	if err != nil {
		return Result{}, err
	}

	sqlText := stripTrailingSemicolons(stmt.SQL)
	if sqlText == "" {
		return Result{}, &QueryError{SQL: stmt.SQL, Err: fmt.Errorf("sql is required")}
	}
	if debug || f.DebugQueries {
		f.log().InfoContext(ctx, "running query",
			slog.String("kind", kind),
			slog.String("sql", sqlText),
			slog.Any("args", stmt.Args),
		)
	}

	start := time.Now()
	result, err := scan(ctx, db, sqlText, stmt.Args)
	elapsed := time.Since(start)
	if err != nil {
		observability.ObserveQuery(kind, "error", 0, elapsed)
		f.log().DebugContext(ctx, "query failed", slog.String("kind", kind), slog.Any("error", err))
		return Result{}, &QueryError{SQL: sqlText, Err: err}
	}
	result.Duration = elapsed
	observability.ObserveQuery(kind, "ok", len(result.Rows), elapsed)
	return result, nil
}

func scan(ctx context.Context, db *sql.DB, sqlText string, args []any) (Result, error) {
	rows, err := db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("query columns: %w", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return Result{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("iterate rows: %w", err)
	}
	return Result{Columns: columns, Rows: resultRows}, nil
}

func (f *Facade) handle() (*sql.DB, store.Dialect, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.db == nil {
		return nil, store.Dialect{}, exoplanet.ErrNotConnected
	}
	return f.db, f.dialect, nil
}

func (f *Facade) log() *slog.Logger {
	return observability.LoggerOrDiscard(f.Logger)
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
