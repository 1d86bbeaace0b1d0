package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/exoplanetdb/exoplanetdb/internal/exoplanet"
)

const (
	DriverDuckDB   = "duckdb"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Dialect captures the per-driver differences the SQL builders care about.
type Dialect struct {
	Name        string
	sqlDriver   string
	numbered    bool
	integerType string
	realType    string
	textType    string
}

var dialects = map[string]Dialect{
	DriverDuckDB:   {Name: DriverDuckDB, sqlDriver: "duckdb", integerType: "BIGINT", realType: "DOUBLE", textType: "VARCHAR"},
	DriverSQLite:   {Name: DriverSQLite, sqlDriver: "sqlite3", integerType: "INTEGER", realType: "REAL", textType: "TEXT"},
	DriverPostgres: {Name: DriverPostgres, sqlDriver: "pgx", numbered: true, integerType: "BIGINT", realType: "DOUBLE PRECISION", textType: "TEXT"},
}

func LookupDialect(driver string) (Dialect, error) {
	name := strings.ToLower(strings.TrimSpace(driver))
	if name == "" {
		name = DriverDuckDB
	}
	dialect, ok := dialects[name]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported store driver %q", driver)
	}
	return dialect, nil
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d Dialect) ColumnType(kind exoplanet.Kind) string {
	switch kind {
	case exoplanet.KindInteger:
		return d.integerType
	case exoplanet.KindReal:
		return d.realType
	default:
		return d.textType
	}
}

func QuoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// RequirePersistent fails when cfg would open a throwaway in-memory store.
func RequirePersistent(cfg Config) error {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return fmt.Errorf("%w: %s store dsn %q is not persistent", exoplanet.ErrIOFailure, cfg.Driver, cfg.DSN)
	}
	return nil
}

// Open opens and pings the store described by cfg. Failures wrap
// exoplanet.ErrIOFailure.
func Open(ctx context.Context, cfg Config) (*sql.DB, Dialect, error) {
	dialect, err := LookupDialect(cfg.Driver)
	if err != nil {
		return nil, Dialect{}, err
	}
	if strings.TrimSpace(cfg.DSN) == "" && dialect.Name != DriverDuckDB {
		return nil, Dialect{}, fmt.Errorf("%s store dsn is required", dialect.Name)
	}

	db, err := sql.Open(dialect.sqlDriver, cfg.DSN)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("%w: open %s store: %v", exoplanet.ErrIOFailure, dialect.Name, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, Dialect{}, fmt.Errorf("%w: ping %s store: %v", exoplanet.ErrIOFailure, dialect.Name, err)
	}

	return db, dialect, nil
}
