package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/exoplanetdb/exoplanetdb/internal/exoplanet"
	"github.com/exoplanetdb/exoplanetdb/internal/observability"
	"github.com/exoplanetdb/exoplanetdb/internal/storage"
	"github.com/exoplanetdb/exoplanetdb/internal/store"
)

const (
	defaultBatchSize = 500
	maxBatchSize     = 1000
)

// Ingestor replaces the exoplanets table with the projection of a raw
// archive export.
type Ingestor struct {
	DB      *sql.DB
	Dialect store.Dialect
	// Objects resolves s3:// sources; nil disables them.
	Objects   storage.ObjectReader
	BatchSize int
	Logger    *slog.Logger
}

type Summary struct {
	Source   string
	Table    string
	Columns  []string
	Rows     int64
	Duration time.Duration
}

// Ingest reads source and atomically replaces the exoplanets table with its
// rows. On any error the previous table is left untouched.
func (i *Ingestor) Ingest(ctx context.Context, source string) (Summary, error) {
	start := time.Now()
	summary, err := i.ingest(ctx, source)
	elapsed := time.Since(start)
	if err != nil {
		observability.ObserveIngest("error", 0, elapsed)
		i.log().Error("ingestion failed", slog.String("source", source), slog.Any("error", err))
		return Summary{}, err
	}
	summary.Duration = elapsed
	observability.ObserveIngest("ok", summary.Rows, elapsed)
	i.log().Info("ingestion complete",
		slog.String("source", source),
		slog.String("table", summary.Table),
		slog.Int64("rows", summary.Rows),
		slog.Duration("duration", elapsed),
	)
	return summary, nil
}

func (i *Ingestor) ingest(ctx context.Context, source string) (Summary, error) {
	if i.DB == nil {
		return Summary{}, exoplanet.ErrNotConnected
	}
	if strings.TrimSpace(source) == "" {
		return Summary{}, ioFailure("source path is required")
	}

	localPath, cleanup, err := i.localizeSource(ctx, source)
	if err != nil {
		return Summary{}, err
	}
	defer cleanup()

	records, err := openSource(localPath)
	if err != nil {
		return Summary{}, err
	}
	defer func() { _ = records.Close() }()

	tx, err := i.DB.BeginTx(ctx, nil)
	if err != nil {
		return Summary{}, ioFailure("begin transaction: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := i.replaceTable(ctx, tx); err != nil {
		return Summary{}, err
	}
	rows, err := i.copyRows(ctx, tx, records)
	if err != nil {
		return Summary{}, err
	}
	if err := tx.Commit(); err != nil {
		return Summary{}, ioFailure("commit: %v", err)
	}

	return Summary{
		Source:  source,
		Table:   exoplanet.TableName,
		Columns: exoplanet.DisplayNames(),
		Rows:    rows,
	}, nil
}

func (i *Ingestor) replaceTable(ctx context.Context, tx *sql.Tx) error {
	table := store.QuoteIdent(exoplanet.TableName)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return ioFailure("drop table %s: %v", exoplanet.TableName, err)
	}
	if _, err := tx.ExecContext(ctx, CreateTableSQL(i.Dialect)); err != nil {
		return ioFailure("create table %s: %v", exoplanet.TableName, err)
	}
	return nil
}

func (i *Ingestor) copyRows(ctx context.Context, tx *sql.Tx, records recordSource) (int64, error) {
	batchSize := i.batchSize()
	batch := make([]any, 0, batchSize*len(exoplanet.Columns()))
	pending := 0
	var total int64

	flush := func() error {
		if pending == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, InsertSQL(i.Dialect, pending), batch...); err != nil {
			return ioFailure("insert rows: %v", err)
		}
		total += int64(pending)
		batch = batch[:0]
		pending = 0
		return nil
	}

	for {
		values, err := records.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		batch = append(batch, values...)
		pending++
		if pending == batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}
	if err := flush(); err != nil {
		return 0, err
	}
	return total, nil
}

func (i *Ingestor) batchSize() int {
	switch {
	case i.BatchSize <= 0:
		return defaultBatchSize
	case i.BatchSize > maxBatchSize:
		return maxBatchSize
	default:
		return i.BatchSize
	}
}

func (i *Ingestor) log() *slog.Logger {
	return observability.LoggerOrDiscard(i.Logger)
}

// CreateTableSQL is the DDL for the exoplanets table in dialect. There is
// no primary key; duplicate rows are allowed.
func CreateTableSQL(dialect store.Dialect) string {
	columns := exoplanet.Columns()
	defs := make([]string, 0, len(columns))
	for _, column := range columns {
		defs = append(defs, store.QuoteIdent(column.Display)+" "+dialect.ColumnType(column.Kind))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", store.QuoteIdent(exoplanet.TableName), strings.Join(defs, ", "))
}

// InsertSQL is a multi-row INSERT for rows rows of the exoplanets table.
func InsertSQL(dialect store.Dialect, rows int) string {
	columns := exoplanet.Columns()
	names := make([]string, 0, len(columns))
	for _, column := range columns {
		names = append(names, store.QuoteIdent(column.Display))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", store.QuoteIdent(exoplanet.TableName), strings.Join(names, ", "))
	arg := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := range columns {
			if c > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(dialect.Placeholder(arg))
			arg++
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
