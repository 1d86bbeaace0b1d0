package exoplanetctl

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/exoplanetdb/exoplanetdb/internal/ingest"
	"github.com/exoplanetdb/exoplanetdb/internal/query"
	"github.com/exoplanetdb/exoplanetdb/internal/storage"
	"github.com/exoplanetdb/exoplanetdb/internal/store"
)

const (
	formatCSV  = "csv"
	formatJSON = "json"
)

type Options struct {
	Driver    string
	DSN       string
	BatchSize int
	Timeout   time.Duration
	// Objects resolves s3:// ingestion sources; nil disables them.
	Objects storage.ObjectReader
	Logger  *slog.Logger
	Stdout  io.Writer
	Stderr  io.Writer
}

type runner struct {
	storeCfg store.Config
	stdout   io.Writer
	stderr   io.Writer
	format   string
	debug    bool
	logger   *slog.Logger
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("exoplanetctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	driver := fs.String("driver", firstNonEmpty(defaults.Driver, store.DriverDuckDB), "store driver: duckdb, sqlite or postgres")
	dsn := fs.String("dsn", defaults.DSN, "store DSN (file path for duckdb/sqlite)")
	format := fs.String("format", formatCSV, "output format: csv or json")
	debug := fs.Bool("debug", false, "log SQL before running it")
	batchSize := fs.Int("batch-size", defaults.BatchSize, "rows per INSERT during ingest")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, time.Minute), "command timeout (e.g. 30s)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}
	if *format != formatCSV && *format != formatJSON {
		_, _ = fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return 2
	}

	logger := defaults.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(stderr, nil))
	}
	r := &runner{storeCfg: store.Config{Driver: *driver, DSN: *dsn}, stdout: stdout, stderr: stderr, format: *format, debug: *debug, logger: logger}

	command := strings.TrimSpace(fs.Arg(0))
	rest := fs.Args()[1:]
	var commandFn func(ctx context.Context, facade *query.Facade, ingestor *ingest.Ingestor, args []string) error
	switch command {
	case "ingest":
		commandFn = r.ingest
	case "query":
		commandFn = r.query
	case "methods":
		commandFn = r.methods
	case "sql":
		commandFn = r.sql
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	db, dialect, err := store.Open(ctx, r.storeCfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	facade := query.NewFacade(logger)
	facade.Bind(db, dialect)
	defer func() { _ = facade.Close() }()

	ingestor := &ingest.Ingestor{
		DB:        db,
		Dialect:   dialect,
		Objects:   defaults.Objects,
		BatchSize: *batchSize,
		Logger:    logger,
	}
	if err := commandFn(ctx, facade, ingestor, rest); err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			_, _ = fmt.Fprintf(stderr, "%v\n\n", err)
			writeUsage(stderr)
			return 2
		}
		_, _ = fmt.Fprintf(stderr, "%s failed: %v\n", command, err)
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

func (r *runner) ingest(ctx context.Context, _ *query.Facade, ingestor *ingest.Ingestor, args []string) error {
	if len(args) != 1 {
		return usageError("ingest takes exactly one source")
	}
	if err := store.RequirePersistent(r.storeCfg); err != nil {
		return err
	}
	summary, err := ingestor.Ingest(ctx, args[0])
	if err != nil {
		return err
	}
	if r.format == formatJSON {
		return writeIndentedJSON(r.stdout, map[string]any{
			"source":      summary.Source,
			"table":       summary.Table,
			"columns":     summary.Columns,
			"rows":        summary.Rows,
			"duration_ms": summary.Duration.Milliseconds(),
		})
	}
	_, err = fmt.Fprintf(r.stdout, "ingested %d rows from %s into %s\n", summary.Rows, summary.Source, summary.Table)
	return err
}

func (r *runner) query(ctx context.Context, facade *query.Facade, _ *ingest.Ingestor, args []string) error {
	var filter query.Filter
	var method optionalString
	var year optionalInt
	var columns string

	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	fs.Var(&method, "method", "discovery method to match exactly")
	fs.Var(&year, "year", "discovery year to match exactly")
	fs.Var(boundFlag{&filter.OrbitalPeriod.Min}, "period-min", "minimum orbital period [days]")
	fs.Var(boundFlag{&filter.OrbitalPeriod.Max}, "period-max", "maximum orbital period [days]")
	fs.Var(boundFlag{&filter.HostStarVMag.Min}, "vmag-min", "minimum host star V magnitude")
	fs.Var(boundFlag{&filter.HostStarVMag.Max}, "vmag-max", "maximum host star V magnitude")
	fs.Var(boundFlag{&filter.PlanetRadius.Min}, "radius-min", "minimum planet radius [Earth radius]")
	fs.Var(boundFlag{&filter.PlanetRadius.Max}, "radius-max", "maximum planet radius [Earth radius]")
	fs.Var(boundFlag{&filter.HostStarTemp.Min}, "temp-min", "minimum stellar effective temperature [K]")
	fs.Var(boundFlag{&filter.HostStarTemp.Max}, "temp-max", "maximum stellar effective temperature [K]")
	fs.StringVar(&columns, "columns", "", "comma separated display columns")
	fs.StringVar(&filter.OrderBy, "order-by", "", "display column to sort by")
	fs.IntVar(&filter.Limit, "limit", 0, "maximum rows, 0 for all")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if fs.NArg() > 0 {
		return usageError(fmt.Sprintf("unexpected query arguments: %v", fs.Args()))
	}

	filter.DiscoveryMethod = method.value
	filter.DiscoveryYear = year.value
	for _, column := range strings.Split(columns, ",") {
		if column = strings.TrimSpace(column); column != "" {
			filter.Columns = append(filter.Columns, column)
		}
	}
	if r.debug {
		facade.DebugQueries = true
	}

	result, err := facade.Exoplanets(ctx, filter)
	if err != nil {
		return err
	}
	return r.writeResult(result)
}

func (r *runner) methods(ctx context.Context, facade *query.Facade, _ *ingest.Ingestor, args []string) error {
	if len(args) != 0 {
		return usageError("methods takes no arguments")
	}
	if r.debug {
		facade.DebugQueries = true
	}
	result, err := facade.DiscoveryMethods(ctx)
	if err != nil {
		return err
	}
	return r.writeResult(result)
}

func (r *runner) sql(ctx context.Context, facade *query.Facade, _ *ingest.Ingestor, args []string) error {
	if len(args) == 0 {
		return usageError("sql needs a statement")
	}
	result, err := facade.Execute(ctx, strings.Join(args, " "), nil, r.debug)
	if err != nil {
		return err
	}
	return r.writeResult(result)
}

func (r *runner) writeResult(result query.Result) error {
	if r.format == formatJSON {
		rows := result.Rows
		if rows == nil {
			rows = [][]any{}
		}
		return writeIndentedJSON(r.stdout, map[string]any{"columns": result.Columns, "rows": rows})
	}

	w := csv.NewWriter(r.stdout)
	if err := w.Write(result.Columns); err != nil {
		return err
	}
	record := make([]string, len(result.Columns))
	for _, row := range result.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) && row[i] != nil {
				record[i] = fmt.Sprint(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeIndentedJSON(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: exoplanetctl [flags] <command> [args]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  ingest <source>     replace the exoplanets table from a csv, tsv, parquet or s3:// source")
	_, _ = fmt.Fprintln(w, "  query [filters]     filtered select, see exoplanetctl query -h")
	_, _ = fmt.Fprintln(w, "  methods             distinct discovery methods")
	_, _ = fmt.Fprintln(w, "  sql <statement>     run an arbitrary read query")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
