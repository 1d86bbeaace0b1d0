package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/exoplanetdb/exoplanetdb/internal/exoplanet"
)

const parquetReadBatch = 128

// parquetSource reads flat parquet exports row group by row group.
type parquetSource struct {
	file     *os.File
	groups   []parquet.RowGroup
	group    int
	rows     parquet.Rows
	buf      []parquet.Row
	pending  []parquet.Row
	columns  []exoplanet.Column
	position map[int]int
	record   int
}

func openParquet(path string) (*parquetSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ioFailure("open source %q: %v", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, ioFailure("stat source %q: %v", path, err)
	}
	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		_ = file.Close()
		return nil, ioFailure("open parquet %q: %v", path, err)
	}

	fields := pf.Schema().Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name()
	}
	columns := exoplanet.Columns()
	indexes, err := resolveColumns(path, names, columns)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	// Flat schemas have one leaf column per top-level field.
	position := make(map[int]int, len(indexes))
	for i, index := range indexes {
		position[index] = i
	}

	return &parquetSource{
		file:     file,
		groups:   pf.RowGroups(),
		buf:      make([]parquet.Row, parquetReadBatch),
		columns:  columns,
		position: position,
	}, nil
}

func (s *parquetSource) Next() ([]any, error) {
	for len(s.pending) == 0 {
		if err := s.fill(); err != nil {
			return nil, err
		}
	}
	row := s.pending[0]
	s.pending = s.pending[1:]
	s.record++

	values := make([]any, len(s.columns))
	for _, value := range row {
		i, ok := s.position[value.Column()]
		if !ok || value.IsNull() {
			continue
		}
		converted, err := convertParquetValue(s.columns[i], value)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", s.record, err)
		}
		values[i] = converted
	}
	return values, nil
}

func (s *parquetSource) fill() error {
	for {
		if s.rows == nil {
			if s.group >= len(s.groups) {
				return io.EOF
			}
			s.rows = s.groups[s.group].Rows()
			s.group++
		}
		n, err := s.rows.ReadRows(s.buf)
		if n > 0 {
			s.pending = s.buf[:n]
		}
		if err != nil {
			_ = s.rows.Close()
			s.rows = nil
			if !errors.Is(err, io.EOF) {
				return ioFailure("read parquet %q: %v", s.file.Name(), err)
			}
		}
		if n > 0 {
			return nil
		}
	}
}

func (s *parquetSource) Close() error {
	if s.rows != nil {
		_ = s.rows.Close()
	}
	return s.file.Close()
}

func convertParquetValue(column exoplanet.Column, value parquet.Value) (any, error) {
	switch value.Kind() {
	case parquet.Boolean:
		if value.Boolean() {
			return convertInt(column, 1)
		}
		return convertInt(column, 0)
	case parquet.Int32:
		return convertInt(column, int64(value.Int32()))
	case parquet.Int64:
		return convertInt(column, value.Int64())
	case parquet.Float:
		return convertFloat(column, float64(value.Float()))
	case parquet.Double:
		return convertFloat(column, value.Double())
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return convertCell(column, string(value.ByteArray()))
	default:
		return nil, fmt.Errorf("%w: column %q: unsupported parquet type %s", exoplanet.ErrSchemaMismatch, column.Raw, value.Kind())
	}
}
