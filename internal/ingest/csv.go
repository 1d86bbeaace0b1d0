package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/exoplanetdb/exoplanetdb/internal/exoplanet"
)

const utf8BOM = "\ufeff"

// csvSource reads archive exports. Lines starting with '#' are the
// archive's metadata preamble and are skipped.
type csvSource struct {
	file    *os.File
	reader  *csv.Reader
	columns []exoplanet.Column
	indexes []int
	line    int
}

func openCSV(path string, delimiter rune) (*csvSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ioFailure("open source %q: %v", path, err)
	}
	reader := csv.NewReader(file)
	reader.Comma = delimiter
	reader.Comment = '#'
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		_ = file.Close()
		if errors.Is(err, io.EOF) {
			return nil, &SchemaMismatchError{Source: path, Missing: exoplanet.RawNames()}
		}
		return nil, ioFailure("read header of %q: %v", path, err)
	}

	names := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		names[i] = strings.TrimSpace(name)
	}
	columns := exoplanet.Columns()
	indexes, err := resolveColumns(path, names, columns)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &csvSource{file: file, reader: reader, columns: columns, indexes: indexes, line: 1}, nil
}

func (s *csvSource) Next() ([]any, error) {
	record, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, ioFailure("read %q: %v", s.file.Name(), err)
	}
	s.line++

	values := make([]any, len(s.columns))
	for i, column := range s.columns {
		value, err := convertCell(column, record[s.indexes[i]])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", s.line, err)
		}
		values[i] = value
	}
	return values, nil
}

func (s *csvSource) Close() error {
	return s.file.Close()
}

// resolveColumns maps each required raw column to its position in names.
func resolveColumns(source string, names []string, columns []exoplanet.Column) ([]int, error) {
	positions := make(map[string]int, len(names))
	for i, name := range names {
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}
	indexes := make([]int, len(columns))
	var missing []string
	for i, column := range columns {
		position, ok := positions[column.Raw]
		if !ok {
			missing = append(missing, column.Raw)
			continue
		}
		indexes[i] = position
	}
	if len(missing) > 0 {
		return nil, &SchemaMismatchError{Source: source, Missing: missing}
	}
	return indexes, nil
}
