package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/exoplanetdb/exoplanetdb/internal/storage"
)

type recordSource interface {
	// Next returns the next row in mapping order, or io.EOF.
	Next() ([]any, error)
	Close() error
}

func openSource(path string) (recordSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return openParquet(path)
	case ".tsv", ".tab":
		return openCSV(path, '\t')
	default:
		return openCSV(path, ',')
	}
}

// localizeSource downloads s3:// sources into a temp dir. The returned
// cleanup func is always safe to call.
func (i *Ingestor) localizeSource(ctx context.Context, source string) (string, func(), error) {
	noop := func() {}
	if !storage.IsObjectURI(source) {
		return source, noop, nil
	}
	if i.Objects == nil {
		return "", noop, ioFailure("source %q requires an object store", source)
	}
	key, err := storage.ObjectKey(source)
	if err != nil {
		return "", noop, ioFailure("%v", err)
	}

	info, err := i.Objects.Stat(ctx, key)
	if err != nil {
		return "", noop, ioFailure("stat object %q: %v", key, err)
	}
	reader, err := i.Objects.Get(ctx, key)
	if err != nil {
		return "", noop, ioFailure("get object %q: %v", key, err)
	}
	defer func() { _ = reader.Close() }()

	workDir, err := os.MkdirTemp("", "exoplanet-ingest-")
	if err != nil {
		return "", noop, ioFailure("create ingest temp dir: %v", err)
	}
	cleanup := func() { _ = os.RemoveAll(workDir) }

	localPath := filepath.Join(workDir, path.Base(key))
	if err := writeFile(localPath, reader); err != nil {
		cleanup()
		return "", noop, ioFailure("download object %q: %v", key, err)
	}
	i.log().Info("downloaded ingest source",
		slog.String("key", key),
		slog.Int64("size_bytes", info.Size),
	)
	return localPath, cleanup, nil
}

func writeFile(path string, reader io.Reader) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
