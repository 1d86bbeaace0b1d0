package s3

import (
	"context"
	"io"
	"sync"

	"github.com/exoplanetdb/exoplanetdb/internal/storage"
)

// LazyArchive dials the export bucket on first use, so commands that never
// read an s3:// source do not need a reachable object store. A failed dial
// is remembered.
type LazyArchive struct {
	dial func(ctx context.Context) (storage.ObjectReader, error)

	once   sync.Once
	reader storage.ObjectReader
	err    error
}

func NewLazyArchive(cfg ArchiveConfig) *LazyArchive {
	return &LazyArchive{dial: func(ctx context.Context) (storage.ObjectReader, error) {
		return DialArchive(ctx, cfg)
	}}
}

func (l *LazyArchive) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := l.archive(ctx)
	if err != nil {
		return nil, err
	}
	return reader.Get(ctx, key)
}

func (l *LazyArchive) Stat(ctx context.Context, key string) (storage.ObjectInfo, error) {
	reader, err := l.archive(ctx)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	return reader.Stat(ctx, key)
}

func (l *LazyArchive) archive(ctx context.Context) (storage.ObjectReader, error) {
	l.once.Do(func() {
		l.reader, l.err = l.dial(ctx)
	})
	return l.reader, l.err
}
