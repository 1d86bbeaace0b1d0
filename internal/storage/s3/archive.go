// Package s3 reads raw exoplanet archive exports staged in an S3-compatible
// bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/exoplanetdb/exoplanetdb/internal/storage"
)

// ErrArchiveUnavailable marks a bucket that cannot serve exports at all, as
// opposed to a single missing export.
var ErrArchiveUnavailable = errors.New("archive bucket unavailable")

// ArchiveConfig locates the bucket holding archive exports. ExportPrefix is
// prepended to every s3:// key.
type ArchiveConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	ExportPrefix    string
}

// exportBucket is one bucket with its name bound in.
type exportBucket interface {
	Name() string
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Describe(ctx context.Context, key string) (storage.ObjectInfo, error)
	Exists(ctx context.Context) (bool, error)
}

// ArchiveReader implements storage.ObjectReader over an export bucket.
type ArchiveReader struct {
	bucket exportBucket
	prefix string
}

// DialArchive connects to the configured bucket and fails unless it exists.
func DialArchive(ctx context.Context, cfg ArchiveConfig) (*ArchiveReader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("%w: no archive bucket configured", ErrArchiveUnavailable)
	}
	bucket, err := dialMinioBucket(cfg)
	if err != nil {
		return nil, err
	}
	reader := newArchiveReader(bucket, cfg.ExportPrefix)
	if err := reader.verifyBucket(ctx); err != nil {
		return nil, err
	}
	return reader, nil
}

func newArchiveReader(bucket exportBucket, prefix string) *ArchiveReader {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix != "" {
		prefix = path.Clean(prefix)
	}
	if prefix == "." {
		prefix = ""
	}
	return &ArchiveReader{bucket: bucket, prefix: prefix}
}

func (a *ArchiveReader) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	exportKey, err := a.exportKey(key)
	if err != nil {
		return nil, err
	}
	reader, err := a.bucket.Open(ctx, exportKey)
	if err != nil {
		return nil, a.exportErr("read", exportKey, err)
	}
	return reader, nil
}

func (a *ArchiveReader) Stat(ctx context.Context, key string) (storage.ObjectInfo, error) {
	exportKey, err := a.exportKey(key)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	info, err := a.bucket.Describe(ctx, exportKey)
	if err != nil {
		return storage.ObjectInfo{}, a.exportErr("stat", exportKey, err)
	}
	return info, nil
}

func (a *ArchiveReader) exportKey(key string) (string, error) {
	cleaned, err := storage.CleanKey(key)
	if err != nil {
		return "", err
	}
	if a.prefix == "" {
		return cleaned, nil
	}
	return a.prefix + "/" + cleaned, nil
}

// exportErr keeps ErrObjectNotFound matchable for callers.
func (a *ArchiveReader) exportErr(op, exportKey string, err error) error {
	if errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("archive export %s/%s: %w", a.bucket.Name(), exportKey, storage.ErrObjectNotFound)
	}
	return fmt.Errorf("%s archive export %s/%s: %w", op, a.bucket.Name(), exportKey, err)
}

func (a *ArchiveReader) verifyBucket(ctx context.Context) error {
	exists, err := a.bucket.Exists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArchiveUnavailable, a.bucket.Name(), err)
	}
	if !exists {
		return fmt.Errorf("%w: bucket %q does not exist", ErrArchiveUnavailable, a.bucket.Name())
	}
	return nil
}

// splitEndpoint accepts either a bare host:port or a URL whose scheme decides
// TLS.
func splitEndpoint(raw string, useSSL bool) (host string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("%w: no archive endpoint configured", ErrArchiveUnavailable)
	}
	if !strings.Contains(raw, "://") {
		return raw, useSSL, nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("%w: parse endpoint: %v", ErrArchiveUnavailable, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false, fmt.Errorf("%w: unsupported endpoint scheme %q", ErrArchiveUnavailable, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", false, fmt.Errorf("%w: endpoint %q has no host", ErrArchiveUnavailable, raw)
	}
	return parsed.Host, parsed.Scheme == "https" || useSSL, nil
}

type minioBucket struct {
	client *minio.Client
	name   string
}

func dialMinioBucket(cfg ArchiveConfig) (*minioBucket, error) {
	host, secure, err := splitEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: strings.TrimSpace(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveUnavailable, err)
	}
	return &minioBucket{client: client, name: strings.TrimSpace(cfg.Bucket)}, nil
}

func (b *minioBucket) Name() string { return b.name }

// Open stats the object first; GetObject alone defers a missing key until
// the first Read.
func (b *minioBucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.name, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateMinioErr(err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, translateMinioErr(err)
	}
	return obj, nil
}

func (b *minioBucket) Describe(ctx context.Context, key string) (storage.ObjectInfo, error) {
	obj, err := b.client.StatObject(ctx, b.name, key, minio.StatObjectOptions{})
	if err != nil {
		return storage.ObjectInfo{}, translateMinioErr(err)
	}
	return storage.ObjectInfo{Key: obj.Key, Size: obj.Size, ETag: obj.ETag, LastModified: obj.LastModified}, nil
}

func (b *minioBucket) Exists(ctx context.Context) (bool, error) {
	return b.client.BucketExists(ctx, b.name)
}

func translateMinioErr(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return storage.ErrObjectNotFound
	case "NoSuchBucket":
		return fmt.Errorf("%w: %v", ErrArchiveUnavailable, err)
	}
	return err
}
