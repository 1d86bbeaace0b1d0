package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/exoplanetdb/exoplanetdb/internal/storage"
)

func TestArchiveReaderPrefixesExportKeys(t *testing.T) {
	bucket := &memoryBucket{name: "exports", objects: map[string]string{"nasa/raw/PS_2023.csv": "pl_name\n"}}
	reader := newArchiveReader(bucket, " /nasa/ ")

	body, err := reader.Get(context.Background(), "/raw/./PS_2023.csv")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = body.Close() }()
	raw, _ := io.ReadAll(body)
	if string(raw) != "pl_name\n" {
		t.Fatalf("body = %q", raw)
	}
	if bucket.lastKey != "nasa/raw/PS_2023.csv" {
		t.Fatalf("key = %q", bucket.lastKey)
	}

	info, err := reader.Stat(context.Background(), "raw/PS_2023.csv")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size != int64(len("pl_name\n")) {
		t.Fatalf("size = %d", info.Size)
	}
}

func TestArchiveReaderRejectsKeysOutsideBucket(t *testing.T) {
	bucket := &memoryBucket{name: "exports"}
	reader := newArchiveReader(bucket, "nasa")
	for _, key := range []string{"", "../secrets.txt", "raw/../../x.csv"} {
		if _, err := reader.Get(context.Background(), key); err == nil {
			t.Fatalf("Get(%q) expected key validation error", key)
		}
	}
	if bucket.lastKey != "" {
		t.Fatalf("bucket was read with key %q", bucket.lastKey)
	}
}

func TestArchiveReaderKeepsMissingExportMatchable(t *testing.T) {
	reader := newArchiveReader(&memoryBucket{name: "exports"}, "")

	_, err := reader.Stat(context.Background(), "missing.csv")
	if !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Stat() error = %v, want ErrObjectNotFound", err)
	}
	if !strings.Contains(err.Error(), "exports/missing.csv") {
		t.Fatalf("Stat() error = %v, want bucket and key in message", err)
	}
	if _, err := reader.Get(context.Background(), "missing.csv"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Get() error = %v, want ErrObjectNotFound", err)
	}
}

func TestVerifyBucket(t *testing.T) {
	missing := newArchiveReader(&memoryBucket{name: "exports"}, "")
	if err := missing.verifyBucket(context.Background()); !errors.Is(err, ErrArchiveUnavailable) {
		t.Fatalf("verifyBucket() error = %v, want ErrArchiveUnavailable", err)
	}

	failing := newArchiveReader(&memoryBucket{name: "exports", existsErr: errors.New("connection refused")}, "")
	if err := failing.verifyBucket(context.Background()); !errors.Is(err, ErrArchiveUnavailable) {
		t.Fatalf("verifyBucket() error = %v, want ErrArchiveUnavailable", err)
	}

	present := newArchiveReader(&memoryBucket{name: "exports", exists: true}, "")
	if err := present.verifyBucket(context.Background()); err != nil {
		t.Fatalf("verifyBucket() error = %v", err)
	}
}

func TestDialArchiveRequiresBucketAndEndpoint(t *testing.T) {
	for name, cfg := range map[string]ArchiveConfig{
		"no bucket":   {Endpoint: "localhost:9000"},
		"no endpoint": {Bucket: "exports"},
		"bad scheme":  {Endpoint: "ftp://archive.example.com", Bucket: "exports"},
	} {
		if _, err := DialArchive(context.Background(), cfg); !errors.Is(err, ErrArchiveUnavailable) {
			t.Fatalf("%s: DialArchive() error = %v, want ErrArchiveUnavailable", name, err)
		}
	}
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		raw    string
		useSSL bool
		host   string
		secure bool
	}{
		{raw: "https://minio.example.com", host: "minio.example.com", secure: true},
		{raw: "http://localhost:9000", useSSL: true, host: "localhost:9000", secure: true},
		{raw: "localhost:9000", host: "localhost:9000"},
		{raw: " archive.internal:9000 ", useSSL: true, host: "archive.internal:9000", secure: true},
	}
	for _, tc := range tests {
		host, secure, err := splitEndpoint(tc.raw, tc.useSSL)
		if err != nil {
			t.Fatalf("splitEndpoint(%q) error = %v", tc.raw, err)
		}
		if host != tc.host || secure != tc.secure {
			t.Fatalf("splitEndpoint(%q) = %q/%v, want %q/%v", tc.raw, host, secure, tc.host, tc.secure)
		}
	}
	if _, _, err := splitEndpoint("https://", false); err == nil {
		t.Fatal("expected error for endpoint without host")
	}
}

type memoryBucket struct {
	name      string
	objects   map[string]string
	exists    bool
	existsErr error
	lastKey   string
}

func (m *memoryBucket) Name() string { return m.name }

func (m *memoryBucket) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.lastKey = key
	body, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (m *memoryBucket) Describe(_ context.Context, key string) (storage.ObjectInfo, error) {
	m.lastKey = key
	body, ok := m.objects[key]
	if !ok {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return storage.ObjectInfo{Key: key, Size: int64(len(body)), LastModified: time.Now().UTC()}, nil
}

func (m *memoryBucket) Exists(context.Context) (bool, error) {
	return m.exists, m.existsErr
}
