package storage

import (
	"fmt"
	"path"
	"strings"
)

const objectScheme = "s3://"

// IsObjectURI reports whether source names an object rather than a local file.
func IsObjectURI(source string) bool {
	return strings.HasPrefix(strings.TrimSpace(source), objectScheme)
}

// ObjectKey extracts the key from an s3://<key> source. The bucket is taken
// from configuration, so everything after the scheme is the key.
func ObjectKey(source string) (string, error) {
	trimmed := strings.TrimSpace(source)
	if !strings.HasPrefix(trimmed, objectScheme) {
		return "", fmt.Errorf("not an object uri: %q", source)
	}
	key := strings.TrimPrefix(trimmed, objectScheme)
	if strings.TrimSpace(strings.TrimPrefix(key, "/")) == "" {
		return "", fmt.Errorf("object uri %q has no key", source)
	}
	return CleanKey(key)
}

// CleanKey normalises an object key and rejects keys that escape the bucket
// root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.TrimPrefix(key, "/"))
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return cleaned, nil
}
