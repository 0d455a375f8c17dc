package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// ObjectRef is the stable locator pair returned by an upload. URL is the
// public address clients fetch the container from; StorageID addresses
// the object for deletion and never leaves the service.
type ObjectRef struct {
	URL       string
	StorageID string
}

// Storage is the blob store gateway. Both operations mutate an external
// system outside this service's transactional boundary and are not
// undoable from here. Neither retries internally; retry policy belongs to
// the caller.
type Storage interface {
	// Upload streams the buffer to the remote store under a derived
	// object key and returns its locator pair.
	Upload(ctx context.Context, reader io.Reader, size int64, suggestedName, contentType string) (*ObjectRef, error)

	// Delete requests removal of a previously uploaded object.
	Delete(ctx context.Context, storageID string) error
}

// Config holds storage configuration
type Config struct {
	Type      string // local, cloudflare_r2
	BasePath  string // For local storage
	BaseURL   string // Public URL base
	Bucket    string // For R2
	AccessKey string // For R2
	SecretKey string // For R2
	Endpoint  string // For R2
}

// NewStorage creates a storage instance based on configuration. The
// returned client is constructed once at process start and injected;
// nothing in the service reaches for a hidden singleton.
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// deriveKey builds the object key: an ingestion-time millisecond stamp
// concatenated with the sanitized file name, so two uploads of the same
// file land under distinct keys.
func deriveKey(suggestedName string) string {
	return fmt.Sprintf("assets/%d-%s", time.Now().UnixMilli(), sanitizeName(suggestedName))
}

// sanitizeName strips path components and replaces anything outside
// [a-zA-Z0-9._-] so the key is safe for both the filesystem and S3.
func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	sanitized := strings.Trim(b.String(), ".")
	if sanitized == "" {
		return "unnamed"
	}
	return sanitized
}
