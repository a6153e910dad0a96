// Package storage persists scan artifacts. The default backend is a flat local directory;
// an S3-compatible bucket can be used instead.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"scanreceiver/internal/config"
)

// ErrInvalidKey is returned for keys that are empty or could escape the storage root.
var ErrInvalidKey = errors.New("invalid object key")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a write-once artifact store. Implementations must be safe for concurrent use.
type Storage interface {
	// Put stores the content of r under key. A reader is either fully stored or not at all;
	// an existing object with the same key is replaced.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
}

// New returns the Storage selected by cfg.Driver. An empty driver means local.
func New(cfg config.StorageConfig) (Storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", config.StorageDriverLocal:
		return NewLocal(cfg.UploadDir)
	case config.StorageDriverMinIO:
		return NewMinIO(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ValidateKey rejects keys that are not a single plain path component.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`+"\x00") {
		return ErrInvalidKey
	}
	return nil
}

// ctxReader fails reads once ctx is done so a cancelled request stops copying.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
