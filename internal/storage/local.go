package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	partialPrefix = ".partial-"
)

// localStorage keeps artifacts as plain files in one flat directory.
// The directory listing is the only catalog.
type localStorage struct {
	dir string
}

// NewLocal returns a Storage rooted at dir, creating the directory if it is missing.
func NewLocal(dir string) (Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &localStorage{dir: dir}, nil
}

// Put writes r to a temporary file in the target directory and renames it into place,
// so a failed or interrupted write never leaves a truncated artifact under key.
func (s *localStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if err := ValidateKey(key); err != nil {
		return ObjectInfo{}, fmt.Errorf("%w: %q", err, key)
	}
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}

	tmp, err := os.CreateTemp(s.dir, partialPrefix+"*")
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create %s: %w", key, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, ctxReader{ctx: ctx, r: r})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return ObjectInfo{}, fmt.Errorf("chmod %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		return ObjectInfo{}, fmt.Errorf("sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		_ = os.Remove(tmp.Name())
		committed = true
		return ObjectInfo{}, fmt.Errorf("commit %s: %w", key, err)
	}
	committed = true

	return ObjectInfo{
		Key:          key,
		Size:         n,
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}
