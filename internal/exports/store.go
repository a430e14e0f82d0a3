package exports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/guideline-analyzer/backend/pkg/config"
)

const (
	DriverFS     = "fs"
	DriverS3     = "s3"
	DriverMemory = "memory"
)

var (
	ErrNotFound    = errors.New("export not found")
	ErrInvalidKey  = errors.New("invalid export key")
	ErrUnsupported = errors.New("operation not supported by export driver")
)

// Object describes one stored export.
type Object struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// Store is a flat key/value blob store for generated CSV files. Put
// overwrites.
type Store interface {
	Driver() string
	Put(ctx context.Context, key string, body []byte, contentType string) (Object, error)
	Get(ctx context.Context, key string) (Object, io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Object, error)
}

// Presigner is implemented by stores that can hand out time-limited URLs.
type Presigner interface {
	PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Open builds the store named by cfg.Driver. downloadDir is the root for the
// fs driver.
func Open(ctx context.Context, cfg config.ExportsConfig, downloadDir string) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverFS:
		return NewFSStore(downloadDir)
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverS3:
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown export driver %q", cfg.Driver)
	}
}

// cleanKey rejects empty, absolute and parent-relative keys and returns the
// slash-separated canonical form.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", ErrInvalidKey
		}
	}
	cleaned := path.Clean(key)
	if cleaned == "." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
