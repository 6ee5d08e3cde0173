// Package storage keeps uploaded bytes outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/cppla/boardcore/config"
)

// ErrForeignURL is returned by Delete for URLs the store did not produce.
var ErrForeignURL = errors.New("url does not belong to this store")

// BlobStore persists opaque blobs and hands back their public URL.
type BlobStore interface {
	Store(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// New builds the blob store selected by cfg.UploadDriver.
func New(cfg config.AppConfig) (BlobStore, error) {
	switch cfg.UploadDriver {
	case "local", "":
		return NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL+"/static/uploads"), nil
	case "s3":
		return NewS3Store(cfg.S3Region, cfg.S3Bucket, cfg.S3PublicBaseURL)
	default:
		return nil, fmt.Errorf("unsupported upload driver %q", cfg.UploadDriver)
	}
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && path.Base(name) == name
}
