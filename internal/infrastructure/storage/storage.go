// Package storage keeps broadcast audio files on local disk or in S3 compatible object storage
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

// Backends
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Store resolves, streams and saves audio files by name
type Store interface {
	Resolve(ctx context.Context, filename string) (*entities.AudioSource, error)
	Open(ctx context.Context, source *entities.AudioSource) (io.ReadCloser, error)
	// Save writes data under filename; size may be -1 when unknown.
	// An existing file is never replaced, Save returns ErrFileExists instead.
	Save(ctx context.Context, filename string, data io.Reader, size int64) error
}

// checkName rejects empty names and names that escape the storage root; both count as a missing file
func checkName(filename string) error {
	if filename == "" {
		return broadcasterrors.ErrSourceFileMissing
	}
	if filename != filepath.Base(filename) || strings.ContainsAny(filename, `/\`) || filename == "." || filename == ".." {
		return fmt.Errorf("%w: %w %q", broadcasterrors.ErrSourceFileMissing, broadcasterrors.ErrInvalidFilename, filename)
	}
	return nil
}
