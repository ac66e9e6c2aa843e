package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

// LocalStore keeps files in one directory
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Resolve returns ErrSourceFileMissing when the file is absent or not a regular file
func (s *LocalStore) Resolve(ctx context.Context, filename string) (*entities.AudioSource, error) {
	if err := checkName(filename); err != nil {
		return nil, err
	}

	location := filepath.Join(s.dir, filename)
	info, err := os.Stat(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", broadcasterrors.ErrSourceFileMissing, filename)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", location, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", broadcasterrors.ErrSourceFileMissing, filename)
	}

	return &entities.AudioSource{
		Filename: filename,
		Location: location,
		Size:     info.Size(),
	}, nil
}

// Open opens a resolved file
func (s *LocalStore) Open(ctx context.Context, source *entities.AudioSource) (io.ReadCloser, error) {
	f, err := os.Open(source.Location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", broadcasterrors.ErrSourceFileMissing, source.Filename)
		}
		return nil, fmt.Errorf("failed to open %s: %w", source.Location, err)
	}
	return f, nil
}

// Save writes to a temporary file and links it into place so readers never see partial files
func (s *LocalStore) Save(ctx context.Context, filename string, data io.Reader, size int64) error {
	if err := checkName(filename); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filename, err)
	}

	if err := os.Link(tmp.Name(), filepath.Join(s.dir, filename)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", broadcasterrors.ErrFileExists, filename)
		}
		return fmt.Errorf("failed to move %s into place: %w", filename, err)
	}
	return nil
}
