package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/RaShaimardanov/franky/config"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

// S3Store keeps files as objects in one bucket
type S3Store struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger
}

// NewS3Store creates a new MinIO backed store
func NewS3Store(cfg *config.StorageConfig, logger zerolog.Logger) (*S3Store, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &S3Store{
		client: client,
		bucket: cfg.S3Bucket,
		logger: logger,
	}, nil
}

// EnsureBucket creates bucket if it doesn't exist
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	s.logger.Info().Str("bucket", s.bucket).Msg("Created S3 bucket")
	return nil
}

// Resolve stats the object; a missing key is ErrSourceFileMissing
func (s *S3Store) Resolve(ctx context.Context, filename string) (*entities.AudioSource, error) {
	if err := checkName(filename); err != nil {
		return nil, err
	}

	info, err := s.client.StatObject(ctx, s.bucket, filename, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", broadcasterrors.ErrSourceFileMissing, filename)
		}
		return nil, fmt.Errorf("failed to stat object %s: %w", filename, err)
	}

	return &entities.AudioSource{
		Filename: filename,
		Location: fmt.Sprintf("s3://%s/%s", s.bucket, filename),
		Size:     info.Size,
	}, nil
}

// Open streams the object
func (s *S3Store) Open(ctx context.Context, source *entities.AudioSource) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, source.Filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", source.Filename, err)
	}
	return obj, nil
}

// Save uploads data as an object unless the key is taken
func (s *S3Store) Save(ctx context.Context, filename string, data io.Reader, size int64) error {
	if err := checkName(filename); err != nil {
		return err
	}

	if _, err := s.client.StatObject(ctx, s.bucket, filename, minio.StatObjectOptions{}); err == nil {
		return fmt.Errorf("%w: %s", broadcasterrors.ErrFileExists, filename)
	} else if !isNoSuchKey(err) {
		return fmt.Errorf("failed to stat object %s: %w", filename, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	if _, err := s.client.PutObject(ctx, s.bucket, filename, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", filename, err)
	}

	s.logger.Debug().Str("object_key", filename).Msg("Uploaded audio to S3")
	return nil
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
