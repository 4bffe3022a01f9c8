package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mealbook/entity"
	"mealbook/internal/config"
	"mealbook/lib/sl"
)

const (
	uploadPrefix = "uploads/"
	// uploadTTL is short to limit exposure of the presigned PUT.
	uploadTTL = 5 * time.Minute
	viewTTL   = time.Hour
)

// ObjectStorage issues presigned URLs against an S3-compatible bucket.
// The service never proxies image bytes; clients talk to the bucket
// directly with the URLs issued here.
type ObjectStorage struct {
	client *minio.Client
	bucket string
	log    *slog.Logger
}

func NewObjectStorage(conf *config.Config, log *slog.Logger) (*ObjectStorage, error) {
	if !conf.Storage.Enabled {
		return nil, nil
	}
	client, err := minio.New(conf.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.Storage.AccessKey, conf.Storage.SecretKey, ""),
		Secure: conf.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &ObjectStorage{
		client: client,
		bucket: conf.Storage.Bucket,
		log:    log.With(sl.Module("storage")),
	}, nil
}

// IssueUpload generates a fresh object key (original extension kept) and
// returns a presigned PUT URL for it plus a presigned GET for readback.
func (s *ObjectStorage) IssueUpload(ctx context.Context, filename string) (*entity.UploadTicket, error) {
	ext := path.Ext(filename)
	key := uploadPrefix + strings.ReplaceAll(uuid.New().String(), "-", "") + ext

	putUrl, err := s.client.PresignedPutObject(ctx, s.bucket, key, uploadTTL)
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}
	getUrl, err := s.client.PresignedGetObject(ctx, s.bucket, key, uploadTTL, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}

	s.log.With(slog.String("key", key)).Debug("upload ticket issued")
	return &entity.UploadTicket{
		UploadUrl: putUrl.String(),
		Key:       key,
		Url:       getUrl.String(),
	}, nil
}

// ViewUrl returns a presigned GET URL for an existing object key.
func (s *ObjectStorage) ViewUrl(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, viewTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return u.String(), nil
}
