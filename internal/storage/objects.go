package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"hackhub/internal/config"
	"hackhub/internal/logging"
)

// ObjectStore backs the event photo galleries.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

type MinioObjectStore struct {
	Client    *minio.Client
	Bucket    string
	PublicURL string
}

func NewMinioObjectStore(cfg config.MinioConfig) (*MinioObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseTLS,
	})
	if err != nil {
		logging.Log.Errorf("minio client error: %v", err)
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioObjectStore{
		Client:    client,
		Bucket:    cfg.Bucket,
		PublicURL: cfg.PublicURL,
	}, nil
}

// Put uploads the object and returns the public URL the web client embeds.
func (s *MinioObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.Client.PutObject(ctx, s.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logging.Log.Errorf("OBJECT: upload %q failed: %v", key, err)
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", s.PublicURL, s.Bucket, key), nil
}

func (s *MinioObjectStore) Remove(ctx context.Context, key string) error {
	return s.Client.RemoveObject(ctx, s.Bucket, key, minio.RemoveObjectOptions{})
}
