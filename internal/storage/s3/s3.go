// Package s3 stores blobs in any S3-compatible service (MinIO, AWS)
// through the minio client.
package s3

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"filemanager/internal/domain"
	"filemanager/internal/storage"
)

type Config struct {
	Endpoint  string // host:port, no scheme
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type Backend struct {
	client *minio.Client
	bucket string
}

// New connects to the endpoint and creates the bucket when it does not
// exist yet.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &Backend{client: client, bucket: cfg.Bucket}, nil
}

func key(p string) string { return path.Clean("/" + p)[1:] }

func (b *Backend) Save(ctx context.Context, p string, r io.Reader) (string, error) {
	_, err := b.client.PutObject(ctx, b.bucket, key(p), r, -1, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return b.URL(p), nil
}

func (b *Backend) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, key(p), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}

	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	return obj, nil
}

func (b *Backend) Delete(ctx context.Context, p string) error {
	return b.client.RemoveObject(ctx, b.bucket, key(p), minio.RemoveObjectOptions{})
}

func (b *Backend) Copy(ctx context.Context, src, dst string) error {
	_, err := b.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: b.bucket, Object: key(dst)},
		minio.CopySrcOptions{Bucket: b.bucket, Object: key(src)},
	)
	return err
}

func (b *Backend) Move(ctx context.Context, src, dst string) error {
	if err := b.Copy(ctx, src, dst); err != nil {
		return err
	}
	return b.Delete(ctx, src)
}

func (b *Backend) Exists(ctx context.Context, p string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.bucket, key(p), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *Backend) Size(ctx context.Context, p string) (int64, error) {
	info, err := b.client.StatObject(ctx, b.bucket, key(p), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return 0, storage.ErrNotFound
		}
		return 0, err
	}
	return info.Size, nil
}

func (b *Backend) URL(p string) string {
	return fmt.Sprintf("s3://%s/%s", b.bucket, key(p))
}

func (b *Backend) Type() domain.StorageType { return domain.StorageS3 }
