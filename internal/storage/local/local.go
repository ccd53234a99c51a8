// Package local stores blobs on the local filesystem under a base
// directory. Writes go through a temp file and rename so a failed upload
// never leaves a partial blob at the final path.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filemanager/internal/domain"
	"filemanager/internal/storage"
)

type Backend struct {
	baseDir   string
	urlPrefix string
}

func New(baseDir, urlPrefix string) *Backend {
	return &Backend{baseDir: baseDir, urlPrefix: urlPrefix}
}

func (b *Backend) fullPath(path string) string {
	return filepath.Join(b.baseDir, filepath.Clean("/"+path))
}

func (b *Backend) Save(ctx context.Context, path string, r io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	target := b.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("ensure dir: %w", err)
	}

	tmp := target + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename temp file: %w", err)
	}

	return b.URL(path), nil
}

func (b *Backend) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(b.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (b *Backend) Delete(ctx context.Context, path string) error {
	err := os.Remove(b.fullPath(path))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (b *Backend) Copy(ctx context.Context, src, dst string) error {
	in, err := b.Open(ctx, src)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = b.Save(ctx, dst, in)
	return err
}

func (b *Backend) Move(ctx context.Context, src, dst string) error {
	if err := b.Copy(ctx, src, dst); err != nil {
		return err
	}
	return b.Delete(ctx, src)
}

func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(b.fullPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (b *Backend) Size(ctx context.Context, path string) (int64, error) {
	info, err := os.Stat(b.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, storage.ErrNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

func (b *Backend) URL(path string) string {
	return strings.TrimSuffix(b.urlPrefix, "/") + "/" + strings.TrimPrefix(path, "/")
}

func (b *Backend) Type() domain.StorageType { return domain.StorageLocal }
