package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"portfolio_gallery/internal/storage"
)

// LocalFileStorage keeps objects as plain files under baseDir.
type LocalFileStorage struct {
	baseDir string // base directory for objects, e.g. "./uploads"
	baseURL string // public URL prefix that serves baseDir, e.g. "http://localhost:8080/uploads"
}

var _ storage.ObjectStore = (*LocalFileStorage)(nil)

func NewLocalFileStorage(baseDir, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Put writes body to a new file named key. Existing files are never replaced.
func (s *LocalFileStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	const op = "storage.filestorage.Put"

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := validKey(key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	filePath := s.GetFullPath(key)

	dst, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", op, storage.ErrObjectExists)
		}
		return fmt.Errorf("%s: failed to create destination file: %w", op, err)
	}

	done := make(chan struct{})
	var copyErr error

	go func() {
		_, copyErr = io.Copy(dst, body)
		close(done)
	}()

	select {
	case <-done:
		closeErr := dst.Close()
		if copyErr == nil {
			copyErr = closeErr
		}
		if copyErr != nil {
			_ = os.Remove(filePath)
			return fmt.Errorf("%s: failed to copy file: %w", op, copyErr)
		}
	case <-ctx.Done():
		// unblock the copy and wait for it before the file goes away
		_ = dst.Close()
		if closer, ok := body.(io.Closer); ok {
			_ = closer.Close()
		}
		<-done
		_ = os.Remove(filePath)
		return ctx.Err()
	}

	return nil
}

// Remove deletes the file stored under key.
func (s *LocalFileStorage) Remove(ctx context.Context, key string) error {
	const op = "storage.filestorage.Remove"

	if err := validKey(key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Remove(s.GetFullPath(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", op, storage.ErrObjectNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *LocalFileStorage) PublicURL(key string) string {
	return s.baseURL + "/" + url.PathEscape(key)
}

func (s *LocalFileStorage) ListKeys(ctx context.Context) ([]storage.ObjectInfo, error) {
	const op = "storage.filestorage.ListKeys"

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	objects := make([]storage.ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		objects = append(objects, storage.ObjectInfo{
			Key:          entry.Name(),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
	}

	return objects, nil
}

// GetFullPath returns the path of key on disk.
func (s *LocalFileStorage) GetFullPath(key string) string {
	return filepath.Join(s.baseDir, key)
}

func (s *LocalFileStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}

func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}
