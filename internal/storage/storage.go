// Package storage writes uploaded media to local disk or S3 and returns the
// public URL of each stored object.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"puppytalk/internal/config"
)

// Storage persists media objects under slash-separated keys such as
// "post/3f2a....png".
type Storage interface {
	// Put stores body under key and returns the URL clients fetch it from.
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	// Delete removes the object. A missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// New returns the backend selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return NewS3Storage(ctx, S3Options{
			Bucket:        cfg.S3BucketName,
			Region:        cfg.AWSRegion,
			AccessKeyID:   cfg.AWSAccessKeyID,
			SecretKey:     cfg.AWSSecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	case "", config.StorageLocal:
		return NewLocalStorage(cfg.UploadDir, cfg.BEAPIURL), nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

// LocalStorage writes objects below Dir. They are served from
// {BaseURL}/upload/{key}.
type LocalStorage struct {
	Dir     string
	BaseURL string
}

// NewLocalStorage returns a LocalStorage rooted at dir.
func NewLocalStorage(dir, baseURL string) *LocalStorage {
	return &LocalStorage{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

var errBadKey = errors.New("storage: invalid object key")

func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, "..") {
		return "", errBadKey
	}
	return filepath.Join(s.Dir, clean), nil
}

func (s *LocalStorage) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	dest, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.BaseURL + "/upload/" + key, nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	dest, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
