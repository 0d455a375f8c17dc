package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"modelhub_backend/pkg/apperrors"
)

// LocalStorage implements the gateway on the local filesystem. Used in
// development and tests; the object key doubles as the relative path.
type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(cfg Config) (*LocalStorage, error) {
	if cfg.BasePath == "" {
		cfg.BasePath = "./uploads"
	}

	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: cfg.BasePath,
		baseURL:  cfg.BaseURL,
	}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, reader io.Reader, size int64, suggestedName, contentType string) (*ObjectRef, error) {
	key := deriveKey(suggestedName)
	fullPath := filepath.Join(s.basePath, key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, apperrors.ErrStorageUnavailable(err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable(err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return nil, apperrors.ErrStorageUnavailable(err)
	}

	return &ObjectRef{
		URL:       s.urlFor(key),
		StorageID: key,
	}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, storageID string) error {
	fullPath := filepath.Join(s.basePath, storageID)

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return apperrors.ErrStorageNotFound(err)
		}
		return apperrors.ErrStorageUnavailable(err)
	}

	return nil
}

func (s *LocalStorage) urlFor(key string) string {
	if s.baseURL == "" {
		return fmt.Sprintf("/files/%s", key)
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key)
}
