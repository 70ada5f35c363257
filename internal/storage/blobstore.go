package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/helpdesk-br/chamados-service/internal/config"
)

// BlobStore persists attachment binaries under opaque keys.
type BlobStore interface {
	Save(key string, r io.Reader) (int64, error)
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
}

// NewKey derives an opaque storage key for a ticket attachment, keeping the
// original extension so downloads get a sensible content type.
func NewKey(ticketID int64, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%d/%s/%s%s", ticketID, time.Now().UTC().Format("20060102"), uuid.NewString(), ext)
}

type diskStore struct {
	baseDir string
}

// NewDiskStore stores blobs on the local filesystem under the configured base
// directory.
func NewDiskStore(cfg config.StorageConfig) (BlobStore, error) {
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &diskStore{baseDir: cfg.BaseDir}, nil
}

func (s *diskStore) path(key string) (string, error) {
	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

func (s *diskStore) Save(key string, r io.Reader) (int64, error) {
	path, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return written, nil
}

func (s *diskStore) Open(key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *diskStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
