package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStore persists uploaded binaries on disk under a base directory and
// issues public URLs for them. It mirrors the contract of a hosted object
// store: exclusive (no-overwrite) writes, public URL issuance and a
// best-effort remove.
type ObjectStore struct {
	baseDir       string
	publicBaseURL string
}

// NewObjectStore ensures the base directory exists and returns a handle.
func NewObjectStore(baseDir, publicBaseURL string) (*ObjectStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &ObjectStore{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// SaveStream copies from reader into the target path. The write is exclusive:
// an existing file at the same path is an error, never silently overwritten.
func (s *ObjectStore) SaveStream(path string, r io.Reader) (string, error) {
	full := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("object already exists at %s", path)
		}
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return path, nil
}

// Open returns a read-only handle for the stored file.
func (s *ObjectStore) Open(path string) (*os.File, error) {
	file, err := os.Open(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return file, nil
}

// Remove deletes a stored file if present. Missing files are not an error so
// the call stays safe to use as a compensating action.
func (s *ObjectStore) Remove(path string) error {
	if err := os.Remove(s.resolve(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file: %w", err)
	}
	return nil
}

// PublicURL returns the externally reachable URL for a stored path.
func (s *ObjectStore) PublicURL(path string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(filepath.ToSlash(path), "/")
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *ObjectStore) Path(path string) string {
	return s.resolve(path)
}

func (s *ObjectStore) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.baseDir, path)
}
