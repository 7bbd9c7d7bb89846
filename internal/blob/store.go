// Package blob provides key-addressed binary storage for voice recordings.
//
// Keys are opaque slash-separated paths (e.g. "voiceMessages/<user>/<id>.m4a")
// minted by the service layer; the store never interprets them beyond basic
// traversal hygiene. Two backends are provided: a local filesystem store for
// development and tests, and an S3 store for deployments.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no blob exists under the requested key.
var ErrNotFound = errors.New("blob not found")

// Store is the contract for voice recording storage.
type Store interface {
	// Put persists data under key, overwriting any existing blob.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get retrieves the blob stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the blob under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// VoiceKey mints a storage key for a new voice recording owned by userID.
func VoiceKey(userID string) string {
	return path.Join("voiceMessages", userID, uuid.NewString()+".m4a")
}

// cleanKey normalizes a key and rejects anything that would escape the
// store's namespace.
func cleanKey(key string) (string, error) {
	k := path.Clean(strings.TrimPrefix(key, "/"))
	if k == "." || k == "" || strings.HasPrefix(k, "..") {
		return "", fmt.Errorf("invalid blob key: %q", key)
	}
	return k, nil
}

// FileStore is a filesystem-backed implementation of Store. Keys map to
// nested paths under the base directory.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a filesystem store rooted at baseDir.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure blob dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) keyPath(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(k)), nil
}

// Put writes data to the key's path, creating parent directories as needed.
// The write goes to a temp file first and is committed with a rename.
func (s *FileStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	p, err := s.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to ensure blob dir: %w", err)
	}

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("failed to commit blob: %w", err)
	}
	return nil
}

// Get reads the blob under key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Delete removes the blob under key. A missing blob is ignored.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	p, err := s.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
