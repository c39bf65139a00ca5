// Package uploads stores analyzed images on disk under generated names so the
// result page can display them. Files are transient; the janitor removes old
// ones.
package uploads

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Allowed reports whether the original filename has a supported image
// extension.
func Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Store writes and serves uploaded images from a single directory.
type Store struct {
	dir string
}

// New creates the upload directory if needed and returns a store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save persists the image under a generated name and returns that name. The
// original filename contributes only its extension.
func (s *Store) Save(originalName string, data []byte) (string, error) {
	if !Allowed(originalName) {
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(originalName))
	}
	name := uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return name, nil
}

// Path resolves a stored name to its on-disk path. Names containing path
// separators are rejected so the store can never serve outside its directory.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid upload name %q", name)
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// PurgeOlderThan removes uploads older than maxAge and returns how many files
// were deleted.
func (s *Store) PurgeOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	purged := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
				purged++
			}
		}
	}
	return purged, nil
}
