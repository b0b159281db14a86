package photo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Store writes processed photo bytes and returns the public reference under
// which they are served.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// DiskStore writes photos under a local content root served at /photos.
type DiskStore struct {
	Root string
}

// NewDiskStore creates the content root if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create photo root: %w", err)
	}
	return &DiskStore{Root: root}, nil
}

// Save writes the file and returns its /photos path.
func (s *DiskStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := os.WriteFile(filepath.Join(s.Root, name), data, 0o644); err != nil {
		return "", err
	}
	return "/photos/" + name, nil
}
