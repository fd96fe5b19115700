// Package media stores uploaded complaint images on the local filesystem.
package media

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DiskStore writes files under a configured directory.
type DiskStore struct {
	Dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &DiskStore{Dir: dir}, nil
}

// Store writes the image under a random name, keeping the original
// extension, and returns the stored path.
func (d *DiskStore) Store(filename string, data []byte) (string, error) {
	name := uuid.New().String() + filepath.Ext(filename)
	path := filepath.Join(d.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return path, nil
}

// Delete removes a stored image. A missing file is not an error; the
// rollback path may run after a partial write.
func (d *DiskStore) Delete(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
