package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DiskStore is a filesystem-backed attachment store. Objects are laid out as
// <root>/<channel id>/<filename>.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create object store root: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// UploadFile stores an attachment blob under its channel's directory.
func (s *DiskStore) UploadFile(ctx context.Context, channelID, filename string, data []byte) error {
	dir := filepath.Join(s.root, filepath.Base(channelID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create channel dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}
