package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"focusreel/internal/modules/export/domain"
)

// DirFileStore writes exports into a directory, creating it on demand.
type DirFileStore struct {
	dir string
}

func NewDirFileStore(dir string) *DirFileStore {
	return &DirFileStore{dir: dir}
}

func (s *DirFileStore) Save(_ context.Context, file domain.File) (string, error) {
	if file.Name == "" || filepath.Base(file.Name) != file.Name {
		return "", fmt.Errorf("invalid export file name: %q", file.Name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.dir, file.Name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, file.Data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("commit export: %w", err)
	}
	return path, nil
}
