package imaging

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

const framePattern = "*.{png,PNG,jpg,JPG,jpeg,JPEG,webp,WEBP}"

// Frames lists the image files directly inside dir, in name order.
func Frames(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("frames dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("frames dir: %s is not a directory", dir)
	}
	names, err := doublestar.Glob(os.DirFS(dir), framePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("list frames in %s: %w", dir, err)
	}
	slices.Sort(names)
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}
