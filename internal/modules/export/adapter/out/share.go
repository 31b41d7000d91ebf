package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"focusreel/internal/modules/export/domain"
	apperrors "focusreel/internal/platform/errors"
)

// DirSharer drops files into a share directory such as a synced folder.
// A cancelled context while copying counts as the user backing out.
type DirSharer struct {
	dir string
}

func NewDirSharer(dir string) *DirSharer {
	return &DirSharer{dir: dir}
}

func (s *DirSharer) Share(ctx context.Context, files []domain.File, _, _ string) error {
	if s.dir == "" {
		return apperrors.ErrShareUnavailable
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create share dir: %w", err)
	}
	for _, file := range files {
		if errors.Is(ctx.Err(), context.Canceled) {
			return apperrors.ErrShareAborted
		}
		if err := os.WriteFile(filepath.Join(s.dir, filepath.Base(file.Name)), file.Data, 0o644); err != nil {
			return fmt.Errorf("share %s: %w", file.Name, err)
		}
	}
	return nil
}

type OSExternalLauncher struct{}

func NewOSExternalLauncher() *OSExternalLauncher {
	return &OSExternalLauncher{}
}

func (l *OSExternalLauncher) Open(_ context.Context, target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("external open is not supported on %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open external target: %w", err)
	}
	return nil
}
