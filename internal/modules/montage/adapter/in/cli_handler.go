package in

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"focusreel/internal/modules/montage/dto"
	montagein "focusreel/internal/modules/montage/port/in"
	"focusreel/internal/platform/dataurl"
	"focusreel/internal/platform/imaging"
)

type CLIHandler struct {
	usecase montagein.Usecase
}

func NewCLIHandler(usecase montagein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Compose(ctx context.Context, input dto.ComposeInput) (dto.ComposeOutput, error) {
	return h.usecase.Compose(ctx, input)
}

// LoadFrames reads the images of dir in name order as data URIs. An empty
// dir path yields no frames.
func LoadFrames(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	paths, err := imaging.Frames(dir)
	if err != nil {
		return nil, err
	}
	frames := make([]string, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read frame %s: %w", filepath.Base(path), err)
		}
		frames = append(frames, dataurl.Encode(raw, ""))
	}
	return frames, nil
}
