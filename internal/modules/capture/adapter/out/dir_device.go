package out

import (
	"context"
	"fmt"
	"os"
	"sync"

	"focusreel/internal/modules/capture/domain"
	"focusreel/internal/platform/dataurl"
	"focusreel/internal/platform/imaging"
)

// DirDevice replays the image files of a directory in name order, wrapping
// around at the end.
type DirDevice struct {
	dir string
}

func NewDirDevice(dir string) *DirDevice {
	return &DirDevice{dir: dir}
}

func (d *DirDevice) Open(_ context.Context, source domain.Source) (domain.Session, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	frames, err := imaging.Frames(d.dir)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames in %s", domain.ErrNoDevice, d.dir)
	}
	return &dirSession{source: source, frames: frames}, nil
}

type dirSession struct {
	source domain.Source
	mu     sync.Mutex
	frames []string
	next   int
	closed bool
}

func (s *dirSession) Source() domain.Source {
	return s.source
}

func (s *dirSession) Capture(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", fmt.Errorf("%s session closed", s.source)
	}
	path := s.frames[s.next%len(s.frames)]
	s.next++
	s.mu.Unlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read frame: %w", err)
	}
	return dataurl.Encode(raw, ""), nil
}

func (s *dirSession) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
