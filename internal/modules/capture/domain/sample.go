package domain

import (
	"context"
	"fmt"
	"time"
)

// Sample is one capture tick. Screenshot is empty in webcam-only sessions.
type Sample struct {
	Index       int
	Offset      time.Duration
	Screenshot  string
	WebcamPhoto string
}

type Source string

const (
	SourceWebcam Source = "webcam"
	SourceScreen Source = "screen"
)

func (s Source) Validate() error {
	switch s {
	case SourceWebcam, SourceScreen:
		return nil
	default:
		return fmt.Errorf("unknown capture source: %s", s)
	}
}

// Session is an opened capture stream. Whoever opened it owns it and must
// Close it; Capture grabs a single frame as a raster data URI.
type Session interface {
	Source() Source
	Capture(ctx context.Context) (string, error)
	Close() error
}
