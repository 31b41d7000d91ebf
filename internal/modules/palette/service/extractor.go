package service

import (
	"context"
	"fmt"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"focusreel/internal/modules/palette/domain"
	"focusreel/internal/modules/palette/dto"
	paletteout "focusreel/internal/modules/palette/port/out"
	"focusreel/internal/platform/imaging"
	"focusreel/internal/platform/logging"
)

type Status int

const (
	Idle Status = iota
	InFlight
)

// Extractor turns a frame into background options. One extraction runs at
// a time; requests that arrive meanwhile are dropped, not queued.
type Extractor struct {
	sampler paletteout.CandidateSampler
	logger  hclog.Logger

	mu     sync.Mutex
	status Status
}

func NewExtractor(sampler paletteout.CandidateSampler, logger hclog.Logger) *Extractor {
	return &Extractor{sampler: sampler, logger: logging.OrDiscard(logger).Named("palette")}
}

func (e *Extractor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Extractor) Extract(ctx context.Context, input dto.ExtractInput) (dto.ExtractOutput, bool) {
	if !e.acquire() {
		e.logger.Debug("palette extraction already in flight, request dropped")
		return dto.ExtractOutput{}, false
	}
	defer e.release()

	viewport := input.Viewport
	if viewport == "" {
		viewport = domain.ViewportWide
	}
	palette, err := e.palette(ctx, input)
	if err != nil {
		e.logger.Warn("palette extraction failed, using white background", "error", err)
		return fallback(), true
	}
	if len(palette) == 0 {
		e.logger.Debug("palette extraction found no swatches")
		return fallback(), true
	}
	return dto.ExtractOutput{
		Options:          domain.BuildOptions(palette, viewport),
		Palette:          palette,
		HasDynamicColors: true,
	}, true
}

func (e *Extractor) palette(ctx context.Context, input dto.ExtractInput) (domain.Palette, error) {
	uri, ok := domain.Representative(input.Screenshots, input.WebcamPhotos)
	if !ok {
		return nil, fmt.Errorf("no frame to sample")
	}
	img, err := imaging.DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	candidates, err := e.sampler.Candidates(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("sample colors: %w", err)
	}
	return domain.Classify(candidates), nil
}

func (e *Extractor) acquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == InFlight {
		return false
	}
	e.status = InFlight
	return true
}

func (e *Extractor) release() {
	e.mu.Lock()
	e.status = Idle
	e.mu.Unlock()
}

func fallback() dto.ExtractOutput {
	return dto.ExtractOutput{
		Options:          []domain.BackgroundOption{domain.White()},
		Palette:          domain.Palette{},
		HasDynamicColors: false,
	}
}
