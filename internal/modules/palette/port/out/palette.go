package out

import (
	"context"
	"image"

	"focusreel/internal/modules/palette/domain"
)

type CandidateSampler interface {
	Candidates(ctx context.Context, img image.Image) ([]domain.Candidate, error)
}
