package in

import (
	"context"

	"focusreel/internal/modules/montage/dto"
	palettedomain "focusreel/internal/modules/palette/domain"
)

type Usecase interface {
	Backgrounds(ctx context.Context, record dto.Record, viewport palettedomain.Viewport) dto.BackgroundsOutput
	Scene(ctx context.Context, input dto.ComposeInput) (dto.SceneOutput, error)
	// Compose renders, saves and optionally shares the montage.
	Compose(ctx context.Context, input dto.ComposeInput) (dto.ComposeOutput, error)
}
