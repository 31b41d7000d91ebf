package in

import (
	"context"

	"focusreel/internal/modules/palette/dto"
)

type Usecase interface {
	// Extract builds background options from the representative frame.
	// accepted is false when another extraction was still running.
	Extract(ctx context.Context, input dto.ExtractInput) (out dto.ExtractOutput, accepted bool)
}
