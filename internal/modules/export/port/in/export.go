package in

import (
	"context"

	"focusreel/internal/modules/export/domain"
	"focusreel/internal/modules/export/dto"
	"focusreel/internal/platform/imaging"
)

type Usecase interface {
	Export(ctx context.Context, root *domain.Node, opts domain.Options) (domain.Result, error)
	Convert(blob []byte, format imaging.Format, background string) ([]byte, error)
	Save(ctx context.Context, file domain.File) (string, error)
	Share(ctx context.Context, input dto.ShareInput) (dto.ShareOutput, error)
}
