package usecase

import (
	"context"

	"focusreel/internal/modules/palette/dto"
	palettein "focusreel/internal/modules/palette/port/in"
	"focusreel/internal/modules/palette/service"
)

type Interactor struct {
	svc *service.Extractor
}

func NewInteractor(svc *service.Extractor) palettein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Extract(ctx context.Context, input dto.ExtractInput) (dto.ExtractOutput, bool) {
	return i.svc.Extract(ctx, input)
}
