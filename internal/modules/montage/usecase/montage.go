package usecase

import (
	"context"

	"focusreel/internal/modules/montage/dto"
	montagein "focusreel/internal/modules/montage/port/in"
	"focusreel/internal/modules/montage/service"
	palettedomain "focusreel/internal/modules/palette/domain"
)

type Interactor struct {
	svc *service.Composer
}

func NewInteractor(svc *service.Composer) montagein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Backgrounds(ctx context.Context, record dto.Record, viewport palettedomain.Viewport) dto.BackgroundsOutput {
	return i.svc.Backgrounds(ctx, record, viewport)
}

func (i *Interactor) Scene(ctx context.Context, input dto.ComposeInput) (dto.SceneOutput, error) {
	return i.svc.Scene(ctx, input)
}

func (i *Interactor) Compose(ctx context.Context, input dto.ComposeInput) (dto.ComposeOutput, error) {
	return i.svc.Compose(ctx, input)
}
