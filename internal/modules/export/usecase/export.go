package usecase

import (
	"context"
	"fmt"

	"focusreel/internal/modules/export/domain"
	"focusreel/internal/modules/export/dto"
	exportin "focusreel/internal/modules/export/port/in"
	exportout "focusreel/internal/modules/export/port/out"
	"focusreel/internal/modules/export/service"
	"focusreel/internal/platform/imaging"
)

type Interactor struct {
	exporter  *service.Exporter
	deliverer *service.Deliverer
	store     exportout.FileStore
}

func NewInteractor(exporter *service.Exporter, deliverer *service.Deliverer, store exportout.FileStore) exportin.Usecase {
	return &Interactor{exporter: exporter, deliverer: deliverer, store: store}
}

func (i *Interactor) Export(ctx context.Context, root *domain.Node, opts domain.Options) (domain.Result, error) {
	return i.exporter.Export(ctx, root, opts)
}

func (i *Interactor) Convert(blob []byte, format imaging.Format, background string) ([]byte, error) {
	return i.exporter.Convert(blob, format, background)
}

func (i *Interactor) Save(ctx context.Context, file domain.File) (string, error) {
	if i.store == nil {
		return "", fmt.Errorf("export file store is not configured")
	}
	return i.store.Save(ctx, file)
}

func (i *Interactor) Share(ctx context.Context, input dto.ShareInput) (dto.ShareOutput, error) {
	return i.deliverer.Share(ctx, input)
}
