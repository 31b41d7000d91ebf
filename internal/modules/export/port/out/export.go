package out

import (
	"context"
	"image"

	"focusreel/internal/modules/export/domain"
)

// Rasterizer turns a scene tree into encoded image bytes. ToDataURI is the
// alternate encoding path used when ToBlob comes back empty.
type Rasterizer interface {
	ToBlob(ctx context.Context, root *domain.Node, opts domain.RasterOptions) ([]byte, error)
	ToDataURI(ctx context.Context, root *domain.Node, opts domain.RasterOptions) (string, error)
}

type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

type FileStore interface {
	Save(ctx context.Context, file domain.File) (string, error)
}

// Sharer hands files to a share target. apperrors.ErrShareAborted means
// the user backed out.
type Sharer interface {
	Share(ctx context.Context, files []domain.File, title, text string) error
}

type Opener interface {
	Open(ctx context.Context, target string) error
}
