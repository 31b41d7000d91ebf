package out

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	"focusreel/internal/platform/imaging"
)

// ImageLoader decodes data URIs and local image files.
type ImageLoader struct{}

func NewImageLoader() *ImageLoader {
	return &ImageLoader{}
}

func (l *ImageLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.HasPrefix(src, "data:") {
		return imaging.DecodeDataURI(src)
	}
	raw, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return imaging.Decode(raw)
}
