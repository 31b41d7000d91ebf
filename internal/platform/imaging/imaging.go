// Package imaging decodes and encodes the raster formats frames travel in.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp"

	"focusreel/internal/platform/dataurl"
)

const jpegQuality = 92

type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

func (f Format) MIME() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpeg"
	}
	return ".png"
}

func ParseFormat(s string) (Format, error) {
	switch s {
	case "png", "image/png":
		return FormatPNG, nil
	case "jpeg", "jpg", "image/jpeg":
		return FormatJPEG, nil
	}
	return "", fmt.Errorf("unsupported image format: %s", s)
}

// Decode reads PNG, JPEG or WebP bytes.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func DecodeDataURI(uri string) (image.Image, error) {
	data, _, err := dataurl.Decode(uri)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func Encode(img image.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
