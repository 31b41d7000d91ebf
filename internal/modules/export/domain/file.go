package domain

import (
	"fmt"
	"image"

	"focusreel/internal/platform/imaging"
	"focusreel/internal/platform/slug"
)

const filePrefix = "focusreel"

// File is an exported montage ready to save or share.
type File struct {
	Name string
	MIME string
	Data []byte
}

func FileName(task string, minutes int, format imaging.Format) string {
	return fmt.Sprintf("%s-%s-%dmin%s", filePrefix, slug.Make(task), minutes, format.Ext())
}

type Options struct {
	PixelRatio      float64
	BackgroundColor string
	Format          imaging.Format
	TaskName        string
	DurationMinutes int
}

// RasterOptions is what a rasterizer receives for one export. Background
// is empty when the canvas stays transparent. Images holds every decoded
// image source; a source missing from it renders blank.
type RasterOptions struct {
	PixelRatio float64
	Background string
	Format     imaging.Format
	Width      float64
	Height     float64
	Filter     func(*Node) bool
	Images     map[string]image.Image
}

type Result struct {
	Blob []byte
	File File
}
