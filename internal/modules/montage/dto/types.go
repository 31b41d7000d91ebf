package dto

import (
	exportdomain "focusreel/internal/modules/export/domain"
	exportdto "focusreel/internal/modules/export/dto"
	"focusreel/internal/modules/montage/domain"
	palettedomain "focusreel/internal/modules/palette/domain"
	"focusreel/internal/platform/imaging"
)

// Record is the completed session as handed to the montage.
type Record struct {
	ID              string
	TaskName        string
	DurationMinutes int
	Screenshots     []string
	WebcamPhotos    []string
}

type BackgroundsOutput struct {
	Options          []palettedomain.BackgroundOption
	HasDynamicColors bool
}

type ComposeInput struct {
	Record   Record
	Layout   domain.Layout
	Viewport palettedomain.Viewport
	// BackgroundID selects an option; empty or unknown ids use the first.
	BackgroundID string
	Format       imaging.Format
	PixelRatio   float64
	Share        bool
}

type SceneOutput struct {
	Root        *exportdomain.Node
	Background  palettedomain.BackgroundOption
	Backgrounds BackgroundsOutput
}

type ComposeOutput struct {
	Path        string
	File        exportdomain.File
	Background  palettedomain.BackgroundOption
	Backgrounds BackgroundsOutput
	Share       exportdto.ShareOutput
}
