package dto

import "focusreel/internal/modules/palette/domain"

type ExtractInput struct {
	Screenshots  []string
	WebcamPhotos []string
	Viewport     domain.Viewport
}

type ExtractOutput struct {
	Options          []domain.BackgroundOption
	Palette          domain.Palette
	HasDynamicColors bool
}
