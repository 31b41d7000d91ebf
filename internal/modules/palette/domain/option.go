package domain

import (
	"fmt"
	"slices"
)

const (
	WhiteID        = "white"
	HeroID         = "hero"
	LightVibrantID = "light-vibrant"
	MutedID        = "muted"
	LightMutedID   = "light-muted"

	MaxOptions = 5
	whiteHex   = "#ffffff"
)

type Viewport string

const (
	ViewportWide   Viewport = "wide"
	ViewportNarrow Viewport = "narrow"
)

type StyleKind string

const (
	StyleSolid    StyleKind = "solid"
	StyleGradient StyleKind = "gradient"
)

// RenderStyle is how an option paints the montage background.
type RenderStyle struct {
	Kind StyleKind
	From string
	To   string
}

func (s RenderStyle) CSS() string {
	if s.Kind == StyleGradient {
		return fmt.Sprintf("linear-gradient(135deg, %s, %s)", s.From, s.To)
	}
	return s.From
}

type BackgroundOption struct {
	ID          string
	Name        string
	AccentColor string
	Style       RenderStyle
	ClassName   string
}

func White() BackgroundOption {
	return BackgroundOption{
		ID:          WhiteID,
		Name:        "White",
		AccentColor: whiteHex,
		Style:       RenderStyle{Kind: StyleSolid, From: whiteHex},
		ClassName:   "bg-white",
	}
}

// BuildOptions lists white first, then the hero option when any swatch
// exists, then LightVibrant, Muted and LightMuted in that order.
func BuildOptions(p Palette, viewport Viewport) []BackgroundOption {
	options := []BackgroundOption{White()}
	strongest := p.Strongest(2)
	if len(strongest) == 0 {
		return options
	}
	hero := BackgroundOption{
		ID:          HeroID,
		Name:        "Hero",
		AccentColor: strongest[0].Hex,
		Style:       RenderStyle{Kind: StyleSolid, From: strongest[0].Hex},
		ClassName:   "bg-hero",
	}
	if viewport != ViewportNarrow && len(strongest) == 2 {
		hero.Style = RenderStyle{Kind: StyleGradient, From: strongest[0].Hex, To: strongest[1].Hex}
	}
	options = append(options, hero)
	for _, named := range []struct {
		swatch SwatchName
		id     string
		label  string
	}{
		{LightVibrant, LightVibrantID, "Light Vibrant"},
		{Muted, MutedID, "Muted"},
		{LightMuted, LightMutedID, "Light Muted"},
	} {
		s, ok := p.Get(named.swatch)
		if !ok {
			continue
		}
		options = append(options, BackgroundOption{
			ID:          named.id,
			Name:        named.label,
			AccentColor: s.Hex,
			Style:       RenderStyle{Kind: StyleSolid, From: s.Hex},
			ClassName:   "bg-" + named.id,
		})
	}
	return options[:min(len(options), MaxOptions)]
}

// Selection keeps the chosen option id pointing at a member of Options.
type Selection struct {
	options    []BackgroundOption
	selectedID string
}

func NewSelection(options []BackgroundOption) *Selection {
	s := &Selection{}
	s.Update(options)
	return s
}

// Update swaps the option set; a selection that disappeared resets to the
// first option.
func (s *Selection) Update(options []BackgroundOption) {
	if len(options) == 0 {
		options = []BackgroundOption{White()}
	}
	s.options = slices.Clone(options)
	if s.index(s.selectedID) < 0 {
		s.selectedID = s.options[0].ID
	}
}

func (s *Selection) Select(id string) error {
	if s.index(id) < 0 {
		return fmt.Errorf("unknown background option: %s", id)
	}
	s.selectedID = id
	return nil
}

func (s *Selection) Selected() BackgroundOption {
	return s.options[s.index(s.selectedID)]
}

func (s *Selection) Options() []BackgroundOption {
	return slices.Clone(s.options)
}

func (s *Selection) index(id string) int {
	return slices.IndexFunc(s.options, func(o BackgroundOption) bool { return o.ID == id })
}

// Representative picks the last screenshot, else the last webcam photo.
func Representative(screenshots, webcamPhotos []string) (string, bool) {
	for i := len(screenshots) - 1; i >= 0; i-- {
		if screenshots[i] != "" {
			return screenshots[i], true
		}
	}
	for i := len(webcamPhotos) - 1; i >= 0; i-- {
		if webcamPhotos[i] != "" {
			return webcamPhotos[i], true
		}
	}
	return "", false
}
