// Package domain builds the montage scene tree: a header with the task, the
// photos as a pile or a grid, live-only controls and an export-only
// watermark.
package domain

import (
	"fmt"
	"math"

	exportdomain "focusreel/internal/modules/export/domain"
	layoutdomain "focusreel/internal/modules/layout/domain"
	palettedomain "focusreel/internal/modules/palette/domain"
)

type Layout string

const (
	LayoutPile Layout = "pile"
	LayoutGrid Layout = "grid"
)

func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutPile, LayoutGrid:
		return Layout(s), nil
	case "":
		return LayoutPile, nil
	}
	return "", fmt.Errorf("unknown layout %q", s)
}

const (
	RootID        = "montage"
	StageID       = "stage"
	ControlsID    = "controls"
	WatermarkID   = "watermark"
	DefaultWidth  = 600.0
	headerHeight  = 72.0
	footerHeight  = 36.0
	padding       = 24.0
	CardWidth     = 180.0
	CardHeight    = CardWidth * layoutdomain.FrameRatio
	cardInset     = 8.0
	tileGap       = 3.0
	pileHeadroom  = 120.0
	darkInk       = "#1f1f1f"
	lightInk      = "#fafafa"
	cardFace      = "#ffffff"
	cardEdge      = "rgba(0,0,0,0.12)"
	controlsFill  = "rgba(0,0,0,0.06)"
	watermarkText = "focusreel"
)

// Card is one photo of the pile, posed relative to the pile's center.
type Card struct {
	ID       string
	Src      string
	X        float64
	Y        float64
	Scale    float64
	Rotation float64
	Opacity  float64
	Z        int
}

// Scene holds what every layout shares.
type Scene struct {
	TaskName        string
	DurationMinutes int
	Width           float64
	Background      palettedomain.BackgroundOption
}

func (s Scene) width() float64 {
	if s.Width <= 0 {
		return DefaultWidth
	}
	return s.Width
}

// PileScene stacks cards around the center of the stage.
func PileScene(s Scene, cards []Card) *exportdomain.Node {
	width := s.width()
	stageHeight := CardHeight + pileHeadroom
	stage := exportdomain.NewBox(StageID, exportdomain.Style{Y: headerHeight, Width: width, Height: stageHeight})
	cx, cy := width/2, stageHeight/2
	for _, card := range cards {
		photo := exportdomain.NewImage(card.ID+"-photo", card.Src, exportdomain.Style{
			X:      cardInset,
			Y:      cardInset,
			Width:  CardWidth - 2*cardInset,
			Height: CardHeight - 2*cardInset,
		})
		stage.Children = append(stage.Children, exportdomain.NewBox(card.ID, exportdomain.Style{
			X:          cx + card.X - CardWidth/2,
			Y:          cy + card.Y - CardHeight/2,
			Width:      CardWidth,
			Height:     CardHeight,
			Rotation:   card.Rotation,
			Scale:      card.Scale,
			Opacity:    exportdomain.Opacity(card.Opacity),
			Z:          card.Z,
			Background: cardFace,
			Border:     1,
			Color:      cardEdge,
		}, photo))
	}
	return frame(s, stage, "space to shuffle")
}

// GridScene places photos on the planned tiles, in capture order.
func GridScene(s Scene, photos []string) *exportdomain.Node {
	width := s.width()
	inner := width - 2*padding
	tiles := layoutdomain.Tiles(len(photos), inner)
	stage := exportdomain.NewBox(StageID, exportdomain.Style{Y: headerHeight, Width: width, Height: layoutdomain.Height(inner) + 2*padding})
	for _, tile := range tiles {
		stage.Children = append(stage.Children, exportdomain.NewImage(fmt.Sprintf("tile-%02d", tile.Index), photos[tile.Index], exportdomain.Style{
			X:      padding + tile.X + tileGap,
			Y:      padding + tile.Y + tileGap,
			Width:  math.Max(tile.Width-2*tileGap, 1),
			Height: math.Max(tile.Height-2*tileGap, 1),
		}))
	}
	return frame(s, stage, fmt.Sprintf("%d photos", len(photos)))
}

func frame(s Scene, stage *exportdomain.Node, hint string) *exportdomain.Node {
	width := s.width()
	ink := Ink(s.Background)
	height := headerHeight + stage.Style.Height + footerHeight

	root := exportdomain.NewBox(RootID, exportdomain.Style{Width: width, Height: height})
	paint(&root.Style, s.Background.Style)

	title := exportdomain.NewText("title", s.TaskName, exportdomain.Style{X: padding, Y: 16, Width: width - 2*padding, Height: 26, Color: ink})
	subtitle := exportdomain.NewText("subtitle", fmt.Sprintf("%d min focus", s.DurationMinutes),
		exportdomain.Style{X: padding, Y: 46, Width: width - 2*padding, Height: 14, Color: ink, Opacity: exportdomain.Opacity(0.7)})

	controls := exportdomain.NewBox(ControlsID, exportdomain.Style{
		X: padding, Y: height - footerHeight, Width: width - 2*padding, Height: footerHeight - 8, Background: controlsFill,
	}, exportdomain.NewText("hint", hint, exportdomain.Style{Width: width - 2*padding, Height: footerHeight - 8, Color: ink})).
		WithAttr(exportdomain.AttrExportExclude, "")

	watermark := exportdomain.NewText(WatermarkID, fmt.Sprintf("%s - %d min", watermarkText, s.DurationMinutes), exportdomain.Style{
		X: padding, Y: height - footerHeight + 8, Width: width - 2*padding, Height: 14, Color: ink, Opacity: exportdomain.Opacity(0.6), Hidden: true,
	}).WithAttr(exportdomain.AttrExportOnly, "")

	root.Children = []*exportdomain.Node{title, subtitle, stage, controls, watermark}
	return root
}

func paint(style *exportdomain.Style, render palettedomain.RenderStyle) {
	if render.Kind == palettedomain.StyleGradient && render.To != "" {
		style.Gradient = &exportdomain.Gradient{From: render.From, To: render.To}
		style.Background = render.From
		return
	}
	style.Background = render.From
}

// Ink picks a text color that reads on the option's background.
func Ink(option palettedomain.BackgroundOption) string {
	c, alpha, err := exportdomain.ParseColor(option.Style.From)
	if err != nil || alpha == 0 {
		return darkInk
	}
	l, _, _ := c.Lab()
	if l < 0.55 {
		return lightInk
	}
	return darkInk
}
