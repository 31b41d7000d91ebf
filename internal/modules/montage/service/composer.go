package service

import (
	"context"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	animationin "focusreel/internal/modules/animation/port/in"
	exportdomain "focusreel/internal/modules/export/domain"
	exportdto "focusreel/internal/modules/export/dto"
	exportin "focusreel/internal/modules/export/port/in"
	"focusreel/internal/modules/montage/domain"
	"focusreel/internal/modules/montage/dto"
	palettedomain "focusreel/internal/modules/palette/domain"
	palettedto "focusreel/internal/modules/palette/dto"
	palettein "focusreel/internal/modules/palette/port/in"
	apperrors "focusreel/internal/platform/errors"
	"focusreel/internal/platform/imaging"
	"focusreel/internal/platform/logging"
)

type Composer struct {
	palette   palettein.Usecase
	animation animationin.Usecase
	export    exportin.Usecase
	width     float64
	logger    hclog.Logger
}

func NewComposer(palette palettein.Usecase, animation animationin.Usecase, export exportin.Usecase, width float64, logger hclog.Logger) *Composer {
	if width <= 0 {
		width = domain.DefaultWidth
	}
	return &Composer{
		palette:   palette,
		animation: animation,
		export:    export,
		width:     width,
		logger:    logging.OrDiscard(logger).Named("montage"),
	}
}

// Backgrounds never fails: a busy or failing extractor yields white only.
func (c *Composer) Backgrounds(ctx context.Context, record dto.Record, viewport palettedomain.Viewport) dto.BackgroundsOutput {
	fallback := dto.BackgroundsOutput{Options: []palettedomain.BackgroundOption{palettedomain.White()}}
	if c.palette == nil {
		return fallback
	}
	out, accepted := c.palette.Extract(ctx, palettedto.ExtractInput{
		Screenshots:  record.Screenshots,
		WebcamPhotos: record.WebcamPhotos,
		Viewport:     viewport,
	})
	if !accepted {
		c.logger.Debug("palette extraction busy, using white background")
		return fallback
	}
	if len(out.Options) == 0 {
		return fallback
	}
	return dto.BackgroundsOutput{Options: out.Options, HasDynamicColors: out.HasDynamicColors}
}

func (c *Composer) Scene(ctx context.Context, input dto.ComposeInput) (dto.SceneOutput, error) {
	photos := framesOf(input.Record)
	if len(photos) == 0 {
		return dto.SceneOutput{}, fmt.Errorf("%w: session has no frames", apperrors.ErrInvalidInput)
	}
	layout, err := domain.ParseLayout(string(input.Layout))
	if err != nil {
		return dto.SceneOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	backgrounds := c.Backgrounds(ctx, input.Record, input.Viewport)
	selection := palettedomain.NewSelection(backgrounds.Options)
	if input.BackgroundID != "" {
		if err := selection.Select(input.BackgroundID); err != nil {
			c.logger.Warn("background option not available, using default", "background", input.BackgroundID)
		}
	}
	scene := domain.Scene{
		TaskName:        input.Record.TaskName,
		DurationMinutes: input.Record.DurationMinutes,
		Width:           c.width,
		Background:      selection.Selected(),
	}

	var root *exportdomain.Node
	switch layout {
	case domain.LayoutGrid:
		root = domain.GridScene(scene, photos)
	default:
		if c.animation == nil {
			return dto.SceneOutput{}, fmt.Errorf("animation usecase is not configured")
		}
		views, err := c.animation.Pile(photos)
		if err != nil {
			return dto.SceneOutput{}, fmt.Errorf("plan pile: %w", err)
		}
		cards := make([]domain.Card, 0, len(views))
		for _, view := range views {
			t := view.Transform
			cards = append(cards, domain.Card{
				ID: view.ID, Src: view.Src,
				X: t.X, Y: t.Y, Scale: t.Scale, Rotation: t.Rotation, Opacity: t.Opacity, Z: t.Z,
			})
		}
		root = domain.PileScene(scene, cards)
	}
	return dto.SceneOutput{Root: root, Background: scene.Background, Backgrounds: backgrounds}, nil
}

// Compose exports the scene as PNG first; JPEG output is flattened onto
// the selected background color.
func (c *Composer) Compose(ctx context.Context, input dto.ComposeInput) (dto.ComposeOutput, error) {
	if c.export == nil {
		return dto.ComposeOutput{}, fmt.Errorf("export usecase is not configured")
	}
	scene, err := c.Scene(ctx, input)
	if err != nil {
		return dto.ComposeOutput{}, err
	}
	format := input.Format
	if format == "" {
		format = imaging.FormatPNG
	}
	record := input.Record
	result, err := c.export.Export(ctx, scene.Root, exportdomain.Options{
		PixelRatio:      input.PixelRatio,
		Format:          imaging.FormatPNG,
		TaskName:        record.TaskName,
		DurationMinutes: record.DurationMinutes,
	})
	if err != nil {
		return dto.ComposeOutput{}, fmt.Errorf("export montage: %w", err)
	}
	file := result.File
	if format != imaging.FormatPNG {
		blob, err := c.export.Convert(result.Blob, format, scene.Background.AccentColor)
		if err != nil {
			return dto.ComposeOutput{}, fmt.Errorf("convert montage: %w", err)
		}
		file = exportdomain.File{
			Name: exportdomain.FileName(record.TaskName, record.DurationMinutes, format),
			MIME: format.MIME(),
			Data: blob,
		}
	}

	path, err := c.export.Save(ctx, file)
	if err != nil {
		return dto.ComposeOutput{}, fmt.Errorf("save montage: %w", err)
	}
	out := dto.ComposeOutput{Path: path, File: file, Background: scene.Background, Backgrounds: scene.Backgrounds}
	if !input.Share {
		return out, nil
	}
	shared, err := c.export.Share(ctx, exportdto.ShareInput{
		File:  file,
		Path:  path,
		Title: record.TaskName,
		Text:  fmt.Sprintf("%d minutes of focus on %s", record.DurationMinutes, record.TaskName),
	})
	if err != nil {
		c.logger.Warn("montage saved but could not be shared", "path", path, "error", err)
		return out, nil
	}
	out.Share = shared
	return out, nil
}

// framesOf prefers webcam photos; screenshots stand in when there are none.
func framesOf(record dto.Record) []string {
	frames := nonEmpty(record.WebcamPhotos)
	if len(frames) == 0 {
		frames = nonEmpty(record.Screenshots)
	}
	return frames
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
