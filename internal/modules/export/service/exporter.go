package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	hclog "github.com/hashicorp/go-hclog"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"focusreel/internal/modules/export/domain"
	"focusreel/internal/modules/export/dto"
	exportout "focusreel/internal/modules/export/port/out"
	"focusreel/internal/platform/dataurl"
	apperrors "focusreel/internal/platform/errors"
	"focusreel/internal/platform/imaging"
	"focusreel/internal/platform/logging"
)

const decodeConcurrency = 4

type Exporter struct {
	rasterizer exportout.Rasterizer
	loader     exportout.ImageLoader
	logger     hclog.Logger
}

func NewExporter(rasterizer exportout.Rasterizer, loader exportout.ImageLoader, logger hclog.Logger) *Exporter {
	return &Exporter{rasterizer: rasterizer, loader: loader, logger: logging.OrDiscard(logger).Named("export")}
}

// Export rasterizes a detached copy of live. The live tree is never
// mutated.
func (e *Exporter) Export(ctx context.Context, live *domain.Node, opts domain.Options) (domain.Result, error) {
	if live == nil {
		return domain.Result{}, fmt.Errorf("%w: nothing to export", apperrors.ErrInvalidInput)
	}
	if opts.PixelRatio <= 0 {
		opts.PixelRatio = 1
	}
	if opts.Format == "" {
		opts.Format = imaging.FormatPNG
	}

	width, height := domain.Measure(live)
	clone := prepareClone(live, width, height)
	images := e.decodeAll(ctx, clone)
	background, _ := domain.EffectiveBackground(opts.BackgroundColor, live)

	raster := domain.RasterOptions{
		PixelRatio: opts.PixelRatio,
		Background: background,
		Format:     opts.Format,
		Width:      width,
		Height:     height,
		Filter:     domain.Included,
		Images:     images,
	}
	blob, err := e.rasterize(ctx, clone, raster)
	if err != nil {
		return domain.Result{}, err
	}
	mime := mimetype.Detect(blob).String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return domain.Result{
		Blob: blob,
		File: domain.File{
			Name: domain.FileName(opts.TaskName, opts.DurationMinutes, opts.Format),
			MIME: mime,
			Data: blob,
		},
	}, nil
}

func prepareClone(live *domain.Node, width, height float64) *domain.Node {
	clone := live.Clone()
	clone.Style.Width, clone.Style.Height = width, height
	clone.Walk(func(n *domain.Node) bool {
		if n.HasAttr(domain.AttrExportOnly) {
			n.Style.Hidden = false
		}
		if n.Kind == domain.KindImage {
			n.Loading = "eager"
			n.Decoding = "sync"
		}
		return true
	})
	return clone
}

// decodeAll waits for every distinct image source. Failures are logged and
// leave that source out, so it renders blank.
func (e *Exporter) decodeAll(ctx context.Context, root *domain.Node) map[string]image.Image {
	out := map[string]image.Image{}
	if e.loader == nil {
		return out
	}
	seen := map[string]struct{}{}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(decodeConcurrency)
	for _, node := range root.Images() {
		src := node.Src
		if src == "" {
			continue
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		g.Go(func() error {
			img, err := e.loader.Load(gctx, src)
			if err != nil {
				e.logger.Warn("image decode failed, rendering blank", "node", node.ID, "error", err)
				return nil
			}
			mu.Lock()
			out[src] = img
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Exporter) rasterize(ctx context.Context, root *domain.Node, opts domain.RasterOptions) ([]byte, error) {
	blob, err := e.rasterizer.ToBlob(ctx, root, opts)
	if err == nil && len(blob) > 0 {
		return blob, nil
	}
	if err != nil {
		e.logger.Warn("primary rasterization failed, trying data uri path", "error", err)
	} else {
		e.logger.Warn("primary rasterization produced an empty blob, trying data uri path")
	}
	uri, ferr := e.rasterizer.ToDataURI(ctx, root, opts)
	if ferr != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrEmptyRaster, errors.Join(err, ferr))
	}
	data, _, ferr := dataurl.Decode(uri)
	if ferr != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrEmptyRaster, ferr)
	}
	if len(data) == 0 {
		return nil, apperrors.ErrEmptyRaster
	}
	return data, nil
}

// Convert re-encodes blob over an opaque canvas filled with background,
// white when empty or transparent.
func (e *Exporter) Convert(blob []byte, format imaging.Format, background string) ([]byte, error) {
	img, err := imaging.Decode(blob)
	if err != nil {
		return nil, err
	}
	fill := color.Color(color.White)
	if background != "" {
		if c, alpha, err := domain.ParseColor(background); err == nil && alpha > 0 {
			r, g, b := c.RGB255()
			fill = color.RGBA{R: r, G: g, B: b, A: 255}
		}
	}
	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(fill), image.Point{}, xdraw.Src)
	xdraw.Draw(canvas, canvas.Bounds(), img, bounds.Min, xdraw.Over)
	return imaging.Encode(canvas, format)
}

type Deliverer struct {
	sharer exportout.Sharer
	opener exportout.Opener
	logger hclog.Logger
}

func NewDeliverer(sharer exportout.Sharer, opener exportout.Opener, logger hclog.Logger) *Deliverer {
	return &Deliverer{sharer: sharer, opener: opener, logger: logging.OrDiscard(logger).Named("share")}
}

// Share offers the file to the share target. A user abort is a quiet
// outcome; any other failure opens the saved file instead.
func (d *Deliverer) Share(ctx context.Context, input dto.ShareInput) (dto.ShareOutput, error) {
	var err error
	if d.sharer == nil {
		err = apperrors.ErrShareUnavailable
	} else {
		err = d.sharer.Share(ctx, []domain.File{input.File}, input.Title, input.Text)
	}
	if err == nil {
		return dto.ShareOutput{Shared: true}, nil
	}
	if errors.Is(err, apperrors.ErrShareAborted) {
		return dto.ShareOutput{Aborted: true}, nil
	}
	d.logger.Info("share unavailable, opening export instead", "error", err)
	if d.opener == nil || input.Path == "" {
		return dto.ShareOutput{}, fmt.Errorf("share export: %w", err)
	}
	if err := d.opener.Open(ctx, input.Path); err != nil {
		return dto.ShareOutput{}, fmt.Errorf("open export: %w", err)
	}
	return dto.ShareOutput{Opened: true}, nil
}
