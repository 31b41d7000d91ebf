package out

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	colorful "github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"focusreel/internal/modules/export/domain"
	"focusreel/internal/platform/dataurl"
	"focusreel/internal/platform/imaging"
)

// NativeRasterizer composites the scene in process. Every node renders to
// its own layer, which is then placed into its parent with an affine
// transform. A zero Scale is read as 1; a fully transparent node is
// skipped.
type NativeRasterizer struct{}

func NewNativeRasterizer() *NativeRasterizer {
	return &NativeRasterizer{}
}

func (r *NativeRasterizer) ToBlob(ctx context.Context, root *domain.Node, opts domain.RasterOptions) ([]byte, error) {
	canvas, err := r.render(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	return imaging.Encode(canvas, opts.Format)
}

func (r *NativeRasterizer) ToDataURI(ctx context.Context, root *domain.Node, opts domain.RasterOptions) (string, error) {
	blob, err := r.ToBlob(ctx, root, opts)
	if err != nil {
		return "", err
	}
	return dataurl.Encode(blob, opts.Format.MIME()), nil
}

func (r *NativeRasterizer) render(ctx context.Context, root *domain.Node, opts domain.RasterOptions) (*image.RGBA, error) {
	ratio := opts.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = domain.Measure(root)
	}
	w, h := int(math.Round(width*ratio)), int(math.Round(height*ratio))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("scene has no size")
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	if opts.Background != "" {
		if c, ok := solid(opts.Background); ok {
			xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
		}
	}
	p := painter{ctx: ctx, ratio: ratio, opts: opts}
	layer := p.layer(root, w, h)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if layer != nil {
		xdraw.Draw(canvas, canvas.Bounds(), layer, image.Point{}, xdraw.Over)
	}
	return canvas, nil
}

type painter struct {
	ctx   context.Context
	ratio float64
	opts  domain.RasterOptions
}

func (p painter) visible(n *domain.Node) bool {
	if n.Style.Hidden {
		return false
	}
	return p.opts.Filter == nil || p.opts.Filter(n)
}

// layer draws n and its children into a w x h image, or nil if n is not drawn.
func (p painter) layer(n *domain.Node, w, h int) *image.RGBA {
	if !p.visible(n) || w <= 0 || h <= 0 || p.ctx.Err() != nil {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	switch n.Kind {
	case domain.KindBox:
		p.fillBox(img, n)
	case domain.KindImage:
		if src, ok := p.opts.Images[n.Src]; ok {
			drawCover(img, src)
		}
	case domain.KindText:
		p.drawText(img, n)
	}

	children := slices.Clone(n.Children)
	slices.SortStableFunc(children, func(a, b *domain.Node) int { return a.Style.Z - b.Style.Z })
	for _, child := range children {
		cw, ch := domain.Measure(child)
		layer := p.layer(child, int(math.Round(cw*p.ratio)), int(math.Round(ch*p.ratio)))
		if layer == nil {
			continue
		}
		p.place(img, layer, child.Style, cw, ch)
	}
	return img
}

func (p painter) fillBox(img *image.RGBA, n *domain.Node) {
	bounds := img.Bounds()
	if g := n.Style.Gradient; g != nil {
		from, okFrom := solidColorful(g.From)
		to, okTo := solidColorful(g.To)
		if okFrom && okTo {
			span := float64(bounds.Dx() + bounds.Dy())
			for y := 0; y < bounds.Dy(); y++ {
				for x := 0; x < bounds.Dx(); x++ {
					t := float64(x+y) / span
					c := from.BlendLab(to, t).Clamped()
					r, g, b := c.RGB255()
					img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
				}
			}
		}
	} else if n.Style.Background != "" {
		if c, ok := solid(n.Style.Background); ok {
			xdraw.Draw(img, bounds, image.NewUniform(c), image.Point{}, xdraw.Src)
		}
	}
	if n.Style.Border > 0 && n.Style.Color != "" {
		if c, ok := solid(n.Style.Color); ok {
			t := int(math.Round(n.Style.Border * p.ratio))
			u := image.NewUniform(c)
			xdraw.Draw(img, image.Rect(0, 0, bounds.Dx(), t), u, image.Point{}, xdraw.Over)
			xdraw.Draw(img, image.Rect(0, bounds.Dy()-t, bounds.Dx(), bounds.Dy()), u, image.Point{}, xdraw.Over)
			xdraw.Draw(img, image.Rect(0, 0, t, bounds.Dy()), u, image.Point{}, xdraw.Over)
			xdraw.Draw(img, image.Rect(bounds.Dx()-t, 0, bounds.Dx(), bounds.Dy()), u, image.Point{}, xdraw.Over)
		}
	}
}

func (p painter) drawText(img *image.RGBA, n *domain.Node) {
	if n.Text == "" {
		return
	}
	face := basicfont.Face7x13
	ink := color.Color(color.Black)
	if c, ok := solid(n.Style.Color); ok {
		ink = c
	}
	textWidth := font.MeasureString(face, n.Text).Ceil()
	small := image.NewRGBA(image.Rect(0, 0, max(textWidth, 1), face.Height))
	d := font.Drawer{Dst: small, Src: image.NewUniform(ink), Face: face, Dot: fixed.P(0, face.Ascent)}
	d.DrawString(n.Text)
	// Keep the glyph aspect; the text sits centered in its box.
	scale := math.Min(float64(img.Bounds().Dx())/float64(small.Bounds().Dx()), float64(img.Bounds().Dy())/float64(small.Bounds().Dy()))
	dw, dh := int(float64(small.Bounds().Dx())*scale), int(float64(small.Bounds().Dy())*scale)
	ox, oy := (img.Bounds().Dx()-dw)/2, (img.Bounds().Dy()-dh)/2
	xdraw.NearestNeighbor.Scale(img, image.Rect(ox, oy, ox+dw, oy+dh), small, small.Bounds(), xdraw.Over, nil)
}

// place draws layer into dst, rotated and scaled about the child's center.
func (p painter) place(dst *image.RGBA, layer *image.RGBA, style domain.Style, cw, ch float64) {
	scale := style.Scale
	if scale == 0 {
		scale = 1
	}
	opacity := style.Alpha()
	if opacity == 0 {
		return
	}
	theta := style.Rotation * math.Pi / 180
	cos, sin := math.Cos(theta)*scale, math.Sin(theta)*scale
	hw, hh := float64(layer.Bounds().Dx())/2, float64(layer.Bounds().Dy())/2
	cx, cy := (style.X+cw/2)*p.ratio, (style.Y+ch/2)*p.ratio
	m := f64.Aff3{
		cos, -sin, cx - (cos*hw - sin*hh),
		sin, cos, cy - (sin*hw + cos*hh),
	}
	var options *xdraw.Options
	if opacity < 1 {
		options = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha16{A: uint16(opacity * 0xffff)})}
	}
	xdraw.BiLinear.Transform(dst, m, layer, layer.Bounds(), xdraw.Over, options)
}

// drawCover scales src to fill dst, cropping the overflow.
func drawCover(dst *image.RGBA, src image.Image) {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}
	db := dst.Bounds()
	dstAspect := float64(db.Dx()) / float64(db.Dy())
	srcAspect := float64(sb.Dx()) / float64(sb.Dy())
	crop := sb
	if srcAspect > dstAspect {
		w := int(float64(sb.Dy()) * dstAspect)
		off := (sb.Dx() - w) / 2
		crop = image.Rect(sb.Min.X+off, sb.Min.Y, sb.Min.X+off+w, sb.Max.Y)
	} else if srcAspect < dstAspect {
		h := int(float64(sb.Dx()) / dstAspect)
		off := (sb.Dy() - h) / 2
		crop = image.Rect(sb.Min.X, sb.Min.Y+off, sb.Max.X, sb.Min.Y+off+h)
	}
	xdraw.CatmullRom.Scale(dst, db, src, crop, xdraw.Over, nil)
}

func solid(css string) (color.Color, bool) {
	c, alpha, err := domain.ParseColor(css)
	if err != nil || alpha == 0 {
		return nil, false
	}
	r, g, b := c.RGB255()
	a := uint8(math.Round(alpha * 255))
	// color.RGBA is alpha-premultiplied.
	return color.RGBA{
		R: uint8(uint16(r) * uint16(a) / 255),
		G: uint8(uint16(g) * uint16(a) / 255),
		B: uint8(uint16(b) * uint16(a) / 255),
		A: a,
	}, true
}

func solidColorful(css string) (colorful.Color, bool) {
	c, alpha, err := domain.ParseColor(css)
	if err != nil || alpha == 0 {
		return colorful.Color{}, false
	}
	return c, true
}
