package out

import (
	"context"
	"fmt"
	"html"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"focusreel/internal/modules/export/domain"
	"focusreel/internal/platform/dataurl"
	"focusreel/internal/platform/imaging"
)

const (
	rootElementID = "focusreel-root"
	waitImagesJS  = `() => Promise.all([...document.images].map(i => i.decode().catch(() => {})))`
	jpegQuality   = 92
)

// RodRasterizer renders the scene as absolutely positioned HTML in a
// headless browser and screenshots the root element.
type RodRasterizer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func NewRodRasterizer() *RodRasterizer {
	return &RodRasterizer{}
}

func (r *RodRasterizer) ToBlob(ctx context.Context, root *domain.Node, opts domain.RasterOptions) ([]byte, error) {
	return r.shoot(ctx, root, opts, opts.Format)
}

// ToDataURI always encodes JPEG, which has no transparent-canvas edge cases.
func (r *RodRasterizer) ToDataURI(ctx context.Context, root *domain.Node, opts domain.RasterOptions) (string, error) {
	raw, err := r.shoot(ctx, root, opts, imaging.FormatJPEG)
	if err != nil {
		return "", err
	}
	return dataurl.Encode(raw, imaging.FormatJPEG.MIME()), nil
}

func (r *RodRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.launcher.Kill()
	r.browser, r.launcher = nil, nil
	return err
}

func (r *RodRasterizer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}
	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(true)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	r.launcher, r.browser = l, browser
	return browser, nil
}

func (r *RodRasterizer) shoot(ctx context.Context, root *domain.Node, opts domain.RasterOptions, format imaging.Format) ([]byte, error) {
	browser, err := r.connect()
	if err != nil {
		return nil, err
	}
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open render page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = domain.Measure(root)
	}
	ratio := opts.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             int(math.Ceil(width)),
		Height:            int(math.Ceil(height)),
		DeviceScaleFactor: ratio,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	transparent := 0.0
	if err := (proto.EmulationSetDefaultBackgroundColorOverride{Color: &proto.DOMRGBA{A: &transparent}}).Call(page); err != nil {
		return nil, fmt.Errorf("clear page background: %w", err)
	}
	if err := page.SetDocumentContent(RenderHTML(root, opts, width, height)); err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	if _, err := page.Eval(waitImagesJS); err != nil {
		return nil, fmt.Errorf("wait for images: %w", err)
	}
	el, err := page.Element("#" + rootElementID)
	if err != nil {
		return nil, fmt.Errorf("find scene root: %w", err)
	}
	shotFormat := proto.PageCaptureScreenshotFormatPng
	if format == imaging.FormatJPEG {
		shotFormat = proto.PageCaptureScreenshotFormatJpeg
	}
	return el.Screenshot(shotFormat, jpegQuality)
}

// RenderHTML serializes the visible scene. Filtered and hidden nodes are
// left out together with their subtrees.
func RenderHTML(root *domain.Node, opts domain.RasterOptions, width, height float64) string {
	var b strings.Builder
	b.WriteString(`<!doctype html><html><head><style>html,body{margin:0;padding:0;background:transparent}*{box-sizing:border-box}</style></head><body>`)
	fmt.Fprintf(&b, `<div id="%s" style="position:relative;width:%gpx;height:%gpx;overflow:hidden;background:%s">`,
		rootElementID, width, height, cssOr(opts.Background, "transparent"))
	writeNode(&b, root, opts.Filter, true)
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func writeNode(b *strings.Builder, n *domain.Node, filter func(*domain.Node) bool, isRoot bool) {
	if n.Style.Hidden || (filter != nil && !filter(n)) {
		return
	}
	w, h := domain.Measure(n)
	style := []string{"position:absolute", fmt.Sprintf("width:%gpx", w), fmt.Sprintf("height:%gpx", h)}
	if !isRoot {
		style = append(style, fmt.Sprintf("left:%gpx", n.Style.X), fmt.Sprintf("top:%gpx", n.Style.Y))
	} else {
		style = append(style, "left:0", "top:0")
	}
	scale := n.Style.Scale
	if scale == 0 {
		scale = 1
	}
	if n.Style.Rotation != 0 || scale != 1 {
		style = append(style, fmt.Sprintf("transform:rotate(%gdeg) scale(%g)", n.Style.Rotation, scale))
	}
	if alpha := n.Style.Alpha(); alpha < 1 {
		style = append(style, fmt.Sprintf("opacity:%g", alpha))
	}
	if n.Style.Z != 0 {
		style = append(style, fmt.Sprintf("z-index:%d", n.Style.Z))
	}
	if g := n.Style.Gradient; g != nil {
		style = append(style, fmt.Sprintf("background:linear-gradient(135deg, %s, %s)", g.From, g.To))
	} else if n.Style.Background != "" {
		style = append(style, "background:"+n.Style.Background)
	}
	if n.Style.Border > 0 && n.Style.Color != "" {
		style = append(style, fmt.Sprintf("border:%gpx solid %s", n.Style.Border, n.Style.Color))
	}
	attr := html.EscapeString(strings.Join(style, ";"))
	switch n.Kind {
	case domain.KindImage:
		fmt.Fprintf(b, `<img style="%s;object-fit:cover" loading="eager" decoding="sync" src="%s">`, attr, html.EscapeString(n.Src))
		return
	case domain.KindText:
		fmt.Fprintf(b, `<div style="%s;color:%s;font:13px monospace;display:flex;align-items:center;justify-content:center">%s</div>`,
			attr, html.EscapeString(cssOr(n.Style.Color, "#000")), html.EscapeString(n.Text))
		return
	}
	fmt.Fprintf(b, `<div style="%s">`, attr)
	children := slices.Clone(n.Children)
	slices.SortStableFunc(children, func(a, c *domain.Node) int { return a.Style.Z - c.Style.Z })
	for _, child := range children {
		writeNode(b, child, filter, false)
	}
	b.WriteString(`</div>`)
}

func cssOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
