package service_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"focusreel/internal/modules/export/domain"
	"focusreel/internal/modules/export/dto"
	"focusreel/internal/modules/export/service"
	"focusreel/internal/platform/dataurl"
	apperrors "focusreel/internal/platform/errors"
	"focusreel/internal/platform/imaging"
)

type fakeRasterizer struct {
	blob     []byte
	blobErr  error
	uri      string
	uriErr   error
	got      domain.RasterOptions
	root     *domain.Node
	uriCalls int
}

func (f *fakeRasterizer) ToBlob(_ context.Context, root *domain.Node, opts domain.RasterOptions) ([]byte, error) {
	f.root, f.got = root, opts
	return f.blob, f.blobErr
}

func (f *fakeRasterizer) ToDataURI(_ context.Context, _ *domain.Node, _ domain.RasterOptions) (string, error) {
	f.uriCalls++
	return f.uri, f.uriErr
}

type fakeLoader struct {
	fail map[string]bool
}

func (l fakeLoader) Load(_ context.Context, src string) (image.Image, error) {
	if l.fail[src] {
		return nil, errors.New("corrupt")
	}
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, c)
		}
	}
	raw, err := imaging.Encode(img, imaging.FormatPNG)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return raw
}

func liveTree() *domain.Node {
	return domain.NewBox("root", domain.Style{Background: "rgba(0,0,0,0)"},
		domain.NewImage("a", "src-a", domain.Style{Width: 100, Height: 120}),
		domain.NewImage("b", "src-b", domain.Style{X: 100, Width: 100, Height: 120}),
		domain.NewText("mark", "focusreel", domain.Style{Y: 120, Width: 200, Height: 20, Hidden: true}).
			WithAttr(domain.AttrExportOnly, ""),
		domain.NewBox("controls", domain.Style{Width: 10, Height: 10}).WithAttr(domain.AttrExportExclude, ""),
	)
}

func TestExportPreparesDetachedClone(t *testing.T) {
	t.Parallel()
	raster := &fakeRasterizer{blob: pngBytes(t, color.White)}
	exporter := service.NewExporter(raster, fakeLoader{fail: map[string]bool{"src-b": true}}, nil)
	live := liveTree()

	result, err := exporter.Export(context.Background(), live, domain.Options{PixelRatio: 2, TaskName: "Deep work", DurationMinutes: 25})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if raster.root == live {
		t.Fatalf("rasterizer must receive a clone")
	}
	if !live.Children[2].Style.Hidden || live.Children[0].Loading != "lazy" {
		t.Fatalf("live tree was mutated")
	}
	if raster.root.Children[2].Style.Hidden {
		t.Fatalf("export-only node must be revealed on the clone")
	}
	for _, img := range raster.root.Images() {
		if img.Loading != "eager" || img.Decoding != "sync" {
			t.Fatalf("image %s not forced eager/sync", img.ID)
		}
	}
	if raster.root.Style.Width != 200 || raster.root.Style.Height != 140 {
		t.Fatalf("clone not sized to live dimensions: %+v", raster.root.Style)
	}
	if raster.got.Background != "" {
		t.Fatalf("transparent root must yield no background, got %q", raster.got.Background)
	}
	if raster.got.Filter(raster.root.Children[3]) {
		t.Fatalf("filter must drop export-excluded nodes")
	}
	if _, ok := raster.got.Images["src-a"]; !ok {
		t.Fatalf("decoded image missing")
	}
	if _, ok := raster.got.Images["src-b"]; ok {
		t.Fatalf("failed decode must be left out, not fail the export")
	}
	if result.File.Name != "focusreel-deep-work-25min.png" || result.File.MIME != "image/png" {
		t.Fatalf("unexpected file %+v", result.File)
	}
	if raster.uriCalls != 0 {
		t.Fatalf("fallback path must not run when the blob is fine")
	}
}

func TestExportExplicitBackgroundWins(t *testing.T) {
	t.Parallel()
	raster := &fakeRasterizer{blob: pngBytes(t, color.White)}
	if _, err := service.NewExporter(raster, nil, nil).Export(context.Background(), liveTree(), domain.Options{BackgroundColor: "#123456"}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if raster.got.Background != "#123456" {
		t.Fatalf("expected explicit background, got %q", raster.got.Background)
	}
}

func TestExportFallsBackOnEmptyBlob(t *testing.T) {
	t.Parallel()
	fallback := pngBytes(t, color.Black)
	raster := &fakeRasterizer{blob: []byte{}, uri: dataurl.Encode(fallback, "image/png")}
	result, err := service.NewExporter(raster, nil, nil).Export(context.Background(), liveTree(), domain.Options{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(result.Blob) == 0 || string(result.Blob) != string(fallback) {
		t.Fatalf("expected fallback bytes")
	}
	if raster.uriCalls != 1 {
		t.Fatalf("expected one fallback call, got %d", raster.uriCalls)
	}
}

func TestExportNeverReturnsEmptyBlob(t *testing.T) {
	t.Parallel()
	cases := map[string]*fakeRasterizer{
		"empty fallback":  {uri: "data:image/png;base64,"},
		"fallback errors": {blobErr: errors.New("tainted"), uriErr: errors.New("tainted")},
	}
	for name, raster := range cases {
		_, err := service.NewExporter(raster, nil, nil).Export(context.Background(), liveTree(), domain.Options{})
		if !errors.Is(err, apperrors.ErrEmptyRaster) {
			t.Fatalf("%s: expected ErrEmptyRaster, got %v", name, err)
		}
	}
}

func TestConvertCompositesOntoOpaqueCanvas(t *testing.T) {
	t.Parallel()
	exporter := service.NewExporter(&fakeRasterizer{}, nil, nil)
	transparent := pngBytes(t, color.RGBA{})

	out, err := exporter.Convert(transparent, imaging.FormatJPEG, "")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	img, err := imaging.Decode(out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, g, b, a := img.At(0, 0).RGBA()
	if a != 0xffff || r < 0xf000 || g < 0xf000 || b < 0xf000 {
		t.Fatalf("expected opaque white, got %d %d %d %d", r, g, b, a)
	}

	out, err = exporter.Convert(transparent, imaging.FormatPNG, "#ff0000")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	img, _ = imaging.Decode(out)
	if r, _, _, a := img.At(1, 1).RGBA(); r != 0xffff || a != 0xffff {
		t.Fatalf("expected opaque red, got r=%d a=%d", r, a)
	}
}

type fakeSharer struct{ err error }

func (s fakeSharer) Share(context.Context, []domain.File, string, string) error { return s.err }

type fakeOpener struct{ opened []string }

func (o *fakeOpener) Open(_ context.Context, target string) error {
	o.opened = append(o.opened, target)
	return nil
}

func TestShareOutcomes(t *testing.T) {
	t.Parallel()
	input := dto.ShareInput{File: domain.File{Name: "x.png"}, Path: "/tmp/x.png"}

	opener := &fakeOpener{}
	out, err := service.NewDeliverer(fakeSharer{}, opener, nil).Share(context.Background(), input)
	if err != nil || !out.Shared || len(opener.opened) != 0 {
		t.Fatalf("expected plain share, got %+v %v", out, err)
	}

	out, err = service.NewDeliverer(fakeSharer{err: apperrors.ErrShareAborted}, opener, nil).Share(context.Background(), input)
	if err != nil || !out.Aborted || len(opener.opened) != 0 {
		t.Fatalf("abort must be silent with no fallback, got %+v %v", out, err)
	}

	out, err = service.NewDeliverer(fakeSharer{err: errors.New("no target")}, opener, nil).Share(context.Background(), input)
	if err != nil || !out.Opened || len(opener.opened) != 1 || opener.opened[0] != "/tmp/x.png" {
		t.Fatalf("expected open fallback, got %+v %v", out, err)
	}

	out, err = service.NewDeliverer(nil, opener, nil).Share(context.Background(), input)
	if err != nil || !out.Opened {
		t.Fatalf("missing sharer must fall back to opening, got %+v %v", out, err)
	}
}
