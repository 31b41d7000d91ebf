package bootstrap

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	captureoutadapter "focusreel/internal/modules/capture/adapter/out"
	capturedomain "focusreel/internal/modules/capture/domain"
	montageinadapter "focusreel/internal/modules/montage/adapter/in"
	montagedomain "focusreel/internal/modules/montage/domain"
	montagedto "focusreel/internal/modules/montage/dto"
	palettedomain "focusreel/internal/modules/palette/domain"
	"focusreel/internal/platform/config"
	"focusreel/internal/platform/imaging"
)

func writeFrames(t *testing.T, dir string, n int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for i := range n {
		img := image.NewRGBA(image.Rect(0, 0, 16, 16))
		fill := color.RGBA{R: uint8(200 - i*20), G: 60, B: uint8(40 + i*30), A: 255}
		for y := range 16 {
			for x := range 16 {
				img.Set(x, y, fill)
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatalf("encode: %v", err)
		}
		name := filepath.Join(dir, string(rune('a'+i))+".png")
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	app, err := NewWithLog(cfg, io.Discard)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewWiresPlanAndHistory(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	plan := app.CaptureCLI.Plan(25)
	if plan.Total != 5 || len(plan.Offsets) != 5 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	entries, err := app.SessionCLI.History(context.Background(), 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty history, got %d", len(entries))
	}
	devices, err := app.CaptureCLI.Devices(context.Background())
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	if len(devices) != 0 {
		t.Fatalf("expected no devices without a manifest, got %d", len(devices))
	}
}

func TestMontageWritesFileToOutputDir(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	frames := filepath.Join(t.TempDir(), "frames")
	writeFrames(t, frames, 4)

	uris, err := montageinadapter.LoadFrames(frames)
	if err != nil || len(uris) != 4 {
		t.Fatalf("load frames: %d %v", len(uris), err)
	}

	out, err := app.MontageCLI.Compose(context.Background(), montagedto.ComposeInput{
		Record:     montagedto.Record{TaskName: "Deep Work", DurationMinutes: 25, WebcamPhotos: uris},
		Layout:     montagedomain.LayoutGrid,
		Viewport:   palettedomain.ViewportWide,
		Format:     imaging.FormatPNG,
		PixelRatio: 1,
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if filepath.Dir(out.Path) != app.Config.OutputDir {
		t.Fatalf("montage written outside output dir: %s", out.Path)
	}
	if _, err := os.Stat(out.Path); err != nil {
		t.Fatalf("montage missing: %v", err)
	}
	if len(out.Backgrounds.Options) == 0 || out.Backgrounds.Options[0].ID != palettedomain.WhiteID {
		t.Fatalf("white must lead the options: %+v", out.Backgrounds.Options)
	}
}

func TestDeviceRoutesPreferConfiguredSources(t *testing.T) {
	t.Parallel()
	plugins := captureoutadapter.NewPluginDevice(nil, nil)

	routes := deviceRoutes(config.DeviceConfig{}, plugins)
	if routes[capturedomain.SourceWebcam] != plugins || routes[capturedomain.SourceScreen] != plugins {
		t.Fatalf("plugin device must serve both sources by default")
	}

	routes = deviceRoutes(config.DeviceConfig{WebcamDir: "/cam", ScreenURL: "http://localhost:3000"}, plugins)
	if _, ok := routes[capturedomain.SourceWebcam].(*captureoutadapter.DirDevice); !ok {
		t.Fatalf("webcam dir must route to a dir device")
	}
	if _, ok := routes[capturedomain.SourceScreen].(*captureoutadapter.PageDevice); !ok {
		t.Fatalf("screen url must route to a page device")
	}

	routes = deviceRoutes(config.DeviceConfig{ScreenDir: "/shots", ScreenURL: "http://localhost:3000"}, plugins)
	if _, ok := routes[capturedomain.SourceScreen].(*captureoutadapter.DirDevice); !ok {
		t.Fatalf("screen dir wins over screen url")
	}
}
