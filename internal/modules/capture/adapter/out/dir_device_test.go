package out_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	captureout "focusreel/internal/modules/capture/adapter/out"
	"focusreel/internal/modules/capture/domain"
	captureport "focusreel/internal/modules/capture/port/out"
	"focusreel/internal/platform/dataurl"
)

func writeFrame(t *testing.T, dir, name string, width int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, 4))); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func TestDirDeviceReplaysFramesInNameOrder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFrame(t, dir, "b.png", 2)
	writeFrame(t, dir, "a.png", 1)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	session, err := captureout.NewDirDevice(dir).Open(context.Background(), domain.SourceWebcam)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer session.Close()

	widths := make([]int, 0, 3)
	for range 3 {
		uri, err := session.Capture(context.Background())
		if err != nil {
			t.Fatalf("capture: %v", err)
		}
		if !strings.HasPrefix(uri, "data:image/png;base64,") {
			t.Fatalf("unexpected data uri prefix: %.40s", uri)
		}
		raw, _, err := dataurl.Decode(uri)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("decode png: %v", err)
		}
		widths = append(widths, img.Bounds().Dx())
	}
	if widths[0] != 1 || widths[1] != 2 || widths[2] != 1 {
		t.Fatalf("unexpected replay order: %v", widths)
	}
}

func TestDirDeviceEmptyDirHasNoDevice(t *testing.T) {
	t.Parallel()
	_, err := captureout.NewDirDevice(t.TempDir()).Open(context.Background(), domain.SourceScreen)
	if !errors.Is(err, domain.ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
}

func TestRouterDeviceDispatchesBySource(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFrame(t, dir, "a.png", 1)
	router := captureout.NewRouterDevice(map[domain.Source]captureport.Device{
		domain.SourceWebcam: captureout.NewDirDevice(dir),
	})
	session, err := router.Open(context.Background(), domain.SourceWebcam)
	if err != nil {
		t.Fatalf("open webcam: %v", err)
	}
	if session.Source() != domain.SourceWebcam {
		t.Fatalf("unexpected source %s", session.Source())
	}
	if _, err := router.Open(context.Background(), domain.SourceScreen); !errors.Is(err, domain.ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice for unrouted source, got %v", err)
	}
}

func TestVerifyChecksum(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bin")
	if err := os.WriteFile(path, []byte("abc"), 0o755); err != nil {
		t.Fatalf("write bin: %v", err)
	}
	const sum = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if err := captureout.VerifyChecksum(path, sum); err != nil {
		t.Fatalf("expected checksum match: %v", err)
	}
	if err := captureout.VerifyChecksum(path, strings.Repeat("0", 64)); !errors.Is(err, domain.ErrChecksumMismatch) {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}
