package out

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"focusreel/internal/modules/capture/domain"
	"focusreel/internal/platform/dataurl"
)

const screenshotQuality = 80

// PageDevice treats a headless browser page as the shared screen. Every
// grab is a JPEG screenshot of the viewport.
type PageDevice struct {
	url      string
	headless bool
}

func NewPageDevice(url string) *PageDevice {
	return &PageDevice{url: url, headless: true}
}

func (d *PageDevice) Open(ctx context.Context, source domain.Source) (domain.Session, error) {
	if source != domain.SourceScreen {
		return nil, fmt.Errorf("%w: page device only serves screen", domain.ErrNoDevice)
	}
	if d.url == "" {
		return nil, fmt.Errorf("%w: no screen url configured", domain.ErrNoDevice)
	}
	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(d.headless)
	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: d.url})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("open screen page: %w", err)
	}
	// A page that never settles is still usable.
	_ = page.Context(ctx).WaitStable(time.Second)
	return &pageSession{browser: browser, page: page, launcher: l}, nil
}

type pageSession struct {
	mu       sync.Mutex
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	closed   bool
}

func (s *pageSession) Source() domain.Source {
	return domain.SourceScreen
}

// Capture does not hold the session lock across the screenshot, so a
// stalled grab never queues the ticks behind it.
func (s *pageSession) Capture(ctx context.Context) (string, error) {
	s.mu.Lock()
	closed, page := s.closed, s.page
	s.mu.Unlock()
	if closed {
		return "", fmt.Errorf("screen session closed")
	}
	quality := screenshotQuality
	raw, err := page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: &quality,
	})
	if err != nil {
		return "", fmt.Errorf("screenshot page: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("screenshot page: empty frame")
	}
	return dataurl.Encode(raw, "image/jpeg"), nil
}

func (s *pageSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.page.Close()
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}
