package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"focusreel/internal/modules/capture/domain"
	"focusreel/internal/modules/capture/dto"
	"focusreel/internal/modules/capture/service"
	"focusreel/internal/modules/capture/usecase"
	"focusreel/internal/platform/clock"
	apperrors "focusreel/internal/platform/errors"
)

type deniedDevice struct{}

func (deniedDevice) Open(context.Context, domain.Source) (domain.Session, error) {
	return nil, errors.New("permission denied")
}

type staticStore struct {
	manifests []domain.Manifest
}

func (s staticStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type okProber struct{ calls int }

func (p *okProber) Probe(context.Context, domain.Manifest) error {
	p.calls++
	return nil
}

func newInteractor(opts usecase.Options) *usecase.Interactor {
	if opts.Scheduler == nil {
		opts.Scheduler = service.NewScheduler(clock.NewFake(time.Unix(0, 0)), domain.DefaultPolicy(), nil)
	}
	return usecase.NewInteractor(opts).(*usecase.Interactor)
}

func TestOpenMapsDeviceErrorsToUnavailable(t *testing.T) {
	t.Parallel()
	uc := newInteractor(usecase.Options{Device: deniedDevice{}})
	if _, err := uc.OpenWebcam(context.Background()); !errors.Is(err, apperrors.ErrCameraUnavailable) {
		t.Fatalf("expected ErrCameraUnavailable, got %v", err)
	}
	if _, err := uc.OpenScreen(context.Background()); !errors.Is(err, apperrors.ErrScreenUnavailable) {
		t.Fatalf("expected ErrScreenUnavailable, got %v", err)
	}
}

func TestScheduleRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	uc := newInteractor(usecase.Options{})
	if _, err := uc.Schedule(context.Background(), dto.ScheduleInput{Duration: time.Minute}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input without webcam, got %v", err)
	}
}

func TestPlanReportsOffsets(t *testing.T) {
	t.Parallel()
	out := newInteractor(usecase.Options{}).Plan(25 * time.Minute)
	if out.Total != 5 || out.Interval != 5*time.Minute {
		t.Fatalf("unexpected plan: %+v", out)
	}
}

func TestDevicesReportsHealth(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	good := filepath.Join(dir, "good")
	if err := os.WriteFile(good, []byte("bin"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	sum := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	store := staticStore{manifests: []domain.Manifest{
		{Name: "good", Version: "1", Binary: good, SHA256: sum, Enabled: true, Sources: []domain.Source{domain.SourceWebcam}},
		{Name: "missing", Version: "1", Binary: filepath.Join(dir, "nope"), SHA256: sum, Enabled: true, Sources: []domain.Source{domain.SourceWebcam}},
		{Name: "invalid", Version: "1", Binary: good, SHA256: "x", Enabled: true, Sources: []domain.Source{domain.SourceWebcam}},
	}}
	prober := &okProber{}
	uc := newInteractor(usecase.Options{
		Store:    store,
		Prober:   prober,
		Checksum: func(string, string) error { return nil },
	})
	results, err := uc.Devices(context.Background())
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].LifecycleOK || !results[0].ChecksumValid || results[0].Error != "" {
		t.Fatalf("expected healthy device: %+v", results[0])
	}
	if results[1].BinaryReachable || results[1].Error == "" {
		t.Fatalf("expected unreachable binary: %+v", results[1])
	}
	if results[2].Error == "" {
		t.Fatalf("expected validation error: %+v", results[2])
	}
	if prober.calls != 1 {
		t.Fatalf("expected one probe, got %d", prober.calls)
	}
}
