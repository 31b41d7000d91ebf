package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"focusreel/internal/modules/capture/domain"
	"focusreel/internal/modules/capture/dto"
	capturein "focusreel/internal/modules/capture/port/in"
	captureout "focusreel/internal/modules/capture/port/out"
	"focusreel/internal/modules/capture/service"
	apperrors "focusreel/internal/platform/errors"
	"focusreel/internal/platform/logging"
)

type Interactor struct {
	scheduler *service.Scheduler
	device    captureout.Device
	store     captureout.ManifestStore
	prober    captureout.Prober
	checksum  func(path, want string) error
	logger    hclog.Logger
}

type Options struct {
	Scheduler *service.Scheduler
	Device    captureout.Device
	Store     captureout.ManifestStore
	Prober    captureout.Prober
	// Checksum verifies a device binary; nil skips verification.
	Checksum func(path, want string) error
	Logger   hclog.Logger
}

func NewInteractor(opts Options) capturein.Usecase {
	return &Interactor{
		scheduler: opts.Scheduler,
		device:    opts.Device,
		store:     opts.Store,
		prober:    opts.Prober,
		checksum:  opts.Checksum,
		logger:    logging.OrDiscard(opts.Logger).Named("capture"),
	}
}

func (i *Interactor) Plan(duration time.Duration) dto.PlanOutput {
	plan := i.scheduler.Plan(duration)
	return dto.PlanOutput{Total: plan.Total(), Interval: plan.Interval, Offsets: plan.Offsets}
}

func (i *Interactor) OpenWebcam(ctx context.Context) (domain.Session, error) {
	session, err := i.open(ctx, domain.SourceWebcam)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCameraUnavailable, err)
	}
	return session, nil
}

func (i *Interactor) OpenScreen(ctx context.Context) (domain.Session, error) {
	session, err := i.open(ctx, domain.SourceScreen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrScreenUnavailable, err)
	}
	return session, nil
}

func (i *Interactor) open(ctx context.Context, source domain.Source) (domain.Session, error) {
	if i.device == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoDevice, source)
	}
	return i.device.Open(ctx, source)
}

func (i *Interactor) Schedule(ctx context.Context, input dto.ScheduleInput) (capturein.Run, error) {
	if input.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", apperrors.ErrInvalidInput)
	}
	if input.Webcam == nil {
		return nil, fmt.Errorf("%w: webcam session is required", apperrors.ErrInvalidInput)
	}
	run, err := i.scheduler.Schedule(ctx, input.Duration, input.Webcam, input.Screen, input.OnCapture)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (i *Interactor) Devices(ctx context.Context) ([]dto.DeviceInfo, error) {
	if i.store == nil {
		return []dto.DeviceInfo{}, nil
	}
	manifests, err := i.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DeviceInfo, 0, len(manifests))
	for _, m := range manifests {
		info := dto.DeviceInfo{Name: m.Name, Version: m.Version, Binary: m.Binary, Enabled: m.Enabled}
		for _, source := range m.Sources {
			info.Sources = append(info.Sources, string(source))
		}
		if err := m.Validate(); err != nil {
			info.Error = err.Error()
			results = append(results, info)
			continue
		}
		info.BinaryReachable = fileExists(m.Binary)
		if !info.BinaryReachable {
			info.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
			results = append(results, info)
			continue
		}
		if i.checksum != nil {
			if err := i.checksum(m.Binary, m.SHA256); err != nil {
				info.Error = "checksum mismatch"
				if !errors.Is(err, domain.ErrChecksumMismatch) {
					info.Error = err.Error()
				}
				results = append(results, info)
				continue
			}
		}
		info.ChecksumValid = true
		if m.Enabled && i.prober != nil {
			if err := i.prober.Probe(ctx, m); err != nil {
				info.Error = err.Error()
				i.logger.Warn("device probe failed", "device", m.Name, "error", err)
			} else {
				info.LifecycleOK = true
			}
		}
		results = append(results, info)
	}
	return results, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
