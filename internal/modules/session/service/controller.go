package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	hclog "github.com/hashicorp/go-hclog"

	capturedomain "focusreel/internal/modules/capture/domain"
	capturedto "focusreel/internal/modules/capture/dto"
	capturein "focusreel/internal/modules/capture/port/in"
	"focusreel/internal/modules/session/domain"
	"focusreel/internal/modules/session/dto"
	sessionout "focusreel/internal/modules/session/port/out"
	"focusreel/internal/platform/clock"
	apperrors "focusreel/internal/platform/errors"
	"focusreel/internal/platform/id"
	"focusreel/internal/platform/logging"
)

// staleGrace is how long past its planned end an active marker is trusted.
const staleGrace = 5 * time.Minute

// Controller owns the lifecycle of at most one running session: it opens
// the devices, schedules captures, gathers samples and builds the record.
type Controller struct {
	capture  capturein.Usecase
	active   sessionout.ActiveSessionStore
	clock    clock.Clock
	ids      id.Generator
	validate *validator.Validate
	logger   hclog.Logger

	mu       sync.Mutex
	current  *run
	starting bool
}

type run struct {
	active     domain.ActiveSession
	webcam     capturedomain.Session
	handle     capturein.Run
	stop       context.CancelFunc
	total      int
	onProgress func(dto.Progress)

	mu        sync.Mutex
	samples   []capturedomain.Sample
	cancelled bool

	once   sync.Once
	record domain.Record
	done   chan struct{}
}

func NewController(capture capturein.Usecase, active sessionout.ActiveSessionStore, clk clock.Clock, ids id.Generator, logger hclog.Logger) *Controller {
	return &Controller{
		capture:  capture,
		active:   active,
		clock:    clk,
		ids:      ids,
		validate: validator.New(),
		logger:   logging.OrDiscard(logger).Named("session"),
	}
}

func (c *Controller) Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error) {
	if err := c.validate.Struct(input); err != nil {
		return dto.StartOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	// The slot is reserved under the lock; devices open and callbacks run
	// without it.
	c.mu.Lock()
	if c.starting || (c.current != nil && !c.current.finished()) {
		c.mu.Unlock()
		return dto.StartOutput{}, apperrors.ErrActiveSessionExists
	}
	c.starting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.starting = false
		c.mu.Unlock()
	}()

	if err := c.checkMarker(ctx); err != nil {
		return dto.StartOutput{}, err
	}

	webcam, err := c.capture.OpenWebcam(ctx)
	if err != nil {
		notify(input.OnDenied, err)
		return dto.StartOutput{}, err
	}
	screen, err := c.capture.OpenScreen(ctx)
	if err != nil {
		notify(input.OnDenied, err)
		c.logger.Info("screen capture unavailable, recording webcam only", "error", err)
		screen = nil
	}

	duration := time.Duration(input.DurationMinutes) * time.Minute
	r := &run{
		active: domain.ActiveSession{
			SessionID:       c.ids.New(),
			TaskName:        input.TaskName,
			DurationMinutes: input.DurationMinutes,
			StartedAt:       c.clock.Now(),
		},
		webcam:     webcam,
		total:      c.capture.Plan(duration).Total,
		onProgress: input.OnProgress,
		done:       make(chan struct{}),
	}
	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	r.stop = stop
	handle, err := c.capture.Schedule(runCtx, capturedto.ScheduleInput{
		Duration:  duration,
		Webcam:    webcam,
		Screen:    screen,
		OnCapture: r.add,
	})
	if err != nil {
		stop()
		_ = webcam.Close()
		if screen != nil {
			_ = screen.Close()
		}
		return dto.StartOutput{}, err
	}
	r.handle = handle

	if c.active != nil {
		if err := c.active.SaveActive(ctx, r.active); err != nil {
			c.logger.Warn("could not record active session", "error", err)
		}
	}
	c.mu.Lock()
	c.current = r
	c.mu.Unlock()
	go c.watch(r)

	c.logger.Info("session started", "id", r.active.SessionID, "task", r.active.TaskName, "minutes", r.active.DurationMinutes, "captures", r.total, "webcam_only", screen == nil)
	return dto.StartOutput{
		SessionID:  r.active.SessionID,
		StartedAt:  r.active.StartedAt,
		Total:      r.total,
		WebcamOnly: screen == nil,
	}, nil
}

// checkMarker rejects a start while another process runs a session in the
// same workspace. Markers left by a dead process are cleared.
func (c *Controller) checkMarker(ctx context.Context) error {
	if c.active == nil {
		return nil
	}
	marker, err := c.active.LoadActive(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if !marker.Stale(c.clock.Now(), staleGrace) {
		return apperrors.ErrActiveSessionExists
	}
	c.logger.Warn("clearing stale active session", "id", marker.SessionID)
	return c.active.ClearActive(ctx)
}

func (c *Controller) watch(r *run) {
	<-r.handle.Done()
	r.mu.Lock()
	completed := !r.cancelled
	r.mu.Unlock()
	c.complete(r, completed)
}

func (c *Controller) complete(r *run, completed bool) {
	r.once.Do(func() {
		r.stop()
		if err := r.webcam.Close(); err != nil {
			c.logger.Warn("close webcam", "error", err)
		}
		r.mu.Lock()
		r.record = domain.BuildRecord(r.active, r.samples, c.clock.Now(), completed)
		r.mu.Unlock()
		if c.active != nil {
			if err := c.active.ClearActive(context.Background()); err != nil {
				c.logger.Warn("could not clear active session", "error", err)
			}
		}
		c.logger.Info("session ended", "id", r.active.SessionID, "completed", completed, "frames", r.record.Frames())
		close(r.done)
	})
}

func (c *Controller) Wait(ctx context.Context) (dto.RecordOutput, error) {
	c.mu.Lock()
	r := c.current
	c.mu.Unlock()
	if r == nil {
		return dto.RecordOutput{}, apperrors.ErrNoActiveSession
	}
	select {
	case <-r.done:
	case <-ctx.Done():
		r.cancel()
		<-r.done
	}
	return dto.RecordOutput{Record: r.record}, nil
}

func (c *Controller) Cancel(_ context.Context) error {
	c.mu.Lock()
	r := c.current
	c.mu.Unlock()
	if r == nil || r.finished() {
		return apperrors.ErrNoActiveSession
	}
	r.cancel()
	<-r.done
	return nil
}

func (c *Controller) Active(_ context.Context) (dto.ActiveSessionOutput, error) {
	c.mu.Lock()
	r := c.current
	c.mu.Unlock()
	if r != nil && !r.finished() {
		r.mu.Lock()
		captured := len(r.samples)
		r.mu.Unlock()
		return dto.ActiveSessionOutput{
			SessionID:       r.active.SessionID,
			TaskName:        r.active.TaskName,
			DurationMinutes: r.active.DurationMinutes,
			StartedAt:       r.active.StartedAt,
			Captured:        captured,
			Total:           r.total,
		}, nil
	}
	if c.active == nil {
		return dto.ActiveSessionOutput{}, apperrors.ErrNoActiveSession
	}
	marker, err := c.active.LoadActive(context.Background())
	if err != nil {
		return dto.ActiveSessionOutput{}, err
	}
	return dto.ActiveSessionOutput{
		SessionID:       marker.SessionID,
		TaskName:        marker.TaskName,
		DurationMinutes: marker.DurationMinutes,
		StartedAt:       marker.StartedAt,
	}, nil
}

func (r *run) add(sample capturedomain.Sample) {
	r.mu.Lock()
	if r.cancelled || len(r.samples) >= r.total {
		r.mu.Unlock()
		return
	}
	r.samples = append(r.samples, sample)
	progress := dto.Progress{Captured: len(r.samples), Total: r.total, Offset: sample.Offset}
	r.mu.Unlock()
	if r.onProgress != nil {
		r.onProgress(progress)
	}
}

func (r *run) cancel() {
	r.mu.Lock()
	r.cancelled = true
	r.mu.Unlock()
	r.handle.Cancel()
}

func (r *run) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func notify(fn func(error), err error) {
	if fn != nil {
		fn(err)
	}
}
