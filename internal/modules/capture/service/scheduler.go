package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"focusreel/internal/modules/capture/domain"
	"focusreel/internal/platform/clock"
	"focusreel/internal/platform/logging"
)

type Scheduler struct {
	clock  clock.Clock
	policy domain.Policy
	logger hclog.Logger
}

func NewScheduler(clk clock.Clock, policy domain.Policy, logger hclog.Logger) *Scheduler {
	return &Scheduler{clock: clk, policy: policy, logger: logging.OrDiscard(logger).Named("capture")}
}

func (s *Scheduler) Plan(duration time.Duration) domain.Schedule {
	return s.policy.Plan(duration)
}

// Schedule arms one timer per planned tick. Each tick grabs the screen and
// webcam frames in parallel and hands the pair to onCapture only when both
// succeed. A grab is abandoned after the plan's grab timeout, and the run
// ends at the plan deadline even if a device never answers. The returned
// Run owns screen and closes it when cancelled or when the run ended.
func (s *Scheduler) Schedule(ctx context.Context, duration time.Duration, webcam, screen domain.Session, onCapture func(domain.Sample)) (*Run, error) {
	if webcam == nil {
		return nil, fmt.Errorf("webcam session is required")
	}
	if onCapture == nil {
		onCapture = func(domain.Sample) {}
	}
	plan := s.policy.Plan(duration)
	runCtx, cancel := context.WithCancel(ctx)
	r := &Run{
		ctx:       runCtx,
		cancelCtx: cancel,
		webcam:    webcam,
		screen:    screen,
		onCapture: onCapture,
		total:     plan.Total(),
		timeout:   plan.GrabTimeout,
		logger:    s.logger,
		done:      make(chan struct{}),
	}
	if screen == nil {
		s.logger.Info("screen capture unavailable, running webcam-only")
	}
	s.logger.Debug("capture plan", "duration", duration, "total", plan.Total(), "interval", plan.Interval)

	r.mu.Lock()
	for i, offset := range plan.Offsets {
		index := i + 1
		at := offset
		r.timers = append(r.timers, s.clock.AfterFunc(at, func() { r.tick(index, at) }))
	}
	if r.total > 0 {
		r.timers = append(r.timers, s.clock.AfterFunc(plan.Deadline(), r.expire))
	}
	r.mu.Unlock()

	if r.total == 0 {
		r.finish()
	}
	go func() {
		select {
		case <-ctx.Done():
			r.Cancel()
		case <-r.done:
		}
	}()
	return r, nil
}

type Run struct {
	ctx       context.Context
	cancelCtx context.CancelFunc
	webcam    domain.Session
	screen    domain.Session
	onCapture func(domain.Sample)
	timeout   time.Duration
	logger    hclog.Logger

	mu        sync.Mutex
	deliverMu sync.Mutex
	timers    []clock.Timer
	total     int
	resolved  int
	delivered int
	cancelled bool

	doneOnce  sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

func (r *Run) Done() <-chan struct{} {
	return r.done
}

func (r *Run) Delivered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delivered
}

func (r *Run) Total() int {
	return r.total
}

// Cancel stops pending timers, aborts in-flight grabs and releases the
// screen session. Safe to call any number of times.
func (r *Run) Cancel() {
	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		return
	}
	r.cancelled = true
	for _, t := range r.timers {
		t.Stop()
	}
	r.mu.Unlock()
	r.cancelCtx()
	r.finish()
}

func (r *Run) expire() {
	r.mu.Lock()
	pending := r.total - r.resolved
	r.mu.Unlock()
	if pending > 0 {
		r.logger.Warn("capture deadline passed, abandoning pending grabs", "pending", pending)
	}
	r.Cancel()
}

func (r *Run) tick(index int, offset time.Duration) {
	r.mu.Lock()
	cancelled := r.cancelled
	r.mu.Unlock()
	if cancelled {
		return
	}
	defer r.resolve()

	sample, err := r.capture(index, offset)
	if err != nil {
		if r.ctx.Err() != nil {
			return
		}
		r.logger.Warn("capture tick dropped", "tick", index, "error", err)
		return
	}
	r.deliver(sample)
}

func (r *Run) capture(index int, offset time.Duration) (domain.Sample, error) {
	sample := domain.Sample{Index: index, Offset: offset}
	ctx := r.ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	g, gctx := errgroup.WithContext(ctx)
	if r.screen != nil {
		g.Go(func() error {
			shot, err := r.screen.Capture(gctx)
			if err != nil {
				return fmt.Errorf("screenshot: %w", err)
			}
			sample.Screenshot = shot
			return nil
		})
	}
	g.Go(func() error {
		photo, err := r.webcam.Capture(gctx)
		if err != nil {
			return fmt.Errorf("webcam photo: %w", err)
		}
		sample.WebcamPhoto = photo
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Sample{}, err
	}
	return sample, nil
}

func (r *Run) deliver(sample domain.Sample) {
	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()

	r.mu.Lock()
	if r.cancelled || r.delivered >= r.total {
		r.mu.Unlock()
		return
	}
	r.delivered++
	r.mu.Unlock()

	r.onCapture(sample)
}

func (r *Run) resolve() {
	r.mu.Lock()
	r.resolved++
	finished := r.resolved >= r.total
	r.mu.Unlock()
	if finished {
		r.finish()
	}
}

func (r *Run) finish() {
	r.mu.Lock()
	for _, t := range r.timers {
		t.Stop()
	}
	r.mu.Unlock()
	r.closeOnce.Do(func() {
		if r.screen == nil {
			return
		}
		if err := r.screen.Close(); err != nil {
			r.logger.Warn("release screen session", "error", err)
		}
	})
	r.doneOnce.Do(func() { close(r.done) })
}
