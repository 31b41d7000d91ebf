package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"focusreel/internal/modules/capture/domain"
	"focusreel/internal/modules/capture/service"
	"focusreel/internal/platform/clock"
)

type fakeSession struct {
	source domain.Source
	mu     sync.Mutex
	calls  int
	failOn map[int]bool
	closed int
}

func newFakeSession(source domain.Source) *fakeSession {
	return &fakeSession{source: source, failOn: map[int]bool{}}
}

func (s *fakeSession) Source() domain.Source { return s.source }

func (s *fakeSession) Capture(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failOn[s.calls] {
		return "", errors.New("device busy")
	}
	return fmt.Sprintf("data:image/png;base64,%s%d", s.source, s.calls), nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *fakeSession) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type sink struct {
	mu      sync.Mutex
	samples []domain.Sample
}

func (s *sink) add(sample domain.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
}

func (s *sink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

func newScheduler(clk clock.Clock) *service.Scheduler {
	return service.NewScheduler(clk, domain.DefaultPolicy(), nil)
}

func isDone(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestScheduleFiresAtPlannedOffsets(t *testing.T) {
	t.Parallel()
	clk := clock.NewFake(time.Unix(0, 0))
	webcam := newFakeSession(domain.SourceWebcam)
	screen := newFakeSession(domain.SourceScreen)
	out := &sink{}

	run, err := newScheduler(clk).Schedule(context.Background(), 25*time.Minute, webcam, screen, out.add)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if run.Total() != 5 {
		t.Fatalf("expected 5 planned captures, got %d", run.Total())
	}

	clk.Advance(299 * time.Second)
	if out.len() != 0 {
		t.Fatalf("expected no capture before first interval, got %d", out.len())
	}
	clk.Advance(time.Second)
	if out.len() != 1 {
		t.Fatalf("expected one capture at 300s, got %d", out.len())
	}
	clk.Advance(1200 * time.Second)
	if out.len() != 5 {
		t.Fatalf("expected 5 captures at duration end, got %d", out.len())
	}
	for i, sample := range out.samples {
		if sample.Offset != time.Duration(i+1)*300*time.Second {
			t.Fatalf("sample %d at unexpected offset %v", i, sample.Offset)
		}
		if sample.Screenshot == "" || sample.WebcamPhoto == "" {
			t.Fatalf("sample %d missing a frame: %+v", i, sample)
		}
	}
	if !isDone(run.Done()) {
		t.Fatalf("expected run to be done after last tick")
	}
	if screen.closeCount() != 1 {
		t.Fatalf("expected screen closed once, got %d", screen.closeCount())
	}
	if webcam.closeCount() != 0 {
		t.Fatalf("webcam is caller-owned and must stay open")
	}
}

func TestScheduleDropsFailedTicks(t *testing.T) {
	t.Parallel()
	clk := clock.NewFake(time.Unix(0, 0))
	webcam := newFakeSession(domain.SourceWebcam)
	webcam.failOn[2] = true
	screen := newFakeSession(domain.SourceScreen)
	screen.failOn[4] = true
	out := &sink{}

	run, err := newScheduler(clk).Schedule(context.Background(), 10*time.Minute, webcam, screen, out.add)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	clk.Advance(10 * time.Minute)
	if out.len() != 2 {
		t.Fatalf("expected 2 of 4 samples to survive, got %d", out.len())
	}
	if run.Delivered() != 2 {
		t.Fatalf("unexpected delivered count: %d", run.Delivered())
	}
	if !isDone(run.Done()) {
		t.Fatalf("expected run to finish even with dropped ticks")
	}
}

func TestCancelStopsPendingTicksAndIsIdempotent(t *testing.T) {
	t.Parallel()
	clk := clock.NewFake(time.Unix(0, 0))
	webcam := newFakeSession(domain.SourceWebcam)
	screen := newFakeSession(domain.SourceScreen)
	out := &sink{}

	run, err := newScheduler(clk).Schedule(context.Background(), time.Hour, webcam, screen, out.add)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	clk.Advance(10 * time.Minute)
	if out.len() != 2 {
		t.Fatalf("expected 2 samples before cancel, got %d", out.len())
	}
	run.Cancel()
	run.Cancel()
	if clk.Pending() != 0 {
		t.Fatalf("expected all timers stopped, %d pending", clk.Pending())
	}
	clk.Advance(time.Hour)
	if out.len() != 2 {
		t.Fatalf("expected no samples after cancel, got %d", out.len())
	}
	if !isDone(run.Done()) {
		t.Fatalf("expected done after cancel")
	}
	if screen.closeCount() != 1 {
		t.Fatalf("expected screen closed exactly once, got %d", screen.closeCount())
	}
	if webcam.closeCount() != 0 {
		t.Fatalf("cancel must not close the webcam")
	}
}

func TestCancelFromCallbackDoesNotDeadlock(t *testing.T) {
	t.Parallel()
	clk := clock.NewFake(time.Unix(0, 0))
	webcam := newFakeSession(domain.SourceWebcam)
	var run *service.Run
	count := 0
	run, err := newScheduler(clk).Schedule(context.Background(), 20*time.Minute, webcam, nil, func(domain.Sample) {
		count++
		run.Cancel()
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	clk.Advance(20 * time.Minute)
	if count != 1 {
		t.Fatalf("expected a single delivery before cancel, got %d", count)
	}
}

func TestScheduleWebcamOnly(t *testing.T) {
	t.Parallel()
	clk := clock.NewFake(time.Unix(0, 0))
	webcam := newFakeSession(domain.SourceWebcam)
	out := &sink{}

	if _, err := newScheduler(clk).Schedule(context.Background(), 20*time.Minute, webcam, nil, out.add); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	clk.Advance(20 * time.Minute)
	if out.len() != 4 {
		t.Fatalf("expected 4 samples, got %d", out.len())
	}
	for _, sample := range out.samples {
		if sample.Screenshot != "" {
			t.Fatalf("webcam-only sample carries a screenshot: %+v", sample)
		}
		if sample.WebcamPhoto == "" {
			t.Fatalf("sample missing webcam photo")
		}
	}
}

func TestContextCancellationCancelsRun(t *testing.T) {
	t.Parallel()
	clk := clock.NewFake(time.Unix(0, 0))
	screen := newFakeSession(domain.SourceScreen)
	ctx, cancel := context.WithCancel(context.Background())
	run, err := newScheduler(clk).Schedule(ctx, time.Hour, newFakeSession(domain.SourceWebcam), screen, nil)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	cancel()
	select {
	case <-run.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not observe context cancellation")
	}
	if screen.closeCount() != 1 {
		t.Fatalf("expected screen closed after context cancel")
	}
}

// stuckSession blocks its first capture. With honorCtx it returns once the
// grab context ends, otherwise it waits for release.
type stuckSession struct {
	*fakeSession
	honorCtx bool
	release  chan struct{}
}

func (s *stuckSession) Capture(ctx context.Context) (string, error) {
	s.mu.Lock()
	first := s.calls == 0
	s.mu.Unlock()
	if !first {
		return s.fakeSession.Capture(ctx)
	}
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.honorCtx {
		<-ctx.Done()
		return "", ctx.Err()
	}
	<-s.release
	return "data:image/png;base64,late", nil
}

func TestStuckGrabOnlyCostsItsOwnTick(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		honorCtx bool
	}{
		{name: "grab times out", honorCtx: true},
		{name: "grab ignores context", honorCtx: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			webcam := &stuckSession{fakeSession: newFakeSession(domain.SourceWebcam), honorCtx: tc.honorCtx, release: make(chan struct{})}
			screen := newFakeSession(domain.SourceScreen)
			out := &sink{}

			run, err := newScheduler(clock.SystemClock{}).Schedule(context.Background(), 200*time.Millisecond, webcam, screen, out.add)
			if err != nil {
				t.Fatalf("schedule: %v", err)
			}
			select {
			case <-run.Done():
			case <-time.After(2 * time.Second):
				close(webcam.release)
				t.Fatalf("run still not done after 2s; delivered=%d of %d", run.Delivered(), run.Total())
			}
			if got := run.Delivered(); got != run.Total()-1 {
				t.Fatalf("expected every tick but the stuck one, got %d of %d", got, run.Total())
			}
			if screen.closeCount() != 1 {
				t.Fatalf("expected screen released at the end, got %d", screen.closeCount())
			}

			close(webcam.release)
			time.Sleep(20 * time.Millisecond)
			if got := out.len(); got != run.Total()-1 {
				t.Fatalf("late grab must not be delivered, got %d samples", got)
			}
		})
	}
}
