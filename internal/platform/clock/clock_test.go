package clock

import (
	"testing"
	"time"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	t.Parallel()
	f := NewFake(time.Unix(0, 0))
	var order []int
	f.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	f.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	stopped := f.AfterFunc(2*time.Second, func() { order = append(order, 2) })
	if !stopped.Stop() {
		t.Fatalf("expected first stop to report true")
	}
	f.Advance(2 * time.Second)
	if len(order) != 1 || order[0] != 1 {
		t.Fatalf("unexpected order after 2s: %v", order)
	}
	f.Advance(time.Second)
	if len(order) != 2 || order[1] != 3 {
		t.Fatalf("unexpected order after 3s: %v", order)
	}
	if f.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", f.Pending())
	}
	if got := f.Now(); !got.Equal(time.Unix(3, 0)) {
		t.Fatalf("unexpected now: %v", got)
	}
}

func TestFakeFiresTimersArmedByCallbacks(t *testing.T) {
	t.Parallel()
	f := NewFake(time.Unix(0, 0))
	fired := 0
	f.AfterFunc(time.Second, func() {
		fired++
		f.AfterFunc(time.Second, func() { fired++ })
	})
	f.Advance(5 * time.Second)
	if fired != 2 {
		t.Fatalf("expected chained timers to fire, got %d", fired)
	}
}
