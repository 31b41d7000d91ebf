package service_test

import (
	"testing"
	"time"

	"focusreel/internal/modules/animation/domain"
	"focusreel/internal/modules/animation/dto"
	"focusreel/internal/modules/animation/service"
	"focusreel/internal/platform/clock"
)

func photos(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "data:image/png;base64,AAAA"
	}
	return out
}

func newPlayer(t *testing.T, clk *clock.Fake, n int) *service.Player {
	t.Helper()
	p, err := service.NewPlayer(clk, photos(n), 42, domain.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	return p
}

func settleToPile(t *testing.T, clk *clock.Fake, p *service.Player, n int) {
	t.Helper()
	if err := p.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	clk.Advance(domain.Dwell(domain.PhaseSpread, n))
	if p.Phase() != domain.PhaseCollapse {
		t.Fatalf("expected collapse after spread, got %s", p.Phase())
	}
	clk.Advance(domain.Dwell(domain.PhaseCollapse, n))
	if p.Phase() != domain.PhasePile {
		t.Fatalf("expected pile after collapse, got %s", p.Phase())
	}
}

func TestPlayerRunsLifecycle(t *testing.T) {
	t.Parallel()
	clk := clock.NewFake(time.Unix(0, 0))
	p := newPlayer(t, clk, 6)
	var phases []domain.Phase
	p.Subscribe(func(f dto.Frame) {
		if len(phases) == 0 || phases[len(phases)-1] != f.Phase {
			phases = append(phases, f.Phase)
		}
	})
	settleToPile(t, clk, p, 6)
	want := []domain.Phase{domain.PhaseSpread, domain.PhaseCollapse, domain.PhasePile}
	if len(phases) != len(want) {
		t.Fatalf("observed phases %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("observed phases %v, want %v", phases, want)
		}
	}
}

func TestPlayerShuffleOnlyInPile(t *testing.T) {
	t.Parallel()
	clk := clock.NewFake(time.Unix(0, 0))
	p := newPlayer(t, clk, 4)
	if p.Shuffle() {
		t.Fatalf("shuffle must be refused before the pile forms")
	}
	if err := p.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if p.Shuffle() {
		t.Fatalf("shuffle must be refused while spreading")
	}
}

func TestPlayerDropsShuffleWhileMoving(t *testing.T) {
	t.Parallel()
	clk := clock.NewFake(time.Unix(0, 0))
	p := newPlayer(t, clk, 5)
	settleToPile(t, clk, p, 5)
	before := p.Frame()

	if !p.Shuffle() {
		t.Fatalf("expected first shuffle to start")
	}
	if p.Shuffle() {
		t.Fatalf("second shuffle during flight must be dropped")
	}
	clk.Advance(time.Second)
	after := p.Frame()
	if after.Stage != domain.StageIdle || after.Moving != "" {
		t.Fatalf("expected shuffle to finish, got stage %s", after.Stage)
	}
	for i := range before.Cards {
		want := (before.Cards[i].Pos + 4) % 5
		if after.Cards[i].Pos != want {
			t.Fatalf("card %s at pos %d, want %d after one shuffle", after.Cards[i].ID, after.Cards[i].Pos, want)
		}
	}
	if !p.Shuffle() {
		t.Fatalf("guard must release after the cycle")
	}
}

func TestPlayerReplayRestartsCycle(t *testing.T) {
	t.Parallel()
	clk := clock.NewFake(time.Unix(0, 0))
	p := newPlayer(t, clk, 4)
	settleToPile(t, clk, p, 4)
	if err := p.Replay(); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if p.Phase() != domain.PhaseFadeOut {
		t.Fatalf("expected fadeOut, got %s", p.Phase())
	}
	clk.Advance(domain.FadeOutDuration)
	if p.Phase() != domain.PhaseSpread {
		t.Fatalf("expected the cycle to restart into spread, got %s", p.Phase())
	}
	if err := p.Replay(); err == nil {
		t.Fatalf("replay is only valid from pile")
	}
}

func TestPlayerCapsPhotos(t *testing.T) {
	t.Parallel()
	p := newPlayer(t, clock.NewFake(time.Unix(0, 0)), 20)
	if got := len(p.Frame().Cards); got != 12 {
		t.Fatalf("expected 12 cards, got %d", got)
	}
	if _, err := service.NewPlayer(clock.NewFake(time.Unix(0, 0)), nil, 1, domain.DefaultConfig(), nil); err == nil {
		t.Fatalf("expected error for no photos")
	}
}

func TestFrameAtPileIsDeterministic(t *testing.T) {
	t.Parallel()
	a := newPlayer(t, clock.NewFake(time.Unix(0, 0)), 6).FrameAt(domain.PhasePile)
	b := newPlayer(t, clock.NewFake(time.Unix(0, 0)), 6).FrameAt(domain.PhasePile)
	for i := range a.Cards {
		if a.Cards[i].Transform != b.Cards[i].Transform {
			t.Fatalf("card %d pose differs for the same seed", i)
		}
	}
}
