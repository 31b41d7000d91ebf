package service

import (
	"fmt"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"focusreel/internal/modules/animation/domain"
	"focusreel/internal/modules/animation/dto"
	"focusreel/internal/platform/clock"
	"focusreel/internal/platform/logging"
)

// Player advances the phase machine and shuffle stages on clock timers.
// Listeners run outside the lock, in the timer's goroutine.
type Player struct {
	clock  clock.Clock
	logger hclog.Logger

	mu        sync.Mutex
	phase     domain.Phase
	stack     *domain.Stack
	slots     map[string]int
	offsets   []domain.Offset
	listeners []func(dto.Frame)

	// At most one phase timer and one stage timer are pending at a time.
	phaseTimer clock.Timer
	stageTimer clock.Timer
}

func NewPlayer(clk clock.Clock, photos []string, seed uint64, cfg domain.Config, logger hclog.Logger) (*Player, error) {
	if len(photos) == 0 {
		return nil, fmt.Errorf("no photos to animate")
	}
	if cfg.MaxPhotos > 0 && len(photos) > cfg.MaxPhotos {
		photos = photos[:cfg.MaxPhotos]
	}
	rng := domain.NewRand(seed)
	circles := domain.PlanCircles(len(photos), rng, cfg)
	ids := make([]string, len(photos))
	slots := make(map[string]int, len(photos))
	for i := range photos {
		ids[i] = fmt.Sprintf("card-%02d", i)
		slots[ids[i]] = i
	}
	stack, err := domain.NewStack(ids, photos, rng)
	if err != nil {
		return nil, err
	}
	return &Player{
		clock:   clk,
		logger:  logging.OrDiscard(logger).Named("animation"),
		phase:   domain.PhaseInitial,
		stack:   stack,
		slots:   slots,
		offsets: domain.FanOut(circles),
	}, nil
}

func (p *Player) Phase() domain.Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

func (p *Player) Frame() dto.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameLocked()
}

// FrameAt renders the current cards as they would sit in phase.
func (p *Player) FrameAt(phase domain.Phase) dto.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.render(phase)
}

func (p *Player) Subscribe(fn func(dto.Frame)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Player) Play() error {
	return p.fire(domain.EventPlay)
}

func (p *Player) Replay() error {
	return p.fire(domain.EventReplay)
}

func (p *Player) Shuffle() bool {
	p.mu.Lock()
	if p.phase != domain.PhasePile || !p.stack.BeginShuffle() {
		p.mu.Unlock()
		p.logger.Trace("shuffle dropped")
		return false
	}
	p.armStageLocked()
	frame, listeners := p.frameLocked(), p.listenersLocked()
	p.mu.Unlock()
	notify(listeners, frame)
	return true
}

// Stop cancels every pending phase and stage timer.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phaseTimer = replaceTimer(p.phaseTimer, nil)
	p.stageTimer = replaceTimer(p.stageTimer, nil)
}

func (p *Player) fire(event domain.Event) error {
	p.mu.Lock()
	next, err := domain.Transition(p.phase, event)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.phase = next
	if dwell := domain.Dwell(next, p.stack.Len()); dwell > 0 {
		closing := closingEvent(next)
		p.phaseTimer = replaceTimer(p.phaseTimer, p.clock.AfterFunc(dwell, func() {
			if err := p.fire(closing); err != nil {
				p.logger.Warn("animation timer out of step", "error", err)
			}
		}))
	} else {
		p.phaseTimer = replaceTimer(p.phaseTimer, nil)
	}
	frame, listeners := p.frameLocked(), p.listenersLocked()
	p.mu.Unlock()
	notify(listeners, frame)

	// A finished replay fade starts the next cycle.
	if event == domain.EventFadeEnd {
		return p.fire(domain.EventPlay)
	}
	return nil
}

func (p *Player) armStageLocked() {
	dwell := domain.StageDwell(p.stack.Stage())
	p.stageTimer = replaceTimer(p.stageTimer, p.clock.AfterFunc(dwell, p.stepShuffle))
}

func (p *Player) stepShuffle() {
	p.mu.Lock()
	if p.stack.Step() != domain.StageIdle {
		p.armStageLocked()
	} else {
		p.stageTimer = nil
	}
	frame, listeners := p.frameLocked(), p.listenersLocked()
	p.mu.Unlock()
	notify(listeners, frame)
}

func (p *Player) frameLocked() dto.Frame {
	return p.render(p.phase)
}

func (p *Player) render(phase domain.Phase) dto.Frame {
	n := p.stack.Len()
	stage, moving := p.stack.Stage(), p.stack.Moving()
	cards := p.stack.Cards()
	views := make([]dto.CardView, 0, n)
	for _, card := range cards {
		views = append(views, dto.CardView{
			ID:        card.ID,
			Src:       card.Src,
			Pos:       card.Pos,
			Transform: domain.CardTransform(card, p.slots[card.ID], phase, p.offsets, stage, moving, n),
		})
	}
	return dto.Frame{Phase: phase, Stage: stage, Moving: moving, Cards: views}
}

func (p *Player) listenersLocked() []func(dto.Frame) {
	out := make([]func(dto.Frame), len(p.listeners))
	copy(out, p.listeners)
	return out
}

func notify(listeners []func(dto.Frame), frame dto.Frame) {
	for _, fn := range listeners {
		fn(frame)
	}
}

// replaceTimer stops old, which is either fired or superseded, and returns next.
func replaceTimer(old, next clock.Timer) clock.Timer {
	if old != nil {
		old.Stop()
	}
	return next
}

func closingEvent(phase domain.Phase) domain.Event {
	switch phase {
	case domain.PhaseSpread:
		return domain.EventSpreadEnd
	case domain.PhaseCollapse:
		return domain.EventSettled
	case domain.PhaseFadeOut:
		return domain.EventFadeEnd
	}
	return ""
}
