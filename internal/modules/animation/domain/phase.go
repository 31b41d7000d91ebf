package domain

import (
	"fmt"
	"time"
)

type Phase string

const (
	PhaseInitial  Phase = "initial"
	PhaseSpread   Phase = "spread"
	PhaseCollapse Phase = "collapse"
	PhasePile     Phase = "pile"
	PhaseFadeOut  Phase = "fadeOut"
)

type Event string

const (
	EventPlay      Event = "play"
	EventSpreadEnd Event = "spread_end"
	EventSettled   Event = "settled"
	EventReplay    Event = "replay"
	EventFadeEnd   Event = "fade_end"
)

const (
	SpreadDuration   = 700 * time.Millisecond
	CollapseDuration = 450 * time.Millisecond
	FadeOutDuration  = 250 * time.Millisecond
)

// Transition is the phase machine:
//
//	initial --play--> spread --spread_end--> collapse --settled--> pile
//	pile --replay--> fadeOut --fade_end--> initial
func Transition(phase Phase, event Event) (Phase, error) {
	switch {
	case phase == PhaseInitial && event == EventPlay:
		return PhaseSpread, nil
	case phase == PhaseSpread && event == EventSpreadEnd:
		return PhaseCollapse, nil
	case phase == PhaseCollapse && event == EventSettled:
		return PhasePile, nil
	case phase == PhasePile && event == EventReplay:
		return PhaseFadeOut, nil
	case phase == PhaseFadeOut && event == EventFadeEnd:
		return PhaseInitial, nil
	}
	return phase, fmt.Errorf("invalid animation event %s in phase %s", event, phase)
}

// Dwell is how long a timed phase lasts before its closing event.
// The spread waits for the last staggered card as well.
func Dwell(phase Phase, cards int) time.Duration {
	switch phase {
	case PhaseSpread:
		return SpreadDuration + time.Duration(max(cards-1, 0))*StaggerStep
	case PhaseCollapse:
		return CollapseDuration
	case PhaseFadeOut:
		return FadeOutDuration
	}
	return 0
}
