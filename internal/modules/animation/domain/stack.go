package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	MaxRotation  = 8.0
	PileFanStep  = 6.0
	PileLiftStep = 1.5

	LiftDuration   = 120 * time.Millisecond
	PeelDuration   = 280 * time.Millisecond
	SettleDuration = 200 * time.Millisecond
)

// CardState is one photo in the pile. Pos 0 is the top card.
type CardState struct {
	ID       string
	Src      string
	Pos      int
	Z        int
	Rotation float64
}

// ShuffleStage tracks the moving card through one shuffle cycle.
type ShuffleStage string

const (
	StageIdle   ShuffleStage = "idle"
	StageLift   ShuffleStage = "lift"
	StagePeel   ShuffleStage = "peel"
	StageSettle ShuffleStage = "settle"
)

// Stack is the shuffleable pile. It is not safe for concurrent use.
type Stack struct {
	cards  []CardState
	rng    *rand.Rand
	moving string
	stage  ShuffleStage
}

func NewStack(ids, srcs []string, rng *rand.Rand) (*Stack, error) {
	if len(ids) != len(srcs) {
		return nil, fmt.Errorf("card ids and sources differ in length: %d != %d", len(ids), len(srcs))
	}
	n := len(ids)
	cards := make([]CardState, n)
	for i := range ids {
		cards[i] = CardState{
			ID:       ids[i],
			Src:      srcs[i],
			Pos:      i,
			Z:        n - i,
			Rotation: randomRotation(rng),
		}
	}
	return &Stack{cards: cards, rng: rng, stage: StageIdle}, nil
}

func randomRotation(rng *rand.Rand) float64 {
	return (rng.Float64()*2 - 1) * MaxRotation
}

func (s *Stack) Len() int {
	return len(s.cards)
}

func (s *Stack) Cards() []CardState {
	out := make([]CardState, len(s.cards))
	copy(out, s.cards)
	return out
}

func (s *Stack) Stage() ShuffleStage {
	return s.stage
}

// Moving is the id of the card being shuffled, empty when idle.
func (s *Stack) Moving() string {
	return s.moving
}

func (s *Stack) Top() (CardState, bool) {
	for _, c := range s.cards {
		if c.Pos == 0 {
			return c, true
		}
	}
	return CardState{}, false
}

// BeginShuffle lifts the top card. It returns false, and changes
// nothing, while another card is still moving or the pile has fewer
// than two cards.
func (s *Stack) BeginShuffle() bool {
	if s.moving != "" || len(s.cards) < 2 {
		return false
	}
	top, ok := s.Top()
	if !ok {
		return false
	}
	s.moving = top.ID
	s.stage = StageLift
	return true
}

// Step moves the shuffle to its next stage and returns it. Settling
// sends the top card to the back; the following step releases the guard.
func (s *Stack) Step() ShuffleStage {
	switch s.stage {
	case StageLift:
		s.stage = StagePeel
	case StagePeel:
		s.settle()
		s.stage = StageSettle
	case StageSettle:
		s.stage = StageIdle
		s.moving = ""
	}
	return s.stage
}

// StageDwell is how long a shuffle stage lasts before the next Step.
func StageDwell(stage ShuffleStage) time.Duration {
	switch stage {
	case StageLift:
		return LiftDuration
	case StagePeel:
		return PeelDuration
	case StageSettle:
		return SettleDuration
	}
	return 0
}

func (s *Stack) settle() {
	n := len(s.cards)
	minZ := s.cards[0].Z
	for _, c := range s.cards {
		minZ = min(minZ, c.Z)
	}
	for i := range s.cards {
		c := &s.cards[i]
		if c.ID == s.moving {
			c.Pos = n - 1
			c.Z = minZ
			c.Rotation = randomRotation(s.rng)
			continue
		}
		c.Pos--
		c.Z++
	}
}
