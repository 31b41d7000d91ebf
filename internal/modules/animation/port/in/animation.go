package in

import (
	"focusreel/internal/modules/animation/domain"
	"focusreel/internal/modules/animation/dto"
)

// Player drives the spiral/pile animation for one set of photos.
type Player interface {
	Play() error
	Replay() error
	// Shuffle starts one shuffle cycle; false means it was dropped.
	Shuffle() bool
	Phase() domain.Phase
	Frame() dto.Frame
	Subscribe(fn func(dto.Frame))
	Stop()
}

type Usecase interface {
	Open(photos []string) (Player, error)
	// Pile is the settled pile layout, used for static renders.
	Pile(photos []string) ([]dto.CardView, error)
}
