package dto

import "focusreel/internal/modules/animation/domain"

type CardView struct {
	ID        string
	Src       string
	Pos       int
	Transform domain.Transform
}

// Frame is an observable snapshot of the animation.
type Frame struct {
	Phase  domain.Phase
	Stage  domain.ShuffleStage
	Moving string
	Cards  []CardView
}
