package domain

// Transform is where a card is drawn relative to the pile center.
type Transform struct {
	X        float64
	Y        float64
	Scale    float64
	Rotation float64
	Opacity  float64
	Z        int
}

// CardTransform resolves a card's pose for the current phase and shuffle
// stage. offsets is the spread fan-out, indexed by the card's slot.
func CardTransform(card CardState, slot int, phase Phase, offsets []Offset, stage ShuffleStage, moving string, n int) Transform {
	switch phase {
	case PhaseInitial:
		return Transform{Scale: 0, Opacity: 0, Z: card.Z}
	case PhaseFadeOut:
		return Transform{Scale: 0.6, Opacity: 0, Z: card.Z}
	case PhaseSpread:
		t := Transform{Scale: 1, Opacity: 1, Z: card.Z}
		if slot >= 0 && slot < len(offsets) {
			t.X, t.Y = offsets[slot].X, offsets[slot].Y
		}
		return t
	}

	t := Transform{
		X:        float64(card.Pos) * PileFanStep,
		Y:        -float64(card.Pos) * PileLiftStep,
		Scale:    1,
		Rotation: card.Rotation,
		Opacity:  1,
		Z:        card.Z,
	}
	if phase != PhasePile || card.ID != moving {
		return t
	}
	switch stage {
	case StageLift:
		t.Scale = 0.95
		t.Rotation = card.Rotation - 6
		t.Z = n + 1
	case StagePeel:
		t.X += 220
		t.Scale = 0.9
		t.Rotation = card.Rotation + 12
		t.Opacity = 0
		t.Z = n + 1
	}
	return t
}
