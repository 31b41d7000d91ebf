package domain

import (
	"math"
	"slices"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
)

type SwatchName string

const (
	Vibrant      SwatchName = "Vibrant"
	LightVibrant SwatchName = "LightVibrant"
	DarkVibrant  SwatchName = "DarkVibrant"
	Muted        SwatchName = "Muted"
	LightMuted   SwatchName = "LightMuted"
	DarkMuted    SwatchName = "DarkMuted"
)

// Candidate is a color sampled from an image with its relative weight.
type Candidate struct {
	Color  colorful.Color
	Weight float64
}

type Swatch struct {
	Name       SwatchName
	Hex        string
	Population float64
}

// Palette maps swatch names to the colors chosen for them. Any may be absent.
type Palette map[SwatchName]Swatch

func (p Palette) Get(name SwatchName) (Swatch, bool) {
	s, ok := p[name]
	return s, ok
}

// Strongest returns up to n swatches by descending population, ties broken
// by swatch order.
func (p Palette) Strongest(n int) []Swatch {
	out := make([]Swatch, 0, len(p))
	for _, name := range swatchOrder {
		if s, ok := p[name]; ok {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b Swatch) int {
		switch {
		case a.Population > b.Population:
			return -1
		case a.Population < b.Population:
			return 1
		}
		return 0
	})
	return out[:min(n, len(out))]
}

type target struct {
	name                         SwatchName
	minLuma, targetLuma, maxLuma float64
	minSat, targetSat, maxSat    float64
}

var swatchOrder = []SwatchName{Vibrant, LightVibrant, DarkVibrant, Muted, LightMuted, DarkMuted}

var targets = []target{
	{name: Vibrant, minLuma: 0.3, targetLuma: 0.5, maxLuma: 0.7, minSat: 0.35, targetSat: 1, maxSat: 1},
	{name: LightVibrant, minLuma: 0.55, targetLuma: 0.74, maxLuma: 1, minSat: 0.35, targetSat: 1, maxSat: 1},
	{name: DarkVibrant, minLuma: 0, targetLuma: 0.26, maxLuma: 0.45, minSat: 0.35, targetSat: 1, maxSat: 1},
	{name: Muted, minLuma: 0.3, targetLuma: 0.5, maxLuma: 0.7, minSat: 0, targetSat: 0.3, maxSat: 0.4},
	{name: LightMuted, minLuma: 0.55, targetLuma: 0.74, maxLuma: 1, minSat: 0, targetSat: 0.3, maxSat: 0.4},
	{name: DarkMuted, minLuma: 0, targetLuma: 0.26, maxLuma: 0.45, minSat: 0, targetSat: 0.3, maxSat: 0.4},
}

// saturation, luma, population
var scoreWeights = []float64{3, 6.5, 0.5}

// Classify picks at most one candidate per swatch by HSL target scoring.
// A candidate fills at most one swatch.
func Classify(candidates []Candidate) Palette {
	palette := Palette{}
	if len(candidates) == 0 {
		return palette
	}
	weights := make([]float64, len(candidates))
	for i, c := range candidates {
		weights[i] = math.Max(c.Weight, 0)
	}
	maxWeight := floats.Max(weights)
	if maxWeight <= 0 {
		maxWeight = 1
	}
	used := make([]bool, len(candidates))
	for _, tg := range targets {
		best, bestScore := -1, math.Inf(-1)
		for i, c := range candidates {
			if used[i] {
				continue
			}
			_, sat, luma := c.Color.Clamped().Hsl()
			if sat < tg.minSat || sat > tg.maxSat || luma < tg.minLuma || luma > tg.maxLuma {
				continue
			}
			features := []float64{
				1 - math.Abs(sat-tg.targetSat),
				1 - math.Abs(luma-tg.targetLuma),
				weights[i] / maxWeight,
			}
			score := floats.Dot(features, scoreWeights)
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			continue
		}
		used[best] = true
		palette[tg.name] = Swatch{
			Name:       tg.name,
			Hex:        candidates[best].Color.Clamped().Hex(),
			Population: weights[best],
		}
	}
	return palette
}
