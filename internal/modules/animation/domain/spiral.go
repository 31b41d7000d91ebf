package domain

import (
	"math"
	"math/rand/v2"
	"time"
)

const (
	DefaultBaseRadius      = 100.0
	DefaultRadiusIncrement = 8.0
	DefaultMaxPhotos       = 12
	StartAngle             = 250.0
	StaggerStep            = 60 * time.Millisecond

	minPerCircle  = 4
	perCircleSpan = 3
)

type Config struct {
	BaseRadius      float64
	RadiusIncrement float64
	MaxPhotos       int
}

func DefaultConfig() Config {
	return Config{BaseRadius: DefaultBaseRadius, RadiusIncrement: DefaultRadiusIncrement, MaxPhotos: DefaultMaxPhotos}
}

func (c Config) normalized() Config {
	if c.BaseRadius <= 0 {
		c.BaseRadius = DefaultBaseRadius
	}
	if c.RadiusIncrement < 0 {
		c.RadiusIncrement = DefaultRadiusIncrement
	}
	if c.MaxPhotos <= 0 {
		c.MaxPhotos = DefaultMaxPhotos
	}
	return c
}

// NewRand returns the seeded generator every layout decision draws from.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type Circle struct {
	Index       int
	PhotosCount int
	Radius      float64
}

// PlanCircles assigns min(n, MaxPhotos) photos to concentric circles of
// four to six photos each; only the last circle may hold fewer.
func PlanCircles(n int, rng *rand.Rand, cfg Config) []Circle {
	cfg = cfg.normalized()
	remaining := min(n, cfg.MaxPhotos)
	circles := []Circle{}
	for i := 0; remaining > 0; i++ {
		count := min(int(rng.Float64()*perCircleSpan)+minPerCircle, remaining)
		circles = append(circles, Circle{
			Index:       i,
			PhotosCount: count,
			Radius:      cfg.BaseRadius + float64(i)*cfg.RadiusIncrement,
		})
		remaining -= count
	}
	return circles
}

// Offset is a card's spread position relative to the pile center.
type Offset struct {
	X     float64
	Y     float64
	Delay time.Duration
}

func FanOut(circles []Circle) []Offset {
	offsets := []Offset{}
	for _, circle := range circles {
		step := 360.0 / float64(circle.PhotosCount)
		for j := 0; j < circle.PhotosCount; j++ {
			theta := (StartAngle + float64(j)*step) * math.Pi / 180
			offsets = append(offsets, Offset{
				X:     circle.Radius * math.Cos(theta),
				Y:     circle.Radius * math.Sin(theta),
				Delay: time.Duration(len(offsets)) * StaggerStep,
			})
		}
	}
	return offsets
}

// Spiral is PlanCircles followed by FanOut for a fresh generator.
func Spiral(n int, seed uint64, cfg Config) ([]Circle, []Offset) {
	circles := PlanCircles(n, NewRand(seed), cfg)
	return circles, FanOut(circles)
}
