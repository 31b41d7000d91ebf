package domain

import (
	"math"
	"testing"
)

func TestPlanCirclesPartitionIsComplete(t *testing.T) {
	t.Parallel()
	for seed := uint64(0); seed < 50; seed++ {
		for n := 1; n <= 30; n++ {
			circles := PlanCircles(n, NewRand(seed), DefaultConfig())
			sum := 0
			for i, c := range circles {
				if c.Index != i {
					t.Fatalf("seed=%d n=%d: circle %d has index %d", seed, n, i, c.Index)
				}
				if i < len(circles)-1 && (c.PhotosCount < 4 || c.PhotosCount > 6) {
					t.Fatalf("seed=%d n=%d: circle %d holds %d photos", seed, n, i, c.PhotosCount)
				}
				if want := 100 + float64(i)*8; c.Radius != want {
					t.Fatalf("seed=%d n=%d: circle %d radius %v, want %v", seed, n, i, c.Radius, want)
				}
				sum += c.PhotosCount
			}
			if want := min(n, 12); sum != want {
				t.Fatalf("seed=%d n=%d: partition covers %d photos, want %d", seed, n, sum, want)
			}
		}
	}
}

func TestSpiralIsDeterministicForSeed(t *testing.T) {
	t.Parallel()
	_, a := Spiral(12, 7, DefaultConfig())
	_, b := Spiral(12, 7, DefaultConfig())
	if len(a) != 12 || len(a) != len(b) {
		t.Fatalf("unexpected offset counts %d %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("offset %d differs for the same seed: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestFanOutStartsAtFixedAngle(t *testing.T) {
	t.Parallel()
	offsets := FanOut([]Circle{{Index: 0, PhotosCount: 4, Radius: 100}})
	theta := 250 * math.Pi / 180
	if math.Abs(offsets[0].X-100*math.Cos(theta)) > 1e-9 || math.Abs(offsets[0].Y-100*math.Sin(theta)) > 1e-9 {
		t.Fatalf("unexpected first offset %+v", offsets[0])
	}
	second := (250 + 90) * math.Pi / 180
	if math.Abs(offsets[1].X-100*math.Cos(second)) > 1e-9 {
		t.Fatalf("expected 90 degree spacing, got %+v", offsets[1])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i].Delay <= offsets[i-1].Delay {
			t.Fatalf("stagger delay must grow with index")
		}
	}
}
