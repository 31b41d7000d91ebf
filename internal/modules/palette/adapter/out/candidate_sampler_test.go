package out

import (
	"context"
	"image"
	"image/color"
	"testing"

	"focusreel/internal/modules/palette/domain"
)

func twoTone() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			c := color.RGBA{R: 224, G: 32, B: 32, A: 255}
			if x >= 30 {
				c = color.RGBA{R: 200, G: 184, B: 184, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCandidateSamplerFindsDominantColors(t *testing.T) {
	t.Parallel()
	candidates, err := NewCandidateSampler().Candidates(context.Background(), twoTone())
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(candidates) == 0 {
		t.Fatalf("expected candidates")
	}
	if palette := domain.Classify(candidates); len(palette) == 0 {
		t.Fatalf("expected swatches from a saturated frame")
	}
}

func TestKMeansCandidatesOrderedByPopulation(t *testing.T) {
	t.Parallel()
	candidates := kmeansCandidatesOf(twoTone())
	if len(candidates) == 0 {
		t.Fatalf("expected kmeans candidates")
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Weight > candidates[i-1].Weight {
			t.Fatalf("candidates not sorted by population")
		}
	}
	if kmeansCandidatesOf(image.NewRGBA(image.Rect(0, 0, 0, 0))) != nil {
		t.Fatalf("expected nil for empty image")
	}
}
