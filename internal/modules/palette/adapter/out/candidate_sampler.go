package out

import (
	"context"
	"image"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"focusreel/internal/modules/palette/domain"
)

const (
	dominantCandidates = 24
	kmeansClusters     = 16
	maxSamples         = 12000
)

// CandidateSampler proposes weighted colors with dominantcolor and falls
// back to k-means clustering when that yields too little to classify.
type CandidateSampler struct{}

func NewCandidateSampler() *CandidateSampler {
	return &CandidateSampler{}
}

func (s *CandidateSampler) Candidates(ctx context.Context, img image.Image) ([]domain.Candidate, error) {
	out := dominantCandidatesOf(img)
	if len(out) >= 2 {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if km := kmeansCandidatesOf(img); len(km) > 0 {
		return km, nil
	}
	return out, nil
}

func dominantCandidatesOf(img image.Image) []domain.Candidate {
	found := dominantcolor.FindWeight(img, dominantCandidates)
	out := make([]domain.Candidate, 0, len(found))
	for _, c := range found {
		col, ok := colorful.MakeColor(c.RGBA)
		if !ok {
			continue
		}
		out = append(out, domain.Candidate{Color: col.Clamped(), Weight: math.Max(c.Weight, 1e-6)})
	}
	return out
}

func kmeansCandidatesOf(img image.Image) []domain.Candidate {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}
	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}
	cc, err := kmeans.New().Partition(dataset, min(kmeansClusters, len(dataset)))
	if err != nil || len(cc) == 0 {
		return nil
	}
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})
	out := make([]domain.Candidate, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		out = append(out, domain.Candidate{Color: col, Weight: float64(len(c.Observations))})
	}
	return out
}
