package domain

import (
	"math"
	"slices"
	"testing"
)

func TestPlanRows(t *testing.T) {
	t.Parallel()
	cases := []struct {
		n    int
		want []int
	}{
		{n: 0, want: []int{}},
		{n: 1, want: []int{1}},
		{n: 2, want: []int{2}},
		{n: 3, want: []int{3}},
		{n: 4, want: []int{2, 2}},
		{n: 5, want: []int{2, 3}},
		{n: 7, want: []int{2, 2, 3}},
		{n: 8, want: []int{3, 2, 3}},
		{n: 10, want: []int{3, 2, 2, 3}},
		{n: 12, want: []int{3, 3, 3, 3}},
		{n: 14, want: []int{3, 3, 2, 3, 3}},
	}
	for _, tc := range cases {
		if got := PlanRows(tc.n); !slices.Equal(got, tc.want) {
			t.Fatalf("PlanRows(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}
}

func TestPlanRowsSumsToN(t *testing.T) {
	t.Parallel()
	for n := 2; n <= 200; n++ {
		rows := PlanRows(n)
		sum, twos, firstTwo := 0, 0, -1
		for i, w := range rows {
			if w != 2 && w != 3 {
				t.Fatalf("n=%d: row width %d out of range in %v", n, w, rows)
			}
			if w == 2 {
				if firstTwo == -1 {
					firstTwo = i
				} else if i != firstTwo+twos {
					t.Fatalf("n=%d: two-wide rows not contiguous in %v", n, rows)
				}
				twos++
			}
			sum += w
		}
		if sum != n {
			t.Fatalf("n=%d: rows %v sum to %d", n, rows, sum)
		}
		if twos > 2 {
			t.Fatalf("n=%d: too many two-wide rows in %v", n, rows)
		}
	}
}

func TestTilesKeepCaptureOrderAndFillContainer(t *testing.T) {
	t.Parallel()
	tiles := Tiles(7, 500)
	if len(tiles) != 7 {
		t.Fatalf("expected 7 tiles, got %d", len(tiles))
	}
	for i, tile := range tiles {
		if tile.Index != i {
			t.Fatalf("tile %d has index %d", i, tile.Index)
		}
	}
	rowHeight := 600.0 / 3
	if tiles[0].Width != 250 || tiles[0].Height != rowHeight {
		t.Fatalf("unexpected first tile %+v", tiles[0])
	}
	last := tiles[6]
	if math.Abs(last.X+last.Width-500) > 1e-9 || math.Abs(last.Y+last.Height-600) > 1e-9 {
		t.Fatalf("last tile does not reach the container corner: %+v", last)
	}
}

func TestGridResize(t *testing.T) {
	t.Parallel()
	g := NewGrid(5, 300)
	if g.Resize(300) {
		t.Fatalf("same width must not report a change")
	}
	if !g.Resize(600) {
		t.Fatalf("expected resize to report a change")
	}
	if g.Height() != 720 {
		t.Fatalf("unexpected height %v", g.Height())
	}
	tiles := g.Tiles()
	if tiles[0].Width != 300 {
		t.Fatalf("expected tiles recomputed for new width, got %+v", tiles[0])
	}
	tiles[0].Width = 1
	if g.Tiles()[0].Width != 300 {
		t.Fatalf("Tiles must return a copy")
	}
}
