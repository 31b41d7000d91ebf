// Package domain plans the tiled grid montage: how many photos sit in each
// row and where every tile lands inside a container of a given width.
package domain

import "sync"

// FrameRatio is container height over container width.
const FrameRatio = 6.0 / 5.0

// PlanRows splits n photos into rows of two or three. Two-wide rows are
// moved to the middle of the sequence. A single photo gets a row of its own.
func PlanRows(n int) []int {
	switch {
	case n <= 0:
		return []int{}
	case n == 1:
		return []int{1}
	}
	threes, rem := n/3, n%3
	twos := 0
	switch rem {
	case 1:
		threes--
		twos = 2
	case 2:
		twos = 1
	}
	total := threes + twos
	rows := make([]int, total)
	for i := range rows {
		rows[i] = 3
	}
	start := 0
	switch twos {
	case 1:
		start = (total - 1) / 2
	case 2:
		start = (total - 2) / 2
	}
	for i := 0; i < twos; i++ {
		rows[start+i] = 2
	}
	return rows
}

// Tile is one photo slot. Index is the photo's capture order.
type Tile struct {
	Index  int
	Row    int
	Col    int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Height of a container of the given width.
func Height(width float64) float64 {
	return width * FrameRatio
}

// Tiles lays n photos out row by row, left to right, in capture order.
func Tiles(n int, width float64) []Tile {
	rows := PlanRows(n)
	if len(rows) == 0 || width <= 0 {
		return []Tile{}
	}
	rowHeight := Height(width) / float64(len(rows))
	tiles := make([]Tile, 0, n)
	index := 0
	for r, cols := range rows {
		tileWidth := width / float64(cols)
		for c := 0; c < cols; c++ {
			tiles = append(tiles, Tile{
				Index:  index,
				Row:    r,
				Col:    c,
				X:      float64(c) * tileWidth,
				Y:      float64(r) * rowHeight,
				Width:  tileWidth,
				Height: rowHeight,
			})
			index++
		}
	}
	return tiles
}

// Grid keeps tile geometry in step with a live container width.
type Grid struct {
	mu    sync.RWMutex
	n     int
	width float64
	tiles []Tile
}

func NewGrid(n int, width float64) *Grid {
	return &Grid{n: n, width: width, tiles: Tiles(n, width)}
}

// Resize recomputes tiles for a new width and reports whether it changed.
func (g *Grid) Resize(width float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if width == g.width {
		return false
	}
	g.width = width
	g.tiles = Tiles(g.n, width)
	return true
}

func (g *Grid) Width() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.width
}

func (g *Grid) Height() float64 {
	return Height(g.Width())
}

func (g *Grid) Tiles() []Tile {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Tile, len(g.tiles))
	copy(out, g.tiles)
	return out
}
