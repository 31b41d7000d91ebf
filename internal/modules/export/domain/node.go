package domain

import "maps"

const (
	AttrExportExclude = "data-export-exclude"
	AttrExportOnly    = "data-export-only"
)

type Kind string

const (
	KindBox   Kind = "box"
	KindImage Kind = "image"
	KindText  Kind = "text"
)

// Gradient is a two-stop diagonal background.
type Gradient struct {
	From string
	To   string
}

// Style carries the computed styles the rasterizers understand. X and Y are
// relative to the parent's origin; Rotation is in degrees around the center.
// A nil Opacity is fully opaque.
type Style struct {
	X          float64
	Y          float64
	Width      float64
	Height     float64
	Rotation   float64
	Scale      float64
	Opacity    *float64
	Z          int
	Background string
	Gradient   *Gradient
	Color      string
	Border     float64
	Hidden     bool
}

// Opacity returns an explicit opacity for a Style.
func Opacity(v float64) *float64 {
	return &v
}

// Alpha is the effective opacity, clamped to [0, 1].
func (s Style) Alpha() float64 {
	if s.Opacity == nil {
		return 1
	}
	return min(max(*s.Opacity, 0), 1)
}

// Node is one element of a montage scene tree.
type Node struct {
	Kind     Kind
	ID       string
	Attrs    map[string]string
	Style    Style
	Src      string
	Text     string
	Loading  string
	Decoding string
	Children []*Node
}

func NewBox(id string, style Style, children ...*Node) *Node {
	return &Node{Kind: KindBox, ID: id, Style: style, Children: children}
}

func NewImage(id, src string, style Style) *Node {
	return &Node{Kind: KindImage, ID: id, Src: src, Style: style, Loading: "lazy", Decoding: "async"}
}

func NewText(id, text string, style Style) *Node {
	return &Node{Kind: KindText, ID: id, Text: text, Style: style}
}

func (n *Node) WithAttr(name, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	n.Attrs[name] = value
	return n
}

func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attrs[name]
	return ok
}

// Clone deep-copies the subtree. The copy shares nothing with n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Attrs = maps.Clone(n.Attrs)
	if n.Style.Gradient != nil {
		g := *n.Style.Gradient
		out.Style.Gradient = &g
	}
	out.Children = make([]*Node, len(n.Children))
	for i, child := range n.Children {
		out.Children[i] = child.Clone()
	}
	return &out
}

// Walk visits the subtree depth first. Returning false skips a node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

func (n *Node) Images() []*Node {
	var out []*Node
	n.Walk(func(node *Node) bool {
		if node.Kind == KindImage {
			out = append(out, node)
		}
		return true
	})
	return out
}

// Included is the rasterizer filter: export-excluded nodes are dropped
// together with their subtree.
func Included(n *Node) bool {
	return !n.HasAttr(AttrExportExclude)
}

// Measure returns the node's explicit size, or the extent of its children
// when it has none.
func Measure(n *Node) (float64, float64) {
	if n.Style.Width > 0 && n.Style.Height > 0 {
		return n.Style.Width, n.Style.Height
	}
	var w, h float64
	for _, child := range n.Children {
		cw, ch := Measure(child)
		w = max(w, child.Style.X+cw)
		h = max(h, child.Style.Y+ch)
	}
	return max(w, n.Style.Width), max(h, n.Style.Height)
}
