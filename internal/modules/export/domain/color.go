package domain

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]string{
	"white": "#ffffff",
	"black": "#000000",
}

// ParseColor reads the CSS color forms the scene uses: hex (#rgb, #rrggbb,
// #rrggbbaa), rgb(), rgba(), a few names and "transparent".
func ParseColor(css string) (colorful.Color, float64, error) {
	s := strings.ToLower(strings.TrimSpace(css))
	if s == "" {
		return colorful.Color{}, 0, fmt.Errorf("empty color")
	}
	if s == "transparent" {
		return colorful.Color{}, 0, nil
	}
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s)
	}
	if strings.HasPrefix(s, "rgb") {
		return parseRGB(s)
	}
	return colorful.Color{}, 0, fmt.Errorf("unsupported color: %s", css)
}

func parseHex(s string) (colorful.Color, float64, error) {
	alpha := 1.0
	switch len(s) {
	case 4:
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	case 9:
		a, err := strconv.ParseUint(s[7:9], 16, 8)
		if err != nil {
			return colorful.Color{}, 0, fmt.Errorf("parse alpha: %w", err)
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, 0, err
	}
	return c, alpha, nil
}

func parseRGB(s string) (colorful.Color, float64, error) {
	open, closing := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || closing < open {
		return colorful.Color{}, 0, fmt.Errorf("malformed color: %s", s)
	}
	parts := strings.FieldsFunc(s[open+1:closing], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(parts) != 3 && len(parts) != 4 {
		return colorful.Color{}, 0, fmt.Errorf("malformed color: %s", s)
	}
	channels := make([]float64, 3)
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return colorful.Color{}, 0, fmt.Errorf("parse channel: %w", err)
		}
		channels[i] = v / 255
	}
	alpha := 1.0
	if len(parts) == 4 {
		raw := parts[3]
		percent := strings.HasSuffix(raw, "%")
		v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
		if err != nil {
			return colorful.Color{}, 0, fmt.Errorf("parse alpha: %w", err)
		}
		if percent {
			v /= 100
		}
		alpha = v
	}
	return colorful.Color{R: channels[0], G: channels[1], B: channels[2]}.Clamped(), alpha, nil
}

// EffectiveBackground resolves the canvas fill: the explicit option, else
// the root's computed background. Fully transparent or unparsable colors
// mean no background.
func EffectiveBackground(explicit string, root *Node) (string, bool) {
	candidate := explicit
	if candidate == "" && root != nil {
		candidate = root.Style.Background
	}
	if candidate == "" {
		return "", false
	}
	_, alpha, err := ParseColor(candidate)
	if err != nil || alpha == 0 {
		return "", false
	}
	return candidate, true
}
