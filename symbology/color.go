package symbology

import (
	"fmt"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an RGBA color with components in [0, 1].
type Color [4]float32

var White = Color{1, 1, 1, 1}

func RGBA(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// ParseColor reads a CSS-style hex color: #rgb, #rrggbb or #rrggbbaa.
func ParseColor(s string) (Color, error) {
	alpha := float32(1)
	if len(s) == 9 && s[0] == '#' {
		a, err := strconv.ParseUint(s[7:9], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %s", s, err)
		}
		alpha = float32(a) / 255
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %s", s, err)
	}
	return Color{float32(c.R), float32(c.G), float32(c.B), alpha}, nil
}
