package export

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

const background = "#0a0a0a"

// BodyColor parses the body's color, falling back to an evenly spaced hue
// for body i of n.
func BodyColor(hex string, i, n int) colorful.Color {
	if c, err := colorful.Hex(hex); err == nil {
		return c
	}
	if n < 1 {
		n = 1
	}
	return colorful.Hsv(360*float64(i)/float64(n), 0.7, 0.95)
}

// OrbitsToSVG draws the recorded path of every body as a polyline in its own
// color, with the final positions marked. Both axes share one scale.
func OrbitsToSVG(result *dynamo.Result, width, height int) string {
	if len(result.Snapshots) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range result.Snapshots {
		for _, b := range s.Bodies {
			if !b.Pos.IsFinite() {
				continue
			}
			minX, maxX = math.Min(minX, b.Pos.X), math.Max(maxX, b.Pos.X)
			minY, maxY = math.Min(minY, b.Pos.Y), math.Max(maxY, b.Pos.Y)
		}
	}
	if math.IsInf(minX, 0) {
		return ""
	}

	// Add padding
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span *= 1.2
	scale := math.Min(float64(width), float64(height)) / span
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	toScreen := func(x, y float64) (float64, float64) {
		return float64(width)/2 + (x-cx)*scale, float64(height)/2 - (y-cy)*scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))

	first := result.Snapshots[0].Bodies
	last := result.Snapshots[len(result.Snapshots)-1].Bodies

	for i, b := range first {
		color := BodyColor(b.Color, i, len(first)).Hex()

		sb.WriteString(fmt.Sprintf(`<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="`, svgID(b.Name, i), color))
		move := true
		for _, s := range result.Snapshots {
			if i >= len(s.Bodies) || !s.Bodies[i].Pos.IsFinite() {
				move = true
				continue
			}
			x, y := toScreen(s.Bodies[i].Pos.X, s.Bodies[i].Pos.Y)
			if move {
				sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
				move = false
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		if i < len(last) && last[i].Pos.IsFinite() {
			x, y := toScreen(last[i].Pos.X, last[i].Pos.Y)
			r := last[i].RadiusPx
			if r <= 0 {
				r = 4
			}
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%d" fill="%s"/>
`, x, y, r, color))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func WriteSVG(path string, result *dynamo.Result, width, height int) error {
	svg := OrbitsToSVG(result, width, height)
	if svg == "" {
		return fmt.Errorf("nothing to draw: %d snapshots", len(result.Snapshots))
	}
	return os.WriteFile(path, []byte(svg), 0644)
}

func svgID(name string, i int) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		}
	}
	return fmt.Sprintf("body%d-%s", i, sb.String())
}
