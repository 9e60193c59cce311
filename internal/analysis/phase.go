package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
)

// Point is a position in simulation units.
type Point struct{ X, Y float64 }

// Trajectory returns the recorded path of body i.
func Trajectory(result *dynamo.Result, i int) []Point {
	pts := make([]Point, 0, len(result.Snapshots))
	for _, s := range result.Snapshots {
		if i < len(s.Bodies) {
			p := s.Bodies[i].Pos
			pts = append(pts, Point{X: p.X, Y: p.Y})
		}
	}
	return pts
}

// orbitGlyphs marks bodies in the ASCII plot, cycling for larger systems.
var orbitGlyphs = []rune{'•', '∘', '×', '+', '*', '◦'}

// OrbitToASCII draws every body's path on one width×height grid with equal
// scaling on both axes.
func OrbitToASCII(result *dynamo.Result, width, height int) string {
	if len(result.Snapshots) == 0 || width < 2 || height < 2 {
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

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span *= 1.2
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	minX, minY = cx-span/2, cy-span/2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && minX+span >= 0 {
		col := int(-minX / span * float64(width-1))
		for row := range canvas {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && minY+span >= 0 {
		row := height - 1 - int(-minY/span*float64(height-1))
		for col := range canvas[row] {
			if canvas[row][col] == '│' {
				canvas[row][col] = '┼'
			} else {
				canvas[row][col] = '─'
			}
		}
	}

	for _, s := range result.Snapshots {
		for i, b := range s.Bodies {
			if !b.Pos.IsFinite() {
				continue
			}
			col := int((b.Pos.X - minX) / span * float64(width-1))
			row := height - 1 - int((b.Pos.Y-minY)/span*float64(height-1))
			if row >= 0 && row < height && col >= 0 && col < width {
				canvas[row][col] = orbitGlyphs[i%len(orbitGlyphs)]
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the interpolated times at which body i crosses the
// horizontal line through the center of mass moving upwards.
func Crossings(result *dynamo.Result, i int) []float64 {
	var times []float64
	prev, prevT := math.NaN(), 0.0
	for _, s := range result.Snapshots {
		if i >= len(s.Bodies) {
			return times
		}
		y := s.Bodies[i].Pos.Sub(physics.CenterOfMass(s.Bodies)).Y
		if prev < 0 && y >= 0 {
			frac := -prev / (y - prev)
			times = append(times, prevT+frac*(s.Time-prevT))
		}
		prev, prevT = y, s.Time
	}
	return times
}

// CrossingPeriod is the mean interval between successive upward crossings.
func CrossingPeriod(result *dynamo.Result, i int) (float64, error) {
	times := Crossings(result, i)
	if len(times) < 2 {
		return 0, fmt.Errorf("%d crossings: %w", len(times), ErrTooFewSamples)
	}
	return (times[len(times)-1] - times[0]) / float64(len(times)-1), nil
}
