package viz

import (
	"fmt"
	"io"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// FrameRenderer draws each frame as plain braille text to a writer. It
// implements dynamo.Renderer for sim.Loop.Run when no interactive terminal
// is available.
type FrameRenderer struct {
	w     io.Writer
	scene *scene
	// Home moves the cursor to the top left before each frame so that
	// frames overwrite each other on a terminal.
	Home bool
	// Color renders body colors with ANSI escapes.
	Color bool
}

func NewFrameRenderer(w io.Writer, cols, rows int, scale float64, winW, winH int) *FrameRenderer {
	return &FrameRenderer{
		w:     w,
		scene: newScene(cols, rows, scale, winW, winH, defaultTrailLength),
	}
}

func (r *FrameRenderer) Render(bodies dynamo.Bodies, frame dynamo.Frame) error {
	if !frame.Paused {
		r.scene.record(bodies)
	}
	r.scene.draw(bodies)

	if r.Home {
		if _, err := io.WriteString(r.w, "\x1b[H"); err != nil {
			return err
		}
	}

	status := ""
	if frame.Paused {
		status = " | PAUSED"
	}
	if _, err := fmt.Fprintf(r.w, "Δt=%gs | FPS=%.0f | t=%s%s\n", frame.Dt, frame.FPS, FormatDuration(frame.Time), status); err != nil {
		return err
	}

	out := r.scene.canvas.String()
	if r.Color {
		out = r.scene.canvas.Render()
	}
	_, err := io.WriteString(r.w, out)
	return err
}

// Canvas exposes the canvas of the last rendered frame.
func (r *FrameRenderer) Canvas() *Canvas { return r.scene.canvas }
