// Package viz provides terminal-based visualization for orbit simulations.
//
// The package renders bodies on a braille canvas through a centered
// projection with y pointing up:
//
//   - [Model]: Bubble Tea front end that steps a sim.Loop once per tick
//   - [FrameRenderer]: plain text dynamo.Renderer for sim.Loop.Run
//   - [Canvas]: Braille-based pixel canvas with per-cell colors
//   - [Projection]: simulation units to canvas sub-pixels
//
// # Key Bindings
//
//	Space, left click - Pause/Resume simulation
//	Esc, Q            - Quit
//	F11, F            - Toggle full screen
//	1-9               - Switch integrator between steps
//	+/-, 0            - Zoom, reset view
//	C                 - Clear trails
//	T                 - Cycle color themes
//	?                 - Show help overlay
package viz
