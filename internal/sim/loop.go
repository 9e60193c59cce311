package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Loop is the interactive simulation loop. It owns the body list and
// applies exactly one fixed-dt step per unpaused tick, independent of how
// long rendering takes.
type Loop struct {
	bodies    dynamo.Bodies
	stepper   dynamo.Stepper
	dt        float64
	paused    bool
	t         float64
	steps     int
	frames    int
	fps       float64
	lastFrame time.Time
	observers []dynamo.Observer
}

type LoopOption func(*Loop)

func WithObserver(o dynamo.Observer) LoopOption {
	return func(l *Loop) { l.observers = append(l.observers, o) }
}

func WithPaused(paused bool) LoopOption {
	return func(l *Loop) { l.paused = paused }
}

// NewLoop takes ownership of bodies; the caller must not modify them afterwards.
func NewLoop(bodies dynamo.Bodies, stepper dynamo.Stepper, dt float64, opts ...LoopOption) (*Loop, error) {
	if err := bodies.Validate(); err != nil {
		return nil, err
	}
	if dt == 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("dt %g: %w", dt, dynamo.ErrInvalidTimestep)
	}
	if stepper == nil {
		return nil, fmt.Errorf("loop: %w", dynamo.ErrUnknownIntegrator)
	}

	l := &Loop{bodies: bodies, stepper: stepper, dt: dt}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Tick applies one step unless paused and reports whether it did.
func (l *Loop) Tick() bool {
	if l.paused {
		return false
	}
	l.stepper.Step(l.bodies, l.dt)
	l.t += l.dt
	l.steps++
	for _, obs := range l.observers {
		obs.OnStep(l.bodies, l.t)
	}
	return true
}

func (l *Loop) Paused() bool            { return l.paused }
func (l *Loop) SetPaused(p bool)        { l.paused = p }
func (l *Loop) TogglePause() bool       { l.paused = !l.paused; return l.paused }
func (l *Loop) Bodies() dynamo.Bodies   { return l.bodies }
func (l *Loop) Time() float64           { return l.t }
func (l *Loop) Steps() int              { return l.steps }
func (l *Loop) Dt() float64             { return l.dt }
func (l *Loop) Stepper() dynamo.Stepper { return l.stepper }

// SetStepper swaps the integrator. Ticks are never concurrent with this
// call, so the change applies from the next step.
func (l *Loop) SetStepper(s dynamo.Stepper) {
	if s != nil {
		l.stepper = s
	}
}

// Frame advances the frame counter and returns the description handed to
// renderers. FPS is a smoothed measurement of the actual frame rate.
func (l *Loop) Frame(now time.Time) dynamo.Frame {
	if !l.lastFrame.IsZero() {
		if elapsed := now.Sub(l.lastFrame).Seconds(); elapsed > 0 {
			inst := 1 / elapsed
			if l.fps == 0 {
				l.fps = inst
			} else {
				l.fps = 0.9*l.fps + 0.1*inst
			}
		}
	}
	l.lastFrame = now
	f := dynamo.Frame{Index: l.frames, Time: l.t, Dt: l.dt, Paused: l.paused, FPS: l.fps}
	l.frames++
	return f
}

// Run drives the loop at fps frames per second: tick, render, then wait for
// the next frame deadline. maxFrames <= 0 runs until ctx is done.
func (l *Loop) Run(ctx context.Context, r dynamo.Renderer, fps int, maxFrames int) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}

	log := logrus.WithFields(logrus.Fields{"dt": l.dt, "fps": fps, "bodies": len(l.bodies)})
	log.Debug("simulation loop started")

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for n := 0; maxFrames <= 0 || n < maxFrames; n++ {
		select {
		case <-ctx.Done():
			log.WithField("steps", l.steps).Debug("simulation loop canceled")
			return ctx.Err()
		default:
		}

		l.Tick()

		if err := r.Render(l.bodies, l.Frame(time.Now())); err != nil {
			return fmt.Errorf("render frame %d: %w", l.frames-1, err)
		}

		if maxFrames > 0 && n == maxFrames-1 {
			break
		}

		select {
		case <-ctx.Done():
			log.WithField("steps", l.steps).Debug("simulation loop canceled")
			return ctx.Err()
		case <-ticker.C:
		}
	}

	log.WithField("steps", l.steps).Debug("simulation loop finished")
	return nil
}
