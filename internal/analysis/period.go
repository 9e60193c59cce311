package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
)

var (
	ErrTooFewSamples = errors.New("analysis: too few samples")
	ErrNoSignal      = errors.New("analysis: signal has no periodic component")
)

// PowerSpectrum returns the magnitude of the non-negative frequency bins of
// the mean-removed, Hann-windowed signal. Bin k has frequency k/(n·dt).
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}

	x := make([]float64, n)
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)
	for i, v := range data {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	spec := fft.FFTReal(x)
	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in a
// uniformly sampled series. The peak bin is refined by a parabola through
// the log magnitudes of its neighbours, so the estimate is not restricted
// to n·dt/k.
func DominantPeriod(data []float64, dt float64) (float64, error) {
	n := len(data)
	if n < 4 {
		return 0, fmt.Errorf("%d samples: %w", n, ErrTooFewSamples)
	}

	ps := PowerSpectrum(data)

	k := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[k] {
			k = i
		}
	}
	if ps[k] <= 1e-12*float64(n) {
		return 0, ErrNoSignal
	}

	offset := 0.0
	if k > 1 && k < len(ps)-1 && ps[k-1] > 0 && ps[k+1] > 0 {
		a, b, c := math.Log(ps[k-1]), math.Log(ps[k]), math.Log(ps[k+1])
		if d := a - 2*b + c; d != 0 {
			offset = 0.5 * (a - c) / d
		}
	}

	return float64(n) * math.Abs(dt) / (float64(k) + offset), nil
}

// BodySeries extracts the x coordinate of body i relative to the center of
// mass from every snapshot.
func BodySeries(result *dynamo.Result, i int) ([]float64, error) {
	out := make([]float64, len(result.Snapshots))
	for j, s := range result.Snapshots {
		if i < 0 || i >= len(s.Bodies) {
			return nil, fmt.Errorf("body %d of %d", i, len(s.Bodies))
		}
		out[j] = s.Bodies[i].Pos.Sub(physics.CenterOfMass(s.Bodies)).X
	}
	return out, nil
}

// OrbitalPeriod estimates the period of body i from a recorded run. The
// snapshots must be evenly spaced.
func OrbitalPeriod(result *dynamo.Result, i int) (float64, error) {
	if len(result.Snapshots) < 2 {
		return 0, fmt.Errorf("%d snapshots: %w", len(result.Snapshots), ErrTooFewSamples)
	}
	series, err := BodySeries(result, i)
	if err != nil {
		return 0, err
	}
	dt := result.Snapshots[1].Time - result.Snapshots[0].Time
	return DominantPeriod(series, dt)
}
