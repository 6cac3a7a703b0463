package epi

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultStepSize is the output grid spacing in days.
const DefaultStepSize = 1.0

// DefaultSubSteps is the number of internal RK4 substeps per output step.
// Four substeps on a one-day grid keep compartment totals conserved well
// inside the 1e-6 relative tolerance for the built-in variants.
const DefaultSubSteps = 4

// Diagnostics counts silent floating-point corrections applied during a run.
// Small negative compartment values produced by step error are clamped to
// zero rather than propagated, and every clamp is recorded here.
type Diagnostics struct {
	ClampedValues     int     // individual compartment values clamped to zero
	ClampedSteps      int     // output steps where at least one clamp happened
	MaxClampMagnitude float64 // largest negative excursion corrected
}

// Integrator advances compartment values with classic fixed-step RK4. It is
// stateless: two calls with identical inputs produce bit-for-bit identical
// output.
type Integrator struct {
	SubSteps int // internal substeps per output step; DefaultSubSteps if <= 0
}

// Advance integrates spec.Transition from the initial state over the given
// duration, recording the state every step days (inclusive of t=0, so the
// result has duration/step+1 points). The parameter snapshot is taken by the
// caller before the run begins; Advance never touches a live ParameterSet.
//
// On divergence the returned times/states hold every point up to and
// including the last finite one, and err is a *DivergedError.
func (in Integrator) Advance(spec *ModelSpec, p Snapshot, initial []float64, duration, step float64) (times []float64, states [][]float64, diag Diagnostics, err error) {
	if duration <= 0 {
		return nil, nil, diag, fmt.Errorf("%w: duration must be > 0, got %g", ErrInvalidDuration, duration)
	}
	if step <= 0 {
		return nil, nil, diag, fmt.Errorf("%w: step must be > 0, got %g", ErrInvalidDuration, step)
	}
	if len(initial) != len(spec.Compartments) {
		return nil, nil, diag, fmt.Errorf("initial state has %d values, %s has %d compartments",
			len(initial), spec.Name, len(spec.Compartments))
	}

	subSteps := in.SubSteps
	if subSteps <= 0 {
		subSteps = DefaultSubSteps
	}

	n := len(initial)
	steps := int(math.Ceil(duration/step - 1e-9))

	x := make([]float64, n)
	copy(x, initial)
	times = make([]float64, 0, steps+1)
	states = make([][]float64, 0, steps+1)
	times = append(times, 0)
	states = append(states, append([]float64(nil), x...))

	// Scratch buffers reused across steps.
	k1 := make([]float64, n)
	k2 := make([]float64, n)
	k3 := make([]float64, n)
	k4 := make([]float64, n)
	tmp := make([]float64, n)

	t := 0.0
	for i := 1; i <= steps; i++ {
		target := float64(i) * step
		dt := (target - t) / float64(subSteps)
		for j := 0; j < subSteps; j++ {
			rk4Step(spec.Transition, p, x, t, dt, k1, k2, k3, k4, tmp)
			t += dt
		}
		t = target

		clamped := false
		for j, v := range x {
			if v < 0 {
				if mag := -v; mag > diag.MaxClampMagnitude {
					diag.MaxClampMagnitude = mag
				}
				x[j] = 0
				diag.ClampedValues++
				clamped = true
			}
		}
		if clamped {
			diag.ClampedSteps++
		}

		for _, v := range x {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				last := states[len(states)-1]
				return times, states, diag, &DivergedError{
					Time:      times[len(times)-1],
					LastState: append([]float64(nil), last...),
				}
			}
		}

		times = append(times, target)
		states = append(states, append([]float64(nil), x...))
	}
	return times, states, diag, nil
}

// rk4Step advances x in place by one classic Runge-Kutta step of size dt.
func rk4Step(f TransitionFunc, p Snapshot, x []float64, t, dt float64, k1, k2, k3, k4, tmp []float64) {
	f(k1, x, p, t)

	copy(tmp, x)
	floats.AddScaled(tmp, 0.5*dt, k1)
	f(k2, tmp, p, t+0.5*dt)

	copy(tmp, x)
	floats.AddScaled(tmp, 0.5*dt, k2)
	f(k3, tmp, p, t+0.5*dt)

	copy(tmp, x)
	floats.AddScaled(tmp, dt, k3)
	f(k4, tmp, p, t+dt)

	// x += dt/6 * (k1 + 2 k2 + 2 k3 + k4)
	floats.AddScaled(x, dt/6, k1)
	floats.AddScaled(x, dt/3, k2)
	floats.AddScaled(x, dt/3, k3)
	floats.AddScaled(x, dt/6, k4)
}
