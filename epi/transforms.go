package epi

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Transform rewrites a selected series. Transforms run after selection and
// may read the run for context (population, times).
type Transform func(r *SimulationRun, s Series) (Series, error)

var transforms = map[string]Transform{}

// RegisterTransform adds a named transform to the grammar. Registration is
// meant for init time; registering a duplicate name panics.
func RegisterTransform(name string, fn Transform) {
	if name == "" || fn == nil {
		panic("epi: RegisterTransform with empty name or nil func")
	}
	if _, dup := transforms[name]; dup {
		panic(fmt.Sprintf("epi: transform %q already registered", name))
	}
	transforms[name] = fn
}

func lookupTransform(name string) (Transform, bool) {
	fn, ok := transforms[name]
	return fn, ok
}

// weeksTransform resamples a daily series to weekly cadence.
//
// Policy: the mean over consecutive 7-day buckets anchored at t=0; a partial
// final bucket is kept. The resampled index counts weeks from 0, so a
// 120-day daily run (121 points) yields 18 weekly points.
func weeksTransform(_ *SimulationRun, s Series) (Series, error) {
	if len(s.Times) == 0 {
		return s, nil
	}
	buckets := make(map[int][]float64)
	maxWeek := 0
	for i, t := range s.Times {
		w := int(math.Floor(t / 7))
		buckets[w] = append(buckets[w], s.Values[i])
		if w > maxWeek {
			maxWeek = w
		}
	}
	out := Series{Name: s.Name}
	for w := 0; w <= maxWeek; w++ {
		vals, ok := buckets[w]
		if !ok {
			continue
		}
		out.Times = append(out.Times, float64(w))
		out.Values = append(out.Values, stat.Mean(vals, nil))
	}
	return out, nil
}

// elementwise lifts a scalar function to a whole-series transform.
func elementwise(fn func(float64) float64) Transform {
	return func(_ *SimulationRun, s Series) (Series, error) {
		for i, v := range s.Values {
			s.Values[i] = fn(v)
		}
		return s, nil
	}
}

// roundTo rounds to the given number of decimal places.
func roundTo(places int) func(float64) float64 {
	scale := math.Pow(10, float64(places))
	return func(v float64) float64 { return math.Round(v*scale) / scale }
}

// ratioTransform scales values per population: factor * value / population.
func ratioTransform(factor float64) Transform {
	return func(r *SimulationRun, s Series) (Series, error) {
		if r.Population <= 0 {
			return Series{}, fmt.Errorf("per-population transform on run with population %g", r.Population)
		}
		for i, v := range s.Values {
			s.Values[i] = factor * v / r.Population
		}
		return s, nil
	}
}

// pointAt reduces a series to the single point at index fn(s).
func pointAt(fn func(s Series) int) Transform {
	return func(_ *SimulationRun, s Series) (Series, error) {
		if len(s.Values) == 0 {
			return s, nil
		}
		i := fn(s)
		return Series{Name: s.Name, Times: []float64{s.Times[i]}, Values: []float64{s.Values[i]}}, nil
	}
}

func init() {
	RegisterTransform("weeks", weeksTransform)

	RegisterTransform("round", elementwise(roundTo(0)))
	RegisterTransform("round1", elementwise(roundTo(1)))
	RegisterTransform("round2", elementwise(roundTo(2)))
	RegisterTransform("round3", elementwise(roundTo(3)))

	RegisterTransform("pp", ratioTransform(1))
	RegisterTransform("ppc", ratioTransform(100))
	RegisterTransform("p1k", ratioTransform(1e3))
	RegisterTransform("p10k", ratioTransform(1e4))
	RegisterTransform("p100k", ratioTransform(1e5))
	RegisterTransform("p1m", ratioTransform(1e6))

	RegisterTransform("initial", pointAt(func(Series) int { return 0 }))
	RegisterTransform("final", pointAt(func(s Series) int { return len(s.Values) - 1 }))
	RegisterTransform("max", pointAt(func(s Series) int { return floats.MaxIdx(s.Values) }))
	RegisterTransform("min", pointAt(func(s Series) int { return floats.MinIdx(s.Values) }))
}
