package epi

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// DefaultSeedFraction is the fraction of the population placed in the seed
// compartment when the caller does not specify one.
const DefaultSeedFraction = 1e-6

// Options configures model construction. The zero value builds a normalized
// model (population 1.0) with the packaged disease defaults and the default
// seed fraction.
type Options struct {
	// Region selects a demography record through Demography. Empty means no
	// demography: population defaults to 1.0 unless Population is set.
	Region     string
	Demography DemographySource

	// Population overrides the demography-supplied total when > 0.
	Population float64

	// SeedFraction is the fraction of the population seeded into the spec's
	// seed compartment; DefaultSeedFraction when zero.
	SeedFraction float64

	// Overrides maps parameter or alias names to values, applied on top of
	// the disease defaults through the group formulas.
	Overrides map[string]float64

	// Disease supplies default parameters; nil means DefaultDisease().
	Disease *Disease
}

// Model binds one ModelSpec to a ParameterSet and initial conditions. A
// model owns the runs it produces; independent models share no mutable
// state, so separate instances may run concurrently.
type Model struct {
	Spec         *ModelSpec
	Params       *ParameterSet
	Region       *DemographyRecord // nil when constructed without demography
	Population   float64
	SeedFraction float64
	Integrator   Integrator
}

// New constructs a model for a named variant. Construction is atomic: the
// demography lookup runs before any ParameterSet is materialized, and any
// failure (unknown region, missing required group, invalid override) returns
// an error with no partial model.
func New(variant string, opts Options) (*Model, error) {
	spec, err := SpecFor(variant)
	if err != nil {
		return nil, err
	}

	var record *DemographyRecord
	if opts.Region != "" {
		if opts.Demography == nil {
			return nil, fmt.Errorf("region %q given without a demography source", opts.Region)
		}
		record, err = opts.Demography.Record(opts.Region)
		if err != nil {
			return nil, err
		}
	}

	disease := DefaultDisease()
	if opts.Disease != nil {
		disease = *opts.Disease
	}
	ps, err := newParameterSet(spec, disease, opts.Overrides)
	if err != nil {
		return nil, err
	}

	population := 1.0
	switch {
	case opts.Population > 0:
		population = opts.Population
	case record != nil:
		population = record.Population
	}

	seed := opts.SeedFraction
	if seed == 0 {
		seed = DefaultSeedFraction
	}
	if seed <= 0 || seed >= 1 {
		return nil, fmt.Errorf("%w: seed fraction must be in (0, 1), got %g", ErrInvalidParameterValue, seed)
	}

	return &Model{
		Spec:         spec,
		Params:       ps,
		Region:       record,
		Population:   population,
		SeedFraction: seed,
	}, nil
}

// InitialState builds the demography-scaled initial condition vector: the
// seed in the spec's seed compartment, the remainder susceptible.
func (m *Model) InitialState() []float64 {
	state := make([]float64, len(m.Spec.Compartments))
	seed := m.SeedFraction * m.Population
	state[m.Spec.Index(m.Spec.SeedCompartment)] = seed
	state[m.Spec.Index("S")] = m.Population - seed
	return state
}

// Run advances the model over the given duration in days on the default
// daily output grid.
func (m *Model) Run(duration float64) (*SimulationRun, error) {
	return m.RunWithStep(duration, DefaultStepSize)
}

// RunWithStep advances the model with an explicit output step. Parameter
// values are snapshotted before the first step; mutating m.Params afterwards
// does not affect the returned run.
func (m *Model) RunWithStep(duration, step float64) (*SimulationRun, error) {
	snapshot := m.Params.Snapshot()
	initial := m.InitialState()

	logrus.Debugf("running %s: duration=%gd step=%gd population=%g seed=%g",
		m.Spec.Name, duration, step, m.Population, m.SeedFraction)

	times, states, diag, err := m.Integrator.Advance(m.Spec, snapshot, initial, duration, step)
	if err != nil {
		return nil, err
	}
	if diag.ClampedValues > 0 {
		logrus.Debugf("%s run clamped %d negative values across %d steps (max magnitude %g)",
			m.Spec.Name, diag.ClampedValues, diag.ClampedSteps, diag.MaxClampMagnitude)
	}
	return newSimulationRun(m.Spec, snapshot, times, states, m.Population, diag), nil
}
