package epi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/floats"
)

func TestNew_UnknownVariant(t *testing.T) {
	_, err := New("sirs", Options{})
	assert.Error(t, err)
}

func TestNew_UnknownRegion_NoPartialModel(t *testing.T) {
	// GIVEN a demography source without the requested key
	source := StaticDemography{"BR": {Population: 212_559_417}}

	// WHEN constructing with an unknown region
	m, err := New("sir", Options{Region: "XX", Demography: source})

	// THEN construction fails before any ParameterSet is materialized
	assert.ErrorIs(t, err, ErrUnknownRegion)
	assert.Nil(t, m)
}

func TestNew_MissingParameter(t *testing.T) {
	// A disease payload without R0 cannot satisfy any variant.
	disease := Disease{Name: "incomplete", Params: map[string]Param{
		"infectious_period": {Value: 3.5},
	}}
	_, err := New("sir", Options{Disease: &disease})
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("got %v, want ErrMissingParameter", err)
	}
}

func TestNew_DemographyScalesInitialState(t *testing.T) {
	source := StaticDemography{"BR": {Population: 1e6}}
	m, err := New("seir", Options{Region: "BR", Demography: source, SeedFraction: 1e-3})
	require.NoError(t, err)

	assert.Equal(t, 1e6, m.Population)
	require.NotNil(t, m.Region)
	assert.Equal(t, "BR", m.Region.Region)

	state := m.InitialState()
	iIdx := m.Spec.Index("I")
	sIdx := m.Spec.Index("S")
	assert.InDelta(t, 1e3, state[iIdx], 1e-9)
	assert.InDelta(t, 1e6-1e3, state[sIdx], 1e-9)
	assert.InDelta(t, 1e6, floats.Sum(state), 1e-9)
}

func TestNew_ExplicitPopulationWinsOverDemography(t *testing.T) {
	source := StaticDemography{"BR": {Population: 1e6}}
	m, err := New("sir", Options{Region: "BR", Demography: source, Population: 500})
	require.NoError(t, err)
	assert.Equal(t, 500.0, m.Population)
}

func TestNew_BadSeedFraction(t *testing.T) {
	for _, seed := range []float64{-0.1, 1, 2} {
		_, err := New("sir", Options{SeedFraction: seed})
		assert.ErrorIs(t, err, ErrInvalidParameterValue, "seed=%g", seed)
	}
}

func TestNew_OverridesResolveThroughAliases(t *testing.T) {
	m, err := New("sir", Options{Overrides: map[string]float64{"gamma": 0.2}})
	require.NoError(t, err)

	period, err := m.Params.Get("infectious_period")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, period, 1e-12)
}

func TestRun_SIRDefaultScenario(t *testing.T) {
	// GIVEN the reference SIR scenario: R0=2.74, infectious_period=3.64,
	// population 1, seed 1e-6
	m, err := New("sir", Options{Overrides: map[string]float64{
		"R0":                2.74,
		"infectious_period": 3.64,
	}})
	require.NoError(t, err)

	// WHEN advanced 60 days
	run, err := m.Run(60)
	require.NoError(t, err)

	// THEN susceptible decreases monotonically
	s, err := run.Get("S")
	require.NoError(t, err)
	for i := 1; i < len(s.Values); i++ {
		if s.Values[i] > s.Values[i-1] {
			t.Fatalf("susceptible increased at day %g: %g -> %g", s.Times[i], s.Values[i-1], s.Values[i])
		}
	}

	// AND infectious is single-peaked: rising to the peak, falling after
	infectious, err := run.Get("infectious")
	require.NoError(t, err)
	peak := floats.MaxIdx(infectious.Values)
	for i := 1; i <= peak; i++ {
		assert.GreaterOrEqual(t, infectious.Values[i], infectious.Values[i-1],
			"infectious fell before the peak at day %g", infectious.Times[i])
	}
	for i := peak + 1; i < len(infectious.Values); i++ {
		assert.LessOrEqual(t, infectious.Values[i], infectious.Values[i-1],
			"infectious rose after the peak at day %g", infectious.Times[i])
	}

	// AND the peak exceeds the seed by at least two orders of magnitude
	assert.GreaterOrEqual(t, infectious.Values[peak], 100*DefaultSeedFraction)
}

func TestRun_SnapshotShieldsInFlightResults(t *testing.T) {
	m, err := New("sir", Options{})
	require.NoError(t, err)

	run1, err := m.Run(30)
	require.NoError(t, err)

	// Mutating parameters afterwards must not disturb the completed run,
	// and the next run must pick the new values up.
	require.NoError(t, m.Params.Set("R0", 9))
	run2, err := m.Run(30)
	require.NoError(t, err)

	i1, _ := run1.Get("I")
	i2, _ := run2.Get("I")
	assert.NotEqual(t, i1.Values[len(i1.Values)-1], i2.Values[len(i2.Values)-1])

	r0, err := run1.Param("R0")
	require.NoError(t, err)
	assert.Equal(t, 2.74, r0)
}

func TestRun_SEICHAR_AllCompartmentsFlow(t *testing.T) {
	m, err := New("seichar", Options{Population: 1e6, SeedFraction: 1e-4})
	require.NoError(t, err)

	run, err := m.Run(120)
	require.NoError(t, err)

	// Every downstream compartment must have been populated at some point.
	for _, code := range []string{"E", "A", "I", "H", "C", "R"} {
		series, err := run.Get(code)
		require.NoError(t, err, code)
		assert.Greater(t, floats.Max(series.Values), 0.0, "compartment %s never populated", code)
	}
}
