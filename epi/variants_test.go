package epi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecFor_CaseInsensitive(t *testing.T) {
	for _, name := range []string{"sir", "SIR", "Sir"} {
		spec, err := SpecFor(name)
		require.NoError(t, err, name)
		assert.Equal(t, "SIR", spec.Name)
	}
}

func TestSpecFor_Unknown(t *testing.T) {
	_, err := SpecFor("msir")
	assert.Error(t, err)
}

func TestVariants_SortedAndComplete(t *testing.T) {
	assert.Equal(t, []string{"seair", "seichar", "seir", "sir"}, Variants())
}

func TestModelSpec_Layout(t *testing.T) {
	tests := []struct {
		variant string
		codes   []string
	}{
		{"sir", []string{"S", "I", "R"}},
		{"seir", []string{"S", "E", "I", "R"}},
		{"seair", []string{"S", "E", "A", "I", "R"}},
		{"seichar", []string{"S", "E", "A", "I", "C", "H", "R"}},
	}
	for _, tc := range tests {
		spec, err := SpecFor(tc.variant)
		require.NoError(t, err)
		assert.Equal(t, tc.codes, spec.Codes(), tc.variant)
		assert.Equal(t, "I", spec.SeedCompartment, tc.variant)
		for i, code := range tc.codes {
			assert.Equal(t, i, spec.Index(code), "%s index of %s", tc.variant, code)
		}
		assert.Equal(t, -1, spec.Index("Z"), tc.variant)
	}
}

func TestTransitions_ConserveInstantaneously(t *testing.T) {
	// The derivative vector of every variant must sum to zero: each flow
	// leaving one compartment enters another.
	snap := Snapshot{
		"beta": 0.75, "gamma": 0.29, "sigma": 0.27,
		"rho": 0.55, "prob_symptoms": 0.14,
		"prob_severe": 0.18, "prob_critical": 0.05,
		"eta": 1.0 / 7.0, "mu": 1.0 / 7.5,
	}
	for _, variant := range Variants() {
		spec, err := SpecFor(variant)
		require.NoError(t, err)

		n := len(spec.Compartments)
		x := make([]float64, n)
		for i := range x {
			x[i] = float64(i + 1) // arbitrary positive state
		}
		dst := make([]float64, n)
		spec.Transition(dst, x, snap, 0)

		total := 0.0
		for _, v := range dst {
			total += v
		}
		assert.InDelta(t, 0.0, total, 1e-12, variant)
	}
}

func TestSEAIR_SymptomaticSplit(t *testing.T) {
	spec, err := SpecFor("seair")
	require.NoError(t, err)

	snap := Snapshot{
		"beta": 0, "gamma": 0, "sigma": 1,
		"rho": 0.5, "prob_symptoms": 0.3,
	}
	// Only E is populated; with sigma=1 the exposed pool drains entirely
	// into A and I split by prob_symptoms.
	x := []float64{0, 10, 0, 0, 0}
	dst := make([]float64, 5)
	spec.Transition(dst, x, snap, 0)

	assert.InDelta(t, 7.0, dst[spec.Index("A")], 1e-12) // (1-Qs) * sigma * E
	assert.InDelta(t, 3.0, dst[spec.Index("I")], 1e-12) // Qs * sigma * E
	assert.InDelta(t, -10.0, dst[spec.Index("E")], 1e-12)
}
