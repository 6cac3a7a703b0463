package epi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/stat"
)

func sirRun(t *testing.T, days float64) *SimulationRun {
	t.Helper()
	m, err := New("sir", Options{})
	require.NoError(t, err)
	run, err := m.Run(days)
	require.NoError(t, err)
	return run
}

func TestGet_CodeAndFullNameAgree(t *testing.T) {
	run := sirRun(t, 30)

	byCode, err := run.Get("I")
	require.NoError(t, err)
	byName, err := run.Get("infectious")
	require.NoError(t, err)

	assert.Equal(t, byCode.Values, byName.Values)
	assert.Equal(t, byCode.Times, byName.Times)
}

func TestGet_UnknownCompartment(t *testing.T) {
	run := sirRun(t, 10)

	_, err := run.Get("Q")
	assert.ErrorIs(t, err, ErrUnknownCompartment)
	_, err = run.Get("quarantined")
	assert.ErrorIs(t, err, ErrUnknownCompartment)

	// A failed query never invalidates the run.
	_, err = run.Get("I")
	assert.NoError(t, err)
}

func TestGet_UnknownTransform(t *testing.T) {
	run := sirRun(t, 10)

	_, err := run.Get("I:fortnights")
	assert.ErrorIs(t, err, ErrUnknownTransform)
	_, err = run.Get("I:")
	assert.ErrorIs(t, err, ErrUnknownTransform)
}

func TestGet_ReturnsCopies(t *testing.T) {
	run := sirRun(t, 10)

	a, err := run.Get("I")
	require.NoError(t, err)
	a.Values[0] = 42

	b, err := run.Get("I")
	require.NoError(t, err)
	assert.NotEqual(t, 42.0, b.Values[0])
}

func TestSelect_PreservesOrderAndMatchesGet(t *testing.T) {
	run := sirRun(t, 30)

	table, err := run.Select("R", "S", "I")
	require.NoError(t, err)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, "R", table.Columns[0].Name)
	assert.Equal(t, "S", table.Columns[1].Name)
	assert.Equal(t, "I", table.Columns[2].Name)

	// run[[code]] with a single element is equivalent to run[code].
	single, err := run.Select("I")
	require.NoError(t, err)
	direct, err := run.Get("I")
	require.NoError(t, err)
	assert.Equal(t, direct, single.Columns[0])
}

func TestSelect_Errors(t *testing.T) {
	run := sirRun(t, 10)

	_, err := run.Select()
	assert.ErrorIs(t, err, ErrBadSelector)
	_, err = run.Select("S", "Q")
	assert.ErrorIs(t, err, ErrUnknownCompartment)
}

func TestDerivedColumns(t *testing.T) {
	run := sirRun(t, 30)

	// N is the conserved total.
	n, err := run.Get("N")
	require.NoError(t, err)
	for i, v := range n.Values {
		assert.InDelta(t, run.Population, v, 1e-6*run.Population, "N at t=%g", n.Times[i])
	}

	// cases is everyone outside S, so S + cases = N.
	cases, err := run.Get("cases")
	require.NoError(t, err)
	s, err := run.Get("S")
	require.NoError(t, err)
	for i := range cases.Values {
		assert.InDelta(t, n.Values[i], s.Values[i]+cases.Values[i], 1e-9)
	}

	// Derived columns pass through the grammar like any compartment.
	_, err = run.Get("cases:weeks")
	assert.NoError(t, err)
}

func TestWeeksTransform_120DayRun(t *testing.T) {
	// GIVEN a 120-day daily run (121 points)
	run := sirRun(t, 120)

	// WHEN resampling infectious to weekly cadence
	weekly, err := run.Get("infectious:weeks")
	require.NoError(t, err)

	// THEN the declared policy (7-day bucket means anchored at t=0, partial
	// final bucket kept) yields exactly 18 points
	require.Len(t, weekly.Values, 18)
	assert.Equal(t, 0.0, weekly.Times[0])
	assert.Equal(t, 17.0, weekly.Times[17])

	// AND each point is the mean of its bucket in the daily series
	daily, err := run.Get("infectious")
	require.NoError(t, err)
	for w := 0; w < 18; w++ {
		lo := w * 7
		hi := lo + 7
		if hi > len(daily.Values) {
			hi = len(daily.Values)
		}
		want := stat.Mean(daily.Values[lo:hi], nil)
		assert.InDelta(t, want, weekly.Values[w], 1e-12, "week %d", w)
	}
}

func TestPerPopulationTransforms(t *testing.T) {
	m, err := New("sir", Options{Population: 1e6, SeedFraction: 1e-4})
	require.NoError(t, err)
	run, err := m.Run(30)
	require.NoError(t, err)

	abs, err := run.Get("I")
	require.NoError(t, err)
	per100k, err := run.Get("I:p100k")
	require.NoError(t, err)

	for i := range abs.Values {
		assert.InDelta(t, 1e5*abs.Values[i]/1e6, per100k.Values[i], 1e-9)
	}
}

func TestReductionTransforms(t *testing.T) {
	run := sirRun(t, 60)

	daily, err := run.Get("I")
	require.NoError(t, err)

	first, err := run.Get("I:initial")
	require.NoError(t, err)
	require.Len(t, first.Values, 1)
	assert.Equal(t, daily.Values[0], first.Values[0])

	last, err := run.Get("I:final")
	require.NoError(t, err)
	assert.Equal(t, daily.Values[len(daily.Values)-1], last.Values[0])

	peak, err := run.Get("I:max")
	require.NoError(t, err)
	require.Len(t, peak.Values, 1)
	for _, v := range daily.Values {
		assert.LessOrEqual(t, v, peak.Values[0])
	}
}

func TestRoundTransform(t *testing.T) {
	run := sirRun(t, 10)

	rounded, err := run.Get("S:round2")
	require.NoError(t, err)
	for _, v := range rounded.Values {
		assert.InDelta(t, v, float64(int(v*100+0.5))/100, 1e-9)
	}
}
