package epi

import "fmt"

// Series is one named time series extracted from a run. Times are in days
// unless a transform rescaled them (the weeks transform indexes by week).
type Series struct {
	Name   string
	Times  []float64
	Values []float64
}

// Table is an ordered collection of series sharing one query, the result of
// a multi-column selection. Column order is the caller's selection order.
type Table struct {
	Columns []Series
}

// SimulationRun wraps a completed time series. It is read-only once built and
// owned by the model that produced it; queries never mutate it, and a failed
// query leaves it fully usable.
type SimulationRun struct {
	Times       []float64
	Population  float64 // initial total, the conserved quantity
	Diagnostics Diagnostics

	spec   *ModelSpec
	params Snapshot
	states [][]float64    // column-major: states[compartment][time]
	byName map[string]int // code and full name -> compartment index
}

// newSimulationRun transposes the integrator's row-major output into
// per-compartment columns and builds the name lookup.
func newSimulationRun(spec *ModelSpec, params Snapshot, times []float64, rows [][]float64, population float64, diag Diagnostics) *SimulationRun {
	cols := make([][]float64, len(spec.Compartments))
	for i := range cols {
		cols[i] = make([]float64, len(rows))
		for t, row := range rows {
			cols[i][t] = row[i]
		}
	}
	byName := make(map[string]int, 2*len(spec.Compartments))
	for i, c := range spec.Compartments {
		byName[c.Code] = i
		byName[c.Name] = i
	}
	return &SimulationRun{
		Times:       times,
		Population:  population,
		Diagnostics: diag,
		spec:        spec,
		params:      params,
		states:      cols,
		byName:      byName,
	}
}

// Spec returns the ModelSpec that produced this run.
func (r *SimulationRun) Spec() *ModelSpec { return r.spec }

// Param returns a parameter value from the snapshot taken when the run
// started. Later mutation of the model's ParameterSet is invisible here.
func (r *SimulationRun) Param(name string) (float64, error) {
	v, ok := r.params[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return v, nil
}

// column resolves a bare selector (code, full name, or derived column) to a
// value slice. Derived columns are computed on every access.
func (r *SimulationRun) column(selector string) ([]float64, error) {
	if i, ok := r.byName[selector]; ok {
		return r.states[i], nil
	}
	if fn, ok := r.spec.Derived[selector]; ok {
		return fn(r), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCompartment, selector)
}

// Get evaluates one query string of the grammar <selector>[:<transform>].
// The selector is a compartment short code ("I"), a full name ("infectious"),
// or a derived column ("cases"); the optional transform is applied to the
// selected series through the transform registry.
func (r *SimulationRun) Get(query string) (Series, error) {
	q, err := ParseQuery(query)
	if err != nil {
		return Series{}, err
	}
	values, err := r.column(q.Selector)
	if err != nil {
		return Series{}, err
	}
	s := Series{
		Name:   q.Selector,
		Times:  append([]float64(nil), r.Times...),
		Values: append([]float64(nil), values...),
	}
	if q.Transform == "" {
		return s, nil
	}
	fn, ok := lookupTransform(q.Transform)
	if !ok {
		return Series{}, fmt.Errorf("%w: %q", ErrUnknownTransform, q.Transform)
	}
	return fn(r, s)
}

// Select returns a sub-table for the given queries, preserving their order.
// Each element accepts the full grammar, so mixed selections like
// ("S", "infectious:weeks") are valid.
func (r *SimulationRun) Select(queries ...string) (*Table, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: empty selection", ErrBadSelector)
	}
	t := &Table{Columns: make([]Series, 0, len(queries))}
	for _, q := range queries {
		s, err := r.Get(q)
		if err != nil {
			return nil, err
		}
		t.Columns = append(t.Columns, s)
	}
	return t, nil
}
