package epi

// Compartment names one sub-population of a model: a one-letter short code
// used for the state vector layout and a lowercase full name accepted
// interchangeably by the query grammar.
type Compartment struct {
	Code string
	Name string
}

// TransitionFunc computes instantaneous rates of change. It writes the
// derivative of each compartment into dst (same layout as x) given the
// current state, a parameter snapshot, and the time in days. Implementations
// must be pure: no I/O, no mutation beyond dst.
type TransitionFunc func(dst, x []float64, p Snapshot, t float64)

// DerivedColumn computes a virtual time series from a completed run (e.g.
// total population per time point). Derived columns are computed on access,
// never stored.
type DerivedColumn func(r *SimulationRun) []float64

// ModelSpec is the declarative definition of one model variant: the ordered
// compartment list (fixes the state vector layout), the transition function,
// and the parameter groups the transition function reads. One shared
// integrator consumes every spec; variants differ only in data.
type ModelSpec struct {
	Name         string
	Compartments []Compartment
	Transition   TransitionFunc
	// RequiredGroups names the parameter groups the transition function
	// reads. Construction fails with ErrMissingParameter when one is absent
	// from both overrides and defaults.
	RequiredGroups []string
	// SeedCompartment is the code of the first infectious-type compartment,
	// which receives the initial seed fraction.
	SeedCompartment string
	// Derived maps virtual column names to their compute functions.
	Derived map[string]DerivedColumn
}

// Index returns the state vector position for a compartment code, or -1.
func (s *ModelSpec) Index(code string) int {
	for i, c := range s.Compartments {
		if c.Code == code {
			return i
		}
	}
	return -1
}

// Codes returns the compartment short codes in state vector order.
func (s *ModelSpec) Codes() []string {
	codes := make([]string, len(s.Compartments))
	for i, c := range s.Compartments {
		codes[i] = c.Code
	}
	return codes
}
