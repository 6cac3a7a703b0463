package epi

import (
	"fmt"
	"math"
)

// Param is a canonical parameter value plus provenance metadata: an optional
// confidence interval and an optional literature reference.
type Param struct {
	Value float64
	Low   float64 // CI lower bound, meaningful only when HasCI
	High  float64 // CI upper bound
	HasCI bool
	Ref   string // literature reference, empty when unsourced
}

func (p Param) String() string {
	switch {
	case p.HasCI && p.Ref != "":
		return fmt.Sprintf("%g [%g, %g] (%s)", p.Value, p.Low, p.High, p.Ref)
	case p.HasCI:
		return fmt.Sprintf("%g [%g, %g]", p.Value, p.Low, p.High)
	case p.Ref != "":
		return fmt.Sprintf("%g (%s)", p.Value, p.Ref)
	default:
		return fmt.Sprintf("%g", p.Value)
	}
}

// AliasDef declares a computed view of a group's canonical value. From maps
// canonical to alias; To inverts. Both may read other groups through the set
// (beta = R0 * gamma crosses groups), so formulas must be pure in the set's
// current values.
type AliasDef struct {
	Name string
	From func(canonical float64, ps *ParameterSet) float64
	To   func(alias float64, ps *ParameterSet) float64
}

// GroupDef declares one parameter group: a single canonical quantity, its
// domain, and its computed aliases. Aliases are never stored; every Set on an
// alias writes through To into the canonical value.
type GroupDef struct {
	Name    string
	Domain  func(v float64) error
	Aliases []AliasDef
}

// Domain validators shared by the standard groups. All of them reject
// non-finite values so that writing through an alias inverse (e.g. a zero
// rate inverting to an infinite period) fails instead of storing Inf.

func positiveDomain(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("must be finite, got %g", v)
	}
	if v <= 0 {
		return fmt.Errorf("must be > 0, got %g", v)
	}
	return nil
}

func nonNegativeDomain(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("must be finite, got %g", v)
	}
	if v < 0 {
		return fmt.Errorf("must be >= 0, got %g", v)
	}
	return nil
}

func unitIntervalDomain(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("must be in [0, 1], got %g", v)
	}
	return nil
}

// PeriodGroup declares a duration group (days, > 0) with a reciprocal-rate
// alias, the most common group shape (infectious_period/gamma,
// incubation_period/sigma, ...).
func PeriodGroup(name, rateAlias string) GroupDef {
	return GroupDef{
		Name:   name,
		Domain: positiveDomain,
		Aliases: []AliasDef{{
			Name: rateAlias,
			From: func(period float64, _ *ParameterSet) float64 { return 1 / period },
			To:   func(rate float64, _ *ParameterSet) float64 { return 1 / rate },
		}},
	}
}

// ParameterSet holds the canonical value for each declared group and resolves
// alias reads and writes through the group formulas. Structure (the groups)
// is fixed at construction; values are mutable until a run snapshots them.
type ParameterSet struct {
	groups []GroupDef
	owner  map[string]int // canonical and alias names -> index into groups
	values map[string]Param
}

// NewParameterSet builds a set over the given group declarations with no
// values assigned yet. Group and alias names share one namespace; a collision
// is a programming error in the group declarations and panics.
func NewParameterSet(groups []GroupDef) *ParameterSet {
	ps := &ParameterSet{
		groups: groups,
		owner:  make(map[string]int),
		values: make(map[string]Param),
	}
	for i, g := range groups {
		ps.register(g.Name, i)
		for _, a := range g.Aliases {
			ps.register(a.Name, i)
		}
	}
	return ps
}

func (ps *ParameterSet) register(name string, idx int) {
	if _, dup := ps.owner[name]; dup {
		panic(fmt.Sprintf("epi: duplicate parameter name %q", name))
	}
	ps.owner[name] = idx
}

// Has reports whether the named group has a value assigned.
func (ps *ParameterSet) Has(group string) bool {
	_, ok := ps.values[group]
	return ok
}

// Groups returns the group declarations in declaration order.
func (ps *ParameterSet) Groups() []GroupDef {
	return ps.groups
}

// Get returns the current value of a canonical parameter or alias. Alias
// values are recomputed from the canonical value on every read, so they can
// never be stale.
func (ps *ParameterSet) Get(name string) (float64, error) {
	idx, ok := ps.owner[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	g := ps.groups[idx]
	p, ok := ps.values[g.Name]
	if !ok {
		return 0, fmt.Errorf("%w: group %q has no value", ErrMissingParameter, g.Name)
	}
	if name == g.Name {
		return p.Value, nil
	}
	for _, a := range g.Aliases {
		if a.Name == name {
			return a.From(p.Value, ps), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
}

// Set assigns a value through a canonical name or any alias. Alias writes are
// inverted into the owning group's canonical value, so all other aliases of
// the group reflect the change on their next read. Values that violate the
// group domain (or invert to a non-finite canonical value) are rejected and
// the stored value is untouched.
func (ps *ParameterSet) Set(name string, value float64) error {
	idx, ok := ps.owner[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	g := ps.groups[idx]

	canonical := value
	if name != g.Name {
		found := false
		for _, a := range g.Aliases {
			if a.Name == name {
				canonical = a.To(value, ps)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
	}
	if err := g.Domain(canonical); err != nil {
		return fmt.Errorf("%w: %s = %g: %s", ErrInvalidParameterValue, name, value, err)
	}

	// A write through any member of the group keeps provenance of the
	// canonical param but invalidates its CI: the interval described the old
	// value, not the new one.
	prev := ps.values[g.Name]
	ps.values[g.Name] = Param{Value: canonical, Ref: prev.Ref}
	return nil
}

// SetParam assigns a canonical parameter together with its provenance.
// Only canonical names are accepted: a confidence interval is meaningless on
// a computed view.
func (ps *ParameterSet) SetParam(group string, p Param) error {
	idx, ok := ps.owner[group]
	if !ok || ps.groups[idx].Name != group {
		return fmt.Errorf("%w: %q is not a canonical group name", ErrUnknownParameter, group)
	}
	g := ps.groups[idx]
	if err := g.Domain(p.Value); err != nil {
		return fmt.Errorf("%w: %s = %g: %s", ErrInvalidParameterValue, group, p.Value, err)
	}
	ps.values[group] = p
	return nil
}

// GetParam returns the canonical Param (value + provenance) for a group.
func (ps *ParameterSet) GetParam(group string) (Param, error) {
	idx, ok := ps.owner[group]
	if !ok || ps.groups[idx].Name != group {
		return Param{}, fmt.Errorf("%w: %q is not a canonical group name", ErrUnknownParameter, group)
	}
	p, ok := ps.values[group]
	if !ok {
		return Param{}, fmt.Errorf("%w: group %q has no value", ErrMissingParameter, group)
	}
	return p, nil
}

// Snapshot is an immutable name -> value capture of a ParameterSet, taken at
// the start of a run. Transition functions read only snapshots, so a
// concurrent Set on the live set cannot perturb an in-flight integration.
type Snapshot map[string]float64

// Snapshot captures every canonical parameter and every alias of every
// assigned group.
func (ps *ParameterSet) Snapshot() Snapshot {
	snap := make(Snapshot, 2*len(ps.groups))
	for _, g := range ps.groups {
		p, ok := ps.values[g.Name]
		if !ok {
			continue
		}
		snap[g.Name] = p.Value
		for _, a := range g.Aliases {
			snap[a.Name] = a.From(p.Value, ps)
		}
	}
	return snap
}
