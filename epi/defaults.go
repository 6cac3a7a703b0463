package epi

import (
	"fmt"
	"math"
	"sort"
)

// snapValue reads a parameter for use inside an alias formula. Formulas
// cannot return errors, so a missing dependency surfaces as NaN, which the
// domain validators reject on write.
func snapValue(ps *ParameterSet, name string) float64 {
	v, err := ps.Get(name)
	if err != nil {
		return math.NaN()
	}
	return v
}

// epidemicGroups declares every parameter group the built-in variants use.
// Declaration order here fixes the ordering of ParameterSet.Table.
func epidemicGroups() []GroupDef {
	return []GroupDef{
		{
			Name:   "R0",
			Domain: nonNegativeDomain,
			Aliases: []AliasDef{{
				// beta crosses groups: it reads gamma from the set.
				Name: "beta",
				From: func(r0 float64, ps *ParameterSet) float64 {
					return r0 * snapValue(ps, "gamma")
				},
				To: func(beta float64, ps *ParameterSet) float64 {
					return beta / snapValue(ps, "gamma")
				},
			}},
		},
		PeriodGroup("infectious_period", "gamma"),
		PeriodGroup("incubation_period", "sigma"),
		{Name: "rho", Domain: unitIntervalDomain},
		{Name: "prob_symptoms", Domain: unitIntervalDomain},
		{Name: "prob_severe", Domain: unitIntervalDomain},
		{Name: "prob_critical", Domain: unitIntervalDomain},
		PeriodGroup("hospitalization_period", "eta"),
		PeriodGroup("critical_period", "mu"),
	}
}

// Disease is an immutable default-parameter payload: per-group canonical
// values with provenance. It is loaded (or built) once at process start and
// passed explicitly into model construction, never consulted as global state.
type Disease struct {
	Name   string
	Params map[string]Param
}

// DefaultDisease returns the packaged baseline disease parameters.
func DefaultDisease() Disease {
	return Disease{
		Name: "default",
		Params: map[string]Param{
			"R0":                     {Value: 2.74, Low: 2.5, High: 3.0, HasCI: true, Ref: "Verity et al. (2020)"},
			"infectious_period":      {Value: 3.47, Ref: "Verity et al. (2020)"},
			"incubation_period":      {Value: 3.69, Ref: "Lauer et al. (2020)"},
			"rho":                    {Value: 0.55},
			"prob_symptoms":          {Value: 0.14, Low: 0.1, High: 0.3, HasCI: true},
			"prob_severe":            {Value: 0.18},
			"prob_critical":          {Value: 0.05},
			"hospitalization_period": {Value: 7.0},
			"critical_period":        {Value: 7.5},
		},
	}
}

// paramsFor resolves the disease defaults for one spec. Models without an
// exposed compartment (the SIR family) fold the incubation period into the
// infectious period, so the collapsed model spends the same mean time
// between infection and recovery as its SEIR counterpart.
func (d Disease) paramsFor(spec *ModelSpec) map[string]Param {
	out := make(map[string]Param, len(d.Params))
	for k, v := range d.Params {
		out[k] = v
	}
	requires := func(group string) bool {
		for _, g := range spec.RequiredGroups {
			if g == group {
				return true
			}
		}
		return false
	}
	if !requires("incubation_period") {
		inf, okInf := out["infectious_period"]
		inc, okInc := out["incubation_period"]
		if okInf && okInc {
			out["infectious_period"] = Param{
				Value: inf.Value + inc.Value,
				Ref:   inf.Ref,
			}
		}
	}
	return out
}

// newParameterSet materializes the ParameterSet for a spec from disease
// defaults plus user overrides. Overrides may address aliases; they resolve
// through the group formulas. Every required group must end up with a value.
func newParameterSet(spec *ModelSpec, disease Disease, overrides map[string]float64) (*ParameterSet, error) {
	required := make(map[string]bool, len(spec.RequiredGroups))
	for _, g := range spec.RequiredGroups {
		required[g] = true
	}

	all := epidemicGroups()
	groups := make([]GroupDef, 0, len(all))
	for _, g := range all {
		if required[g.Name] {
			groups = append(groups, g)
		}
	}
	ps := NewParameterSet(groups)

	defaults := disease.paramsFor(spec)
	for _, g := range groups {
		if p, ok := defaults[g.Name]; ok {
			if err := ps.SetParam(g.Name, p); err != nil {
				return nil, fmt.Errorf("disease %q default for %s: %w", disease.Name, g.Name, err)
			}
		}
	}
	// Sorted application keeps override resolution deterministic when two
	// overrides address the same group.
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ps.Set(name, overrides[name]); err != nil {
			return nil, err
		}
	}
	for _, g := range spec.RequiredGroups {
		if !ps.Has(g) {
			return nil, fmt.Errorf("%w: model %s requires group %q", ErrMissingParameter, spec.Name, g)
		}
	}
	return ps, nil
}
