package epi

import (
	"fmt"
	"sort"
	"strings"
)

// Transition functions for the built-in variants. All of them follow the
// standard compartmental coupling: susceptible depletion proportional to
// beta * S * (infectious fraction), flows between compartments proportional
// to the reciprocal mean sojourn times. Every flow leaving a compartment
// enters another, so the total population is conserved exactly in the
// continuous formulation.

func sirTransition(dst, x []float64, p Snapshot, _ float64) {
	s, i, r := x[0], x[1], x[2]
	n := s + i + r
	beta, gamma := p["beta"], p["gamma"]

	infections := beta * s * (i / n)
	dst[0] = -infections
	dst[1] = +infections - gamma*i
	dst[2] = +gamma * i
}

func seirTransition(dst, x []float64, p Snapshot, _ float64) {
	s, e, i, r := x[0], x[1], x[2], x[3]
	n := s + e + i + r
	beta, gamma, sigma := p["beta"], p["gamma"], p["sigma"]

	infections := beta * s * (i / n)
	dst[0] = -infections
	dst[1] = +infections - sigma*e
	dst[2] = +sigma*e - gamma*i
	dst[3] = +gamma * i
}

func seairTransition(dst, x []float64, p Snapshot, _ float64) {
	s, e, a, i, r := x[0], x[1], x[2], x[3], x[4]
	n := s + e + a + i + r
	beta, gamma, sigma := p["beta"], p["gamma"], p["sigma"]
	rho, qs := p["rho"], p["prob_symptoms"]

	// Asymptomatics infect at a reduced rate rho relative to symptomatics.
	infections := beta * s * ((i + rho*a) / n)
	dst[0] = -infections
	dst[1] = +infections - sigma*e
	dst[2] = +(1-qs)*sigma*e - gamma*a
	dst[3] = +qs*sigma*e - gamma*i
	dst[4] = +gamma * (i + a)
}

func seicharTransition(dst, x []float64, p Snapshot, _ float64) {
	s, e, a, i, c, h, r := x[0], x[1], x[2], x[3], x[4], x[5], x[6]
	n := s + e + a + i + c + h + r
	beta, gamma, sigma := p["beta"], p["gamma"], p["sigma"]
	rho, qs := p["rho"], p["prob_symptoms"]
	severe, critical := p["prob_severe"], p["prob_critical"]
	eta, mu := p["eta"], p["mu"]

	// Hospitalized and critical cases are isolated and do not infect.
	infections := beta * s * ((i + rho*a) / n)
	dst[0] = -infections
	dst[1] = +infections - sigma*e
	dst[2] = +(1-qs)*sigma*e - gamma*a
	dst[3] = +qs*sigma*e - gamma*i
	dst[5] = +severe*gamma*i - eta*h
	dst[4] = +critical*eta*h - mu*c
	dst[6] = +gamma*a + (1-severe)*gamma*i + (1-critical)*eta*h + mu*c
}

// derivedTotal is the virtual column "N": the population total per time
// point. For conserved models it is constant up to integration error.
func derivedTotal(r *SimulationRun) []float64 {
	out := make([]float64, len(r.Times))
	for t := range r.Times {
		total := 0.0
		for _, col := range r.states {
			total += col[t]
		}
		out[t] = total
	}
	return out
}

// derivedCases is the virtual column "cases": everyone who has left the
// susceptible compartment (the ever-infected total). Valid for conserved
// models where the only exit from S is infection.
func derivedCases(r *SimulationRun) []float64 {
	sIdx := r.spec.Index("S")
	out := make([]float64, len(r.Times))
	for t := range r.Times {
		total := 0.0
		for j, col := range r.states {
			if j == sIdx {
				continue
			}
			total += col[t]
		}
		out[t] = total
	}
	return out
}

var defaultDerived = map[string]DerivedColumn{
	"N":     derivedTotal,
	"cases": derivedCases,
}

var variantSpecs = map[string]*ModelSpec{
	"sir": {
		Name: "SIR",
		Compartments: []Compartment{
			{"S", "susceptible"},
			{"I", "infectious"},
			{"R", "recovered"},
		},
		Transition:      sirTransition,
		RequiredGroups:  []string{"R0", "infectious_period"},
		SeedCompartment: "I",
		Derived:         defaultDerived,
	},
	"seir": {
		Name: "SEIR",
		Compartments: []Compartment{
			{"S", "susceptible"},
			{"E", "exposed"},
			{"I", "infectious"},
			{"R", "recovered"},
		},
		Transition:      seirTransition,
		RequiredGroups:  []string{"R0", "infectious_period", "incubation_period"},
		SeedCompartment: "I",
		Derived:         defaultDerived,
	},
	"seair": {
		Name: "SEAIR",
		Compartments: []Compartment{
			{"S", "susceptible"},
			{"E", "exposed"},
			{"A", "asymptomatic"},
			{"I", "infectious"},
			{"R", "recovered"},
		},
		Transition: seairTransition,
		RequiredGroups: []string{
			"R0", "infectious_period", "incubation_period", "rho", "prob_symptoms",
		},
		SeedCompartment: "I",
		Derived:         defaultDerived,
	},
	"seichar": {
		Name: "SEICHAR",
		Compartments: []Compartment{
			{"S", "susceptible"},
			{"E", "exposed"},
			{"A", "asymptomatic"},
			{"I", "infectious"},
			{"C", "critical"},
			{"H", "hospitalized"},
			{"R", "recovered"},
		},
		Transition: seicharTransition,
		RequiredGroups: []string{
			"R0", "infectious_period", "incubation_period", "rho", "prob_symptoms",
			"prob_severe", "prob_critical", "hospitalization_period", "critical_period",
		},
		SeedCompartment: "I",
		Derived:         defaultDerived,
	},
}

// SpecFor returns the ModelSpec for a variant name (case-insensitive).
func SpecFor(variant string) (*ModelSpec, error) {
	spec, ok := variantSpecs[strings.ToLower(variant)]
	if !ok {
		return nil, fmt.Errorf("unknown model variant %q (have %s)",
			variant, strings.Join(Variants(), ", "))
	}
	return spec, nil
}

// Variants lists the registered variant names, sorted.
func Variants() []string {
	names := make([]string, 0, len(variantSpecs))
	for name := range variantSpecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
