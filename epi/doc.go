// Package epi implements deterministic compartmental epidemic models
// (SIR, SEIR, SEAIR, SEICHAR) over a shared fixed-step integrator.
//
// # Reading Guide
//
// Start with these three files to understand the core:
//   - params.go: parameter groups, alias formulas, and write-through semantics
//   - variants.go: the declarative ModelSpec for each variant
//   - integrator.go: the RK4 loop, clamping diagnostics, divergence detection
//
// # Architecture
//
// A Model binds one ModelSpec (compartment layout + transition function +
// required parameter groups) to a ParameterSet and demography-scaled initial
// conditions. Run snapshots the parameters, hands everything to the shared
// Integrator, and wraps the output in a SimulationRun. Results are consumed
// through a small string grammar ("I", "infectious", "infectious:weeks")
// parsed by grammar.go and dispatched to the transform registry in
// transforms.go.
//
// Variants are data, not types: adding a model means registering a ModelSpec,
// never subclassing the integrator.
package epi
