// Package fieldgraph implements the operator algebra and forward-mode
// linearization engine for Bayesian field inference.
//
// Fieldgraph models inference problems as typed computational graphs of
// (possibly nonlinear) operators acting on structured, named
// multi-dimensional data ("fields"). Evaluating a graph at a point can
// produce either the plain value or a Linearization: the value together
// with an explicit, lazily composed linear operator representing the
// Jacobian, and optionally a propagated quadratic-form metric.
//
// # Architecture Overview
//
// The engine consists of several key components:
//
//   - Domains: interned shape descriptions (DomainTuple, MultiDomain) whose
//     equality is pointer identity, giving O(1) type checks during graph
//     composition
//   - Fields: immutable array values tagged with their domain
//   - Operators: the nonlinear graph, built by chain/sum/product combinators
//     that type-check and fold at construction time
//   - Linear operators: a four-mode capability model (forward, adjoint,
//     inverse, adjoint-inverse) with lazy view-flipping adapters
//   - Linearizations: value + Jacobian (+ optional metric) records with
//     exact derivative rules for every registered elementwise function
//   - Constant folding: graph rewriting that removes known-constant input
//     keys from an operator's effective domain
//
// # Basic Usage
//
//	d := domain.MakeTuple(domain.NewUnstructured(16))
//	a, _ := ops.Ducktape(ops.NewScaling(d, 1), "a")
//	ea, _ := ops.PtwOp(a, "exp")
//	b, _ := ops.Ducktape(ops.NewScaling(d, 1), "b")
//	f, _ := ops.Prod(ea, b) // exp(a) * b
//
//	lin, _ := ops.LinearizeOp(f, x, false)
//	val := lin.Val() // exp(a) * b at x
//	jac := lin.Jac() // composed linear operator, never materialized
//
// # Package Structure
//
//   - domain: interned domain model (DomainTuple, MultiDomain)
//   - field: Field and MultiField value records
//   - pointwise: elementwise function/derivative registry
//   - ops: operators, combinators, linearization, constant folding
//   - check: adjoint/inverse/Jacobian property verification
//   - cmd/fieldgraph: demo and self-check command line tool
//
// Concrete numerical kernels (FFTs, harmonic transforms), iterative solvers
// and probability energies are deliberately out of scope: they are external
// collaborators that plug in through the Operator and Linear interfaces.
package fieldgraph
