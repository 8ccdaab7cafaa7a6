// Package ops implements the operator graph of the fieldgraph engine:
// nonlinear operators and their combinators, the four-mode linear operator
// capability model, forward-mode linearization, and constant folding.
//
// Operators are immutable once constructed, and all structural checks
// (domain identity, target equality, capability masks) happen at
// construction time, so an unsound graph can never be evaluated. Evaluation
// is side-effect free; the same operator may be applied concurrently from
// multiple goroutines on different inputs.
package ops

import (
	"github.com/pkg/errors"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

// Operator transforms values defined on its domain into values defined on
// its target.
type Operator interface {
	// Domain is the domain of the operator's input.
	Domain() domain.Spec
	// Target is the domain of the operator's output.
	Target() domain.Spec
	// Apply evaluates the operator. The input's domain must be identical to
	// Domain().
	Apply(x field.Value) (field.Value, error)
}

// Differentiable is an Operator that can evaluate itself together with its
// Jacobian at a point.
type Differentiable interface {
	Operator

	// LinearizeAt returns the linearization of the operator at x, with the
	// Jacobian taken with respect to x itself.
	LinearizeAt(x field.Value, wantMetric bool) (*Linearization, error)
}

func checkDomain(op Operator, x field.Value) error {
	if op.Domain() != x.Domain() {
		return errors.Wrapf(ErrDomainMismatch, "operator wants %s, input is %s",
			op.Domain(), x.Domain())
	}
	return nil
}

// LinearizeOp evaluates op at x with derivative tracking. Linear operators
// are their own Jacobian; nonlinear operators dispatch to LinearizeAt.
func LinearizeOp(op Operator, x field.Value, wantMetric bool) (*Linearization, error) {
	if err := checkDomain(op, x); err != nil {
		return nil, err
	}
	switch o := op.(type) {
	case Linear:
		y, err := o.Apply(x)
		if err != nil {
			return nil, err
		}
		return &Linearization{val: y, jac: o, wantMetric: wantMetric}, nil
	case Differentiable:
		return o.LinearizeAt(x, wantMetric)
	}
	return nil, errors.Wrapf(ErrNotDifferentiable, "%T", op)
}

// Linearized propagates an existing linearization through op: the result's
// Jacobian is op's Jacobian at lin's value composed with lin's Jacobian, and
// a metric, if present, is pushed through as a sandwich.
func Linearized(op Operator, lin *Linearization) (*Linearization, error) {
	inner, err := LinearizeOp(op, lin.Val(), lin.WantMetric())
	if err != nil {
		return nil, err
	}
	return inner.PrependJac(lin.Jac())
}

// Force extracts op's domain from a superset input and applies. It lets
// callers holding a full position evaluate an operator whose domain shrank,
// e.g. after constant folding.
func Force(op Operator, x field.Value) (field.Value, error) {
	if op.Domain() == x.Domain() {
		return op.Apply(x)
	}
	want, okw := op.Domain().(*domain.Multi)
	have, okh := x.(*field.Multi)
	if !okw || !okh {
		return nil, errors.Wrapf(ErrDomainMismatch, "cannot force %s onto %s",
			x.Domain(), op.Domain())
	}
	for _, k := range want.Keys() {
		f := have.Get(k)
		if f == nil || f.Tuple() != want.Get(k) {
			return nil, errors.Wrapf(ErrDomainMismatch, "forced input misses key %q", k)
		}
	}
	return op.Apply(have.Extract(want))
}

// domainUnion merges two operand domains: identical tuples stay as they
// are, multi-domains take their union, anything else is a mismatch.
func domainUnion(a, b domain.Spec) (domain.Spec, error) {
	if a == b {
		return a, nil
	}
	am, aok := a.(*domain.Multi)
	bm, bok := b.(*domain.Multi)
	if !aok || !bok {
		return nil, errors.Wrapf(ErrDomainMismatch, "cannot unite %s and %s", a, b)
	}
	u, err := domain.Union(am, bm)
	if err != nil {
		return nil, errors.Wrap(ErrDomainMismatch, err.Error())
	}
	return u, nil
}
