package ops

import "github.com/pkg/errors"

var (
	// ErrDomainMismatch indicates an input whose domain is not identical to
	// the expected domain, or combinator operands with incompatible domains.
	ErrDomainMismatch = errors.New("fieldgraph(ops): domain mismatch")
	// ErrTargetMismatch indicates combinator operands with unequal targets.
	ErrTargetMismatch = errors.New("fieldgraph(ops): target mismatch")
	// ErrCapability indicates a linear application mode the operator did not
	// declare in its capability mask.
	ErrCapability = errors.New("fieldgraph(ops): unsupported application mode")
	// ErrNotDifferentiable indicates a linearization request on an operator
	// that implements neither Linear nor Differentiable.
	ErrNotDifferentiable = errors.New("fieldgraph(ops): operator does not support linearization")
	// ErrScalarTarget indicates a gradient request on a linearization whose
	// target is not the scalar domain.
	ErrScalarTarget = errors.New("fieldgraph(ops): gradient requires a scalar target")
	// ErrEmptyChain indicates a chain construction without operators.
	ErrEmptyChain = errors.New("fieldgraph(ops): empty operator chain")
)
