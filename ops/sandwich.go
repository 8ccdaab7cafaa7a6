package ops

import (
	"github.com/pkg/errors"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

// SandwichOperator is the self-adjoint composition bun^T * cheese * bun.
// It is how metrics are pulled back through linear maps when a
// linearization is prepended with another Jacobian.
type SandwichOperator struct {
	bun    Linear
	cheese Linear
	op     Linear
	cap    Mode
}

// MakeSandwich builds bun^T * cheese * bun, or bun^T * bun when cheese is
// nil. cheese must be endomorphic over bun's target. When the composition
// collapses to a scaling or diagonal operator it is returned directly.
func MakeSandwich(bun, cheese Linear) (Linear, error) {
	if cheese == nil {
		cheese = Identity(bun.Target())
	}
	if cheese.Domain() != bun.Target() || cheese.Target() != bun.Target() {
		return nil, errors.Wrapf(ErrDomainMismatch,
			"cheese %s is not endomorphic over bun target %s", cheese.Domain(), bun.Target())
	}
	inner, err := chainLinear(cheese, bun)
	if err != nil {
		return nil, err
	}
	op, err := chainLinear(Adjoint(bun), inner)
	if err != nil {
		return nil, err
	}
	switch op.(type) {
	case *ScalingOperator, *DiagonalOperator:
		return op, nil
	}
	// a sandwich is self-adjoint, so times implies adjoint-times
	capability := op.Capability()
	if capability&Times != 0 {
		capability |= AdjointTimes
	}
	if capability&InverseTimes != 0 {
		capability |= AdjointInverseTimes
	}
	return &SandwichOperator{bun: bun, cheese: cheese, op: op, cap: capability}, nil
}

func (s *SandwichOperator) Domain() domain.Spec { return s.op.Domain() }
func (s *SandwichOperator) Target() domain.Spec { return s.op.Domain() }
func (s *SandwichOperator) Capability() Mode    { return s.cap }

func (s *SandwichOperator) Apply(x field.Value) (field.Value, error) {
	return s.ApplyMode(x, Times)
}

func (s *SandwichOperator) ApplyMode(x field.Value, mode Mode) (field.Value, error) {
	if err := checkMode(s, x, mode); err != nil {
		return nil, err
	}
	// fold the adjoint bit away before delegating
	switch mode {
	case AdjointTimes:
		mode = Times
	case AdjointInverseTimes:
		mode = InverseTimes
	}
	return s.op.ApplyMode(x, mode)
}

func (s *SandwichOperator) String() string { return "SandwichOperator" }
