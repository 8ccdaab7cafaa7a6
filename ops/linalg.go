package ops

import (
	"github.com/pkg/errors"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

// linChain is the composition of linear operators; ops[0] is outermost.
// Chains are flat: composing chains concatenates their leaves, and identity
// scalings are pruned.
type linChain struct {
	ops []Linear
	dom domain.Spec
	tgt domain.Spec
	cap Mode
}

func isIdentity(op Linear) bool {
	s, ok := op.(*ScalingOperator)
	return ok && s.factor == 1
}

// newLinChain builds the flattened composition of ops (outermost first).
func newLinChain(ops []Linear) (Linear, error) {
	var flat []Linear
	var unpack func(list []Linear)
	unpack = func(list []Linear) {
		for _, op := range list {
			if c, ok := op.(*linChain); ok {
				unpack(c.ops)
				continue
			}
			flat = append(flat, op)
		}
	}
	unpack(ops)
	if len(flat) == 0 {
		return nil, errors.Wrap(ErrEmptyChain, "linear chain")
	}
	for i := 1; i < len(flat); i++ {
		if flat[i-1].Domain() != flat[i].Target() {
			return nil, errors.Wrapf(ErrDomainMismatch, "chain link %d: %s <- %s",
				i, flat[i-1].Domain(), flat[i].Target())
		}
	}
	dom, tgt := flat[len(flat)-1].Domain(), flat[0].Target()
	pruned := flat[:0]
	for _, op := range flat {
		if !isIdentity(op) {
			pruned = append(pruned, op)
		}
	}
	if len(pruned) == 0 {
		return NewScaling(dom, 1), nil
	}
	if len(pruned) == 1 {
		return pruned[0], nil
	}
	capability := AllModes
	for _, op := range pruned {
		capability &= op.Capability()
	}
	return &linChain{ops: pruned, dom: dom, tgt: tgt, cap: capability}, nil
}

// chainLinear composes a after b.
func chainLinear(a, b Linear) (Linear, error) {
	return newLinChain([]Linear{a, b})
}

func scaleLinear(op Linear, c float64) (Linear, error) {
	if c == 1 {
		return op, nil
	}
	return chainLinear(NewScaling(op.Target(), c), op)
}

func negLinear(op Linear) (Linear, error) { return scaleLinear(op, -1) }

func (c *linChain) Domain() domain.Spec { return c.dom }
func (c *linChain) Target() domain.Spec { return c.tgt }
func (c *linChain) Capability() Mode    { return c.cap }

func (c *linChain) Apply(x field.Value) (field.Value, error) {
	return c.ApplyMode(x, Times)
}

func (c *linChain) ApplyMode(x field.Value, mode Mode) (field.Value, error) {
	if err := checkMode(c, x, mode); err != nil {
		return nil, err
	}
	var err error
	switch mode {
	case Times, AdjointInverseTimes:
		// innermost first
		for i := len(c.ops) - 1; i >= 0; i-- {
			if x, err = c.ops[i].ApplyMode(x, mode); err != nil {
				return nil, err
			}
		}
	default:
		// adjoint and inverse reverse the composition order
		for _, op := range c.ops {
			if x, err = op.ApplyMode(x, mode); err != nil {
				return nil, err
			}
		}
	}
	return x, nil
}

// linSum is the sum of two linear operators over the union of their domains
// and targets. Each summand sees only its own sub-domain of the input, and
// outputs on overlapping target keys are added; that makes linSum the
// Jacobian of the nonlinear sum combinator.
type linSum struct {
	a, b Linear
	dom  domain.Spec
	tgt  domain.Spec
	cap  Mode
}

func addLinear(a, b Linear) (Linear, error) {
	dom, err := domainUnion(a.Domain(), b.Domain())
	if err != nil {
		return nil, err
	}
	tgt, err := domainUnion(a.Target(), b.Target())
	if err != nil {
		return nil, errors.Wrap(ErrTargetMismatch, err.Error())
	}
	capability := a.Capability() & b.Capability() & (Times | AdjointTimes)
	return &linSum{a: a, b: b, dom: dom, tgt: tgt, cap: capability}, nil
}

func subLinear(a, b Linear) (Linear, error) {
	nb, err := negLinear(b)
	if err != nil {
		return nil, err
	}
	return addLinear(a, nb)
}

func (s *linSum) Domain() domain.Spec { return s.dom }
func (s *linSum) Target() domain.Spec { return s.tgt }
func (s *linSum) Capability() Mode    { return s.cap }

func (s *linSum) Apply(x field.Value) (field.Value, error) {
	return s.ApplyMode(x, Times)
}

func (s *linSum) ApplyMode(x field.Value, mode Mode) (field.Value, error) {
	if err := checkMode(s, x, mode); err != nil {
		return nil, err
	}
	ya, err := s.a.ApplyMode(field.Extract(x, domainForMode(s.a, mode)), mode)
	if err != nil {
		return nil, err
	}
	yb, err := s.b.ApplyMode(field.Extract(x, domainForMode(s.b, mode)), mode)
	if err != nil {
		return nil, err
	}
	return field.Unite(ya, yb), nil
}
