package ops

import (
	"github.com/pkg/errors"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

// opChain is the composition of operators, outermost first. Nested chains
// are flattened at construction, so a chain of N operators is one node with
// N leaves and Jacobian composition stays shallow.
type opChain struct {
	ops []Operator
	dom domain.Spec
	tgt domain.Spec
}

// Chain composes ops right to left: Chain(f, g).Apply(x) is f(g(x)).
// Adjacent domains and targets must match identically; a chain of linear
// operators is itself Linear.
func Chain(chain ...Operator) (Operator, error) {
	var flat []Operator
	var unpack func(list []Operator)
	unpack = func(list []Operator) {
		for _, op := range list {
			switch c := op.(type) {
			case *opChain:
				unpack(c.ops)
			case *linChain:
				for _, l := range c.ops {
					flat = append(flat, l)
				}
			default:
				flat = append(flat, op)
			}
		}
	}
	unpack(chain)
	if len(flat) == 0 {
		return nil, ErrEmptyChain
	}
	for i := 1; i < len(flat); i++ {
		if flat[i-1].Domain() != flat[i].Target() {
			return nil, errors.Wrapf(ErrDomainMismatch, "chain link %d: %s <- %s",
				i, flat[i-1].Domain(), flat[i].Target())
		}
	}
	if len(flat) == 1 {
		return flat[0], nil
	}
	linear := make([]Linear, 0, len(flat))
	for _, op := range flat {
		l, ok := op.(Linear)
		if !ok {
			linear = nil
			break
		}
		linear = append(linear, l)
	}
	if linear != nil {
		return newLinChain(linear)
	}
	return &opChain{
		ops: flat,
		dom: flat[len(flat)-1].Domain(),
		tgt: flat[0].Target(),
	}, nil
}

// Leaves returns the flattened operator sequence of a chain, outermost
// first, or the operator itself for non-chains.
func Leaves(op Operator) []Operator {
	switch c := op.(type) {
	case *opChain:
		return c.ops
	case *linChain:
		out := make([]Operator, len(c.ops))
		for i, l := range c.ops {
			out[i] = l
		}
		return out
	}
	return []Operator{op}
}

func (c *opChain) Domain() domain.Spec { return c.dom }
func (c *opChain) Target() domain.Spec { return c.tgt }

func (c *opChain) Apply(x field.Value) (field.Value, error) {
	if err := checkDomain(c, x); err != nil {
		return nil, err
	}
	var err error
	for i := len(c.ops) - 1; i >= 0; i-- {
		if x, err = c.ops[i].Apply(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

func (c *opChain) LinearizeAt(x field.Value, wantMetric bool) (*Linearization, error) {
	if err := checkDomain(c, x); err != nil {
		return nil, err
	}
	lin := MakeVar(x, wantMetric)
	var err error
	for i := len(c.ops) - 1; i >= 0; i-- {
		if lin, err = Linearized(c.ops[i], lin); err != nil {
			return nil, err
		}
	}
	return lin, nil
}

func (c *opChain) simplifyForConstInput(cst field.Value) (field.Value, Operator, error) {
	if _, ok := c.dom.(*domain.Multi); !ok {
		return nil, c, nil
	}
	var newop Operator
	cur := cst
	for i := len(c.ops) - 1; i >= 0; i-- {
		op := c.ops[i]
		folded, simplified, err := SimplifyForConstInput(op, cur)
		if err != nil {
			return nil, nil, err
		}
		cur = folded
		if newop == nil {
			newop = simplified
			continue
		}
		// only the innermost link changes its domain; links above keep
		// their original form and the constants flow past them
		if newop, err = Chain(op, newop); err != nil {
			return nil, nil, err
		}
	}
	return cur, newop, nil
}

func (c *opChain) String() string { return "OpChain" }
