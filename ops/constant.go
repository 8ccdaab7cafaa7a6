package ops

import (
	"fmt"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

// ConstantOperator ignores its input and returns a fixed value. It is the
// result of folding an operator whose whole input was declared constant; its
// Jacobian is the zero map.
type ConstantOperator struct {
	dom domain.Spec
	out field.Value
}

// NewConstant creates an operator mapping dom to out's domain, always
// returning out.
func NewConstant(dom domain.Spec, out field.Value) *ConstantOperator {
	return &ConstantOperator{dom: dom, out: out}
}

func (c *ConstantOperator) Domain() domain.Spec { return c.dom }
func (c *ConstantOperator) Target() domain.Spec { return c.out.Domain() }

func (c *ConstantOperator) Apply(x field.Value) (field.Value, error) {
	if err := checkDomain(c, x); err != nil {
		return nil, err
	}
	return c.out, nil
}

func (c *ConstantOperator) LinearizeAt(x field.Value, wantMetric bool) (*Linearization, error) {
	if err := checkDomain(c, x); err != nil {
		return nil, err
	}
	return &Linearization{
		val:        c.out,
		jac:        NewNull(c.dom, c.out.Domain()),
		wantMetric: wantMetric,
	}, nil
}

func (c *ConstantOperator) String() string {
	return fmt.Sprintf("Constant(%s -> %s)", c.dom, c.out.Domain())
}

// constSimplifier is implemented by combinators that can partially fold a
// constant input through their structure.
type constSimplifier interface {
	simplifyForConstInput(c field.Value) (field.Value, Operator, error)
}

// SimplifyForConstInput rewrites op for an input whose components named by
// c's domain are fixed at c's values. It returns the constant part of op's
// output, when that part is known, together with the rewritten operator.
//
// When c covers op's whole domain the result is a ConstantOperator; if op's
// domain was a multi-domain the folded operator's domain shrinks to the
// empty multi-domain, so the rewritten graph no longer asks for the frozen
// keys at all. A nil c leaves op untouched.
func SimplifyForConstInput(op Operator, c field.Value) (field.Value, Operator, error) {
	if c == nil {
		return nil, op, nil
	}
	if c.Domain() == op.Domain() {
		out, err := op.Apply(c)
		if err != nil {
			return nil, nil, err
		}
		dom := op.Domain()
		if _, ok := dom.(*domain.Multi); ok {
			dom = domain.EmptyMulti()
		}
		return out, NewConstant(dom, out), nil
	}
	if s, ok := op.(constSimplifier); ok {
		return s.simplifyForConstInput(c)
	}
	return nil, op, nil
}

// constCollector merges the constant output parts of combined operands. A
// target key counts as constant only while no operand with that key in its
// target has reported it non-constant.
type constCollector struct {
	consts   *field.Multi
	nonConst map[string]bool
}

func (cc *constCollector) mark(spec domain.Spec, except *field.Multi) {
	if cc.nonConst == nil {
		cc.nonConst = make(map[string]bool)
	}
	md, ok := spec.(*domain.Multi)
	if !ok {
		return
	}
	for _, k := range md.Keys() {
		if except != nil && except.Get(k) != nil {
			continue
		}
		cc.nonConst[k] = true
	}
}

func (cc *constCollector) filtered(m *field.Multi) *field.Multi {
	out := make(map[string]*field.Field)
	for _, k := range m.Keys() {
		if !cc.nonConst[k] {
			out[k] = m.Get(k)
		}
	}
	return field.FromMap(out)
}

// add folds in an operand of a sum: c is the constant part of its output
// (nil if none is known) and full its whole target. Keys constant in both
// operands are added; keys constant in only one survive only if the other
// operand's target does not cover them.
func (cc *constCollector) add(c field.Value, full domain.Spec) {
	cm, _ := c.(*field.Multi)
	if cm == nil {
		cc.mark(full, nil)
		if cc.consts != nil {
			cc.consts = cc.filtered(cc.consts)
		}
		return
	}
	cc.mark(full, cm)
	if cc.consts == nil {
		cc.consts = cm
	} else {
		cc.consts = cc.consts.Unite(cm)
	}
	cc.consts = cc.filtered(cc.consts)
}

// mult folds in an operand of a product, multiplying overlapping constant
// keys instead of adding them.
func (cc *constCollector) mult(c field.Value, full domain.Spec) {
	cm, _ := c.(*field.Multi)
	if cm == nil {
		cc.mark(full, nil)
		if cc.consts != nil {
			cc.consts = cc.filtered(cc.consts)
		}
		return
	}
	cc.mark(full, cm)
	if cc.consts == nil {
		cc.consts = cc.filtered(cm)
		return
	}
	both := make(map[string]*field.Field)
	for _, k := range cm.Keys() {
		if have := cc.consts.Get(k); have != nil {
			both[k] = have.Mul(cm.Get(k))
		}
	}
	cc.consts = cc.filtered(field.FromMap(both))
}

// constValue returns the collected constant output, or nil when nothing is
// known to be constant.
func (cc *constCollector) constValue() field.Value {
	if cc.consts == nil || cc.consts.MultiDomain().Len() == 0 {
		return nil
	}
	return cc.consts
}
