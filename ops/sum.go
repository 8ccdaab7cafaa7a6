package ops

import (
	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

// opSum is the sum of two operators over the union of their domains and
// targets. Each operand sees only its own sub-domain of the input; outputs
// with disjoint target keys are united, overlapping ones added.
type opSum struct {
	op1, op2 Operator
	dom      domain.Spec
	tgt      domain.Spec
}

// Add builds op1 + op2. Domains and targets are united with conflict
// checks; the sum of two linear operators is itself Linear.
func Add(op1, op2 Operator) (Operator, error) {
	l1, ok1 := op1.(Linear)
	l2, ok2 := op2.(Linear)
	if ok1 && ok2 {
		return addLinear(l1, l2)
	}
	dom, err := domainUnion(op1.Domain(), op2.Domain())
	if err != nil {
		return nil, err
	}
	tgt, err := domainUnion(op1.Target(), op2.Target())
	if err != nil {
		return nil, err
	}
	return &opSum{op1: op1, op2: op2, dom: dom, tgt: tgt}, nil
}

// Sub builds op1 - op2.
func Sub(op1, op2 Operator) (Operator, error) {
	neg, err := ScaleOp(op2, -1)
	if err != nil {
		return nil, err
	}
	return Add(op1, neg)
}

func (s *opSum) Domain() domain.Spec { return s.dom }
func (s *opSum) Target() domain.Spec { return s.tgt }

func (s *opSum) Apply(x field.Value) (field.Value, error) {
	if err := checkDomain(s, x); err != nil {
		return nil, err
	}
	y1, err := s.op1.Apply(field.Extract(x, s.op1.Domain()))
	if err != nil {
		return nil, err
	}
	y2, err := s.op2.Apply(field.Extract(x, s.op2.Domain()))
	if err != nil {
		return nil, err
	}
	return field.Unite(y1, y2), nil
}

func (s *opSum) LinearizeAt(x field.Value, wantMetric bool) (*Linearization, error) {
	if err := checkDomain(s, x); err != nil {
		return nil, err
	}
	lin1, err := LinearizeOp(s.op1, field.Extract(x, s.op1.Domain()), wantMetric)
	if err != nil {
		return nil, err
	}
	lin2, err := LinearizeOp(s.op2, field.Extract(x, s.op2.Domain()), wantMetric)
	if err != nil {
		return nil, err
	}
	jac, err := addLinear(lin1.Jac(), lin2.Jac())
	if err != nil {
		return nil, err
	}
	res := &Linearization{
		val:        field.Unite(lin1.Val(), lin2.Val()),
		jac:        jac,
		wantMetric: wantMetric,
	}
	if lin1.Metric() != nil && lin2.Metric() != nil {
		met, err := addLinear(lin1.Metric(), lin2.Metric())
		if err != nil {
			return nil, err
		}
		res.metric = met
	}
	return res, nil
}

func (s *opSum) simplifyForConstInput(cst field.Value) (field.Value, Operator, error) {
	f1, o1, err := SimplifyForConstInput(s.op1, field.ExtractPart(cst, s.op1.Domain()))
	if err != nil {
		return nil, nil, err
	}
	f2, o2, err := SimplifyForConstInput(s.op2, field.ExtractPart(cst, s.op2.Domain()))
	if err != nil {
		return nil, nil, err
	}
	rewritten, err := Add(o1, o2)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := s.tgt.(*domain.Multi); !ok {
		return nil, rewritten, nil
	}
	var cc constCollector
	cc.add(f1, o1.Target())
	cc.add(f2, o2.Target())
	return cc.constValue(), rewritten, nil
}

func (s *opSum) String() string { return "OpSum" }
