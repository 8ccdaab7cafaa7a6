package ops

import (
	"github.com/pkg/errors"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

// opProd is the pointwise product of two operators with identical targets,
// over the union of their domains.
type opProd struct {
	op1, op2 Operator
	dom      domain.Spec
	tgt      domain.Spec
}

// Prod builds the pointwise product op1 * op2. The targets must be
// identical; the domains are united with conflict checks.
func Prod(op1, op2 Operator) (Operator, error) {
	if op1.Target() != op2.Target() {
		return nil, errors.Wrapf(ErrTargetMismatch, "%s vs %s", op1.Target(), op2.Target())
	}
	dom, err := domainUnion(op1.Domain(), op2.Domain())
	if err != nil {
		return nil, err
	}
	return &opProd{op1: op1, op2: op2, dom: dom, tgt: op1.Target()}, nil
}

func (p *opProd) Domain() domain.Spec { return p.dom }
func (p *opProd) Target() domain.Spec { return p.tgt }

func (p *opProd) Apply(x field.Value) (field.Value, error) {
	if err := checkDomain(p, x); err != nil {
		return nil, err
	}
	y1, err := p.op1.Apply(field.Extract(x, p.op1.Domain()))
	if err != nil {
		return nil, err
	}
	y2, err := p.op2.Apply(field.Extract(x, p.op2.Domain()))
	if err != nil {
		return nil, err
	}
	return field.Mul(y1, y2), nil
}

func (p *opProd) LinearizeAt(x field.Value, wantMetric bool) (*Linearization, error) {
	if err := checkDomain(p, x); err != nil {
		return nil, err
	}
	lin1, err := LinearizeOp(p.op1, field.Extract(x, p.op1.Domain()), wantMetric)
	if err != nil {
		return nil, err
	}
	lin2, err := LinearizeOp(p.op2, field.Extract(x, p.op2.Domain()), wantMetric)
	if err != nil {
		return nil, err
	}
	// product rule: d(f*g) = g*df + f*dg
	j1, err := chainLinear(MakeDiagonal(lin2.Val()), lin1.Jac())
	if err != nil {
		return nil, err
	}
	j2, err := chainLinear(MakeDiagonal(lin1.Val()), lin2.Jac())
	if err != nil {
		return nil, err
	}
	jac, err := addLinear(j1, j2)
	if err != nil {
		return nil, err
	}
	return &Linearization{
		val:        field.Mul(lin1.Val(), lin2.Val()),
		jac:        jac,
		wantMetric: wantMetric,
	}, nil
}

func (p *opProd) simplifyForConstInput(cst field.Value) (field.Value, Operator, error) {
	f1, o1, err := SimplifyForConstInput(p.op1, field.ExtractPart(cst, p.op1.Domain()))
	if err != nil {
		return nil, nil, err
	}
	f2, o2, err := SimplifyForConstInput(p.op2, field.ExtractPart(cst, p.op2.Domain()))
	if err != nil {
		return nil, nil, err
	}
	rewritten, err := Prod(o1, o2)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := p.tgt.(*domain.Multi); !ok {
		return nil, rewritten, nil
	}
	var cc constCollector
	cc.mult(f1, o1.Target())
	cc.mult(f2, o2.Target())
	return cc.constValue(), rewritten, nil
}

func (p *opProd) String() string { return "OpProd" }
