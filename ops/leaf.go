package ops

import (
	"fmt"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
	"github.com/fieldgraph/fieldgraph/pointwise"
)

// ptwApplier lifts a registered elementwise function into an endomorphic
// operator. Under linearization it yields diag(f'(x)) as Jacobian.
type ptwApplier struct {
	dom  domain.Spec
	name string
	pair pointwise.Pair
}

func newPtwApplier(dom domain.Spec, name string) (*ptwApplier, error) {
	pair, err := pointwise.Lookup(name)
	if err != nil {
		return nil, err
	}
	return &ptwApplier{dom: dom, name: name, pair: pair}, nil
}

func (p *ptwApplier) Domain() domain.Spec { return p.dom }
func (p *ptwApplier) Target() domain.Spec { return p.dom }

func (p *ptwApplier) Apply(x field.Value) (field.Value, error) {
	if err := checkDomain(p, x); err != nil {
		return nil, err
	}
	return field.Map(x, p.pair.Apply), nil
}

func (p *ptwApplier) LinearizeAt(x field.Value, wantMetric bool) (*Linearization, error) {
	if err := checkDomain(p, x); err != nil {
		return nil, err
	}
	val, der := field.MapWithJac(x, p.pair.ApplyWithJac)
	return &Linearization{val: val, jac: MakeDiagonal(der), wantMetric: wantMetric}, nil
}

func (p *ptwApplier) String() string { return fmt.Sprintf("Ptw(%q)", p.name) }

// powerOp raises its input to a fixed power elementwise.
type powerOp struct {
	dom   domain.Spec
	power float64
}

func (p *powerOp) Domain() domain.Spec { return p.dom }
func (p *powerOp) Target() domain.Spec { return p.dom }

func (p *powerOp) Apply(x field.Value) (field.Value, error) {
	if err := checkDomain(p, x); err != nil {
		return nil, err
	}
	return field.Pow(x, p.power), nil
}

func (p *powerOp) LinearizeAt(x field.Value, wantMetric bool) (*Linearization, error) {
	if err := checkDomain(p, x); err != nil {
		return nil, err
	}
	der := field.Scale(field.Pow(x, p.power-1), p.power)
	return &Linearization{
		val:        field.Pow(x, p.power),
		jac:        MakeDiagonal(der),
		wantMetric: wantMetric,
	}, nil
}

func (p *powerOp) String() string { return fmt.Sprintf("Power(%g)", p.power) }

// clipper clamps its input to [lo, hi]. The derivative is 1 strictly inside
// the interval and 0 where the input is clamped.
type clipper struct {
	dom    domain.Spec
	lo, hi float64
}

func (c *clipper) Domain() domain.Spec { return c.dom }
func (c *clipper) Target() domain.Spec { return c.dom }

func (c *clipper) Apply(x field.Value) (field.Value, error) {
	if err := checkDomain(c, x); err != nil {
		return nil, err
	}
	return field.Clip(x, c.lo, c.hi), nil
}

func (c *clipper) LinearizeAt(x field.Value, wantMetric bool) (*Linearization, error) {
	if err := checkDomain(c, x); err != nil {
		return nil, err
	}
	val, der := field.MapWithJac(x, func(v float64) (float64, float64) {
		switch {
		case v < c.lo:
			return c.lo, 0
		case v > c.hi:
			return c.hi, 0
		}
		return v, 1
	})
	return &Linearization{val: val, jac: MakeDiagonal(der), wantMetric: wantMetric}, nil
}

func (c *clipper) String() string { return fmt.Sprintf("Clip[%g,%g]", c.lo, c.hi) }
