package ops

import (
	"github.com/pkg/errors"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
	"github.com/fieldgraph/fieldgraph/pointwise"
)

// Linearization pairs the value of an operator at a point with the Jacobian
// at that point, and optionally a propagated quadratic-form metric. The
// Jacobian is a composed Linear operator and is never materialized.
//
// The invariant val.Domain() == jac.Target() holds for every Linearization;
// jac.Domain() is the tangent space the derivative is taken with respect to.
type Linearization struct {
	val        field.Value
	jac        Linear
	metric     Linear
	wantMetric bool
}

// NewLinearization creates a Linearization and validates its invariant.
func NewLinearization(val field.Value, jac Linear, metric Linear, wantMetric bool) (*Linearization, error) {
	if val.Domain() != jac.Target() {
		return nil, errors.Wrapf(ErrDomainMismatch, "value on %s, jacobian targets %s",
			val.Domain(), jac.Target())
	}
	return &Linearization{val: val, jac: jac, metric: metric, wantMetric: wantMetric}, nil
}

// MakeVar starts derivative tracking at x: the Jacobian is the identity.
func MakeVar(x field.Value, wantMetric bool) *Linearization {
	return &Linearization{val: x, jac: Identity(x.Domain()), wantMetric: wantMetric}
}

// MakeConst freezes x: the Jacobian is the zero map on x's domain.
func MakeConst(x field.Value, wantMetric bool) *Linearization {
	return &Linearization{val: x, jac: NewNull(x.Domain(), x.Domain()), wantMetric: wantMetric}
}

// MakePartialVar starts derivative tracking at x with the listed keys held
// constant: the Jacobian is block-diagonal, identity on the remaining keys
// and zero on the constant ones.
func MakePartialVar(x *field.Multi, constants []string, wantMetric bool) (*Linearization, error) {
	if len(constants) == 0 {
		return MakeVar(x, wantMetric), nil
	}
	frozen := make(map[string]bool, len(constants))
	for _, k := range constants {
		frozen[k] = true
	}
	md := x.MultiDomain()
	blocks := make(map[string]Linear, md.Len())
	for _, k := range md.Keys() {
		factor := 1.0
		if frozen[k] {
			factor = 0
		}
		blocks[k] = NewScaling(md.Get(k), factor)
	}
	bd, err := NewBlockDiagonal(md, blocks)
	if err != nil {
		return nil, err
	}
	return &Linearization{val: x, jac: bd, wantMetric: wantMetric}, nil
}

// Val returns the value at the evaluation point.
func (l *Linearization) Val() field.Value { return l.val }

// Jac returns the Jacobian.
func (l *Linearization) Jac() Linear { return l.jac }

// Metric returns the propagated metric, or nil.
func (l *Linearization) Metric() Linear { return l.metric }

// WantMetric reports whether metric propagation was requested.
func (l *Linearization) WantMetric() bool { return l.wantMetric }

// Domain returns the tangent space of the Jacobian.
func (l *Linearization) Domain() domain.Spec { return l.jac.Domain() }

// Target returns the domain of the value.
func (l *Linearization) Target() domain.Spec { return l.jac.Target() }

// Gradient returns the gradient of a scalar-target linearization, the
// adjoint Jacobian applied to one.
func (l *Linearization) Gradient() (field.Value, error) {
	if l.Target() != domain.ScalarDomain() {
		return nil, errors.Wrapf(ErrScalarTarget, "target is %s", l.Target())
	}
	return l.jac.ApplyMode(field.Scalar(1), AdjointTimes)
}

func (l *Linearization) with(val field.Value, jac Linear, metric Linear) *Linearization {
	return &Linearization{val: val, jac: jac, metric: metric, wantMetric: l.wantMetric}
}

// AddMetric attaches a metric operator.
func (l *Linearization) AddMetric(metric Linear) *Linearization {
	return l.with(l.val, l.jac, metric)
}

// PrependJac composes an upstream Jacobian into the linearization; a metric,
// if present, is pulled back through jac as a sandwich.
func (l *Linearization) PrependJac(jac Linear) (*Linearization, error) {
	if isIdentity(jac) && jac.Domain() == l.jac.Domain() {
		return l, nil
	}
	composed, err := chainLinear(l.jac, jac)
	if err != nil {
		return nil, err
	}
	var metric Linear
	if l.metric != nil {
		if metric, err = MakeSandwich(jac, l.metric); err != nil {
			return nil, err
		}
	}
	return l.with(l.val, composed, metric), nil
}

// Neg returns the negated linearization.
func (l *Linearization) Neg() (*Linearization, error) {
	jac, err := negLinear(l.jac)
	if err != nil {
		return nil, err
	}
	var metric Linear
	if l.metric != nil {
		if metric, err = negLinear(l.metric); err != nil {
			return nil, err
		}
	}
	return l.with(field.Neg(l.val), jac, metric), nil
}

func (l *Linearization) addsub(o *Linearization, neg bool) (*Linearization, error) {
	combine := addLinear
	if neg {
		combine = subLinear
	}
	jac, err := combine(l.jac, o.jac)
	if err != nil {
		return nil, err
	}
	var metric Linear
	if l.metric != nil && o.metric != nil {
		if metric, err = combine(l.metric, o.metric); err != nil {
			return nil, err
		}
	}
	return l.with(field.FlexibleAddSub(l.val, o.val, neg), jac, metric), nil
}

// Add returns l + o, summing values, Jacobians and, when both carry one,
// metrics.
func (l *Linearization) Add(o *Linearization) (*Linearization, error) {
	return l.addsub(o, false)
}

// Sub returns l - o.
func (l *Linearization) Sub(o *Linearization) (*Linearization, error) {
	return l.addsub(o, true)
}

// AddValue shifts the value by a constant; the Jacobian is untouched.
func (l *Linearization) AddValue(v field.Value) *Linearization {
	return l.with(field.FlexibleAddSub(l.val, v, false), l.jac, l.metric)
}

// SubValue shifts the value by a constant, subtracting.
func (l *Linearization) SubValue(v field.Value) *Linearization {
	return l.with(field.FlexibleAddSub(l.val, v, true), l.jac, l.metric)
}

// AddScalar shifts every element of the value by c.
func (l *Linearization) AddScalar(c float64) *Linearization {
	return l.with(field.AddScalar(l.val, c), l.jac, l.metric)
}

// Scale returns c * l, scaling value, Jacobian and metric.
func (l *Linearization) Scale(c float64) (*Linearization, error) {
	if c == 1 {
		return l, nil
	}
	jac, err := scaleLinear(l.jac, c)
	if err != nil {
		return nil, err
	}
	var metric Linear
	if l.metric != nil {
		if metric, err = scaleLinear(l.metric, c); err != nil {
			return nil, err
		}
	}
	return l.with(field.Scale(l.val, c), jac, metric), nil
}

// Mul returns the pointwise product l * o via the product rule. Targets
// must be identical; no metric survives a product.
func (l *Linearization) Mul(o *Linearization) (*Linearization, error) {
	if l.Target() != o.Target() {
		return nil, errors.Wrapf(ErrTargetMismatch, "%s vs %s", l.Target(), o.Target())
	}
	j1, err := chainLinear(MakeDiagonal(o.val), l.jac)
	if err != nil {
		return nil, err
	}
	j2, err := chainLinear(MakeDiagonal(l.val), o.jac)
	if err != nil {
		return nil, err
	}
	jac, err := addLinear(j1, j2)
	if err != nil {
		return nil, err
	}
	return l.with(field.Mul(l.val, o.val), jac, nil), nil
}

// MulValue multiplies by a constant value, avoiding the full product rule.
func (l *Linearization) MulValue(v field.Value) (*Linearization, error) {
	if l.Target() != v.Domain() {
		return nil, errors.Wrapf(ErrTargetMismatch, "%s vs %s", l.Target(), v.Domain())
	}
	jac, err := chainLinear(MakeDiagonal(v), l.jac)
	if err != nil {
		return nil, err
	}
	return l.with(field.Mul(l.val, v), jac, nil), nil
}

// Reciprocal returns 1/l with Jacobian -1/l^2.
func (l *Linearization) Reciprocal() (*Linearization, error) {
	val, der := field.MapWithJac(l.val, func(v float64) (float64, float64) {
		t := 1 / v
		return t, -t * t
	})
	jac, err := chainLinear(MakeDiagonal(der), l.jac)
	if err != nil {
		return nil, err
	}
	return l.with(val, jac, nil), nil
}

// Div returns l / o via the multiplicative inverse.
func (l *Linearization) Div(o *Linearization) (*Linearization, error) {
	inv, err := o.Reciprocal()
	if err != nil {
		return nil, err
	}
	return l.Mul(inv)
}

// Pow returns l**p elementwise with Jacobian p*l**(p-1).
func (l *Linearization) Pow(p float64) (*Linearization, error) {
	der := field.Scale(field.Pow(l.val, p-1), p)
	jac, err := chainLinear(MakeDiagonal(der), l.jac)
	if err != nil {
		return nil, err
	}
	return l.with(field.Pow(l.val, p), jac, nil), nil
}

// Clip clamps the value to [lo, hi]; the Jacobian vanishes where clamped.
func (l *Linearization) Clip(lo, hi float64) (*Linearization, error) {
	val, der := field.MapWithJac(l.val, func(v float64) (float64, float64) {
		switch {
		case v < lo:
			return lo, 0
		case v > hi:
			return hi, 0
		}
		return v, 1
	})
	jac, err := chainLinear(MakeDiagonal(der), l.jac)
	if err != nil {
		return nil, err
	}
	return l.with(val, jac, nil), nil
}

// Ptw applies a registered elementwise function with its exact derivative.
func (l *Linearization) Ptw(name string) (*Linearization, error) {
	pair, err := pointwise.Lookup(name)
	if err != nil {
		return nil, err
	}
	val, der := field.MapWithJac(l.val, pair.ApplyWithJac)
	jac, err := chainLinear(MakeDiagonal(der), l.jac)
	if err != nil {
		return nil, err
	}
	return l.with(val, jac, nil), nil
}

// VdotValue reduces to the scalar product with a constant value.
func (l *Linearization) VdotValue(v field.Value) (*Linearization, error) {
	if l.Target() != v.Domain() {
		return nil, errors.Wrapf(ErrTargetMismatch, "%s vs %s", l.Target(), v.Domain())
	}
	jac, err := chainLinear(NewVdot(v), l.jac)
	if err != nil {
		return nil, err
	}
	return l.with(field.Scalar(field.Vdot(l.val, v)), jac, nil), nil
}

// Vdot reduces two linearizations to their scalar product; the Jacobian is
// the adjoint-weighted sum of both operands' Jacobians.
func (l *Linearization) Vdot(o *Linearization) (*Linearization, error) {
	if l.Target() != o.Target() {
		return nil, errors.Wrapf(ErrTargetMismatch, "%s vs %s", l.Target(), o.Target())
	}
	j1, err := chainLinear(NewVdot(o.val), l.jac)
	if err != nil {
		return nil, err
	}
	j2, err := chainLinear(NewVdot(l.val), o.jac)
	if err != nil {
		return nil, err
	}
	jac, err := addLinear(j1, j2)
	if err != nil {
		return nil, err
	}
	return l.with(field.Scalar(field.Vdot(l.val, o.val)), jac, nil), nil
}

// Sum reduces to the scalar sum over all elements.
func (l *Linearization) Sum() (*Linearization, error) {
	jac, err := chainLinear(NewContraction(l.Target()), l.jac)
	if err != nil {
		return nil, err
	}
	return l.with(field.Scalar(l.val.Sum()), jac, nil), nil
}
