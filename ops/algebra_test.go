package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

func mustPtw(t *testing.T, op Operator, name string) Operator {
	t.Helper()
	out, err := PtwOp(op, name)
	require.NoError(t, err)
	return out
}

// expTimes builds f = exp(a) * b over the multi-domain {a, b}.
func expTimes(t *testing.T, d *domain.Tuple) Operator {
	t.Helper()
	a, err := Ducktape(Identity(d), "a")
	require.NoError(t, err)
	b, err := Ducktape(Identity(d), "b")
	require.NoError(t, err)
	f, err := Prod(mustPtw(t, a, "exp"), b)
	require.NoError(t, err)
	return f
}

func TestExpTimesScenario(t *testing.T) {
	t.Parallel()
	d := domain.ScalarDomain()
	f := expTimes(t, d)
	x := field.FromMap(map[string]*field.Field{
		"a": field.Scalar(0),
		"b": field.Scalar(2),
	})
	require.Equal(t, x.Domain(), f.Domain())

	y := apply(t, f, x)
	assert.Equal(t, 2.0, y.(*field.Field).ScalarValue())

	lin, err := LinearizeOp(f, x, false)
	require.NoError(t, err)
	assert.Equal(t, 2.0, lin.Val().(*field.Field).ScalarValue())

	da := field.FromMap(map[string]*field.Field{"a": field.Scalar(1), "b": field.Scalar(0)})
	db := field.FromMap(map[string]*field.Field{"a": field.Scalar(0), "b": field.Scalar(1)})
	assert.Equal(t, 2.0, applyMode(t, lin.Jac(), da, Times).(*field.Field).ScalarValue())
	assert.Equal(t, 1.0, applyMode(t, lin.Jac(), db, Times).(*field.Field).ScalarValue())

	grad, err := lin.Gradient()
	require.NoError(t, err)
	gm := grad.(*field.Multi)
	assert.Equal(t, 2.0, gm.Get("a").ScalarValue())
	assert.Equal(t, 1.0, gm.Get("b").ScalarValue())
}

func TestProdJacobianFiniteDifference(t *testing.T) {
	t.Parallel()
	d := testTuple(5)
	rng := testRng()
	f := expTimes(t, d)
	x := field.FromRandomValue(f.Domain(), rng)
	fdJacobianHolds(t, f, x, rng)
}

func TestProdTargetMismatch(t *testing.T) {
	t.Parallel()
	a, err := Ducktape(Identity(testTuple(3)), "a")
	require.NoError(t, err)
	b, err := Ducktape(Identity(testTuple(4)), "b")
	require.NoError(t, err)
	_, err = Prod(a, b)
	require.ErrorIs(t, err, ErrTargetMismatch)
}

func TestSumOverUnionDomains(t *testing.T) {
	t.Parallel()
	d := testTuple(3)
	rng := testRng()
	a, err := Ducktape(Identity(d), "a")
	require.NoError(t, err)
	b, err := Ducktape(Identity(d), "b")
	require.NoError(t, err)
	s, err := Add(mustPtw(t, a, "exp"), mustPtw(t, b, "sin"))
	require.NoError(t, err)

	x := field.FromMap(map[string]*field.Field{
		"a": field.Full(d, 1),
		"b": field.Full(d, 2),
	})
	require.Equal(t, x.Domain(), s.Domain())
	y := apply(t, s, x).(*field.Field)
	assert.InDelta(t, math.E+math.Sin(2), y.Data()[0], 1e-12)

	fdJacobianHolds(t, s, field.FromRandomValue(s.Domain(), rng), rng)
}

func TestSumDomainConflict(t *testing.T) {
	t.Parallel()
	a3, err := Ducktape(Identity(testTuple(3)), "a")
	require.NoError(t, err)
	a4, err := Ducktape(Identity(testTuple(4)), "a")
	require.NoError(t, err)
	ea3, err := DucktapeLeft(mustPtw(t, a3, "exp"), "out3")
	require.NoError(t, err)
	ea4, err := DucktapeLeft(mustPtw(t, a4, "exp"), "out4")
	require.NoError(t, err)
	_, err = Add(ea3, ea4)
	require.ErrorIs(t, err, ErrDomainMismatch, "same key with different tuples cannot be united")
}

func TestSubtraction(t *testing.T) {
	t.Parallel()
	d := testTuple(3)
	a, err := Ducktape(Identity(d), "a")
	require.NoError(t, err)
	b, err := Ducktape(Identity(d), "b")
	require.NoError(t, err)
	s, err := Sub(mustPtw(t, a, "exp"), b)
	require.NoError(t, err)

	x := field.FromMap(map[string]*field.Field{
		"a": field.Full(d, 0),
		"b": field.Full(d, 3),
	})
	y := apply(t, s, x).(*field.Field)
	assert.Equal(t, []float64{-2, -2, -2}, y.Data())
}

func TestAlgebraSugar(t *testing.T) {
	t.Parallel()
	d := testTuple(4)
	rng := testRng()
	a, err := Ducktape(Identity(d), "a")
	require.NoError(t, err)

	pow, err := PowOp(a, 3)
	require.NoError(t, err)
	x := field.FromMap(map[string]*field.Field{"a": field.Full(d, 2)})
	assert.Equal(t, []float64{8, 8, 8, 8}, apply(t, pow, x).(*field.Field).Data())
	fdJacobianHolds(t, pow, field.FromRandomValue(pow.Domain(), rng), rng)

	clip, err := ClipOp(a, -1, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1}, apply(t, clip, x).(*field.Field).Data())

	neg, err := NegOp(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -2, -2, -2}, apply(t, neg, x).(*field.Field).Data())

	sum, err := SumOf(mustPtw(t, a, "exp"))
	require.NoError(t, err)
	assert.Same(t, domain.ScalarDomain(), sum.Target().(*domain.Tuple))
	y := apply(t, sum, x).(*field.Field)
	assert.InDelta(t, 4*math.Exp(2), y.ScalarValue(), 1e-10)

	lin, err := LinearizeOp(sum, x, false)
	require.NoError(t, err)
	grad, err := lin.Gradient()
	require.NoError(t, err)
	gm := grad.(*field.Multi)
	assert.InDelta(t, math.Exp(2), gm.Get("a").Data()[0], 1e-12)
}

func TestForce(t *testing.T) {
	t.Parallel()
	d := testTuple(3)
	a, err := Ducktape(Identity(d), "a")
	require.NoError(t, err)

	full := field.FromMap(map[string]*field.Field{
		"a": field.Full(d, 2),
		"b": field.Full(d, 9),
	})
	y, err := Force(a, full)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, y.(*field.Field).Data())

	missing := field.FromMap(map[string]*field.Field{"b": field.Full(d, 9)})
	_, err = Force(a, missing)
	require.ErrorIs(t, err, ErrDomainMismatch)
}

func TestLinearizeOpRejectsPlainOperator(t *testing.T) {
	t.Parallel()
	d := testTuple(2)
	_, err := LinearizeOp(opaque{dom: d}, field.Full(d, 1), false)
	require.ErrorIs(t, err, ErrNotDifferentiable)
}

// opaque implements Operator but neither Linear nor Differentiable.
type opaque struct{ dom *domain.Tuple }

func (o opaque) Domain() domain.Spec { return o.dom }
func (o opaque) Target() domain.Spec { return o.dom }
func (o opaque) Apply(x field.Value) (field.Value, error) {
	return x, nil
}
