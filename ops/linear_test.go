package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

func TestScalingModes(t *testing.T) {
	t.Parallel()
	d := testTuple(4)
	s := NewScaling(d, 2)
	x := field.New(d, []float64{1, 2, 3, 4})

	tests := []struct {
		mode Mode
		want []float64
	}{
		{Times, []float64{2, 4, 6, 8}},
		{AdjointTimes, []float64{2, 4, 6, 8}},
		{InverseTimes, []float64{0.5, 1, 1.5, 2}},
		{AdjointInverseTimes, []float64{0.5, 1, 1.5, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			y := applyMode(t, s, x, tt.mode)
			assert.Equal(t, tt.want, y.(*field.Field).Data())
		})
	}
}

func TestScalingZeroHasNoInverse(t *testing.T) {
	t.Parallel()
	d := testTuple(2)
	s := NewScaling(d, 0)
	assert.Equal(t, Times|AdjointTimes, s.Capability())
	_, err := s.ApplyMode(field.Full(d, 1), InverseTimes)
	require.ErrorIs(t, err, ErrCapability)
}

func TestDiagonalModes(t *testing.T) {
	t.Parallel()
	d := testTuple(4)
	diag := NewDiagonal(field.New(d, []float64{1, 2, 4, 8}))
	x := field.Full(d, 8)

	assert.Equal(t, []float64{8, 16, 32, 64}, applyMode(t, diag, x, Times).(*field.Field).Data())
	assert.Equal(t, []float64{8, 16, 32, 64}, applyMode(t, diag, x, AdjointTimes).(*field.Field).Data())
	assert.Equal(t, []float64{8, 4, 2, 1}, applyMode(t, diag, x, InverseTimes).(*field.Field).Data())
	adjointIdentityHolds(t, diag, testRng())
}

func TestSelfAdjointFlipIsNoop(t *testing.T) {
	t.Parallel()
	d := testTuple(3)
	s := NewScaling(d, 2.5)
	diag := NewDiagonal(field.Full(d, 3))

	assert.Same(t, s, Adjoint(s).(*ScalingOperator))
	assert.Same(t, diag, Adjoint(diag).(*DiagonalOperator))
}

func TestAdapterFlipAlgebra(t *testing.T) {
	t.Parallel()
	d := testTuple(3)
	fa, err := NewFieldAdapter(d, "k")
	require.NoError(t, err)

	ad := Adjoint(fa)
	assert.Equal(t, fa.Target(), ad.Domain())
	assert.Equal(t, fa.Domain(), ad.Target())
	assert.Same(t, fa, Adjoint(ad).(*FieldAdapter), "double flip collapses to the base operator")

	s := NewScaling(d, 2)
	inv := Inverse(s)
	assert.Same(t, s, Inverse(inv).(*ScalingOperator))

	// stacking adjoint onto inverse XORs to the adjoint-inverse view
	adinv := Adjoint(inv)
	x := field.Full(d, 4)
	y := applyMode(t, adinv, x, Times)
	assert.Equal(t, []float64{2, 2, 2}, y.(*field.Field).Data())
	assert.Equal(t, AllModes, adinv.Capability())
}

func TestAdapterRemapsCapability(t *testing.T) {
	t.Parallel()
	d := testTuple(2)
	null := NewNull(d, d) // times and adjoint only
	inv := Inverse(null)
	assert.Equal(t, InverseTimes|AdjointInverseTimes, inv.Capability())
	_, err := inv.ApplyMode(field.Full(d, 1), Times)
	require.ErrorIs(t, err, ErrCapability)
}

func TestCheckModeRejects(t *testing.T) {
	t.Parallel()
	d := testTuple(3)
	diag := NewDiagonal(field.Full(d, 2))

	_, err := diag.ApplyMode(field.Full(d, 1), Times|AdjointTimes)
	require.ErrorIs(t, err, ErrCapability, "multi-bit modes are rejected")

	_, err = diag.ApplyMode(field.Full(testTuple(4), 1), Times)
	require.ErrorIs(t, err, ErrDomainMismatch)
}

func TestVdotOperator(t *testing.T) {
	t.Parallel()
	d := testTuple(3)
	f := field.New(d, []float64{1, 2, 3})
	v := NewVdot(f)

	assert.Same(t, domain.ScalarDomain(), v.Target())
	y := applyMode(t, v, field.Full(d, 2), Times)
	assert.Equal(t, 12.0, y.(*field.Field).ScalarValue())

	back := applyMode(t, v, field.Scalar(2), AdjointTimes)
	assert.Equal(t, []float64{2, 4, 6}, back.(*field.Field).Data())
	adjointIdentityHolds(t, v, testRng())
}

func TestContractionOperator(t *testing.T) {
	t.Parallel()
	d := testTuple(4)
	c := NewContraction(d)

	y := applyMode(t, c, field.New(d, []float64{1, 2, 3, 4}), Times)
	assert.Equal(t, 10.0, y.(*field.Field).ScalarValue())
	back := applyMode(t, c, field.Scalar(3), AdjointTimes)
	assert.Equal(t, []float64{3, 3, 3, 3}, back.(*field.Field).Data())
	adjointIdentityHolds(t, c, testRng())
}

func TestNullOperator(t *testing.T) {
	t.Parallel()
	d := testTuple(2)
	tgt := testTuple(5)
	n := NewNull(d, tgt)

	y := applyMode(t, n, field.Full(d, 3), Times)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, y.(*field.Field).Data())
	back := applyMode(t, n, field.Full(tgt, 3), AdjointTimes)
	assert.Equal(t, []float64{0, 0}, back.(*field.Field).Data())
}

func TestBlockDiagonal(t *testing.T) {
	t.Parallel()
	ta, tb := testTuple(2), testTuple(3)
	md := domain.MakeMulti(map[string]*domain.Tuple{"a": ta, "b": tb})

	bd, err := NewBlockDiagonal(md, map[string]Linear{"a": NewScaling(ta, 2)})
	require.NoError(t, err)
	assert.Equal(t, AllModes, bd.Capability())

	x := field.FromMap(map[string]*field.Field{
		"a": field.Full(ta, 1),
		"b": field.Full(tb, 1),
	})
	y := applyMode(t, bd, x, Times).(*field.Multi)
	assert.Equal(t, []float64{2, 2}, y.Get("a").Data())
	assert.Equal(t, []float64{1, 1, 1}, y.Get("b").Data(), "missing blocks act as identity")
	adjointIdentityHolds(t, bd, testRng())

	_, err = NewBlockDiagonal(md, map[string]Linear{"a": NewScaling(tb, 2)})
	require.ErrorIs(t, err, ErrDomainMismatch, "blocks must be endomorphic over their key")

	capped, err := NewBlockDiagonal(md, map[string]Linear{"a": NewScaling(ta, 0)})
	require.NoError(t, err)
	assert.Equal(t, Times|AdjointTimes, capped.Capability())
}

func TestLinChainModeOrder(t *testing.T) {
	t.Parallel()
	d := testTuple(2)
	fa, err := NewFieldAdapter(d, "k")
	require.NoError(t, err)
	diag := NewDiagonal(field.New(d, []float64{2, 3}))

	c, err := Chain(diag, fa)
	require.NoError(t, err)
	lc, ok := c.(Linear)
	require.True(t, ok, "a chain of linear operators is linear")
	assert.Equal(t, Times|AdjointTimes, lc.Capability())

	x := field.FromMap(map[string]*field.Field{"k": field.Full(d, 1)})
	y := applyMode(t, lc, x, Times)
	assert.Equal(t, []float64{2, 3}, y.(*field.Field).Data())

	back := applyMode(t, lc, field.Full(d, 1), AdjointTimes).(*field.Multi)
	assert.Equal(t, []float64{2, 3}, back.Get("k").Data())
	adjointIdentityHolds(t, lc, testRng())
}

func TestLinSumOverUnionDomains(t *testing.T) {
	t.Parallel()
	d := testTuple(3)
	a, err := Ducktape(NewScaling(d, 2), "a")
	require.NoError(t, err)
	b, err := Ducktape(NewScaling(d, 3), "b")
	require.NoError(t, err)

	s, err := Add(a, b)
	require.NoError(t, err)
	ls, ok := s.(Linear)
	require.True(t, ok, "the sum of linear operators is linear")

	x := field.FromMap(map[string]*field.Field{
		"a": field.Full(d, 1),
		"b": field.Full(d, 1),
	})
	assert.Equal(t, x.Domain(), s.Domain())
	y := applyMode(t, ls, x, Times)
	assert.Equal(t, []float64{5, 5, 5}, y.(*field.Field).Data())

	back := applyMode(t, ls, field.Full(d, 1), AdjointTimes).(*field.Multi)
	assert.Equal(t, []float64{2, 2, 2}, back.Get("a").Data())
	assert.Equal(t, []float64{3, 3, 3}, back.Get("b").Data())
	adjointIdentityHolds(t, ls, testRng())
}

func TestMakeSandwich(t *testing.T) {
	t.Parallel()
	d := testTuple(3)
	diag := NewDiagonal(field.New(d, []float64{1, 2, 3}))

	collapsed, err := MakeSandwich(Identity(d), diag)
	require.NoError(t, err)
	assert.IsType(t, &DiagonalOperator{}, collapsed, "identity bun collapses to the cheese")

	sw, err := MakeSandwich(NewScaling(d, 2), diag)
	require.NoError(t, err)
	x := field.Full(d, 1)
	y := applyMode(t, sw, x, Times)
	assert.Equal(t, []float64{4, 8, 12}, y.(*field.Field).Data())
	assert.Equal(t,
		applyMode(t, sw, x, Times).(*field.Field).Data(),
		applyMode(t, sw, x, AdjointTimes).(*field.Field).Data(),
		"a sandwich is self-adjoint")

	fa, err := NewFieldAdapter(d, "k")
	require.NoError(t, err)
	sw2, err := MakeSandwich(fa, nil)
	require.NoError(t, err)
	assert.Equal(t, fa.Domain(), sw2.Domain())
	assert.Equal(t, fa.Domain(), sw2.Target())
	adjointIdentityHolds(t, sw2, testRng())

	_, err = MakeSandwich(fa, NewScaling(testTuple(4), 1))
	require.ErrorIs(t, err, ErrDomainMismatch)
}
