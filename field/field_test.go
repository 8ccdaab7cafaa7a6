package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/fieldgraph/domain"
)

func TestFieldArithmetic(t *testing.T) {
	t.Parallel()
	d := domain.MakeTuple(domain.NewUnstructured(4))
	a := New(d, []float64{1, 2, 3, 4})
	b := New(d, []float64{4, 3, 2, 1})

	assert.Equal(t, []float64{5, 5, 5, 5}, a.Add(b).Data())
	assert.Equal(t, []float64{-3, -1, 1, 3}, a.Sub(b).Data())
	assert.Equal(t, []float64{4, 6, 6, 4}, a.Mul(b).Data())
	assert.Equal(t, []float64{2, 4, 6, 8}, a.Scale(2).Data())
	assert.Equal(t, []float64{-1, -2, -3, -4}, a.Neg().Data())
	assert.Equal(t, []float64{2, 3, 4, 5}, a.AddScalar(1).Data())
	assert.Equal(t, []float64{1, 4, 9, 16}, a.Pow(2).Data())
	assert.InDelta(t, 20.0, a.Vdot(b), 1e-14)
	assert.InDelta(t, 10.0, a.Sum(), 1e-14)

	// inputs are never mutated
	assert.Equal(t, []float64{1, 2, 3, 4}, a.Data())
}

func TestFieldDivByZeroPropagates(t *testing.T) {
	t.Parallel()
	d := domain.MakeTuple(domain.NewUnstructured(2))
	a := New(d, []float64{1, 0})
	b := New(d, []float64{0, 0})
	q := a.Div(b).Data()
	assert.True(t, math.IsInf(q[0], 1))
	assert.True(t, math.IsNaN(q[1]))
}

func TestFieldDomainMismatchPanics(t *testing.T) {
	t.Parallel()
	a := Full(domain.MakeTuple(domain.NewUnstructured(4)), 1)
	b := Full(domain.MakeTuple(domain.NewUnstructured(5)), 1)
	assert.Panics(t, func() { a.Add(b) })
	assert.Panics(t, func() { New(a.Tuple(), []float64{1, 2}) })
}

func TestFieldClip(t *testing.T) {
	t.Parallel()
	d := domain.MakeTuple(domain.NewUnstructured(5))
	f := New(d, []float64{-2, -0.5, 0, 0.5, 2})

	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, f.Clip(-1, 1).Data())
	assert.Equal(t, []float64{0, 0, 0, 0.5, 2}, f.Clip(0, math.Inf(1)).Data())
	assert.Equal(t, []float64{-2, -0.5, 0, 0.5, 1}, f.Clip(math.Inf(-1), 1).Data())
}

func TestScalar(t *testing.T) {
	t.Parallel()
	s := Scalar(3.5)
	assert.Same(t, domain.ScalarDomain(), s.Tuple())
	assert.Equal(t, 3.5, s.ScalarValue())
	assert.Panics(t, func() {
		Full(domain.MakeTuple(domain.NewUnstructured(2)), 1).ScalarValue()
	})
}

func TestMapWithJac(t *testing.T) {
	t.Parallel()
	d := domain.MakeTuple(domain.NewUnstructured(3))
	f := New(d, []float64{1, 2, 3})
	val, der := f.MapWithJac(func(v float64) (float64, float64) { return v * v, 2 * v })
	assert.Equal(t, []float64{1, 4, 9}, val.Data())
	assert.Equal(t, []float64{2, 4, 6}, der.Data())
}

func multiFixture(t *testing.T) (*Multi, *domain.Tuple, *domain.Tuple) {
	t.Helper()
	t2 := domain.MakeTuple(domain.NewUnstructured(2))
	t3 := domain.MakeTuple(domain.NewUnstructured(3))
	m := FromMap(map[string]*Field{
		"a": New(t2, []float64{1, 2}),
		"b": New(t3, []float64{3, 4, 5}),
	})
	return m, t2, t3
}

func TestMultiBasics(t *testing.T) {
	t.Parallel()
	m, t2, _ := multiFixture(t)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.Equal(t, []float64{1, 2}, m.Get("a").Data())
	assert.Nil(t, m.Get("zzz"))
	assert.InDelta(t, 15.0, m.Sum(), 1e-14)

	assert.Panics(t, func() {
		NewMulti(m.MultiDomain(), []*Field{Full(t2, 0)})
	})
}

func TestMultiExtract(t *testing.T) {
	t.Parallel()
	m, t2, t3 := multiFixture(t)
	sub := domain.MakeMulti(map[string]*domain.Tuple{"a": t2})
	ex := m.Extract(sub)
	assert.Same(t, sub, ex.MultiDomain())
	assert.Equal(t, []float64{1, 2}, ex.Get("a").Data())

	assert.Same(t, m, m.Extract(m.MultiDomain()))
	assert.Panics(t, func() {
		m.Extract(domain.MakeMulti(map[string]*domain.Tuple{"zzz": t3}))
	})
}

func TestMultiExtractPart(t *testing.T) {
	t.Parallel()
	m, t2, t3 := multiFixture(t)
	part := m.ExtractPart(domain.MakeMulti(map[string]*domain.Tuple{"a": t2, "zzz": t3}))
	require.NotNil(t, part)
	assert.Equal(t, []string{"a"}, part.Keys())

	assert.Nil(t, m.ExtractPart(domain.MakeMulti(map[string]*domain.Tuple{"zzz": t3})))
}

func TestMultiUnite(t *testing.T) {
	t.Parallel()
	t2 := domain.MakeTuple(domain.NewUnstructured(2))
	a := FromMap(map[string]*Field{
		"x": New(t2, []float64{1, 2}),
		"y": New(t2, []float64{10, 20}),
	})
	b := FromMap(map[string]*Field{
		"y": New(t2, []float64{1, 1}),
		"z": New(t2, []float64{7, 7}),
	})

	u := a.Unite(b)
	assert.Equal(t, []string{"x", "y", "z"}, u.Keys())
	assert.Equal(t, []float64{1, 2}, u.Get("x").Data())
	assert.Equal(t, []float64{11, 21}, u.Get("y").Data(), "overlapping keys are added")
	assert.Equal(t, []float64{7, 7}, u.Get("z").Data())

	d := a.FlexibleAddSub(b, true)
	assert.Equal(t, []float64{9, 19}, d.Get("y").Data())
	assert.Equal(t, []float64{-7, -7}, d.Get("z").Data(), "sign applies to exclusive keys of the subtrahend")
	assert.Equal(t, []float64{1, 2}, d.Get("x").Data())
}

func TestValueHelpers(t *testing.T) {
	t.Parallel()
	d := domain.MakeTuple(domain.NewUnstructured(3))
	var a Value = New(d, []float64{1, 2, 3})
	var b Value = New(d, []float64{1, 1, 1})

	assert.Equal(t, []float64{2, 3, 4}, Add(a, b).(*Field).Data())
	assert.Equal(t, []float64{2, 4, 6}, Scale(a, 2).(*Field).Data())
	assert.InDelta(t, 6.0, Vdot(a, b), 1e-14)
	assert.True(t, AllClose(a, a, 1e-14))
	assert.False(t, AllClose(a, b, 1e-14))

	full := FullValue(d, 2.5).(*Field)
	assert.Equal(t, []float64{2.5, 2.5, 2.5}, full.Data())

	m := FromMap(map[string]*Field{"k": New(d, []float64{4, 5, 6})})
	assert.Nil(t, ExtractPart(nil, d))
	assert.Nil(t, ExtractPart(m, d), "kind mismatch yields nil")
	assert.Same(t, m, Extract(m, m.Domain()))
}
