// Package field provides the immutable array value types of the fieldgraph
// engine: Field (one array tagged with a DomainTuple) and Multi (a keyed
// collection of Fields tagged with a MultiDomain).
//
// Values are never mutated after construction; every operation returns a new
// value. Elementwise kernels and reductions are backed by gonum/floats.
//
// Domain checks at this layer follow the gonum convention and panic on
// mismatch: the ops layer identity-checks domains before any field
// arithmetic runs, so a panic here indicates a programming error, not bad
// user input.
package field

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/fieldgraph/fieldgraph/domain"
)

// Field is an array value tagged with its DomainTuple.
type Field struct {
	dom  *domain.Tuple
	data []float64
}

// New creates a Field over dom taking ownership of data. The caller must not
// use data afterwards.
func New(dom *domain.Tuple, data []float64) *Field {
	if len(data) != dom.Size() {
		panic(fmt.Sprintf("fieldgraph(field): data length %d does not match domain size %d",
			len(data), dom.Size()))
	}
	return &Field{dom: dom, data: data}
}

// Full creates a Field with every element set to v.
func Full(dom *domain.Tuple, v float64) *Field {
	data := make([]float64, dom.Size())
	for i := range data {
		data[i] = v
	}
	return &Field{dom: dom, data: data}
}

// Scalar creates a Field over the scalar domain holding v.
func Scalar(v float64) *Field {
	return &Field{dom: domain.ScalarDomain(), data: []float64{v}}
}

// FromRandom creates a Field with standard-normal entries drawn from rng.
func FromRandom(dom *domain.Tuple, rng *rand.Rand) *Field {
	data := make([]float64, dom.Size())
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return &Field{dom: dom, data: data}
}

// Domain returns the field's domain as a Spec.
func (f *Field) Domain() domain.Spec { return f.dom }

// Tuple returns the field's domain tuple.
func (f *Field) Tuple() *domain.Tuple { return f.dom }

// Data returns the backing slice. Callers must not modify it.
func (f *Field) Data() []float64 { return f.data }

// Size returns the number of elements.
func (f *Field) Size() int { return len(f.data) }

// ScalarValue returns the single element of a scalar-domain field.
func (f *Field) ScalarValue() float64 {
	if len(f.data) != 1 {
		panic("fieldgraph(field): ScalarValue on non-scalar field")
	}
	return f.data[0]
}

func (f *Field) checkSame(o *Field) {
	if f.dom != o.dom {
		panic(fmt.Sprintf("fieldgraph(field): domain mismatch %s vs %s", f.dom, o.dom))
	}
}

// Add returns f + o elementwise.
func (f *Field) Add(o *Field) *Field {
	f.checkSame(o)
	out := append([]float64(nil), f.data...)
	floats.Add(out, o.data)
	return &Field{dom: f.dom, data: out}
}

// Sub returns f - o elementwise.
func (f *Field) Sub(o *Field) *Field {
	f.checkSame(o)
	out := append([]float64(nil), f.data...)
	floats.Sub(out, o.data)
	return &Field{dom: f.dom, data: out}
}

// Mul returns f * o elementwise.
func (f *Field) Mul(o *Field) *Field {
	f.checkSame(o)
	out := append([]float64(nil), f.data...)
	floats.Mul(out, o.data)
	return &Field{dom: f.dom, data: out}
}

// Div returns f / o elementwise. Division by zero yields Inf/NaN, which
// propagate as data.
func (f *Field) Div(o *Field) *Field {
	f.checkSame(o)
	out := append([]float64(nil), f.data...)
	floats.Div(out, o.data)
	return &Field{dom: f.dom, data: out}
}

// Scale returns c * f.
func (f *Field) Scale(c float64) *Field {
	out := append([]float64(nil), f.data...)
	floats.Scale(c, out)
	return &Field{dom: f.dom, data: out}
}

// AddScalar returns f + c elementwise.
func (f *Field) AddScalar(c float64) *Field {
	out := append([]float64(nil), f.data...)
	floats.AddConst(c, out)
	return &Field{dom: f.dom, data: out}
}

// Neg returns -f.
func (f *Field) Neg() *Field { return f.Scale(-1) }

// Pow returns f**p elementwise.
func (f *Field) Pow(p float64) *Field {
	return f.Map(func(v float64) float64 { return math.Pow(v, p) })
}

// Clip returns f with every element clamped to [lo, hi]. Use -Inf/+Inf to
// leave a side unbounded.
func (f *Field) Clip(lo, hi float64) *Field {
	return f.Map(func(v float64) float64 { return math.Min(math.Max(v, lo), hi) })
}

// Map applies fn elementwise.
func (f *Field) Map(fn func(float64) float64) *Field {
	out := make([]float64, len(f.data))
	for i, v := range f.data {
		out[i] = fn(v)
	}
	return &Field{dom: f.dom, data: out}
}

// MapWithJac applies fn elementwise, returning both the values and the
// pointwise derivatives.
func (f *Field) MapWithJac(fn func(float64) (float64, float64)) (*Field, *Field) {
	val := make([]float64, len(f.data))
	der := make([]float64, len(f.data))
	for i, v := range f.data {
		val[i], der[i] = fn(v)
	}
	return &Field{dom: f.dom, data: val}, &Field{dom: f.dom, data: der}
}

// Vdot returns the dot product of f and o.
func (f *Field) Vdot(o *Field) float64 {
	f.checkSame(o)
	return floats.Dot(f.data, o.data)
}

// Sum returns the sum over all elements.
func (f *Field) Sum() float64 { return floats.Sum(f.data) }

// AllClose reports whether f and o agree elementwise within tol.
func (f *Field) AllClose(o *Field, tol float64) bool {
	if f.dom != o.dom {
		return false
	}
	return floats.EqualApprox(f.data, o.data, tol)
}

func (f *Field) String() string {
	return fmt.Sprintf("Field%s%v", f.dom.Key(), f.data)
}

func (f *Field) isValue() {}
