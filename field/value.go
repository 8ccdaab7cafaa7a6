package field

import (
	"fmt"
	"math/rand"

	"github.com/fieldgraph/fieldgraph/domain"
)

// Value is an array value tagged with a domain: either *Field or *Multi.
// The interface is closed; operators accept and return Values so that graphs
// over DomainTuples and MultiDomains share one code path.
type Value interface {
	Domain() domain.Spec
	Sum() float64

	isValue()
}

func mismatch(a, b Value) string {
	return fmt.Sprintf("fieldgraph(field): incompatible values %s vs %s", a.Domain(), b.Domain())
}

// Add returns a + b. Domains must be identical.
func Add(a, b Value) Value {
	switch x := a.(type) {
	case *Field:
		return x.Add(b.(*Field))
	case *Multi:
		return x.Add(b.(*Multi))
	}
	panic(mismatch(a, b))
}

// Sub returns a - b.
func Sub(a, b Value) Value {
	switch x := a.(type) {
	case *Field:
		return x.Sub(b.(*Field))
	case *Multi:
		return x.Sub(b.(*Multi))
	}
	panic(mismatch(a, b))
}

// Mul returns a * b elementwise.
func Mul(a, b Value) Value {
	switch x := a.(type) {
	case *Field:
		return x.Mul(b.(*Field))
	case *Multi:
		return x.Mul(b.(*Multi))
	}
	panic(mismatch(a, b))
}

// Scale returns c * a.
func Scale(a Value, c float64) Value {
	switch x := a.(type) {
	case *Field:
		return x.Scale(c)
	case *Multi:
		return x.Scale(c)
	}
	panic(mismatch(a, a))
}

// AddScalar returns a + c elementwise.
func AddScalar(a Value, c float64) Value {
	switch x := a.(type) {
	case *Field:
		return x.AddScalar(c)
	case *Multi:
		return x.AddScalar(c)
	}
	panic(mismatch(a, a))
}

// Neg returns -a.
func Neg(a Value) Value { return Scale(a, -1) }

// Pow returns a**p elementwise.
func Pow(a Value, p float64) Value {
	switch x := a.(type) {
	case *Field:
		return x.Pow(p)
	case *Multi:
		return x.Pow(p)
	}
	panic(mismatch(a, a))
}

// Clip returns a clamped to [lo, hi] elementwise.
func Clip(a Value, lo, hi float64) Value {
	switch x := a.(type) {
	case *Field:
		return x.Clip(lo, hi)
	case *Multi:
		return x.Clip(lo, hi)
	}
	panic(mismatch(a, a))
}

// Map applies fn elementwise.
func Map(a Value, fn func(float64) float64) Value {
	switch x := a.(type) {
	case *Field:
		return x.Map(fn)
	case *Multi:
		return x.Map(fn)
	}
	panic(mismatch(a, a))
}

// MapWithJac applies fn elementwise, returning values and derivatives.
func MapWithJac(a Value, fn func(float64) (float64, float64)) (Value, Value) {
	switch x := a.(type) {
	case *Field:
		v, d := x.MapWithJac(fn)
		return v, d
	case *Multi:
		v, d := x.MapWithJac(fn)
		return v, d
	}
	panic(mismatch(a, a))
}

// Vdot returns the dot product of a and b. Domains must be identical.
func Vdot(a, b Value) float64 {
	switch x := a.(type) {
	case *Field:
		return x.Vdot(b.(*Field))
	case *Multi:
		return x.Vdot(b.(*Multi))
	}
	panic(mismatch(a, b))
}

// Extract projects a onto the sub-domain d. For tuple domains d must be
// identical to a's domain; for multi-domains d must be a subset.
func Extract(a Value, d domain.Spec) Value {
	if a.Domain() == d {
		return a
	}
	m, okm := a.(*Multi)
	md, okd := d.(*domain.Multi)
	if !okm || !okd {
		panic(fmt.Sprintf("fieldgraph(field): cannot extract %s from %s", d, a.Domain()))
	}
	return m.Extract(md)
}

// ExtractPart projects a onto the keys it shares with d, or nil when the
// intersection is empty or the kinds do not match.
func ExtractPart(a Value, d domain.Spec) Value {
	if a == nil {
		return nil
	}
	if a.Domain() == d {
		return a
	}
	m, okm := a.(*Multi)
	md, okd := d.(*domain.Multi)
	if !okm || !okd {
		return nil
	}
	part := m.ExtractPart(md)
	if part == nil {
		return nil
	}
	return part
}

// Unite merges a and b over the union of their domains, adding overlapping
// components. Two Fields over the same tuple are added.
func Unite(a, b Value) Value {
	switch x := a.(type) {
	case *Field:
		return x.Add(b.(*Field))
	case *Multi:
		return x.Unite(b.(*Multi))
	}
	panic(mismatch(a, b))
}

// FlexibleAddSub adds or subtracts b into a, tolerating differing
// multi-domains (union semantics). Used by Linearization arithmetic.
func FlexibleAddSub(a, b Value, neg bool) Value {
	switch x := a.(type) {
	case *Field:
		if neg {
			return x.Sub(b.(*Field))
		}
		return x.Add(b.(*Field))
	case *Multi:
		return x.FlexibleAddSub(b.(*Multi), neg)
	}
	panic(mismatch(a, b))
}

// FullValue creates a constant value over d.
func FullValue(d domain.Spec, v float64) Value {
	switch s := d.(type) {
	case *domain.Tuple:
		return Full(s, v)
	case *domain.Multi:
		return FullMulti(s, v)
	}
	panic(fmt.Sprintf("fieldgraph(field): unknown domain spec %T", d))
}

// FromRandomValue creates a standard-normal value over d.
func FromRandomValue(d domain.Spec, rng *rand.Rand) Value {
	switch s := d.(type) {
	case *domain.Tuple:
		return FromRandom(s, rng)
	case *domain.Multi:
		return FromRandomMulti(s, rng)
	}
	panic(fmt.Sprintf("fieldgraph(field): unknown domain spec %T", d))
}

// AllClose reports whether a and b agree elementwise within tol.
func AllClose(a, b Value, tol float64) bool {
	switch x := a.(type) {
	case *Field:
		o, ok := b.(*Field)
		return ok && x.AllClose(o, tol)
	case *Multi:
		o, ok := b.(*Multi)
		return ok && x.AllClose(o, tol)
	}
	return false
}
