package field

import (
	"fmt"
	"math/rand"

	"github.com/fieldgraph/fieldgraph/domain"
)

// Multi is a keyed collection of Fields tagged with a MultiDomain. The
// fields slice is parallel to the domain's sorted key order.
type Multi struct {
	dom    *domain.Multi
	fields []*Field
}

// NewMulti creates a Multi over dom. fields must be parallel to dom.Keys()
// and each field's tuple must be identical to the domain entry.
func NewMulti(dom *domain.Multi, fields []*Field) *Multi {
	if len(fields) != dom.Len() {
		panic(fmt.Sprintf("fieldgraph(field): %d fields for %d-key domain", len(fields), dom.Len()))
	}
	for i, k := range dom.Keys() {
		if fields[i].Tuple() != dom.Get(k) {
			panic(fmt.Sprintf("fieldgraph(field): field %q does not match its domain entry", k))
		}
	}
	return &Multi{dom: dom, fields: append([]*Field(nil), fields...)}
}

// FromMap creates a Multi from a key/field mapping. A nil or empty map
// yields the empty multi-field.
func FromMap(m map[string]*Field) *Multi {
	doms := make(map[string]*domain.Tuple, len(m))
	for k, f := range m {
		doms[k] = f.Tuple()
	}
	dom := domain.MakeMulti(doms)
	fields := make([]*Field, dom.Len())
	for i, k := range dom.Keys() {
		fields[i] = m[k]
	}
	return &Multi{dom: dom, fields: fields}
}

// EmptyMulti returns the multi-field with no keys.
func EmptyMulti() *Multi { return FromMap(nil) }

// FullMulti creates a Multi over dom with every element set to v.
func FullMulti(dom *domain.Multi, v float64) *Multi {
	fields := make([]*Field, dom.Len())
	for i, k := range dom.Keys() {
		fields[i] = Full(dom.Get(k), v)
	}
	return &Multi{dom: dom, fields: fields}
}

// FromRandomMulti creates a Multi with standard-normal entries.
func FromRandomMulti(dom *domain.Multi, rng *rand.Rand) *Multi {
	fields := make([]*Field, dom.Len())
	for i, k := range dom.Keys() {
		fields[i] = FromRandom(dom.Get(k), rng)
	}
	return &Multi{dom: dom, fields: fields}
}

// Domain returns the multi-field's domain as a Spec.
func (m *Multi) Domain() domain.Spec { return m.dom }

// MultiDomain returns the multi-field's domain.
func (m *Multi) MultiDomain() *domain.Multi { return m.dom }

// Keys returns the sorted key list. Callers must not modify it.
func (m *Multi) Keys() []string { return m.dom.Keys() }

// Get returns the field for key, or nil if absent.
func (m *Multi) Get(key string) *Field {
	for i, k := range m.dom.Keys() {
		if k == key {
			return m.fields[i]
		}
	}
	return nil
}

// Fields returns the fields in key order. Callers must not modify the slice.
func (m *Multi) Fields() []*Field { return m.fields }

func (m *Multi) checkSame(o *Multi) {
	if m.dom != o.dom {
		panic(fmt.Sprintf("fieldgraph(field): domain mismatch %s vs %s", m.dom, o.dom))
	}
}

func (m *Multi) zipWith(o *Multi, fn func(a, b *Field) *Field) *Multi {
	m.checkSame(o)
	fields := make([]*Field, len(m.fields))
	for i := range m.fields {
		fields[i] = fn(m.fields[i], o.fields[i])
	}
	return &Multi{dom: m.dom, fields: fields}
}

func (m *Multi) each(fn func(*Field) *Field) *Multi {
	fields := make([]*Field, len(m.fields))
	for i := range m.fields {
		fields[i] = fn(m.fields[i])
	}
	return &Multi{dom: m.dom, fields: fields}
}

// Add returns m + o elementwise. Domains must be identical.
func (m *Multi) Add(o *Multi) *Multi { return m.zipWith(o, (*Field).Add) }

// Sub returns m - o elementwise.
func (m *Multi) Sub(o *Multi) *Multi { return m.zipWith(o, (*Field).Sub) }

// Mul returns m * o elementwise.
func (m *Multi) Mul(o *Multi) *Multi { return m.zipWith(o, (*Field).Mul) }

// Div returns m / o elementwise.
func (m *Multi) Div(o *Multi) *Multi { return m.zipWith(o, (*Field).Div) }

// Scale returns c * m.
func (m *Multi) Scale(c float64) *Multi {
	return m.each(func(f *Field) *Field { return f.Scale(c) })
}

// AddScalar returns m + c elementwise.
func (m *Multi) AddScalar(c float64) *Multi {
	return m.each(func(f *Field) *Field { return f.AddScalar(c) })
}

// Neg returns -m.
func (m *Multi) Neg() *Multi { return m.Scale(-1) }

// Pow returns m**p elementwise.
func (m *Multi) Pow(p float64) *Multi {
	return m.each(func(f *Field) *Field { return f.Pow(p) })
}

// Clip returns m clamped to [lo, hi] elementwise.
func (m *Multi) Clip(lo, hi float64) *Multi {
	return m.each(func(f *Field) *Field { return f.Clip(lo, hi) })
}

// Map applies fn elementwise to every component.
func (m *Multi) Map(fn func(float64) float64) *Multi {
	return m.each(func(f *Field) *Field { return f.Map(fn) })
}

// MapWithJac applies fn elementwise, returning values and derivatives.
func (m *Multi) MapWithJac(fn func(float64) (float64, float64)) (*Multi, *Multi) {
	vals := make([]*Field, len(m.fields))
	ders := make([]*Field, len(m.fields))
	for i, f := range m.fields {
		vals[i], ders[i] = f.MapWithJac(fn)
	}
	return &Multi{dom: m.dom, fields: vals}, &Multi{dom: m.dom, fields: ders}
}

// Vdot returns the dot product of m and o. Domains must be identical.
func (m *Multi) Vdot(o *Multi) float64 {
	m.checkSame(o)
	var sum float64
	for i := range m.fields {
		sum += m.fields[i].Vdot(o.fields[i])
	}
	return sum
}

// Sum returns the sum over all elements of all components.
func (m *Multi) Sum() float64 {
	var sum float64
	for _, f := range m.fields {
		sum += f.Sum()
	}
	return sum
}

// Extract projects m onto the sub-domain d. Every key of d must be present
// in m with the identical tuple.
func (m *Multi) Extract(d *domain.Multi) *Multi {
	if d == m.dom {
		return m
	}
	fields := make([]*Field, d.Len())
	for i, k := range d.Keys() {
		f := m.Get(k)
		if f == nil || f.Tuple() != d.Get(k) {
			panic(fmt.Sprintf("fieldgraph(field): cannot extract key %q", k))
		}
		fields[i] = f
	}
	return &Multi{dom: d, fields: fields}
}

// ExtractPart projects m onto the keys it shares with d. Returns nil when
// the intersection is empty.
func (m *Multi) ExtractPart(d *domain.Multi) *Multi {
	sub := make(map[string]*Field)
	for _, k := range m.dom.Keys() {
		if d.Has(k) {
			sub[k] = m.Get(k)
		}
	}
	if len(sub) == 0 {
		return nil
	}
	return FromMap(sub)
}

// Unite merges m and o over the union of their domains; fields of
// overlapping keys are added.
func (m *Multi) Unite(o *Multi) *Multi {
	return m.flexibleAddSub(o, false)
}

// FlexibleAddSub adds (or, with neg, subtracts) o into m over the union of
// their domains. Keys present in only one operand are carried over, with the
// sign applied to o's exclusive keys.
func (m *Multi) FlexibleAddSub(o *Multi, neg bool) *Multi {
	return m.flexibleAddSub(o, neg)
}

func (m *Multi) flexibleAddSub(o *Multi, neg bool) *Multi {
	if m.dom == o.dom {
		if neg {
			return m.Sub(o)
		}
		return m.Add(o)
	}
	out := make(map[string]*Field, m.dom.Len()+o.dom.Len())
	for i, k := range m.dom.Keys() {
		out[k] = m.fields[i]
	}
	for i, k := range o.dom.Keys() {
		of := o.fields[i]
		if neg {
			of = of.Neg()
		}
		if have, ok := out[k]; ok {
			out[k] = have.Add(of)
		} else {
			out[k] = of
		}
	}
	return FromMap(out)
}

// AllClose reports whether m and o agree elementwise within tol.
func (m *Multi) AllClose(o *Multi, tol float64) bool {
	if m.dom != o.dom {
		return false
	}
	for i := range m.fields {
		if !m.fields[i].AllClose(o.fields[i], tol) {
			return false
		}
	}
	return true
}

func (m *Multi) String() string {
	return fmt.Sprintf("MultiField%s", m.dom.Key())
}

func (m *Multi) isValue() {}
