package domain

import "strings"

// Tuple is an immutable ordered sequence of Domains describing the axes of a
// single Field. Tuples are interned: MakeTuple returns the same pointer for
// the same sequence of domains, so == decides structural equality.
type Tuple struct {
	domains []Domain
	shape   []int
	size    int
	key     string
}

var tupleCache = newInternTable[*Tuple]()

// MakeTuple returns the canonical Tuple for the given domain sequence.
func MakeTuple(domains ...Domain) *Tuple {
	parts := make([]string, len(domains))
	for i, d := range domains {
		parts[i] = d.Key()
	}
	key := "(" + strings.Join(parts, ",") + ")"
	return tupleCache.intern(key, func() *Tuple {
		size := 1
		var shape []int
		for _, d := range domains {
			size *= d.Size()
			shape = append(shape, d.Shape()...)
		}
		return &Tuple{
			domains: append([]Domain(nil), domains...),
			shape:   shape,
			size:    size,
			key:     key,
		}
	})
}

// ScalarDomain returns the empty tuple: shape (), size 1. It is the target
// of scalar-valued operators such as energies and vdot reductions.
func ScalarDomain() *Tuple { return MakeTuple() }

// Len returns the number of domains in the tuple.
func (t *Tuple) Len() int { return len(t.domains) }

// At returns the i-th domain.
func (t *Tuple) At(i int) Domain { return t.domains[i] }

// Shape returns the concatenated axis extents. Callers must not modify it.
func (t *Tuple) Shape() []int { return t.shape }

// Size returns the total number of elements, 1 for the scalar domain.
func (t *Tuple) Size() int { return t.size }

// Key returns the canonical content string.
func (t *Tuple) Key() string { return t.key }

func (t *Tuple) String() string { return "DomainTuple" + t.key }

func (t *Tuple) isSpec() {}
