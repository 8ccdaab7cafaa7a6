// Package domain provides the structural type system of the fieldgraph engine.
//
// A Domain describes the shape of one axis group of a field. Domains are
// aggregated into an ordered DomainTuple (the axes of a single Field) or a
// keyed MultiDomain (named components of a MultiField). Both aggregates are
// interned in process-wide caches keyed by content, so two values describing
// the same structure are the same pointer and equality checks during graph
// composition are O(1) pointer comparisons.
//
// The intern caches are the only process-wide mutable state in the engine.
// They start empty, grow lazily and never evict; the only way to mutate them
// is constructing a tuple or multi-domain.
package domain

import (
	"fmt"
	"strings"
)

// Domain describes the shape of a contiguous block of field axes.
//
// Implementations must be immutable and must return a Key that is unique for
// the domain's content; the key is what the intern caches hash on.
// Structured domains (regular grids, spheres, harmonic spaces) are supplied
// by consumers of this package and only need to satisfy this interface.
type Domain interface {
	// Shape returns the axis extents. Callers must not modify the slice.
	Shape() []int
	// Size returns the total number of elements, the product of Shape.
	Size() int
	// Key returns a canonical content string used for interning.
	Key() string
}

// Spec is the domain of an operator input or output: either a *Tuple or a
// *Multi. Both are interned, so Spec values compare correctly with ==.
type Spec interface {
	Size() int
	Key() string
	fmt.Stringer

	isSpec()
}

// Unstructured is a Domain without any geometric structure, just a shape.
type Unstructured struct {
	shape []int
	size  int
	key   string
}

// NewUnstructured creates an unstructured domain with the given axis extents.
// Extents must be positive.
func NewUnstructured(shape ...int) *Unstructured {
	size := 1
	parts := make([]string, len(shape))
	for i, s := range shape {
		if s <= 0 {
			panic(fmt.Sprintf("fieldgraph(domain): non-positive extent %d", s))
		}
		size *= s
		parts[i] = fmt.Sprint(s)
	}
	return &Unstructured{
		shape: append([]int(nil), shape...),
		size:  size,
		key:   "ux[" + strings.Join(parts, "x") + "]",
	}
}

// Shape returns the axis extents. Callers must not modify the slice.
func (u *Unstructured) Shape() []int { return u.shape }

// Size returns the number of elements.
func (u *Unstructured) Size() int { return u.size }

// Key returns the canonical content string.
func (u *Unstructured) Key() string { return u.key }

func (u *Unstructured) String() string { return u.key }
