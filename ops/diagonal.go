package ops

import (
	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

// DiagonalOperator multiplies its input elementwise by a fixed field. The
// inverse modes divide; zeros on the diagonal then yield Inf/NaN as data.
type DiagonalOperator struct {
	diag *field.Field
}

// NewDiagonal creates a diagonal operator from its diagonal.
func NewDiagonal(diag *field.Field) *DiagonalOperator {
	return &DiagonalOperator{diag: diag}
}

// MakeDiagonal lifts a value into the linear operator "multiply by v":
// a DiagonalOperator for a Field, a block-diagonal of DiagonalOperators for
// a Multi. It realizes the product rule's "multiply by the other factor".
func MakeDiagonal(v field.Value) Linear {
	switch x := v.(type) {
	case *field.Field:
		return NewDiagonal(x)
	case *field.Multi:
		blocks := make(map[string]Linear, len(x.Keys()))
		for _, k := range x.Keys() {
			blocks[k] = NewDiagonal(x.Get(k))
		}
		op, err := NewBlockDiagonal(x.MultiDomain(), blocks)
		if err != nil {
			// blocks were derived from x itself, so they always match
			panic(err)
		}
		return op
	}
	panic("fieldgraph(ops): MakeDiagonal on unknown value kind")
}

func (d *DiagonalOperator) Domain() domain.Spec { return d.diag.Domain() }
func (d *DiagonalOperator) Target() domain.Spec { return d.diag.Domain() }
func (d *DiagonalOperator) Capability() Mode    { return AllModes }

func (d *DiagonalOperator) Apply(x field.Value) (field.Value, error) {
	return d.ApplyMode(x, Times)
}

func (d *DiagonalOperator) ApplyMode(x field.Value, mode Mode) (field.Value, error) {
	if err := checkMode(d, x, mode); err != nil {
		return nil, err
	}
	f := x.(*field.Field)
	if mode&(Times|AdjointTimes) != 0 {
		return f.Mul(d.diag), nil
	}
	return f.Div(d.diag), nil
}

func (d *DiagonalOperator) String() string { return "DiagonalOperator" }
