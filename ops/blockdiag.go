package ops

import (
	"github.com/pkg/errors"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

// BlockDiagonalOperator applies one endomorphic linear operator per key of a
// multi-domain. Missing keys are treated as identity. Its capability is the
// intersection of the block capabilities.
type BlockDiagonalOperator struct {
	dom *domain.Multi
	// blocks is parallel to dom.Keys(); nil means identity
	blocks []Linear
	cap    Mode
}

// NewBlockDiagonal creates a block-diagonal operator over dom. Every block
// must be endomorphic over the tuple of its key.
func NewBlockDiagonal(dom *domain.Multi, blocks map[string]Linear) (*BlockDiagonalOperator, error) {
	b := &BlockDiagonalOperator{dom: dom, cap: AllModes}
	for _, k := range dom.Keys() {
		op := blocks[k]
		if op != nil {
			if op.Domain() != dom.Get(k) || op.Target() != dom.Get(k) {
				return nil, errors.Wrapf(ErrDomainMismatch,
					"block %q is not endomorphic over its key", k)
			}
			b.cap &= op.Capability()
		}
		b.blocks = append(b.blocks, op)
	}
	return b, nil
}

func (b *BlockDiagonalOperator) Domain() domain.Spec { return b.dom }
func (b *BlockDiagonalOperator) Target() domain.Spec { return b.dom }
func (b *BlockDiagonalOperator) Capability() Mode    { return b.cap }

func (b *BlockDiagonalOperator) Apply(x field.Value) (field.Value, error) {
	return b.ApplyMode(x, Times)
}

func (b *BlockDiagonalOperator) ApplyMode(x field.Value, mode Mode) (field.Value, error) {
	if err := checkMode(b, x, mode); err != nil {
		return nil, err
	}
	m := x.(*field.Multi)
	out := make(map[string]*field.Field, b.dom.Len())
	for i, k := range b.dom.Keys() {
		f := m.Get(k)
		if b.blocks[i] == nil {
			out[k] = f
			continue
		}
		y, err := b.blocks[i].ApplyMode(f, mode)
		if err != nil {
			return nil, err
		}
		out[k] = y.(*field.Field)
	}
	return field.FromMap(out), nil
}

func (b *BlockDiagonalOperator) String() string { return "BlockDiagonalOperator" }
