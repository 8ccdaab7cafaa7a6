package ops

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

// NullOperator maps every input to zero. It is the Jacobian of constants.
type NullOperator struct {
	dom domain.Spec
	tgt domain.Spec
}

// NewNull creates the zero map from dom to tgt.
func NewNull(dom, tgt domain.Spec) *NullOperator {
	return &NullOperator{dom: dom, tgt: tgt}
}

func (n *NullOperator) Domain() domain.Spec { return n.dom }
func (n *NullOperator) Target() domain.Spec { return n.tgt }
func (n *NullOperator) Capability() Mode    { return Times | AdjointTimes }

func (n *NullOperator) Apply(x field.Value) (field.Value, error) {
	return n.ApplyMode(x, Times)
}

func (n *NullOperator) ApplyMode(x field.Value, mode Mode) (field.Value, error) {
	if err := checkMode(n, x, mode); err != nil {
		return nil, err
	}
	return field.FullValue(targetForMode(n, mode), 0), nil
}

func (n *NullOperator) String() string { return "NullOperator" }

// FieldAdapter converts between a Field and the single-key MultiField
// embedding of it. Which direction is the forward one depends on the domain
// handed to the constructor.
type FieldAdapter struct {
	dom  domain.Spec
	tgt  domain.Spec
	name string
}

// NewFieldAdapter creates an adapter for the given key. If spec is a tuple,
// the adapter maps {name: spec} -> spec; if spec is a multi-domain holding
// name, it maps spec[name] -> {name: spec[name]}.
func NewFieldAdapter(spec domain.Spec, name string) (*FieldAdapter, error) {
	switch s := spec.(type) {
	case *domain.Tuple:
		return &FieldAdapter{
			dom:  domain.MakeMulti(map[string]*domain.Tuple{name: s}),
			tgt:  s,
			name: name,
		}, nil
	case *domain.Multi:
		t := s.Get(name)
		if t == nil {
			return nil, errors.Wrapf(ErrDomainMismatch, "adapter key %q not in %s", name, s)
		}
		return &FieldAdapter{
			dom:  t,
			tgt:  domain.MakeMulti(map[string]*domain.Tuple{name: t}),
			name: name,
		}, nil
	}
	return nil, errors.Wrapf(ErrDomainMismatch, "unknown domain spec %T", spec)
}

// Name returns the multi-domain key the adapter embeds or extracts.
func (a *FieldAdapter) Name() string { return a.name }

func (a *FieldAdapter) Domain() domain.Spec { return a.dom }
func (a *FieldAdapter) Target() domain.Spec { return a.tgt }
func (a *FieldAdapter) Capability() Mode    { return Times | AdjointTimes }

func (a *FieldAdapter) Apply(x field.Value) (field.Value, error) {
	return a.ApplyMode(x, Times)
}

func (a *FieldAdapter) ApplyMode(x field.Value, mode Mode) (field.Value, error) {
	if err := checkMode(a, x, mode); err != nil {
		return nil, err
	}
	if m, ok := x.(*field.Multi); ok {
		return m.Get(a.name), nil
	}
	return field.FromMap(map[string]*field.Field{a.name: x.(*field.Field)}), nil
}

func (a *FieldAdapter) String() string {
	return fmt.Sprintf("FieldAdapter(%q)", a.name)
}

// Ducktape precomposes op, whose domain must be a tuple, with the extraction
// of key name, yielding an operator over the multi-domain {name: op.Domain}.
func Ducktape(op Operator, name string) (Operator, error) {
	t, ok := op.Domain().(*domain.Tuple)
	if !ok {
		return nil, errors.Wrapf(ErrDomainMismatch, "ducktape needs a tuple domain, have %s", op.Domain())
	}
	ad, err := NewFieldAdapter(t, name)
	if err != nil {
		return nil, err
	}
	return Chain(op, ad)
}

// DucktapeLeft postcomposes op, whose target must be a tuple, with the
// embedding of its output under key name.
func DucktapeLeft(op Operator, name string) (Operator, error) {
	t, ok := op.Target().(*domain.Tuple)
	if !ok {
		return nil, errors.Wrapf(ErrDomainMismatch, "ducktape needs a tuple target, have %s", op.Target())
	}
	md := domain.MakeMulti(map[string]*domain.Tuple{name: t})
	ad, err := NewFieldAdapter(md, name)
	if err != nil {
		return nil, err
	}
	return Chain(ad, op)
}

// VdotOperator computes the scalar product of its input with a fixed value.
type VdotOperator struct {
	f field.Value
}

// NewVdot creates the operator x -> <f, x>.
func NewVdot(f field.Value) *VdotOperator { return &VdotOperator{f: f} }

func (v *VdotOperator) Domain() domain.Spec { return v.f.Domain() }
func (v *VdotOperator) Target() domain.Spec { return domain.ScalarDomain() }
func (v *VdotOperator) Capability() Mode    { return Times | AdjointTimes }

func (v *VdotOperator) Apply(x field.Value) (field.Value, error) {
	return v.ApplyMode(x, Times)
}

func (v *VdotOperator) ApplyMode(x field.Value, mode Mode) (field.Value, error) {
	if err := checkMode(v, x, mode); err != nil {
		return nil, err
	}
	if mode == Times {
		return field.Scalar(field.Vdot(v.f, x)), nil
	}
	return field.Scale(v.f, x.(*field.Field).ScalarValue()), nil
}

func (v *VdotOperator) String() string { return "VdotOperator" }

// ContractionOperator sums all elements of its input into a scalar. Its
// adjoint broadcasts a scalar over the domain.
type ContractionOperator struct {
	dom domain.Spec
}

// NewContraction creates the full sum reduction over dom.
func NewContraction(dom domain.Spec) *ContractionOperator {
	return &ContractionOperator{dom: dom}
}

func (c *ContractionOperator) Domain() domain.Spec { return c.dom }
func (c *ContractionOperator) Target() domain.Spec { return domain.ScalarDomain() }
func (c *ContractionOperator) Capability() Mode    { return Times | AdjointTimes }

func (c *ContractionOperator) Apply(x field.Value) (field.Value, error) {
	return c.ApplyMode(x, Times)
}

func (c *ContractionOperator) ApplyMode(x field.Value, mode Mode) (field.Value, error) {
	if err := checkMode(c, x, mode); err != nil {
		return nil, err
	}
	if mode == Times {
		return field.Scalar(x.Sum()), nil
	}
	return field.FullValue(c.dom, x.(*field.Field).ScalarValue()), nil
}

func (c *ContractionOperator) String() string { return "ContractionOperator" }
