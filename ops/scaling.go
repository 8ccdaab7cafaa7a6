package ops

import (
	"fmt"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

// ScalingOperator multiplies its input by a fixed factor. It is endomorphic
// and, for nonzero factors, supports all four modes. Factor 1 is the
// identity.
type ScalingOperator struct {
	dom    domain.Spec
	factor float64
}

// NewScaling creates a scaling operator over dom.
func NewScaling(dom domain.Spec, factor float64) *ScalingOperator {
	return &ScalingOperator{dom: dom, factor: factor}
}

// Identity returns the identity operator over dom.
func Identity(dom domain.Spec) *ScalingOperator { return NewScaling(dom, 1) }

// Factor returns the scaling factor.
func (s *ScalingOperator) Factor() float64 { return s.factor }

func (s *ScalingOperator) Domain() domain.Spec { return s.dom }
func (s *ScalingOperator) Target() domain.Spec { return s.dom }

func (s *ScalingOperator) Capability() Mode {
	if s.factor == 0 {
		return Times | AdjointTimes
	}
	return AllModes
}

func (s *ScalingOperator) Apply(x field.Value) (field.Value, error) {
	return s.ApplyMode(x, Times)
}

func (s *ScalingOperator) ApplyMode(x field.Value, mode Mode) (field.Value, error) {
	if err := checkMode(s, x, mode); err != nil {
		return nil, err
	}
	if mode&(Times|AdjointTimes) != 0 {
		return field.Scale(x, s.factor), nil
	}
	return field.Scale(x, 1/s.factor), nil
}

func (s *ScalingOperator) String() string {
	return fmt.Sprintf("ScalingOperator(%g)", s.factor)
}
