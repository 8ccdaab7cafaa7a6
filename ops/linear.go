package ops

import (
	"math/bits"
	"strings"

	"github.com/pkg/errors"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

// Mode selects one of the four application modes of a linear operator.
// A capability mask is the union of the modes an operator supports.
type Mode uint8

const (
	// Times applies the operator itself.
	Times Mode = 1 << iota
	// AdjointTimes applies the transpose.
	AdjointTimes
	// InverseTimes applies the inverse.
	InverseTimes
	// AdjointInverseTimes applies the transposed inverse.
	AdjointInverseTimes

	// AllModes is the capability mask of a self-contained invertible operator.
	AllModes = Times | AdjointTimes | InverseTimes | AdjointInverseTimes
)

// code returns the 2-bit transform code of a single mode: bit 0 flags
// adjoint, bit 1 flags inverse.
func (m Mode) code() uint8 { return uint8(bits.TrailingZeros8(uint8(m))) }

func modeFromCode(c uint8) Mode { return Mode(1) << c }

func (m Mode) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	if m&Times != 0 {
		parts = append(parts, "times")
	}
	if m&AdjointTimes != 0 {
		parts = append(parts, "adjoint")
	}
	if m&InverseTimes != 0 {
		parts = append(parts, "inverse")
	}
	if m&AdjointInverseTimes != 0 {
		parts = append(parts, "adjoint-inverse")
	}
	return strings.Join(parts, "|")
}

// Linear is an Operator that is linear in its input and declares which of
// the four application modes it supports. Apply must be equivalent to
// ApplyMode with Times.
type Linear interface {
	Operator

	// Capability returns the mask of supported modes.
	Capability() Mode
	// ApplyMode applies the operator in the given mode. Requesting a mode
	// outside Capability() returns ErrCapability.
	ApplyMode(x field.Value, mode Mode) (field.Value, error)
}

// domainForMode returns the domain the input of the given mode lives on:
// the operator domain for Times/AdjointInverseTimes, the target otherwise.
func domainForMode(op Linear, mode Mode) domain.Spec {
	if mode&(Times|AdjointInverseTimes) != 0 {
		return op.Domain()
	}
	return op.Target()
}

// targetForMode returns the domain the output of the given mode lives on.
func targetForMode(op Linear, mode Mode) domain.Spec {
	if mode&(AdjointTimes|InverseTimes) != 0 {
		return op.Domain()
	}
	return op.Target()
}

// checkMode validates a mode request against capability and input domain.
func checkMode(op Linear, x field.Value, mode Mode) error {
	if bits.OnesCount8(uint8(mode)) != 1 || op.Capability()&mode == 0 {
		return errors.Wrapf(ErrCapability, "mode %s, capability %s", mode, op.Capability())
	}
	if d := domainForMode(op, mode); d != x.Domain() {
		return errors.Wrapf(ErrDomainMismatch, "mode %s wants %s, input is %s", mode, d, x.Domain())
	}
	return nil
}

// Adjoint returns the transposed view of op without copying any state.
func Adjoint(op Linear) Linear { return flipModes(op, 1) }

// Inverse returns the inverse view of op.
func Inverse(op Linear) Linear { return flipModes(op, 2) }

// AdjointInverse returns the transposed-inverse view of op.
func AdjointInverse(op Linear) Linear { return flipModes(op, 3) }

// flipModes stacks a transform code onto op. Flipping an adapter XORs the
// codes, so views stay flat and cancel back to the base operator. Taking the
// adjoint of a self-adjoint operator is a no-op.
func flipModes(op Linear, trafo uint8) Linear {
	switch o := op.(type) {
	case *adapter:
		nt := o.trafo ^ trafo
		if nt == 0 {
			return o.base
		}
		return newAdapter(o.base, nt)
	case *ScalingOperator, *DiagonalOperator, *SandwichOperator:
		if trafo == 1 {
			return op
		}
	}
	return newAdapter(op, trafo)
}

// adapter presents the adjoint and/or inverse view of a base operator by
// translating modes on the fly. Transform codes: 1 adjoint, 2 inverse,
// 3 adjoint-inverse.
type adapter struct {
	base  Linear
	trafo uint8
	dom   domain.Spec
	tgt   domain.Spec
	cap   Mode
}

func newAdapter(base Linear, trafo uint8) *adapter {
	view := modeFromCode(trafo)
	var capability Mode
	for c := uint8(0); c < 4; c++ {
		if base.Capability()&modeFromCode(c) != 0 {
			capability |= modeFromCode(c ^ trafo)
		}
	}
	return &adapter{
		base:  base,
		trafo: trafo,
		dom:   domainForMode(base, view),
		tgt:   targetForMode(base, view),
		cap:   capability,
	}
}

func (a *adapter) Domain() domain.Spec { return a.dom }
func (a *adapter) Target() domain.Spec { return a.tgt }
func (a *adapter) Capability() Mode    { return a.cap }

func (a *adapter) Apply(x field.Value) (field.Value, error) {
	return a.ApplyMode(x, Times)
}

func (a *adapter) ApplyMode(x field.Value, mode Mode) (field.Value, error) {
	if err := checkMode(a, x, mode); err != nil {
		return nil, err
	}
	return a.base.ApplyMode(x, modeFromCode(mode.code()^a.trafo))
}
