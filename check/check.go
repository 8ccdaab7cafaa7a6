// Package check provides numerical consistency checks for operators: adjoint
// and inverse identities for linear operators, finite-difference validation
// of Jacobians, and determinism of evaluation. The checks are probabilistic,
// they draw random inputs, so they are meant for tests and for the selfcheck
// command rather than for production hot paths.
package check

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fieldgraph/fieldgraph/field"
	"github.com/fieldgraph/fieldgraph/ops"
)

// ErrCheckFailed is the root cause of every failed numerical check.
var ErrCheckFailed = errors.New("fieldgraph(check): numerical check failed")

var log = logrus.WithField("component", "check")

// Adjoint verifies <y, Ax> == <A^T y, x> for random x and y.
func Adjoint(op ops.Linear, rng *rand.Rand, tol float64) error {
	need := ops.Times | ops.AdjointTimes
	if op.Capability()&need != need {
		return errors.Wrapf(ops.ErrCapability, "adjoint check needs TIMES and ADJOINT_TIMES, have %s",
			op.Capability())
	}
	x := field.FromRandomValue(op.Domain(), rng)
	y := field.FromRandomValue(op.Target(), rng)
	ax, err := op.ApplyMode(x, ops.Times)
	if err != nil {
		return err
	}
	aty, err := op.ApplyMode(y, ops.AdjointTimes)
	if err != nil {
		return err
	}
	lhs := field.Vdot(y, ax)
	rhs := field.Vdot(aty, x)
	log.WithFields(logrus.Fields{"lhs": lhs, "rhs": rhs}).Debug("adjoint check")
	if !scalarClose(lhs, rhs, tol) {
		return errors.Wrapf(ErrCheckFailed, "adjoint mismatch: <y,Ax>=%g, <A^T y,x>=%g", lhs, rhs)
	}
	return nil
}

// InverseRoundTrip verifies A^-1(Ax) == x, and the adjoint-inverse round
// trip when the operator supports it.
func InverseRoundTrip(op ops.Linear, rng *rand.Rand, tol float64) error {
	need := ops.Times | ops.InverseTimes
	if op.Capability()&need != need {
		return errors.Wrapf(ops.ErrCapability, "inverse check needs TIMES and INVERSE_TIMES, have %s",
			op.Capability())
	}
	x := field.FromRandomValue(op.Domain(), rng)
	ax, err := op.ApplyMode(x, ops.Times)
	if err != nil {
		return err
	}
	back, err := op.ApplyMode(ax, ops.InverseTimes)
	if err != nil {
		return err
	}
	if !field.AllClose(back, x, tol) {
		return errors.Wrap(ErrCheckFailed, "inverse round trip diverged")
	}
	adj := ops.AdjointTimes | ops.AdjointInverseTimes
	if op.Capability()&adj != adj {
		return nil
	}
	y := field.FromRandomValue(op.Target(), rng)
	aty, err := op.ApplyMode(y, ops.AdjointTimes)
	if err != nil {
		return err
	}
	yback, err := op.ApplyMode(aty, ops.AdjointInverseTimes)
	if err != nil {
		return err
	}
	if !field.AllClose(yback, y, tol) {
		return errors.Wrap(ErrCheckFailed, "adjoint-inverse round trip diverged")
	}
	return nil
}

// Jacobian validates the Jacobian of op at x against a central finite
// difference along a random direction, and checks the Jacobian's own adjoint
// identity when available.
func Jacobian(op ops.Operator, x field.Value, rng *rand.Rand, eps, tol float64) error {
	lin, err := ops.LinearizeOp(op, x, false)
	if err != nil {
		return err
	}
	dir := field.FromRandomValue(op.Domain(), rng)
	jd, err := lin.Jac().ApplyMode(dir, ops.Times)
	if err != nil {
		return err
	}
	up, err := op.Apply(field.Add(x, field.Scale(dir, eps)))
	if err != nil {
		return err
	}
	down, err := op.Apply(field.Sub(x, field.Scale(dir, eps)))
	if err != nil {
		return err
	}
	fd := field.Scale(field.Sub(up, down), 1/(2*eps))
	if !field.AllClose(jd, fd, tol) {
		return errors.Wrap(ErrCheckFailed, "jacobian disagrees with finite difference")
	}
	jac := lin.Jac()
	if jac.Capability()&(ops.Times|ops.AdjointTimes) == ops.Times|ops.AdjointTimes {
		return Adjoint(jac, rng, tol)
	}
	return nil
}

// Consistency verifies that evaluation is deterministic and that outputs
// live on the declared target, and runs every linear check the operator's
// capability admits.
func Consistency(op ops.Operator, rng *rand.Rand, ntries int, tol float64) error {
	if lin, ok := op.(ops.Linear); ok {
		caps := lin.Capability()
		if caps&(ops.Times|ops.AdjointTimes) == ops.Times|ops.AdjointTimes {
			if err := Adjoint(lin, rng, tol); err != nil {
				return err
			}
		}
		if caps&(ops.Times|ops.InverseTimes) == ops.Times|ops.InverseTimes {
			if err := InverseRoundTrip(lin, rng, tol); err != nil {
				return err
			}
		}
	}
	for i := 0; i < ntries; i++ {
		x := field.FromRandomValue(op.Domain(), rng)
		y1, err := op.Apply(x)
		if err != nil {
			return err
		}
		y2, err := op.Apply(x)
		if err != nil {
			return err
		}
		if y1.Domain() != op.Target() {
			return errors.Wrapf(ErrCheckFailed, "output on %s, target is %s", y1.Domain(), op.Target())
		}
		if !field.AllClose(y1, y2, tol) {
			return errors.Wrap(ErrCheckFailed, "evaluation is not deterministic")
		}
	}
	return nil
}

func scalarClose(a, b, tol float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= tol*scale
}
