package ops

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
)

func testTuple(n int) *domain.Tuple {
	return domain.MakeTuple(domain.NewUnstructured(n))
}

func testRng() *rand.Rand { return rand.New(rand.NewSource(7)) }

func applyMode(t *testing.T, op Linear, x field.Value, mode Mode) field.Value {
	t.Helper()
	y, err := op.ApplyMode(x, mode)
	require.NoError(t, err)
	return y
}

func apply(t *testing.T, op Operator, x field.Value) field.Value {
	t.Helper()
	y, err := op.Apply(x)
	require.NoError(t, err)
	return y
}

// adjointIdentityHolds checks <y, Ax> == <A^T y, x> for random x, y.
func adjointIdentityHolds(t *testing.T, op Linear, rng *rand.Rand) {
	t.Helper()
	x := field.FromRandomValue(op.Domain(), rng)
	y := field.FromRandomValue(op.Target(), rng)
	ax := applyMode(t, op, x, Times)
	aty := applyMode(t, op, y, AdjointTimes)
	require.InDelta(t, field.Vdot(y, ax), field.Vdot(aty, x), 1e-10)
}

// fdJacobianHolds compares the Jacobian of op at x against a central finite
// difference along a random direction.
func fdJacobianHolds(t *testing.T, op Operator, x field.Value, rng *rand.Rand) {
	t.Helper()
	lin, err := LinearizeOp(op, x, false)
	require.NoError(t, err)
	dir := field.FromRandomValue(op.Domain(), rng)
	jd := applyMode(t, lin.Jac(), dir, Times)

	const eps = 1e-6
	up := apply(t, op, field.Add(x, field.Scale(dir, eps)))
	down := apply(t, op, field.Sub(x, field.Scale(dir, eps)))
	fd := field.Scale(field.Sub(up, down), 1/(2*eps))
	require.True(t, field.AllClose(jd, fd, 1e-5),
		"jacobian %v disagrees with finite difference %v", jd, fd)
}
