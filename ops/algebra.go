package ops

// Construction sugar for the operator algebra. Each helper postcomposes a
// small leaf onto an existing operator's target, mirroring how graphs are
// written down as expressions.

// PtwOp postcomposes the registered elementwise function name onto op.
func PtwOp(op Operator, name string) (Operator, error) {
	fa, err := newPtwApplier(op.Target(), name)
	if err != nil {
		return nil, err
	}
	return Chain(fa, op)
}

// PowOp raises op's output to the given power elementwise.
func PowOp(op Operator, power float64) (Operator, error) {
	return Chain(&powerOp{dom: op.Target(), power: power}, op)
}

// ClipOp clamps op's output to [lo, hi]. Use -Inf/+Inf for one-sided clips.
func ClipOp(op Operator, lo, hi float64) (Operator, error) {
	return Chain(&clipper{dom: op.Target(), lo: lo, hi: hi}, op)
}

// ScaleOp multiplies op's output by factor. Factor 1 returns op unchanged.
func ScaleOp(op Operator, factor float64) (Operator, error) {
	if factor == 1 {
		return op, nil
	}
	return Chain(NewScaling(op.Target(), factor), op)
}

// NegOp negates op's output.
func NegOp(op Operator) (Operator, error) { return ScaleOp(op, -1) }

// SumOf reduces op's output to the scalar sum of its elements.
func SumOf(op Operator) (Operator, error) {
	return Chain(NewContraction(op.Target()), op)
}
