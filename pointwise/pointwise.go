// Package pointwise provides the registry of elementwise functions the
// operator graph can lift, together with their exact pointwise derivatives.
//
// Every entry supplies both the forward map and a fused value+derivative
// form; graph construction resolves a name to its Pair exactly once, so
// evaluation never pays for a table lookup.
//
// Derivative edge cases follow floating-point semantics: where a derivative
// is undefined (abs at 0, log at 0) the entry yields NaN/Inf as data rather
// than failing.
package pointwise

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// ErrUnknownFunction is returned by Lookup for names not in the registry.
var ErrUnknownFunction = errors.New("fieldgraph(pointwise): unknown function")

// Pair bundles an elementwise function with its derivative. ApplyWithJac
// returns f(v) and f'(v) in one call so shared subexpressions are computed
// once.
type Pair struct {
	Apply        func(v float64) float64
	ApplyWithJac func(v float64) (val, jac float64)
}

var table = map[string]Pair{
	"sqrt": {math.Sqrt, func(v float64) (float64, float64) {
		t := math.Sqrt(v)
		return t, 0.5 / t
	}},
	"sin": {math.Sin, func(v float64) (float64, float64) {
		return math.Sin(v), math.Cos(v)
	}},
	"cos": {math.Cos, func(v float64) (float64, float64) {
		return math.Cos(v), -math.Sin(v)
	}},
	"tan": {math.Tan, func(v float64) (float64, float64) {
		c := math.Cos(v)
		return math.Tan(v), 1 / (c * c)
	}},
	"sinc": {sinc, func(v float64) (float64, float64) {
		t := sinc(v)
		if v == 0 {
			return t, 0
		}
		return t, (math.Cos(math.Pi*v) - t) / v
	}},
	"exp": {math.Exp, func(v float64) (float64, float64) {
		t := math.Exp(v)
		return t, t
	}},
	"expm1": {math.Expm1, func(v float64) (float64, float64) {
		t := math.Expm1(v)
		return t, t + 1
	}},
	"log": {math.Log, func(v float64) (float64, float64) {
		return math.Log(v), 1 / v
	}},
	"log10": {math.Log10, func(v float64) (float64, float64) {
		return math.Log10(v), 1 / (math.Ln10 * v)
	}},
	"log1p": {math.Log1p, func(v float64) (float64, float64) {
		return math.Log1p(v), 1 / (1 + v)
	}},
	"sinh": {math.Sinh, func(v float64) (float64, float64) {
		return math.Sinh(v), math.Cosh(v)
	}},
	"cosh": {math.Cosh, func(v float64) (float64, float64) {
		return math.Cosh(v), math.Sinh(v)
	}},
	"tanh": {math.Tanh, func(v float64) (float64, float64) {
		t := math.Tanh(v)
		return t, 1 - t*t
	}},
	"sigmoid": {func(v float64) float64 {
		return 0.5 + 0.5*math.Tanh(v)
	}, func(v float64) (float64, float64) {
		t := math.Tanh(v)
		return 0.5 + 0.5*t, 0.5 - 0.5*t*t
	}},
	"reciprocal": {func(v float64) float64 {
		return 1 / v
	}, func(v float64) (float64, float64) {
		t := 1 / v
		return t, -t * t
	}},
	"abs": {math.Abs, func(v float64) (float64, float64) {
		if v == 0 {
			return 0, math.NaN()
		}
		return math.Abs(v), sign(v)
	}},
	"sign": {sign, func(v float64) (float64, float64) {
		if v == 0 {
			return 0, math.NaN()
		}
		return sign(v), 0
	}},
}

// sinc is the normalized cardinal sine sin(pi v)/(pi v).
func sinc(v float64) float64 {
	if v == 0 {
		return 1
	}
	t := math.Pi * v
	return math.Sin(t) / t
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Lookup resolves a function name to its Pair.
func Lookup(name string) (Pair, error) {
	p, ok := table[name]
	if !ok {
		return Pair{}, errors.Wrapf(ErrUnknownFunction, "%q", name)
	}
	return p, nil
}

// Names returns the sorted registry names.
func Names() []string {
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
