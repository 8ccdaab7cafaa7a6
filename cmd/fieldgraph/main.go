// Command fieldgraph exercises the operator engine from the command line.
// The demo subcommand walks through building, linearizing and folding a
// small nonlinear graph; selfcheck runs the numerical property checks over
// a suite of built-in operators.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fieldgraph/fieldgraph/check"
	"github.com/fieldgraph/fieldgraph/domain"
	"github.com/fieldgraph/fieldgraph/field"
	"github.com/fieldgraph/fieldgraph/ops"
)

var (
	verbose bool
	seed    int64
)

func main() {
	root := &cobra.Command{
		Use:   "fieldgraph",
		Short: "operator algebra and linearization engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().Int64Var(&seed, "seed", 42, "random seed for checks")
	root.AddCommand(demoCmd(), selfcheckCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildDemo constructs f = exp(a) * b over the multi-domain {a, b}.
func buildDemo(d *domain.Tuple) (ops.Operator, error) {
	a, err := ops.Ducktape(ops.NewScaling(d, 1), "a")
	if err != nil {
		return nil, err
	}
	ea, err := ops.PtwOp(a, "exp")
	if err != nil {
		return nil, err
	}
	b, err := ops.Ducktape(ops.NewScaling(d, 1), "b")
	if err != nil {
		return nil, err
	}
	return ops.Prod(ea, b)
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "build, linearize and fold exp(a) * b",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := domain.ScalarDomain()
			f, err := buildDemo(d)
			if err != nil {
				return err
			}
			x := field.FromMap(map[string]*field.Field{
				"a": field.Scalar(0),
				"b": field.Scalar(2),
			})
			lin, err := ops.LinearizeOp(f, x, false)
			if err != nil {
				return err
			}
			fmt.Printf("f = exp(a) * b over %s\n", f.Domain())
			fmt.Printf("f(a=0, b=2)      = %g\n", lin.Val().(*field.Field).ScalarValue())

			da := field.FromMap(map[string]*field.Field{"a": field.Scalar(1), "b": field.Scalar(0)})
			db := field.FromMap(map[string]*field.Field{"a": field.Scalar(0), "b": field.Scalar(1)})
			jda, err := lin.Jac().ApplyMode(da, ops.Times)
			if err != nil {
				return err
			}
			jdb, err := lin.Jac().ApplyMode(db, ops.Times)
			if err != nil {
				return err
			}
			fmt.Printf("df/da at (0, 2)  = %g\n", jda.(*field.Field).ScalarValue())
			fmt.Printf("df/db at (0, 2)  = %g\n", jdb.(*field.Field).ScalarValue())

			frozen := field.FromMap(map[string]*field.Field{"a": field.Scalar(0)})
			_, folded, err := ops.SimplifyForConstInput(f, frozen)
			if err != nil {
				return err
			}
			fmt.Printf("folded {a: 0}    : domain %s\n", folded.Domain())
			y, err := ops.Force(folded, x)
			if err != nil {
				return err
			}
			fmt.Printf("folded f(b=2)    = %g\n", y.(*field.Field).ScalarValue())
			return nil
		},
	}
}

func selfcheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selfcheck",
		Short: "run numerical property checks on built-in operators",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewSource(seed))
			d := domain.MakeTuple(domain.NewUnstructured(16))
			diag := ops.NewDiagonal(field.FromRandom(d, rng).AddScalar(3))

			linear := map[string]ops.Linear{
				"scaling":     ops.NewScaling(d, 2.5),
				"diagonal":    diag,
				"vdot":        ops.NewVdot(field.FromRandom(d, rng)),
				"contraction": ops.NewContraction(d),
			}
			failed := 0
			for name, op := range linear {
				if err := check.Adjoint(op, rng, 1e-10); err != nil {
					logrus.WithError(err).Errorf("adjoint: %s", name)
					failed++
					continue
				}
				logrus.Infof("adjoint ok: %s", name)
			}
			for _, name := range []string{"scaling", "diagonal"} {
				if err := check.InverseRoundTrip(linear[name], rng, 1e-10); err != nil {
					logrus.WithError(err).Errorf("inverse: %s", name)
					failed++
					continue
				}
				logrus.Infof("inverse ok: %s", name)
			}

			f, err := buildDemo(d)
			if err != nil {
				return err
			}
			x := field.FromRandomValue(f.Domain(), rng)
			if err := check.Jacobian(f, x, rng, 1e-6, 1e-5); err != nil {
				logrus.WithError(err).Error("jacobian: exp(a)*b")
				failed++
			} else {
				logrus.Info("jacobian ok: exp(a)*b")
			}
			if err := check.Consistency(f, rng, 3, 1e-12); err != nil {
				logrus.WithError(err).Error("consistency: exp(a)*b")
				failed++
			} else {
				logrus.Info("consistency ok: exp(a)*b")
			}
			if failed > 0 {
				return fmt.Errorf("%d checks failed", failed)
			}
			logrus.Info("all checks passed")
			return nil
		},
	}
}
