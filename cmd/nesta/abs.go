package main

import (
	"fmt"

	"github.com/cwbudde/algo-cs/analysis"
	"github.com/cwbudde/algo-cs/internal/vec"
	"github.com/cwbudde/algo-cs/nesta"
	"github.com/cwbudde/algo-cs/sensing"
	"github.com/cwbudde/algo-cs/synthesis"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

type absFlags struct {
	n, p, m, l int
	count      int
	solver     string
	frame      string
	multiplier float64
	mode       string
	muf        float64
	seed       int64
}

func newAbSCmd(a *app) *cobra.Command {
	f := &absFlags{}
	cmd := &cobra.Command{
		Use:   "abs",
		Short: "Recover cosparse signals by analysis-by-synthesis",
		Long: `abs draws signals of length n that are orthogonal to l rows of a random
p×n analysis operator, measures them with a Gaussian m×n matrix and
recovers them through the null-space reduction with the oracle (true
support) or the NESTA synthesis solver.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := a.solverOptions(cmd.Flags())
			if err != nil {
				return err
			}
			return runAbS(cmd, a.logger, f, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&f.n, "n", "n", 10, "signal length")
	flags.IntVarP(&f.p, "p", "p", 15, "analysis operator rows")
	flags.IntVarP(&f.m, "m", "m", 7, "number of measurements")
	flags.IntVarP(&f.l, "l", "l", 7, "cosparsity")
	flags.IntVar(&f.count, "count", 3, "number of signals")
	flags.StringVar(&f.solver, "solver", "oracle", "synthesis solver: oracle or nesta")
	flags.StringVar(&f.frame, "frame", "gaussian", "analysis operator: gaussian or tight")
	flags.Float64Var(&f.multiplier, "multiplier", 1, "null-space multiplier")
	flags.StringVar(&f.mode, "mode", string(analysis.MultiplierNormalizedRow), "multiplier mode: value or normalized_row")
	flags.Float64Var(&f.muf, "muf", 1e-5, "final smoothing parameter of the nesta solver")
	flags.Int64Var(&f.seed, "seed", 1, "random seed")
	addSolverFlags(flags)
	return cmd
}

func runAbS(cmd *cobra.Command, logger *zap.Logger, f *absFlags, opts nesta.Options) error {
	g := sensing.NewGenerator(sensing.WithSeed(f.seed))

	var (
		op  *mat.Dense
		err error
	)
	switch f.frame {
	case "gaussian":
		op, err = g.Gaussian(f.p, f.n)
	case "tight":
		op, err = g.TightFrame(f.p, f.n)
	default:
		err = fmt.Errorf("unknown analysis operator %q (want gaussian or tight)", f.frame)
	}
	if err != nil {
		return err
	}

	acq, err := g.Gaussian(f.m, f.n)
	if err != nil {
		return err
	}
	truth, err := g.Cosparse(op, f.l, f.count)
	if err != nil {
		return err
	}
	y, err := g.Measure(acq, truth.Data, 0)
	if err != nil {
		return err
	}

	var solver analysis.SynthesisSolver
	switch f.solver {
	case "oracle":
		solver = synthesis.Oracle{}
	case "nesta":
		s := synthesis.NewNESTA(f.muf)
		s.Options = opts
		s.Solver = nesta.NewSolver(nesta.WithLogger(logger), nesta.WithSeed(f.seed))
		s.Logger = logger
		solver = s
	default:
		return fmt.Errorf("unknown synthesis solver %q (want oracle or nesta)", f.solver)
	}

	abs, err := analysis.New(solver,
		analysis.WithMultiplier(f.multiplier),
		analysis.WithMode(analysis.MultiplierMode(f.mode)),
		analysis.WithLogger(logger))
	if err != nil {
		return err
	}
	red, err := abs.Reduce(y, acq, op, truth)
	if err != nil {
		return err
	}
	xhat, err := abs.SolveReduced(red)
	if err != nil {
		return err
	}

	errs := make([]float64, f.count)
	for j := range errs {
		errs[j] = vec.RelResidual(mat.Col(nil, j, xhat), mat.Col(nil, j, truth.Data))
	}
	return writeAbSReport(cmd.OutOrStdout(), abs.String(), red.Multiplier, f, errs)
}
