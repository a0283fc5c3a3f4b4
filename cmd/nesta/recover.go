package main

import (
	"fmt"

	"github.com/cwbudde/algo-cs/internal/vec"
	"github.com/cwbudde/algo-cs/linop"
	"github.com/cwbudde/algo-cs/nesta"
	"github.com/cwbudde/algo-cs/sensing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type recoverFlags struct {
	n, m, k  int
	operator string
	muf      float64
	sigma    float64
	seed     int64
	plot     string
}

func newRecoverCmd(a *app) *cobra.Command {
	f := &recoverFlags{}
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Recover a random sparse signal with NESTA",
		Long: `recover draws a k-sparse signal of length n, measures it with m rows of a
random orthonormal matrix (gaussian) or of the real DFT basis (fourier),
and recovers it by L1 minimization with NESTA. With --sigma > 0 Gaussian
noise is added and the constraint radius is set accordingly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := a.solverOptions(cmd.Flags())
			if err != nil {
				return err
			}
			return runRecover(cmd, a.logger, f, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&f.n, "n", "n", 256, "signal length")
	flags.IntVarP(&f.m, "m", "m", 96, "number of measurements")
	flags.IntVarP(&f.k, "k", "k", 12, "number of non-zero entries")
	flags.StringVar(&f.operator, "operator", "gaussian", "measurement operator: gaussian or fourier")
	flags.Float64Var(&f.muf, "muf", 1e-5, "final smoothing parameter")
	flags.Float64Var(&f.sigma, "sigma", 0, "measurement noise standard deviation")
	flags.Int64Var(&f.seed, "seed", 1, "random seed")
	flags.StringVar(&f.plot, "plot", "", "write the residual history to this PNG file")
	addSolverFlags(flags)
	return cmd
}

func runRecover(cmd *cobra.Command, logger *zap.Logger, f *recoverFlags, opts nesta.Options) error {
	if f.m <= 0 || f.m > f.n {
		return fmt.Errorf("need 0 < m <= n, got m=%d n=%d", f.m, f.n)
	}

	g := sensing.NewGenerator(sensing.WithSeed(f.seed))
	x0, _, err := g.Sparse(f.n, f.k)
	if err != nil {
		return err
	}

	var a linop.Operator
	switch f.operator {
	case "gaussian":
		rows, err := g.OrthonormalRows(f.m, f.n)
		if err != nil {
			return err
		}
		a = linop.NewDense(rows)
	case "fourier":
		fa, err := linop.PartialFourier(f.n, g.Subset(f.n, f.m))
		if err != nil {
			return err
		}
		a = fa
	default:
		return fmt.Errorf("unknown operator %q (want gaussian or fourier)", f.operator)
	}

	b := a.Apply(x0)
	delta := noiseRadius(f.sigma, f.m)
	if delta > 0 {
		vec.Axpy(b, 1, g.Noise(f.sigma, f.m))
	}

	logger.Debug("recover",
		zap.Int("n", f.n), zap.Int("m", f.m), zap.Int("k", f.k),
		zap.String("operator", f.operator), zap.Float64("delta", delta))

	solver := nesta.NewSolver(nesta.WithLogger(logger), nesta.WithSeed(f.seed))
	res, err := solver.Solve(a, b, f.muf, delta, opts)
	if err != nil {
		return err
	}

	summary := recoverSummary{
		n: f.n, m: f.m, k: f.k,
		operator: f.operator,
		muf:      f.muf,
		delta:    delta,
		relErr:   vec.RelResidual(res.X, x0),
		residual: vec.Norm(vec.Sub(b, a.Apply(res.X))),
	}
	if err := writeRecoverReport(cmd.OutOrStdout(), summary, res); err != nil {
		return err
	}

	if f.plot != "" {
		if err := plotResiduals(f.plot, res); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "residual plot written to %s\n", f.plot)
	}
	return nil
}
