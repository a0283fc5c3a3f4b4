package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/cwbudde/algo-cs/nesta"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type recoverSummary struct {
	n, m, k  int
	operator string
	muf      float64
	delta    float64
	relErr   float64
	residual float64
}

func writeRecoverReport(w io.Writer, s recoverSummary, res nesta.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Operator:\t%s (%dx%d)\n", s.operator, s.m, s.n)
	fmt.Fprintf(tw, "Sparsity:\t%d\n", s.k)
	fmt.Fprintf(tw, "mu0 / muf:\t%.4g / %.4g\n", res.Mu0, s.muf)
	fmt.Fprintf(tw, "Delta:\t%.4g\n", s.delta)
	fmt.Fprintf(tw, "Iterations:\t%d\n", res.Iterations)
	fmt.Fprintf(tw, "Relative error:\t%.3e\n", s.relErr)
	fmt.Fprintf(tw, "Residual:\t%.3e\n", s.residual)
	for _, warn := range res.Warnings {
		fmt.Fprintf(tw, "Warning:\t%v\n", warn)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Stage\tmu\tTolVar\tIterations")
	fmt.Fprintln(tw, "-----\t--\t------\t----------")
	for i, st := range res.Schedule {
		fmt.Fprintf(tw, "%d\t%.4g\t%.4g\t%d\n", i+1, st.Mu, st.TolVar, st.Iterations)
	}
	return tw.Flush()
}

func writeAbSReport(w io.Writer, name string, lambda float64, f *absFlags, errs []float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Solver:\t%s\n", name)
	fmt.Fprintf(tw, "Operator:\t%s (%dx%d), cosparsity %d\n", f.frame, f.p, f.n, f.l)
	fmt.Fprintf(tw, "Measurements:\t%d\n", f.m)
	fmt.Fprintf(tw, "Multiplier:\t%.4g (%s)\n", lambda, f.mode)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Signal\tRelative error")
	fmt.Fprintln(tw, "------\t--------------")
	for j, e := range errs {
		fmt.Fprintf(tw, "%d\t%.3e\n", j, e)
	}
	return tw.Flush()
}

// plotResiduals writes ‖b − A·x_k‖ over all inner iterations on a log
// scale. Zero residuals are clamped to the smallest positive one.
func plotResiduals(path string, res nesta.Result) error {
	if len(res.Residuals) == 0 {
		return fmt.Errorf("no residual history to plot")
	}

	floor := math.Inf(1)
	for _, r := range res.Residuals {
		if r.Norm > 0 {
			floor = math.Min(floor, r.Norm)
		}
	}
	if math.IsInf(floor, 1) {
		floor = 1e-16
	}

	pts := make(plotter.XYs, len(res.Residuals))
	for i, r := range res.Residuals {
		pts[i].X = float64(i + 1)
		pts[i].Y = math.Max(r.Norm, floor)
	}

	p := plot.New()
	p.Title.Text = "NESTA residual history"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "‖b − Ax‖"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("residual plot: %w", err)
	}
	p.Add(line, plotter.NewGrid())

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("residual plot: %w", err)
	}
	return nil
}
