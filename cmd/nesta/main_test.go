package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRecoverGaussian(t *testing.T) {
	out, err := run(t, "recover", "-n", "64", "-m", "32", "-k", "3", "--stages", "3")
	if err != nil {
		t.Fatalf("recover: %v\n%s", err, out)
	}
	for _, want := range []string{"Relative error:", "gaussian (32x64)", "Stage"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRecoverFourierWithPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "res.png")
	out, err := run(t, "recover", "--operator", "fourier", "-n", "64", "-m", "32", "-k", "2",
		"--sigma", "0.001", "--plot", path)
	if err != nil {
		t.Fatalf("recover: %v\n%s", err, out)
	}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Fatalf("plot not written: %v", err)
	}
}

func TestRecoverRejectsUnknownOperator(t *testing.T) {
	if _, err := run(t, "recover", "--operator", "wavelet"); err == nil {
		t.Fatal("expected an error for an unknown operator")
	}
}

func TestAbSOracle(t *testing.T) {
	out, err := run(t, "abs", "--count", "2")
	if err != nil {
		t.Fatalf("abs: %v\n%s", err, out)
	}
	if !strings.Contains(out, "AbS (oracle, 1)") || !strings.Contains(out, "Multiplier:") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestConfigFileOptions(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "nesta.yaml")
	if err := os.WriteFile(cfg, []byte("nesta:\n  maxintiter: 2\n  TolVar: 1e-6\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	a := &app{v: viper.New(), cfgFile: cfg}
	if err := a.initConfig(); err != nil {
		t.Fatalf("initConfig: %v", err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addSolverFlags(flags)
	if err := flags.Parse([]string{"--maxiter", "50"}); err != nil {
		t.Fatal(err)
	}

	opts, err := a.solverOptions(flags)
	if err != nil {
		t.Fatalf("solverOptions: %v", err)
	}
	if opts.MaxIntIter != 2 || opts.TolVar != 1e-6 || opts.MaxIter != 50 || opts.Verbose != 0 {
		t.Fatalf("unexpected options: MaxIntIter=%d TolVar=%v MaxIter=%d Verbose=%d",
			opts.MaxIntIter, opts.TolVar, opts.MaxIter, opts.Verbose)
	}

	if _, err := run(t, "--config", cfg, "recover", "-n", "32", "-m", "16", "-k", "2"); err != nil {
		t.Fatalf("recover with config: %v", err)
	}
}

func TestConfigUnknownKey(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(cfg, []byte("nesta:\n  tolerance: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "--config", cfg, "recover"); err == nil || !strings.Contains(err.Error(), "unknown option") {
		t.Fatalf("err = %v, want unknown option", err)
	}
}

func TestNoiseRadius(t *testing.T) {
	if noiseRadius(0, 10) != 0 {
		t.Fatal("noise-free radius must be zero")
	}
	// sqrt(8 + 2·4) · 0.5 = 2
	if got := noiseRadius(0.5, 8); got != 2 {
		t.Fatalf("noiseRadius = %v, want 2", got)
	}
}
