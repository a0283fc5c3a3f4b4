package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-cs/nesta"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the state shared by all subcommands.
type app struct {
	v       *viper.Viper
	logger  *zap.Logger
	verbose bool
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "nesta",
		Short: "Sparse and cosparse recovery experiments",
		Long: `nesta runs seeded compressed-sensing experiments: L1 recovery with the
NESTA continuation solver, and analysis-sparse recovery through the
analysis-by-synthesis reduction.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.initConfig(); err != nil {
				return err
			}
			return a.initLogger()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file with a nesta section (yaml, toml or json)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log solver progress at debug level")

	root.AddCommand(newRecoverCmd(a), newAbSCmd(a))
	return root
}

func (a *app) initConfig() error {
	if a.cfgFile == "" {
		return nil
	}
	a.v.SetConfigFile(a.cfgFile)
	a.v.SetEnvPrefix("NESTA")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()
	if err := a.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (a *app) initLogger() error {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if a.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

// solverOptions resolves the NESTA options from the config file and the
// flags explicitly set on cmd. Flags win over the file.
func (a *app) solverOptions(flags *pflag.FlagSet) (nesta.Options, error) {
	raw := map[string]any{}
	if sub := a.v.Sub("nesta"); sub != nil {
		for k, v := range sub.AllSettings() {
			raw[k] = v
		}
	}

	// Verbose is driven by --verbose, not the file.
	verbose := 0
	if a.verbose {
		verbose = 1
	}
	set(raw, nesta.OptVerbose, verbose)

	// Flags override the file; unset flags only fill in missing keys.
	for _, f := range []struct{ flag, option string }{
		{"stages", nesta.OptMaxIntIter},
		{"tolvar", nesta.OptTolVar},
		{"maxiter", nesta.OptMaxIter},
	} {
		fl := flags.Lookup(f.flag)
		if fl == nil {
			continue
		}
		if fl.Changed || !has(raw, f.option) {
			set(raw, f.option, fl.Value.String())
		}
	}

	return nesta.Resolve(raw)
}

// has reports whether raw holds key in any letter case.
func has(raw map[string]any, key string) bool {
	for k := range raw {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// set stores value under key, replacing any case variant.
func set(raw map[string]any, key string, value any) {
	for k := range raw {
		if strings.EqualFold(k, key) {
			delete(raw, k)
		}
	}
	raw[key] = value
}

func addSolverFlags(flags *pflag.FlagSet) {
	def := nesta.DefaultOptions()
	flags.Int("stages", def.MaxIntIter, "number of continuation stages (MaxIntIter)")
	flags.Float64("tolvar", 1e-8, "tolerance reached at the last stage (TolVar)")
	flags.Int("maxiter", def.MaxIter, "inner iteration cap per stage")
}

// noiseRadius returns the constraint radius for m measurements with noise
// of standard deviation sigma, sqrt(m + 2·sqrt(2m))·sigma.
func noiseRadius(sigma float64, m int) float64 {
	if sigma <= 0 {
		return 0
	}
	fm := float64(m)
	return math.Sqrt(fm+2*math.Sqrt(2*fm)) * sigma
}
