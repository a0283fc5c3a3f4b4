// Command nesta runs compressed-sensing recovery experiments.
//
// Usage:
//
//	nesta recover [flags]
//	nesta abs [flags]
//
// recover draws a k-sparse signal, measures it through a random
// orthonormal-row or partial Fourier operator and recovers it with NESTA.
// abs draws cosparse signals under a random analysis operator and recovers
// them through the analysis-by-synthesis reduction.
//
// NESTA options can be given in a YAML, TOML or JSON file under a "nesta"
// section; keys are matched case-insensitively:
//
//	nesta:
//	  MaxIntIter: 5
//	  TolVar: 1e-8
//	  stopTest: 1
//
// Examples:
//
//	nesta recover -n 256 -m 96 -k 12
//	nesta recover --operator fourier --sigma 0.01 --plot residuals.png
//	nesta abs --solver nesta --count 4
//	nesta --config nesta.yaml recover
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
