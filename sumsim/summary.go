package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/montanaflynn/stats"

	"github.com/jandvik/sumsim/sim"
)

// TraitSummary stores descriptive statistics of one trait's simulated
// effect estimates.
type TraitSummary struct {
	// Name is the trait name.
	Name string `json:"name"`
	// N is the resolved GWAS sample size.
	N float64 `json:"n"`
	// Causal is the number of variants with a nonzero direct effect.
	Causal int `json:"causal"`
	// Mean, SD, Min and Max describe the beta_hat column.
	Mean float64 `json:"betaHatMean"`
	SD   float64 `json:"betaHatSD"`
	Min  float64 `json:"betaHatMin"`
	Max  float64 `json:"betaHatMax"`
}

// RunSummary stores summary information about a run, can be used for
// the JSON output.
type RunSummary struct {
	// Version is the version of the binary.
	Version string `json:"version"`
	// CommandLine is the command line.
	CommandLine []string `json:"commandLine"`
	// Seed is the random generator seed.
	Seed int64 `json:"seed"`
	// Traits summarizes the simulated statistics per trait.
	Traits []TraitSummary `json:"traits"`
	// RealizedH2 is the realized genetic variance per trait.
	RealizedH2 []float64 `json:"realizedH2"`
	// Time is the running time in seconds.
	Time float64 `json:"time"`
}

func summarizeTraits(res *sim.Result) []TraitSummary {
	j, m := res.BetaHat.Dims()
	sums := make([]TraitSummary, m)
	for t := 0; t < m; t++ {
		col := make([]float64, j)
		causal := 0
		for v := 0; v < j; v++ {
			col[v] = res.BetaHat.At(v, t)
			if res.DirectEffects.At(v, t) != 0 {
				causal++
			}
		}
		// the column is never empty so these cannot fail
		mean, _ := stats.Mean(col)
		sd, _ := stats.StandardDeviation(col)
		min, _ := stats.Min(col)
		max, _ := stats.Max(col)
		sums[t] = TraitSummary{
			Name:   res.TraitNames[t],
			N:      res.NObs[t],
			Causal: causal,
			Mean:   mean,
			SD:     sd,
			Min:    min,
			Max:    max,
		}
	}
	return sums
}

// writeTable writes the simulated summary statistics as a
// tab-separated table, one row per variant.
func writeTable(w io.Writer, res *sim.Result) error {
	bw := bufio.NewWriter(w)
	j, m := res.BetaHat.Dims()

	fmt.Fprint(bw, "variant")
	if res.AF != nil {
		fmt.Fprint(bw, "\taf")
	}
	for _, name := range res.TraitNames {
		fmt.Fprintf(bw, "\t%s.beta", name)
		fmt.Fprintf(bw, "\t%s.se", name)
		if res.SEHat != nil {
			fmt.Fprintf(bw, "\t%s.se_hat", name)
		}
	}
	fmt.Fprintln(bw)

	for v := 0; v < j; v++ {
		fmt.Fprint(bw, v+1)
		if res.AF != nil {
			fmt.Fprintf(bw, "\t%g", res.AF[v])
		}
		for t := 0; t < m; t++ {
			fmt.Fprintf(bw, "\t%g\t%g", res.BetaHat.At(v, t), res.SE.At(v, t))
			if res.SEHat != nil {
				fmt.Fprintf(bw, "\t%g", res.SEHat.At(v, t))
			}
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
