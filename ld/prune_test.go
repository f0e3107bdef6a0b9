package ld

import (
	"math"
	"testing"
)

func TestPruneThreshold(tst *testing.T) {
	// single AR(1) block with rho=0.9: adjacent r^2 = 0.81
	l, err := Build([]Block{NewDense(ar1Sym(10, 0.9))}, 0)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	pvals := make([]float64, 10)
	for i := range pvals {
		pvals[i] = float64(i+1) / 100
	}
	kept, err := Prune(newRng(1), l, PruneOptions{R2Thresh: 0.5, PVals: pvals})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if len(kept) == 0 {
		tst.Fatal("Expected non-empty pruned set")
	}
	if kept[0] != 0 {
		tst.Errorf("Best p-value variant not kept first, got %v", kept)
	}
	for a := 0; a < len(kept); a++ {
		for b := a + 1; b < len(kept); b++ {
			r, _ := l.Corr(kept[a], kept[b])
			if r*r >= 0.5 {
				tst.Errorf("Kept pair (%d, %d) has r^2 = %v above threshold", kept[a], kept[b], r*r)
			}
		}
	}
}

func TestPruneIdempotence(tst *testing.T) {
	l, err := Build([]Block{NewDense(ar1Sym(8, 0.85)), NewDense(ar1Sym(6, 0.7))}, 0)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	pvals := make([]float64, l.Size())
	for i := range pvals {
		pvals[i] = float64((i*7)%13+1) / 20
	}
	kept, err := Prune(newRng(2), l, PruneOptions{R2Thresh: 0.3, PVals: pvals})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	again, err := Prune(newRng(3), l, PruneOptions{R2Thresh: 0.3, PVals: pvals, Indices: kept})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if len(again) != len(kept) {
		tst.Fatalf("Re-pruning changed set size: %d -> %d", len(kept), len(again))
	}
	for i := range kept {
		if kept[i] != again[i] {
			tst.Errorf("Re-pruning changed the set at %d: %d -> %d", i, kept[i], again[i])
		}
	}
}

func TestPrunePValThreshold(tst *testing.T) {
	l, err := Build([]Block{NewDense(ar1Sym(5, 0.1))}, 0)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	pvals := []float64{0.001, 0.5, 0.002, 0.9, 0.003}
	kept, err := Prune(newRng(4), l, PruneOptions{R2Thresh: 0.9, PVals: pvals, PValThresh: 0.01})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	want := []int{0, 2, 4}
	if len(kept) != len(want) {
		tst.Fatalf("Expected %v, got %v", want, kept)
	}
	for i := range want {
		if kept[i] != want[i] {
			tst.Fatalf("Expected %v, got %v", want, kept)
		}
	}
}

func TestPruneRandomPriorityDeterministic(tst *testing.T) {
	l, err := Build([]Block{NewDense(ar1Sym(12, 0.8))}, 0)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	a, err := Prune(newRng(9), l, PruneOptions{R2Thresh: 0.4})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	b, err := Prune(newRng(9), l, PruneOptions{R2Thresh: 0.4})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if len(a) != len(b) {
		tst.Fatal("Same seed produced different pruned sets")
	}
	for i := range a {
		if a[i] != b[i] {
			tst.Fatal("Same seed produced different pruned sets")
		}
	}
}

func TestProxyRoundTrip(tst *testing.T) {
	l, err := Build([]Block{NewDense(ar1Sym(8, 0.9))}, 0)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	const t = 0.5
	res, err := Proxy(l, 3, t, true)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if len(res.Indices) == 0 {
		tst.Fatal("Expected proxies for a high-LD block")
	}
	// ranked by descending r^2
	for i := 1; i < len(res.Corr); i++ {
		if res.Corr[i]*res.Corr[i] > res.Corr[i-1]*res.Corr[i-1] {
			tst.Error("Proxies not ranked by descending r^2")
		}
	}
	// extraction over query+proxies reproduces correlations >= t
	for k, j := range res.Indices {
		r, err := l.Corr(3, j)
		if err != nil {
			tst.Fatal("Error: ", err)
		}
		if r*r < t {
			tst.Errorf("Proxy %d has r^2 = %v below threshold", j, r*r)
		}
		if d := math.Abs(res.R.At(0, k+1) - r); d > smallDiff {
			tst.Errorf("Submatrix corr %v does not match Corr %v", res.R.At(0, k+1), r)
		}
	}
}

func TestProxyOtherBlocksExcluded(tst *testing.T) {
	l, err := Build(pattern(), 0)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	res, err := Proxy(l, 1, 0.1, false)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	for _, j := range res.Indices {
		if j >= 4 {
			tst.Errorf("Proxy %d lies outside the query's block", j)
		}
	}
}
