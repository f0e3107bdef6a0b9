package effects

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const smallDiff = 1e-12

func newRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func nonZero(m *mat.Dense, col int) []int {
	r, _ := m.Dims()
	var idx []int
	for i := 0; i < r; i++ {
		if m.At(i, col) != 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

func TestPiExactCounts(tst *testing.T) {
	spec := CausalSpec{
		J:                  1000,
		H2:                 []float64{0.3, 0.1},
		Pi:                 PiPerTrait([]float64{0.01, 0.05}),
		PiExact:            true,
		SporadicPleiotropy: true,
	}
	beta, err := SampleCausal(newRng(1), spec)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if n := len(nonZero(beta, 0)); n != 10 {
		tst.Errorf("Expected exactly 10 causal variants, got %d", n)
	}
	if n := len(nonZero(beta, 1)); n != 50 {
		tst.Errorf("Expected exactly 50 causal variants, got %d", n)
	}
}

func TestDisjointCausalSets(tst *testing.T) {
	spec := CausalSpec{
		J:       200,
		H2:      []float64{0.2, 0.2, 0.2},
		Pi:      PiScalar(0.2),
		PiExact: true,
	}
	beta, err := SampleCausal(newRng(2), spec)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	seen := make(map[int]int)
	for t := 0; t < 3; t++ {
		for _, j := range nonZero(beta, t) {
			if prev, ok := seen[j]; ok {
				tst.Errorf("Variant %d causal for traits %d and %d", j, prev, t)
			}
			seen[j] = t
		}
	}
}

func TestInsufficientVariants(tst *testing.T) {
	// 3 traits x 50 exclusive variants in a pool of 100
	spec := CausalSpec{
		J:       100,
		H2:      []float64{0.1, 0.1, 0.1},
		Pi:      PiScalar(0.5),
		PiExact: true,
	}
	_, err := SampleCausal(newRng(3), spec)
	if err == nil {
		tst.Fatal("Expected pool exhaustion error")
	}
	var ierr *InsufficientVariantsError
	if !errors.As(err, &ierr) {
		tst.Fatalf("Expected InsufficientVariantsError, got %v", err)
	}
	if ierr.Trait != 2 || ierr.Needed != 50 || ierr.Available != 0 {
		tst.Errorf("Unexpected error detail: %+v", ierr)
	}
}

func TestH2Exact(tst *testing.T) {
	spec := CausalSpec{
		J:                  500,
		H2:                 []float64{0.3},
		Pi:                 PiScalar(0.02),
		H2Exact:            true,
		SporadicPleiotropy: true,
	}
	beta, err := SampleCausal(newRng(4), spec)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	realized := 0.0
	for _, j := range nonZero(beta, 0) {
		realized += beta.At(j, 0) * beta.At(j, 0)
	}
	if d := math.Abs(realized - 0.3); d > smallDiff {
		tst.Errorf("Expected realized variance 0.3, got %v", realized)
	}
}

func TestMatrixPiIncompatibilities(tst *testing.T) {
	pi := mat.NewDense(10, 1, nil)
	for i := 0; i < 10; i++ {
		pi.Set(i, 0, 0.1)
	}
	spec := CausalSpec{
		J:       10,
		H2:      []float64{0.1},
		Pi:      PiMatrix(pi),
		PiExact: true,
	}
	var cerr *InvalidConfigurationError
	if _, err := SampleCausal(newRng(5), spec); !errors.As(err, &cerr) {
		tst.Errorf("Expected InvalidConfigurationError for matrix pi with pi_exact, got %v", err)
	}
	spec = CausalSpec{
		J:  10,
		H2: []float64{0.1},
		Pi: PiMatrix(pi),
	}
	if _, err := SampleCausal(newRng(5), spec); !errors.As(err, &cerr) {
		tst.Errorf("Expected InvalidConfigurationError for matrix pi without pleiotropy, got %v", err)
	}
}

func TestMatrixPiPattern(tst *testing.T) {
	// variants with probability 0 must never be causal, probability 1 always
	j := 50
	pi := mat.NewDense(j, 1, nil)
	for i := 0; i < j; i += 2 {
		pi.Set(i, 0, 1)
	}
	spec := CausalSpec{
		J:                  j,
		H2:                 []float64{0.2},
		Pi:                 PiMatrix(pi),
		SporadicPleiotropy: true,
	}
	beta, err := SampleCausal(newRng(6), spec)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	for i := 0; i < j; i++ {
		causal := beta.At(i, 0) != 0
		if i%2 == 0 && !causal {
			tst.Errorf("Variant %d has pi=1 but is not causal", i)
		}
		if i%2 == 1 && causal {
			tst.Errorf("Variant %d has pi=0 but is causal", i)
		}
	}
}

func TestCustomEffectFn(tst *testing.T) {
	// fixed-magnitude effects: |x| = sd for every causal variant
	fixedFn := func(rng *rand.Rand, n int, sd float64, ctx *Context) []float64 {
		out := make([]float64, n)
		for i := range out {
			if rng.Float64() < 0.5 {
				out[i] = -sd
			} else {
				out[i] = sd
			}
		}
		return out
	}
	spec := CausalSpec{
		J:                  100,
		H2:                 []float64{0.4},
		Pi:                 PiScalar(0.1),
		PiExact:            true,
		Fns:                []Fn{fixedFn},
		SporadicPleiotropy: true,
	}
	beta, err := SampleCausal(newRng(7), spec)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	want := math.Sqrt(0.4 / 10)
	for _, j := range nonZero(beta, 0) {
		if d := math.Abs(math.Abs(beta.At(j, 0)) - want); d > smallDiff {
			tst.Errorf("Expected magnitude %v, got %v", want, beta.At(j, 0))
		}
	}
}

func TestDeterministicSeed(tst *testing.T) {
	spec := CausalSpec{
		J:                  300,
		H2:                 []float64{0.3, 0.2},
		Pi:                 PiScalar(0.05),
		SporadicPleiotropy: true,
	}
	a, err := SampleCausal(newRng(11), spec)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	b, err := SampleCausal(newRng(11), spec)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if !mat.Equal(a, b) {
		tst.Error("Same seed produced different draws")
	}
}
