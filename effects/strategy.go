package effects

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Context carries the variant context for one effect-size draw:
// the causal variant indices (ascending, into the full variant set)
// and the per-variant metadata, if any.
type Context struct {
	Indices []int
	Info    *SnpInfo
}

// Fn draws n standardized effect-size magnitudes with target
// per-variant standard deviation sd. Implementations must satisfy
// mean(E[x^2]) == sd^2; this contract is a documented precondition and
// is not checked at runtime.
type Fn func(rng *rand.Rand, n int, sd float64, ctx *Context) []float64

// NormalFn is the default effect-size distribution: independent
// zero-mean normals with standard deviation sd.
func NormalFn(rng *rand.Rand, n int, sd float64, ctx *Context) []float64 {
	d := distuv.Normal{Mu: 0, Sigma: sd, Src: rng}
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Rand()
	}
	return out
}

// ByName resolves a named effect-size distribution. The empty string
// and "normal" select NormalFn.
func ByName(name string) (Fn, error) {
	switch name {
	case "", "normal":
		return NormalFn, nil
	}
	return nil, fmt.Errorf("unknown effect-size distribution: %s", name)
}
