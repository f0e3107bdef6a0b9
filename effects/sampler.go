// Package effects samples per-variant standardized direct effect
// sizes: causal-variant indicators (Bernoulli or exact-count, with or
// without cross-trait overlap) and effect magnitudes from pluggable
// distributions.
package effects

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/op/go-logging"
	"gonum.org/v1/gonum/mat"
)

var log = logging.MustGetLogger("effects")

// CausalSpec configures one draw of the JxM direct-effect matrix.
type CausalSpec struct {
	// J is the number of variants.
	J int
	// H2 is the per-trait heritability target; its length sets the
	// number of traits.
	H2 []float64
	// Pi is the causal-probability specification.
	Pi Pi
	// Fns holds optional per-trait effect-size distributions; nil
	// entries (or a nil slice) select the normal default.
	Fns []Fn
	// PiExact samples exactly round(pi_m*J) causal variants per
	// trait instead of independent Bernoulli draws.
	PiExact bool
	// H2Exact rescales each trait's column so the realized genetic
	// variance is exactly H2[m]. With overlapping causal variants
	// between traits the cross-trait covariance is not jointly
	// corrected, so off-diagonal Sigma_G stays approximate.
	H2Exact bool
	// SporadicPleiotropy allows causal-variant sets of different
	// traits to overlap. When false the sets are kept pairwise
	// disjoint by sequential exclusion.
	SporadicPleiotropy bool
	// Info is the optional variant metadata passed to effect-size
	// callbacks.
	Info *SnpInfo
}

// SampleCausal draws the JxM matrix of standardized direct (causal)
// effects. Zero entries are exactly zero and mark non-causal variants.
func SampleCausal(rng *rand.Rand, spec CausalSpec) (*mat.Dense, error) {
	m := len(spec.H2)
	if spec.J <= 0 || m == 0 {
		return nil, &InvalidConfigurationError{Reason: fmt.Sprintf("need positive dimensions, got J=%d, M=%d", spec.J, m)}
	}
	if spec.Pi.IsMatrix() && spec.PiExact {
		return nil, &InvalidConfigurationError{Reason: "matrix-form pi cannot be combined with exact-count sampling"}
	}
	if spec.Pi.IsMatrix() && !spec.SporadicPleiotropy {
		return nil, &InvalidConfigurationError{Reason: "matrix-form pi cannot be combined with disabled sporadic pleiotropy"}
	}
	if spec.Fns != nil && len(spec.Fns) != m {
		return nil, &InvalidConfigurationError{Reason: fmt.Sprintf("got %d effect-size functions for %d traits", len(spec.Fns), m)}
	}
	piMat, err := spec.Pi.Normalize(spec.J, m)
	if err != nil {
		return nil, &InvalidConfigurationError{Reason: err.Error()}
	}

	out := mat.NewDense(spec.J, m, nil)
	pool := make([]int, spec.J)
	for i := range pool {
		pool[i] = i
	}

	for t := 0; t < m; t++ {
		var idx []int
		var expected float64
		if spec.PiExact {
			// exactly round(pi_m*J) causal variants, regardless of
			// how much of the pool earlier traits consumed
			count := int(math.Round(fullColSum(piMat, t)))
			if count > len(pool) {
				return nil, &InsufficientVariantsError{Trait: t, Needed: count, Available: len(pool)}
			}
			idx = chooseExact(rng, pool, count)
			expected = float64(count)
		} else {
			for _, j := range pool {
				if rng.Float64() < piMat.At(j, t) {
					idx = append(idx, j)
				}
			}
			expected = colSum(piMat, t, pool)
		}

		if !spec.SporadicPleiotropy {
			pool = exclude(pool, idx)
		}

		if len(idx) == 0 {
			if spec.H2[t] > 0 {
				log.Warningf("trait %d: no causal variants drawn, realized heritability is 0 (target %v)", t+1, spec.H2[t])
			}
			continue
		}

		sd := 0.0
		if expected > 0 {
			sd = math.Sqrt(spec.H2[t] / expected)
		}
		fn := NormalFn
		if spec.Fns != nil && spec.Fns[t] != nil {
			fn = spec.Fns[t]
		}
		vals := fn(rng, len(idx), sd, &Context{Indices: idx, Info: spec.Info})
		if len(vals) != len(idx) {
			return nil, fmt.Errorf("effect-size function for trait %d returned %d values for %d variants", t+1, len(vals), len(idx))
		}

		if spec.H2Exact {
			realized := 0.0
			for _, v := range vals {
				realized += v * v
			}
			if realized > 0 {
				scale := math.Sqrt(spec.H2[t] / realized)
				for k := range vals {
					vals[k] *= scale
				}
			}
		}

		for k, j := range idx {
			out.Set(j, t, vals[k])
		}
	}
	return out, nil
}

// fullColSum sums column t of pi over all variants.
func fullColSum(pi *mat.Dense, t int) float64 {
	j, _ := pi.Dims()
	s := 0.0
	for i := 0; i < j; i++ {
		s += pi.At(i, t)
	}
	return s
}

// colSum sums column t of pi over the given variant pool.
func colSum(pi *mat.Dense, t int, pool []int) float64 {
	s := 0.0
	for _, j := range pool {
		s += pi.At(j, t)
	}
	return s
}

// chooseExact picks count indices from pool uniformly at random
// without replacement, returned in ascending order.
func chooseExact(rng *rand.Rand, pool []int, count int) []int {
	perm := rng.Perm(len(pool))
	idx := make([]int, count)
	for i := 0; i < count; i++ {
		idx[i] = pool[perm[i]]
	}
	sort.Ints(idx)
	return idx
}

// exclude removes the chosen indices from the eligible pool.
func exclude(pool, chosen []int) []int {
	drop := make(map[int]bool, len(chosen))
	for _, j := range chosen {
		drop[j] = true
	}
	out := pool[:0]
	for _, j := range pool {
		if !drop[j] {
			out = append(out, j)
		}
	}
	return out
}
