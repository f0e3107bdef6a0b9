package sim

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jandvik/sumsim/effects"
)

// seedStream separates the PCG stream constant from the user seed.
const seedStream = 0x9e3779b97f4a7c15

// Simulate runs one forward simulation and returns the full summary
// statistic aggregate. The run is deterministic given Settings.Seed.
func Simulate(s Settings) (*Result, error) {
	rv, err := s.resolve()
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(s.Seed, seedStream))

	log.Infof("Simulating %d variants x %d traits (LD: %v, frequencies: %v)",
		rv.j, rv.m, rv.blocks != nil, rv.info != nil && rv.info.AF != nil)

	direct, err := effects.SampleCausal(rng, effects.CausalSpec{
		J:                  rv.j,
		H2:                 s.H2,
		Pi:                 s.Pi,
		Fns:                s.EffectFns,
		PiExact:            s.PiExact,
		H2Exact:            s.H2Exact,
		SporadicPleiotropy: s.SporadicPleiotropy,
		Info:               rv.info,
	})
	if err != nil {
		return nil, err
	}

	// total causal effect of each variant on each trait: direct
	// effects propagated through the trait graph
	total := rv.graph.TotalEffects()
	withSelf := mat.DenseCopyOf(total)
	for i := 0; i < rv.m; i++ {
		withSelf.Set(i, i, withSelf.At(i, i)+1)
	}
	joint := mat.NewDense(rv.j, rv.m, nil)
	joint.Mul(direct, withSelf)

	marg := marginalize(joint, rv.blocks)

	r, err := rv.overlap.R(rv.cov.TraitCorr)
	if err != nil {
		return nil, err
	}

	// cross-trait noise covariance on the standardized scale
	seStd := rv.seStd()
	noiseCov := mat.NewSymDense(rv.m, nil)
	for i := 0; i < rv.m; i++ {
		for k := i; k < rv.m; k++ {
			noiseCov.SetSym(i, k, r.At(i, k)*seStd[i]*seStd[k])
		}
	}
	traitFactor, err := factorSym(noiseCov)
	if err != nil {
		return nil, err
	}
	noise, err := drawNoise(rng, rv.blocks, rv.j, traitFactor)
	if err != nil {
		return nil, err
	}

	betaHat := mat.NewDense(rv.j, rv.m, nil)
	betaHat.Add(marg, noise)

	se := mat.NewDense(rv.j, rv.m, nil)
	for a := 0; a < rv.j; a++ {
		for t := 0; t < rv.m; t++ {
			se.Set(a, t, seStd[t])
		}
	}

	var af []float64
	if rv.info != nil && rv.info.AF != nil {
		// per-allele scale: both estimate and standard error shrink
		// with the genotype standard deviation
		af = rv.info.AF
		for a := 0; a < rv.j; a++ {
			scale := 1 / math.Sqrt(2*af[a]*(1-af[a]))
			for t := 0; t < rv.m; t++ {
				betaHat.Set(a, t, betaHat.At(a, t)*scale)
				se.Set(a, t, se.At(a, t)*scale)
			}
		}
	}

	var seHat *mat.Dense
	if s.EstS {
		seHat = mat.NewDense(rv.j, rv.m, nil)
		for t := 0; t < rv.m; t++ {
			df := rv.overlap.N[t] - 1
			chi := distuv.ChiSquared{K: df, Src: rng}
			for a := 0; a < rv.j; a++ {
				seHat.Set(a, t, se.At(a, t)*math.Sqrt(chi.Rand()/df))
			}
		}
	}

	realized := make([]float64, rv.m)
	for t := 0; t < rv.m; t++ {
		for a := 0; a < rv.j; a++ {
			realized[t] += joint.At(a, t) * marg.At(a, t)
		}
	}

	var annot map[string][]float64
	if rv.info != nil {
		annot = rv.info.Annot
	}
	return &Result{
		TraitNames:      rv.graph.Names(),
		DirectEffects:   direct,
		JointEffects:    joint,
		MarginalEffects: marg,
		BetaHat:         betaHat,
		SE:              se,
		SEHat:           seHat,
		TotalEffects:    total,
		SigmaG:          rv.cov.SigmaG,
		SigmaE:          rv.cov.SigmaE,
		TraitCorr:       rv.cov.TraitCorr,
		R:               r,
		RealizedH2:      realized,
		AF:              af,
		Annotations:     annot,
		NObs:            rv.overlap.N,
		Seed:            s.Seed,
	}, nil
}
