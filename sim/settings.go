// Package sim simulates multi-trait GWAS summary statistics from a
// causal model: a trait DAG, per-trait heritability, a causal-variant
// model and optional LD structure and allele frequencies.
package sim

import (
	"fmt"
	"math"

	"github.com/op/go-logging"
	"gonum.org/v1/gonum/mat"

	"github.com/jandvik/sumsim/effects"
	"github.com/jandvik/sumsim/ld"
	"github.com/jandvik/sumsim/noise"
	"github.com/jandvik/sumsim/trait"
)

var log = logging.MustGetLogger("sim")

// Settings is the full configuration surface of one simulation run.
// Use DefaultSettings for the documented defaults and set the required
// fields (J, H2, Pi, N).
type Settings struct {
	// J is the number of variants.
	J int
	// Direct is the MxM direct-effect matrix of the trait DAG; nil
	// means no trait-to-trait effects.
	Direct *mat.Dense
	// TraitNames optionally names the traits.
	TraitNames []string
	// H2 is the per-trait direct heritability; its length sets M.
	H2 []float64
	// Pi is the causal-probability specification.
	Pi effects.Pi
	// N is the sample-size / overlap specification.
	N noise.SampleSize
	// Blocks is the optional LD pattern; it is tiled to J variants.
	// Without it variants are independent and marginal effects equal
	// joint effects.
	Blocks []ld.Block
	// AF holds optional allele frequencies, aligned with the LD
	// pattern (or with the full variant set) and tiled like it. When
	// present, effect estimates and standard errors are returned on
	// the per-allele scale.
	AF []float64
	// Annotations are optional per-variant columns passed opaquely
	// to effect-size samplers, tiled like AF.
	Annotations map[string][]float64
	// ObsCorr and EnvCorr optionally specify the environment, as the
	// observed trait correlation or the environmental correlation.
	// At most one may be set.
	ObsCorr *mat.SymDense
	EnvCorr *mat.SymDense
	// EffectFns optionally overrides the effect-size distribution
	// per trait; nil entries keep the normal default.
	EffectFns []effects.Fn
	// PiExact draws exactly round(pi*J) causal variants per trait.
	PiExact bool
	// H2Exact rescales causal effects so each trait's realized
	// direct genetic variance matches H2 exactly. With sporadic
	// pleiotropy the cross-trait entries of Sigma_G remain
	// approximate; this mirrors the documented behavior of the
	// rescaling, which is applied per trait.
	H2Exact bool
	// SporadicPleiotropy allows causal-variant sets of different
	// traits to overlap (default true).
	SporadicPleiotropy bool
	// EstS additionally simulates an estimate of the standard error
	// instead of revealing the true value.
	EstS bool
	// Seed initializes the random generator.
	Seed uint64
}

// DefaultSettings returns Settings with the documented defaults.
func DefaultSettings() Settings {
	return Settings{SporadicPleiotropy: true}
}

// resolved is the canonical internal form of Settings: every
// polymorphic input broadened and validated before any sampling.
type resolved struct {
	j, m    int
	graph   *trait.Graph
	cov     *trait.Covariance
	overlap *noise.Overlap
	blocks  *ld.BlockList
	info    *effects.SnpInfo
}

func (s *Settings) resolve() (*resolved, error) {
	m := len(s.H2)
	if s.J <= 0 || m == 0 {
		return nil, &effects.InvalidConfigurationError{Reason: fmt.Sprintf("need positive dimensions, got J=%d, M=%d", s.J, m)}
	}

	direct := s.Direct
	if direct == nil {
		direct = mat.NewDense(m, m, nil)
	}
	graph, err := trait.NewGraph(direct, s.TraitNames)
	if err != nil {
		return nil, err
	}
	if graph.M() != m {
		return nil, &effects.InvalidConfigurationError{
			Reason: fmt.Sprintf("trait graph has %d traits but %d heritabilities were given", graph.M(), m)}
	}

	cov, err := trait.Resolve(graph, s.H2)
	if err != nil {
		return nil, err
	}
	if err = cov.ResolveEnvironment(s.ObsCorr, s.EnvCorr); err != nil {
		return nil, err
	}

	overlap, err := s.N.Resolve(m)
	if err != nil {
		return nil, err
	}

	rv := &resolved{j: s.J, m: m, graph: graph, cov: cov, overlap: overlap}

	if len(s.Blocks) > 0 {
		rv.blocks, err = ld.Build(s.Blocks, s.J)
		if err != nil {
			return nil, err
		}
	}

	if s.AF != nil || s.Annotations != nil {
		for i, f := range s.AF {
			if f <= 0 || f >= 1 {
				return nil, fmt.Errorf("allele frequency out of (0, 1) at variant %d: %v", i, f)
			}
		}
		info := &effects.SnpInfo{AF: s.AF, Annot: s.Annotations}
		rv.info, err = info.Tile(s.J)
		if err != nil {
			return nil, err
		}
	}
	return rv, nil
}

// seStd returns the per-trait standard errors on the standardized
// scale, 1/sqrt(N).
func (rv *resolved) seStd() []float64 {
	se := make([]float64, rv.m)
	for i, n := range rv.overlap.N {
		se[i] = 1 / math.Sqrt(n)
	}
	return se
}
