package sim

import "gonum.org/v1/gonum/mat"

// Result is the immutable output aggregate of one simulation run. All
// effect matrices are JxM (variants by traits). Direct, joint and
// marginal effects are on the standardized scale; BetaHat, SE and
// SEHat are on the per-allele scale when allele frequencies were
// supplied and on the standardized scale otherwise.
type Result struct {
	// TraitNames are the trait names in column order.
	TraitNames []string
	// DirectEffects holds standardized direct variant-to-trait
	// effects; zero entries are non-causal variants.
	DirectEffects *mat.Dense
	// JointEffects holds total causal effects, direct effects
	// propagated through the trait graph.
	JointEffects *mat.Dense
	// MarginalEffects holds expected marginal (GWAS) effects, joint
	// effects propagated through LD.
	MarginalEffects *mat.Dense
	// BetaHat holds the simulated effect estimates.
	BetaHat *mat.Dense
	// SE holds the true standard errors of BetaHat.
	SE *mat.Dense
	// SEHat holds simulated standard-error estimates; nil unless
	// EstS was requested.
	SEHat *mat.Dense

	// TotalEffects is the MxM total trait-to-trait effect matrix.
	TotalEffects *mat.Dense
	// SigmaG, SigmaE and TraitCorr describe the trait-level
	// covariance structure; R is the cross-trait sampling-noise
	// correlation.
	SigmaG    *mat.SymDense
	SigmaE    *mat.SymDense
	TraitCorr *mat.SymDense
	R         *mat.SymDense

	// RealizedH2 is the realized genetic variance per trait,
	// joint^T LD joint on the standardized scale.
	RealizedH2 []float64
	// AF holds the (tiled) allele frequencies, nil on the
	// standardized scale. Annotations are the tiled annotation
	// columns.
	AF          []float64
	Annotations map[string][]float64
	// NObs is the resolved per-trait sample size.
	NObs []float64
	// Seed is the seed the run was drawn with.
	Seed uint64
}
