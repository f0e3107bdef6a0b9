package trait

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// psdTol is the relative eigenvalue tolerance for positive
// semi-definiteness checks: eigenvalues above -psdTol*max(1, |lambda|max)
// are treated as zero.
const psdTol = 1e-8

// Covariance holds the trait-level covariance structure implied by a
// resolved trait graph.
type Covariance struct {
	// SigmaG is the genetic covariance.
	SigmaG *mat.SymDense
	// SigmaE is the environmental covariance; nil until an
	// environment has been resolved.
	SigmaE *mat.SymDense
	// TraitCorr is SigmaG + SigmaE; nil until an environment has
	// been resolved.
	TraitCorr *mat.SymDense

	graph *Graph
	h2    []float64
}

// Resolve propagates per-trait direct genetic variance h2 through the
// trait graph and returns the genetic covariance:
// SigmaG = T'^T diag(h2) T' with T' = I + TotalEffects. The propagated
// per-trait genetic variance must not exceed 1 on the standardized
// scale.
func Resolve(g *Graph, h2 []float64) (*Covariance, error) {
	m := g.M()
	if len(h2) != m {
		return nil, fmt.Errorf("got %d heritabilities for %d traits", len(h2), m)
	}
	for i, h := range h2 {
		if h < 0 || h > 1 {
			return nil, fmt.Errorf("heritability of trait %s out of [0, 1]: %v", g.names[i], h)
		}
	}

	tp := g.totalWithSelf()
	d := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		d.Set(i, i, h2[i])
	}
	var td, prod mat.Dense
	td.Mul(tp.T(), d)
	prod.Mul(&td, tp)

	sigmaG := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			// symmetrize: prod is symmetric up to rounding
			sigmaG.SetSym(i, j, 0.5*(prod.At(i, j)+prod.At(j, i)))
		}
	}
	for i := 0; i < m; i++ {
		if sigmaG.At(i, i) > 1+psdTol {
			return nil, fmt.Errorf("genetic variance of trait %s exceeds 1 (%.4f): "+
				"heritabilities are too large for the trait graph", g.names[i], sigmaG.At(i, i))
		}
	}
	if min, ok := minEigen(sigmaG); !ok {
		return nil, fmt.Errorf("genetic covariance is not positive semi-definite (min eigenvalue %.3g)", min)
	}

	return &Covariance{SigmaG: sigmaG, graph: g, h2: h2}, nil
}

// ResolveEnvironment derives the environmental covariance SigmaE and
// the total trait correlation TraitCorr.
//
// If obsCorr is given, SigmaE = obsCorr - SigmaG and the call fails
// with *InfeasibleCorrelationError if the difference is not positive
// semi-definite. If envCorr is given instead, it is interpreted as the
// correlation of the environmental components: SigmaE has diagonal
// 1 - diag(SigmaG) and off-diagonal envCorr scaled to that diagonal.
// With neither, traits are environmentally independent. Supplying both
// is an error.
func (c *Covariance) ResolveEnvironment(obsCorr, envCorr *mat.SymDense) error {
	m := c.graph.M()
	if obsCorr != nil && envCorr != nil {
		return fmt.Errorf("only one of observed and environmental correlation may be supplied")
	}

	sigmaE := mat.NewSymDense(m, nil)
	switch {
	case obsCorr != nil:
		if n := obsCorr.SymmetricDim(); n != m {
			return fmt.Errorf("observed correlation is %dx%d for %d traits", n, n, m)
		}
		for i := 0; i < m; i++ {
			for j := i; j < m; j++ {
				sigmaE.SetSym(i, j, obsCorr.At(i, j)-c.SigmaG.At(i, j))
			}
		}
	case envCorr != nil:
		if n := envCorr.SymmetricDim(); n != m {
			return fmt.Errorf("environmental correlation is %dx%d for %d traits", n, n, m)
		}
		sd := make([]float64, m)
		for i := 0; i < m; i++ {
			v := 1 - c.SigmaG.At(i, i)
			if v < 0 {
				v = 0
			}
			sd[i] = math.Sqrt(v)
			sigmaE.SetSym(i, i, v)
		}
		for i := 0; i < m; i++ {
			for j := i + 1; j < m; j++ {
				sigmaE.SetSym(i, j, envCorr.At(i, j)*sd[i]*sd[j])
			}
		}
	default:
		for i := 0; i < m; i++ {
			sigmaE.SetSym(i, i, 1-c.SigmaG.At(i, i))
		}
	}

	if min, ok := minEigen(sigmaE); !ok {
		return &InfeasibleCorrelationError{Matrix: sigmaE, MinEigen: min}
	}

	corr := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			corr.SetSym(i, j, c.SigmaG.At(i, j)+sigmaE.At(i, j))
		}
	}
	c.SigmaE = sigmaE
	c.TraitCorr = corr
	return nil
}

// minEigen returns the smallest eigenvalue and whether the matrix is
// positive semi-definite under psdTol.
func minEigen(s *mat.SymDense) (float64, bool) {
	var eig mat.EigenSym
	if !eig.Factorize(s, false) {
		return math.NaN(), false
	}
	vals := eig.Values(nil)
	min, max := math.Inf(1), 0.0
	for _, v := range vals {
		if v < min {
			min = v
		}
		if a := math.Abs(v); a > max {
			max = a
		}
	}
	if max < 1 {
		max = 1
	}
	return min, min > -psdTol*max
}
