package sim

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jandvik/sumsim/ld"
)

// marginalize maps joint (causal) effects to expected marginal
// effects: within every LD block each trait column is multiplied by
// the block correlation matrix, so a variant's marginal effect is its
// own causal effect plus leakage from correlated neighbors. A nil
// block list means independent variants and returns a plain copy.
func marginalize(joint *mat.Dense, blocks *ld.BlockList) *mat.Dense {
	if blocks == nil {
		return mat.DenseCopyOf(joint)
	}
	j, m := joint.Dims()
	out := mat.NewDense(j, m, nil)
	for bi := 0; bi < blocks.NumBlocks(); bi++ {
		b, start := blocks.Block(bi)
		n := b.Size()
		x := make([]float64, n)
		y := make([]float64, n)
		for t := 0; t < m; t++ {
			for r := 0; r < n; r++ {
				x[r] = joint.At(start+r, t)
			}
			b.MulVec(y, x)
			for r := 0; r < n; r++ {
				out.Set(start+r, t, y[r])
			}
		}
	}
	return out
}

// drawNoise draws the JxM sampling noise on the standardized scale.
// The covariance between (variant a, trait i) and (variant b, trait j)
// is LD[a,b] * traitCov[i,j]: noise is drawn per block as F*Z*C^T with
// F the block's eigen factor, C a factor of the cross-trait noise
// covariance and Z standard normal.
func drawNoise(rng *rand.Rand, blocks *ld.BlockList, j int, traitFactor *mat.Dense) (*mat.Dense, error) {
	m, kc := traitFactor.Dims()
	std := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}

	out := mat.NewDense(j, m, nil)
	if blocks == nil {
		z := make([]float64, kc)
		for r := 0; r < j; r++ {
			for c := range z {
				z[c] = std.Rand()
			}
			for t := 0; t < m; t++ {
				s := 0.0
				for c := 0; c < kc; c++ {
					s += traitFactor.At(t, c) * z[c]
				}
				out.Set(r, t, s)
			}
		}
		return out, nil
	}

	for bi := 0; bi < blocks.NumBlocks(); bi++ {
		b, start := blocks.Block(bi)
		f, err := b.Factor()
		if err != nil {
			return nil, err
		}
		n, kb := f.Dims()
		z := mat.NewDense(kb, kc, nil)
		for r := 0; r < kb; r++ {
			for c := 0; c < kc; c++ {
				z.Set(r, c, std.Rand())
			}
		}
		var fz, noise mat.Dense
		fz.Mul(f, z)
		noise.Mul(&fz, traitFactor.T())
		for r := 0; r < n; r++ {
			for t := 0; t < m; t++ {
				out.Set(start+r, t, noise.At(r, t))
			}
		}
	}
	return out, nil
}

// factorSym returns a matrix C with C*C^T equal to s. Cholesky is used
// when s is positive definite; singular PSD matrices fall back to an
// eigen factor with slightly negative eigenvalues clamped to zero.
func factorSym(s *mat.SymDense) (*mat.Dense, error) {
	var ch mat.Cholesky
	if ch.Factorize(s) {
		var l mat.TriDense
		ch.LTo(&l)
		return mat.DenseCopyOf(&l), nil
	}
	var eig mat.EigenSym
	if !eig.Factorize(s, true) {
		return nil, fmt.Errorf("failed to factor %dx%d cross-trait noise covariance", s.SymmetricDim(), s.SymmetricDim())
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	n := s.SymmetricDim()
	f := mat.NewDense(n, n, nil)
	for c := 0; c < n; c++ {
		v := vals[c]
		if v < 0 {
			v = 0
		}
		sq := math.Sqrt(v)
		for r := 0; r < n; r++ {
			f.Set(r, c, vecs.At(r, c)*sq)
		}
	}
	return f, nil
}
