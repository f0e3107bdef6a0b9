// Package noise resolves GWAS sample-size and sample-overlap
// specifications into the cross-trait correlation of effect-estimate
// sampling noise.
package noise

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

type nKind int

const (
	nScalar nKind = iota
	nPerTrait
	nMatrix
	nTable
)

// Group is one row of the tabular sample-size form: N samples shared
// by exactly the listed traits (zero-based indices). The tabular form
// is strictly more expressive than the matrix form for more than two
// traits.
type Group struct {
	Traits []int
	N      float64
}

// SampleSize is a polymorphic sample-size specification: one size for
// all traits (no overlap), one size per trait (no overlap), an MxM
// matrix with per-study sizes on the diagonal and pairwise overlap
// counts off it, or a table of trait subsets sharing samples.
type SampleSize struct {
	kind     nKind
	scalar   float64
	perTrait []float64
	matrix   *mat.Dense
	table    []Group
}

// NScalar uses sample size n for every trait, with no overlap.
func NScalar(n float64) SampleSize { return SampleSize{kind: nScalar, scalar: n} }

// NPerTrait uses per-trait sample sizes, with no overlap.
func NPerTrait(ns []float64) SampleSize { return SampleSize{kind: nPerTrait, perTrait: ns} }

// NMatrix uses a full MxM specification: diagonal entries are
// per-study sample sizes, off-diagonal entries pairwise overlap
// counts.
func NMatrix(m *mat.Dense) SampleSize { return SampleSize{kind: nMatrix, matrix: m} }

// NTable uses the tabular form.
func NTable(groups []Group) SampleSize { return SampleSize{kind: nTable, table: groups} }

// Overlap is the canonical resolved form: per-trait totals and the
// pairwise shared-sample counts.
type Overlap struct {
	N      []float64
	Shared *mat.SymDense
}

// Resolve broadens the specification for m traits and validates it:
// positive per-trait sizes, symmetric overlap, and pairwise overlap no
// larger than either study.
func (s SampleSize) Resolve(m int) (*Overlap, error) {
	o := &Overlap{
		N:      make([]float64, m),
		Shared: mat.NewSymDense(m, nil),
	}
	switch s.kind {
	case nScalar:
		for i := range o.N {
			o.N[i] = s.scalar
		}
	case nPerTrait:
		if len(s.perTrait) != m {
			return nil, fmt.Errorf("got %d sample sizes for %d traits", len(s.perTrait), m)
		}
		copy(o.N, s.perTrait)
	case nMatrix:
		r, c := s.matrix.Dims()
		if r != m || c != m {
			return nil, fmt.Errorf("sample-size matrix is %dx%d for %d traits", r, c, m)
		}
		for i := 0; i < m; i++ {
			o.N[i] = s.matrix.At(i, i)
			for j := i + 1; j < m; j++ {
				if s.matrix.At(i, j) != s.matrix.At(j, i) {
					return nil, fmt.Errorf("sample-size matrix is not symmetric at (%d, %d)", i, j)
				}
				o.Shared.SetSym(i, j, s.matrix.At(i, j))
			}
		}
	case nTable:
		for k, g := range s.table {
			if g.N <= 0 {
				return nil, fmt.Errorf("sample-size table row %d has non-positive count %v", k, g.N)
			}
			if len(g.Traits) == 0 {
				return nil, fmt.Errorf("sample-size table row %d lists no traits", k)
			}
			for _, t := range g.Traits {
				if t < 0 || t >= m {
					return nil, fmt.Errorf("sample-size table row %d references trait %d of %d", k, t, m)
				}
			}
			for a, ti := range g.Traits {
				o.N[ti] += g.N
				for _, tj := range g.Traits[a+1:] {
					if ti == tj {
						return nil, fmt.Errorf("sample-size table row %d lists trait %d twice", k, ti)
					}
					lo, hi := ti, tj
					if lo > hi {
						lo, hi = hi, lo
					}
					o.Shared.SetSym(lo, hi, o.Shared.At(lo, hi)+g.N)
				}
			}
		}
	}

	for i := 0; i < m; i++ {
		if o.N[i] <= 0 {
			return nil, fmt.Errorf("trait %d has non-positive sample size %v", i+1, o.N[i])
		}
		for j := i + 1; j < m; j++ {
			if ov := o.Shared.At(i, j); ov < 0 || ov > math.Min(o.N[i], o.N[j]) {
				return nil, fmt.Errorf("overlap of traits %d and %d (%v) exceeds the smaller study (%v)",
					i+1, j+1, ov, math.Min(o.N[i], o.N[j]))
			}
		}
	}
	return o, nil
}

// R computes the cross-trait correlation of sampling noise:
// R[i,j] = TraitCorr[i,j] * N_overlap[i,j] / sqrt(N[i]*N[j]) with a
// unit diagonal. This is the correlation of the noise in beta_hat, not
// of the traits themselves.
func (o *Overlap) R(traitCorr *mat.SymDense) (*mat.SymDense, error) {
	m := len(o.N)
	if n := traitCorr.SymmetricDim(); n != m {
		return nil, fmt.Errorf("trait correlation is %dx%d for %d traits", n, n, m)
	}
	r := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		r.SetSym(i, i, 1)
		for j := i + 1; j < m; j++ {
			r.SetSym(i, j, traitCorr.At(i, j)*o.Shared.At(i, j)/math.Sqrt(o.N[i]*o.N[j]))
		}
	}
	return r, nil
}
