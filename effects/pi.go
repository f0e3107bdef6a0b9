package effects

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type piKind int

const (
	piScalar piKind = iota
	piPerTrait
	piMatrix
)

// Pi is a polymorphic causal-probability specification: a single
// probability for all variants and traits, one probability per trait,
// or a full JxM per-variant, per-trait matrix.
type Pi struct {
	kind     piKind
	scalar   float64
	perTrait []float64
	matrix   *mat.Dense
}

// PiScalar uses probability p for every variant and trait.
func PiScalar(p float64) Pi { return Pi{kind: piScalar, scalar: p} }

// PiPerTrait uses probability p[m] for every variant of trait m.
func PiPerTrait(p []float64) Pi { return Pi{kind: piPerTrait, perTrait: p} }

// PiMatrix uses the full JxM probability matrix. The matrix form is
// incompatible with exact-count sampling and with disabled sporadic
// pleiotropy.
func PiMatrix(m *mat.Dense) Pi { return Pi{kind: piMatrix, matrix: m} }

// IsMatrix reports whether the specification is the full-matrix form.
func (p Pi) IsMatrix() bool { return p.kind == piMatrix }

// Normalize broadens the specification to a canonical JxM probability
// matrix, validating dimensions and probability ranges.
func (p Pi) Normalize(j, m int) (*mat.Dense, error) {
	out := mat.NewDense(j, m, nil)
	switch p.kind {
	case piScalar:
		if p.scalar < 0 || p.scalar > 1 {
			return nil, fmt.Errorf("causal probability out of [0, 1]: %v", p.scalar)
		}
		for a := 0; a < j; a++ {
			for b := 0; b < m; b++ {
				out.Set(a, b, p.scalar)
			}
		}
	case piPerTrait:
		if len(p.perTrait) != m {
			return nil, fmt.Errorf("got %d causal probabilities for %d traits", len(p.perTrait), m)
		}
		for b, v := range p.perTrait {
			if v < 0 || v > 1 {
				return nil, fmt.Errorf("causal probability of trait %d out of [0, 1]: %v", b+1, v)
			}
			for a := 0; a < j; a++ {
				out.Set(a, b, v)
			}
		}
	case piMatrix:
		r, c := p.matrix.Dims()
		if r != j || c != m {
			return nil, fmt.Errorf("causal probability matrix is %dx%d, expected %dx%d", r, c, j, m)
		}
		for a := 0; a < j; a++ {
			for b := 0; b < m; b++ {
				v := p.matrix.At(a, b)
				if v < 0 || v > 1 {
					return nil, fmt.Errorf("causal probability out of [0, 1] at (%d, %d): %v", a, b, v)
				}
				out.Set(a, b, v)
			}
		}
	}
	return out, nil
}
