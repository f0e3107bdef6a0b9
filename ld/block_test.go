package ld

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const smallDiff = 1e-10

// ar1Sym builds an AR(1)-style correlation matrix with parameter rho.
func ar1Sym(n int, rho float64) *mat.SymDense {
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, math.Pow(rho, float64(j-i)))
		}
	}
	return s
}

// sparseFrom converts a symmetric matrix to sparse entries (upper
// triangle).
func sparseFrom(s *mat.SymDense) []Entry {
	n := s.SymmetricDim()
	var entries []Entry
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if v := s.At(i, j); v != 0 {
				entries = append(entries, Entry{Row: i, Col: j, Val: v})
			}
		}
	}
	return entries
}

// eigenFrom builds an EigenBlock from a full decomposition of s.
func eigenFrom(tst *testing.T, s *mat.SymDense) *EigenBlock {
	var eig mat.EigenSym
	if !eig.Factorize(s, true) {
		tst.Fatal("eigendecomposition failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	b, err := NewEigen(&vecs, eig.Values(nil))
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	return b
}

func TestBackingsAgree(tst *testing.T) {
	s := ar1Sym(6, 0.7)
	dense := NewDense(s)
	sparse, err := NewSparse(6, sparseFrom(s))
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	eigen := eigenFrom(tst, s)

	x := []float64{1, -2, 0.5, 3, -1, 0.25}
	want := make([]float64, 6)
	dense.MulVec(want, x)

	for name, b := range map[string]Block{"sparse": sparse, "eigen": eigen} {
		if b.Size() != 6 {
			tst.Errorf("%s: wrong size %d", name, b.Size())
		}
		for i := 0; i < 6; i++ {
			for j := 0; j < 6; j++ {
				if d := math.Abs(b.At(i, j) - s.At(i, j)); d > smallDiff {
					tst.Errorf("%s: At(%d,%d) = %v, expected %v", name, i, j, b.At(i, j), s.At(i, j))
				}
			}
		}
		got := make([]float64, 6)
		b.MulVec(got, x)
		for i := range got {
			if d := math.Abs(got[i] - want[i]); d > smallDiff {
				tst.Errorf("%s: MulVec[%d] = %v, expected %v", name, i, got[i], want[i])
			}
		}
	}
}

func TestFactorReproducesBlock(tst *testing.T) {
	s := ar1Sym(5, 0.6)
	for name, b := range map[string]Block{
		"dense": NewDense(s),
		"eigen": eigenFrom(tst, s),
	} {
		f, err := b.Factor()
		if err != nil {
			tst.Fatalf("%s: %v", name, err)
		}
		var prod mat.Dense
		prod.Mul(f, f.T())
		for i := 0; i < 5; i++ {
			for j := 0; j < 5; j++ {
				if d := math.Abs(prod.At(i, j) - s.At(i, j)); d > smallDiff {
					tst.Errorf("%s: F*F^T(%d,%d) = %v, expected %v", name, i, j, prod.At(i, j), s.At(i, j))
				}
			}
		}
	}
}

func TestSparseZeroLookup(tst *testing.T) {
	b, err := NewSparse(3, []Entry{
		{0, 0, 1}, {1, 1, 1}, {2, 2, 1}, {0, 1, 0.4},
	})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if b.At(0, 2) != 0 || b.At(2, 0) != 0 {
		tst.Error("Expected zero for absent entries")
	}
	if b.At(1, 0) != 0.4 {
		tst.Error("Expected symmetric lookup of upper-triangle entry")
	}
}

func TestExtractSubmatrix(tst *testing.T) {
	s := ar1Sym(5, 0.5)
	sub := NewDense(s).Extract([]int{0, 2, 4})
	want := [][2]int{{0, 0}, {0, 2}, {0, 4}}
	for k, p := range want {
		if d := math.Abs(sub.At(0, k) - s.At(p[0], p[1])); d > smallDiff {
			tst.Errorf("Extract(0,%d) = %v, expected %v", k, sub.At(0, k), s.At(p[0], p[1]))
		}
	}
}
