package noise

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const smallDiff = 1e-12

func TestNoOverlapIdentityR(tst *testing.T) {
	// diagonal sample-size matrix: R is identity regardless of the
	// trait correlation
	n := mat.NewDense(2, 2, []float64{10000, 0, 0, 20000})
	o, err := NMatrix(n).Resolve(2)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	corr := mat.NewSymDense(2, []float64{1, 0.8, 0.8, 1})
	r, err := o.R(corr)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	want := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	if !mat.EqualApprox(r, want, smallDiff) {
		tst.Errorf("Expected identity R, got %v", mat.Formatted(r))
	}
}

func TestScalarAndVectorForms(tst *testing.T) {
	o, err := NScalar(5000).Resolve(3)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	for i, n := range o.N {
		if n != 5000 {
			tst.Errorf("N[%d] = %v, expected 5000", i, n)
		}
	}
	o, err = NPerTrait([]float64{100, 200, 300}).Resolve(3)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if o.N[2] != 300 || o.Shared.At(0, 1) != 0 {
		tst.Error("Vector form resolved incorrectly")
	}
}

func TestFullOverlap(tst *testing.T) {
	n := mat.NewDense(2, 2, []float64{10000, 10000, 10000, 10000})
	o, err := NMatrix(n).Resolve(2)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	corr := mat.NewSymDense(2, []float64{1, 0.6, 0.6, 1})
	r, err := o.R(corr)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	// complete overlap: noise correlation equals trait correlation
	if d := math.Abs(r.At(0, 1) - 0.6); d > smallDiff {
		tst.Errorf("R[0,1] = %v, expected 0.6", r.At(0, 1))
	}
}

func TestTableMatchesMatrix(tst *testing.T) {
	// 3 traits: 1000 samples shared by all, 500 extra for traits 1&2,
	// 250 extra for trait 3 alone
	table := NTable([]Group{
		{Traits: []int{0, 1, 2}, N: 1000},
		{Traits: []int{0, 1}, N: 500},
		{Traits: []int{2}, N: 250},
	})
	ot, err := table.Resolve(3)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	m := mat.NewDense(3, 3, []float64{
		1500, 1500, 1000,
		1500, 1500, 1000,
		1000, 1000, 1250,
	})
	om, err := NMatrix(m).Resolve(3)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	for i := 0; i < 3; i++ {
		if ot.N[i] != om.N[i] {
			tst.Errorf("N[%d]: table %v, matrix %v", i, ot.N[i], om.N[i])
		}
		for j := i + 1; j < 3; j++ {
			if ot.Shared.At(i, j) != om.Shared.At(i, j) {
				tst.Errorf("Shared[%d,%d]: table %v, matrix %v", i, j, ot.Shared.At(i, j), om.Shared.At(i, j))
			}
		}
	}
}

func TestOverlapValidation(tst *testing.T) {
	// overlap larger than the smaller study
	n := mat.NewDense(2, 2, []float64{100, 150, 150, 200})
	if _, err := NMatrix(n).Resolve(2); err == nil {
		tst.Error("Expected error for overlap exceeding study size")
	}
	// asymmetric matrix
	n = mat.NewDense(2, 2, []float64{100, 10, 20, 200})
	if _, err := NMatrix(n).Resolve(2); err == nil {
		tst.Error("Expected error for asymmetric matrix")
	}
	// zero sample size
	if _, err := NPerTrait([]float64{100, 0}).Resolve(2); err == nil {
		tst.Error("Expected error for zero sample size")
	}
}
