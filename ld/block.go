// Package ld stores the block-diagonal linkage-disequilibrium
// structure and implements the queries built on it: joint-to-marginal
// propagation primitives, pruning, proxy search and sub-matrix
// extraction.
package ld

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Block is one symmetric positive semi-definite correlation block over
// a contiguous range of variants. Consumers never see the backing
// representation: they get the size, element access, a left-multiply
// and a noise factor F with F*F^T equal to the block.
type Block interface {
	// Size returns the number of variants in the block.
	Size() int
	// At returns the correlation of variants i and j (block-local
	// indices).
	At(i, j int) float64
	// MulVec writes the product of the block with x into dst. dst
	// and x must have length Size and may not alias.
	MulVec(dst, x []float64)
	// Extract returns the dense correlation submatrix over the
	// given block-local indices.
	Extract(idx []int) *mat.Dense
	// Factor returns a cached matrix F with F*F^T equal to the
	// block, used for correlated noise draws. F has Size rows; the
	// number of columns is the (possibly truncated) eigen rank.
	Factor() (*mat.Dense, error)
}

// DenseBlock is a Block backed by a dense symmetric matrix.
type DenseBlock struct {
	r      *mat.SymDense
	factor *mat.Dense
}

// NewDense wraps a dense symmetric correlation matrix.
func NewDense(r *mat.SymDense) *DenseBlock {
	return &DenseBlock{r: r}
}

func (b *DenseBlock) Size() int           { return b.r.SymmetricDim() }
func (b *DenseBlock) At(i, j int) float64 { return b.r.At(i, j) }

func (b *DenseBlock) MulVec(dst, x []float64) {
	n := b.Size()
	for i := 0; i < n; i++ {
		s := 0.0
		for j := 0; j < n; j++ {
			s += b.r.At(i, j) * x[j]
		}
		dst[i] = s
	}
}

func (b *DenseBlock) Extract(idx []int) *mat.Dense {
	return extractAt(b, idx)
}

func (b *DenseBlock) Factor() (*mat.Dense, error) {
	if b.factor == nil {
		f, err := eigenFactor(b.r)
		if err != nil {
			return nil, err
		}
		b.factor = f
	}
	return b.factor, nil
}

// SparseBlock is a Block backed by compressed sparse rows. Both
// triangles are stored so lookups and products stay symmetric.
type SparseBlock struct {
	n      int
	rowPtr []int
	colInd []int
	vals   []float64
	factor *mat.Dense
}

// Entry is one non-zero of a sparse correlation block. Either triangle
// may be given; the transposed element is filled in automatically.
type Entry struct {
	Row, Col int
	Val      float64
}

// NewSparse builds a sparse block of the given size from its non-zero
// entries. The unit diagonal must be part of the entries.
func NewSparse(n int, entries []Entry) (*SparseBlock, error) {
	type cell struct {
		row, col int
		val      float64
	}
	cells := make([]cell, 0, 2*len(entries))
	for _, e := range entries {
		if e.Row < 0 || e.Row >= n || e.Col < 0 || e.Col >= n {
			return nil, fmt.Errorf("sparse entry (%d, %d) out of range for block size %d", e.Row, e.Col, n)
		}
		cells = append(cells, cell{e.Row, e.Col, e.Val})
		if e.Row != e.Col {
			cells = append(cells, cell{e.Col, e.Row, e.Val})
		}
	}
	sort.Slice(cells, func(a, b int) bool {
		if cells[a].row != cells[b].row {
			return cells[a].row < cells[b].row
		}
		return cells[a].col < cells[b].col
	})
	b := &SparseBlock{
		n:      n,
		rowPtr: make([]int, n+1),
		colInd: make([]int, 0, len(cells)),
		vals:   make([]float64, 0, len(cells)),
	}
	for k, c := range cells {
		if k > 0 && cells[k-1].row == c.row && cells[k-1].col == c.col {
			return nil, fmt.Errorf("duplicate sparse entry (%d, %d)", c.row, c.col)
		}
		b.colInd = append(b.colInd, c.col)
		b.vals = append(b.vals, c.val)
		b.rowPtr[c.row+1]++
	}
	for i := 0; i < n; i++ {
		b.rowPtr[i+1] += b.rowPtr[i]
	}
	return b, nil
}

func (b *SparseBlock) Size() int { return b.n }

func (b *SparseBlock) At(i, j int) float64 {
	lo, hi := b.rowPtr[i], b.rowPtr[i+1]
	k := lo + sort.SearchInts(b.colInd[lo:hi], j)
	if k < hi && b.colInd[k] == j {
		return b.vals[k]
	}
	return 0
}

func (b *SparseBlock) MulVec(dst, x []float64) {
	for i := 0; i < b.n; i++ {
		s := 0.0
		for k := b.rowPtr[i]; k < b.rowPtr[i+1]; k++ {
			s += b.vals[k] * x[b.colInd[k]]
		}
		dst[i] = s
	}
}

func (b *SparseBlock) Extract(idx []int) *mat.Dense {
	return extractAt(b, idx)
}

func (b *SparseBlock) Factor() (*mat.Dense, error) {
	if b.factor == nil {
		s := mat.NewSymDense(b.n, nil)
		for i := 0; i < b.n; i++ {
			for k := b.rowPtr[i]; k < b.rowPtr[i+1]; k++ {
				if j := b.colInd[k]; j >= i {
					s.SetSym(i, j, b.vals[k])
				}
			}
		}
		f, err := eigenFactor(s)
		if err != nil {
			return nil, err
		}
		b.factor = f
	}
	return b.factor, nil
}

// EigenBlock is a Block backed by a (possibly truncated)
// eigen-decomposition R ~= V diag(values) V^T.
type EigenBlock struct {
	vectors *mat.Dense
	values  []float64
	factor  *mat.Dense
}

// NewEigen wraps an eigen-decomposed correlation block. vectors is
// n x k with one column per retained eigenvector, values the matching
// k eigenvalues.
func NewEigen(vectors *mat.Dense, values []float64) (*EigenBlock, error) {
	_, k := vectors.Dims()
	if k != len(values) {
		return nil, fmt.Errorf("got %d eigenvalues for %d eigenvectors", len(values), k)
	}
	for _, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("negative eigenvalue %v in LD block", v)
		}
	}
	return &EigenBlock{vectors: vectors, values: values}, nil
}

func (b *EigenBlock) Size() int {
	n, _ := b.vectors.Dims()
	return n
}

func (b *EigenBlock) At(i, j int) float64 {
	s := 0.0
	for k, v := range b.values {
		s += b.vectors.At(i, k) * v * b.vectors.At(j, k)
	}
	return s
}

func (b *EigenBlock) MulVec(dst, x []float64) {
	n, k := b.vectors.Dims()
	tmp := make([]float64, k)
	for c := 0; c < k; c++ {
		s := 0.0
		for r := 0; r < n; r++ {
			s += b.vectors.At(r, c) * x[r]
		}
		tmp[c] = s * b.values[c]
	}
	for r := 0; r < n; r++ {
		s := 0.0
		for c := 0; c < k; c++ {
			s += b.vectors.At(r, c) * tmp[c]
		}
		dst[r] = s
	}
}

func (b *EigenBlock) Extract(idx []int) *mat.Dense {
	return extractAt(b, idx)
}

func (b *EigenBlock) Factor() (*mat.Dense, error) {
	if b.factor == nil {
		n, k := b.vectors.Dims()
		f := mat.NewDense(n, k, nil)
		for c := 0; c < k; c++ {
			s := math.Sqrt(b.values[c])
			for r := 0; r < n; r++ {
				f.Set(r, c, b.vectors.At(r, c)*s)
			}
		}
		b.factor = f
	}
	return b.factor, nil
}

// extractAt assembles a dense submatrix through element access.
func extractAt(b Block, idx []int) *mat.Dense {
	out := mat.NewDense(len(idx), len(idx), nil)
	for a, i := range idx {
		for c, j := range idx {
			out.Set(a, c, b.At(i, j))
		}
	}
	return out
}

// eigenFactor returns F = V sqrt(D) for a symmetric PSD matrix, with
// slightly negative eigenvalues clamped to zero.
func eigenFactor(s *mat.SymDense) (*mat.Dense, error) {
	var eig mat.EigenSym
	if !eig.Factorize(s, true) {
		return nil, fmt.Errorf("eigendecomposition of %dx%d LD block failed", s.SymmetricDim(), s.SymmetricDim())
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
