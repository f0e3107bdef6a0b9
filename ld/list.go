package ld

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// BlockList is an ordered sequence of LD blocks forming a
// block-diagonal genome-wide correlation matrix. Correlation across
// block boundaries is exactly zero. A BlockList is immutable once
// built.
type BlockList struct {
	blocks []Block
	starts []int
	total  int
}

// Build assembles a BlockList from a block pattern. If targetJ is
// positive and differs from the pattern's native size, the pattern is
// repeated in tile-index order and the final block truncated so the
// list covers exactly targetJ variants. Truncated blocks are densified.
func Build(blocks []Block, targetJ int) (*BlockList, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("LD pattern has no blocks")
	}
	native := 0
	for i, b := range blocks {
		if b.Size() <= 0 {
			return nil, fmt.Errorf("LD block %d is empty", i)
		}
		native += b.Size()
	}
	if targetJ <= 0 {
		targetJ = native
	}

	l := &BlockList{}
	for l.total < targetJ {
		b := blocks[len(l.blocks)%len(blocks)]
		if rest := targetJ - l.total; b.Size() > rest {
			idx := make([]int, rest)
			for i := range idx {
				idx[i] = i
			}
			sub := b.Extract(idx)
			sym := mat.NewSymDense(rest, nil)
			for i := 0; i < rest; i++ {
				for j := i; j < rest; j++ {
					sym.SetSym(i, j, sub.At(i, j))
				}
			}
			b = NewDense(sym)
		}
		l.starts = append(l.starts, l.total)
		l.blocks = append(l.blocks, b)
		l.total += b.Size()
	}
	return l, nil
}

// Size returns the total variant count.
func (l *BlockList) Size() int { return l.total }

// NumBlocks returns the number of blocks after tiling.
func (l *BlockList) NumBlocks() int { return len(l.blocks) }

// Block returns block i and the global index of its first variant.
func (l *BlockList) Block(i int) (Block, int) { return l.blocks[i], l.starts[i] }

// BlockOf maps a global variant index to its block index and the
// block-local offset.
func (l *BlockList) BlockOf(j int) (int, int, error) {
	if j < 0 || j >= l.total {
		return 0, 0, fmt.Errorf("variant index %d out of range [0, %d)", j, l.total)
	}
	lo, hi := 0, len(l.starts)
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if l.starts[mid] <= j {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo, j - l.starts[lo], nil
}

// Corr returns the correlation of two variants by global index; pairs
// in different blocks have correlation exactly zero.
func (l *BlockList) Corr(a, b int) (float64, error) {
	ba, oa, err := l.BlockOf(a)
	if err != nil {
		return 0, err
	}
	bb, ob, err := l.BlockOf(b)
	if err != nil {
		return 0, err
	}
	if ba != bb {
		return 0, nil
	}
	return l.blocks[ba].At(oa, ob), nil
}

// Extract returns the correlation submatrix over an arbitrary set of
// global variant indices, zero-filled for cross-block pairs.
func (l *BlockList) Extract(indices []int) (*mat.Dense, error) {
	n := len(indices)
	bi := make([]int, n)
	off := make([]int, n)
	for k, j := range indices {
		b, o, err := l.BlockOf(j)
		if err != nil {
			return nil, err
		}
		bi[k], off[k] = b, o
	}
	out := mat.NewDense(n, n, nil)
	for a := 0; a < n; a++ {
		for c := a; c < n; c++ {
			v := 0.0
			if bi[a] == bi[c] {
				v = l.blocks[bi[a]].At(off[a], off[c])
			}
			out.Set(a, c, v)
			out.Set(c, a, v)
		}
	}
	return out, nil
}
