package ld

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ProxyResult lists the proxies of a query variant ranked by
// descending squared correlation.
type ProxyResult struct {
	// Query is the global index of the query variant.
	Query int
	// Indices are the global indices of the proxies.
	Indices []int
	// Corr holds the correlation of each proxy with the query,
	// aligned with Indices.
	Corr []float64
	// R is the correlation submatrix over query plus proxies (query
	// first); nil unless requested.
	R *mat.Dense
}

// Proxy returns all variants in the query's block whose squared
// correlation with the query is at least r2min. Variants outside the
// block have correlation zero and are never proxies. With withSub the
// correlation submatrix over the query and its proxies is included.
func Proxy(list *BlockList, query int, r2min float64, withSub bool) (*ProxyResult, error) {
	if r2min <= 0 || r2min > 1 {
		return nil, fmt.Errorf("r^2 threshold out of (0, 1]: %v", r2min)
	}
	bi, off, err := list.BlockOf(query)
	if err != nil {
		return nil, err
	}
	block, start := list.Block(bi)

	res := &ProxyResult{Query: query}
	for o := 0; o < block.Size(); o++ {
		if o == off {
			continue
		}
		r := block.At(off, o)
		if r*r >= r2min {
			res.Indices = append(res.Indices, start+o)
			res.Corr = append(res.Corr, r)
		}
	}
	sort.Sort(byAbsCorr{res})

	if withSub {
		idx := append([]int{query}, res.Indices...)
		res.R, err = list.Extract(idx)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// byAbsCorr sorts a ProxyResult by descending squared correlation,
// breaking ties by ascending index.
type byAbsCorr struct{ r *ProxyResult }

func (s byAbsCorr) Len() int { return len(s.r.Indices) }
func (s byAbsCorr) Less(a, b int) bool {
	ra, rb := s.r.Corr[a]*s.r.Corr[a], s.r.Corr[b]*s.r.Corr[b]
	if ra != rb {
		return ra > rb
	}
	return s.r.Indices[a] < s.r.Indices[b]
}
func (s byAbsCorr) Swap(a, b int) {
	s.r.Indices[a], s.r.Indices[b] = s.r.Indices[b], s.r.Indices[a]
	s.r.Corr[a], s.r.Corr[b] = s.r.Corr[b], s.r.Corr[a]
}
