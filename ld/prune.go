package ld

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// PruneOptions configures greedy LD clumping.
type PruneOptions struct {
	// R2Thresh is the squared-correlation threshold: a candidate is
	// kept only if its r^2 with every already-kept variant of the
	// same block is strictly below it.
	R2Thresh float64
	// PVals holds one p-value per variant of the full set. When nil
	// the priority order is a random permutation drawn from rng.
	PVals []float64
	// PValThresh restricts pruning to variants with
	// PVals[j] <= PValThresh. Zero means no restriction. Ignored
	// when PVals is nil.
	PValThresh float64
	// Indices restricts pruning to a candidate subset of global
	// variant indices; nil means all variants.
	Indices []int
}

// Prune performs greedy priority-ordered clumping: variants are
// visited by ascending p-value (or in seeded random order) and kept if
// they are below the r^2 threshold against everything kept so far in
// the same block. Variants in different blocks never exclude each
// other. The kept set is returned in ascending index order.
func Prune(rng *rand.Rand, list *BlockList, opts PruneOptions) ([]int, error) {
	if opts.R2Thresh <= 0 || opts.R2Thresh > 1 {
		return nil, fmt.Errorf("r^2 threshold out of (0, 1]: %v", opts.R2Thresh)
	}
	if opts.PVals != nil && len(opts.PVals) != list.Size() {
		return nil, fmt.Errorf("got %d p-values for %d variants", len(opts.PVals), list.Size())
	}

	cand := opts.Indices
	if cand == nil {
		cand = make([]int, list.Size())
		for i := range cand {
			cand[i] = i
		}
	} else {
		for _, j := range cand {
			if j < 0 || j >= list.Size() {
				return nil, fmt.Errorf("candidate index %d out of range [0, %d)", j, list.Size())
			}
		}
	}

	order := make([]int, len(cand))
	copy(order, cand)
	if opts.PVals == nil {
		rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
	} else {
		sort.SliceStable(order, func(a, b int) bool {
			if opts.PVals[order[a]] != opts.PVals[order[b]] {
				return opts.PVals[order[a]] < opts.PVals[order[b]]
			}
			return order[a] < order[b]
		})
	}

	keptByBlock := make(map[int][]int)
	var kept []int
	for _, j := range order {
		if opts.PVals != nil && opts.PValThresh > 0 && opts.PVals[j] > opts.PValThresh {
			continue
		}
		bi, off, err := list.BlockOf(j)
		if err != nil {
			return nil, err
		}
		block, _ := list.Block(bi)
		ok := true
		for _, o := range keptByBlock[bi] {
			r := block.At(off, o)
			if r*r >= opts.R2Thresh {
				ok = false
				break
			}
		}
		if ok {
			keptByBlock[bi] = append(keptByBlock[bi], off)
			kept = append(kept, j)
		}
	}
	sort.Ints(kept)
	return kept, nil
}
