package effects

import "fmt"

// SnpInfo is per-variant metadata. AF holds allele frequencies; a nil
// AF signals standardized-scale output. Annot columns are arbitrary
// user-supplied annotations threaded opaquely to effect-size samplers.
type SnpInfo struct {
	AF    []float64
	Annot map[string][]float64
}

// Len returns the number of variants described, 0 for an empty info.
func (s *SnpInfo) Len() int {
	if s == nil {
		return 0
	}
	if s.AF != nil {
		return len(s.AF)
	}
	for _, col := range s.Annot {
		return len(col)
	}
	return 0
}

// Tile repeats the metadata to exactly j variants, mirroring the way
// an LD pattern is tiled to the requested variant count.
func (s *SnpInfo) Tile(j int) (*SnpInfo, error) {
	if s == nil {
		return nil, nil
	}
	n := s.Len()
	if n == 0 {
		return nil, fmt.Errorf("cannot tile empty variant metadata")
	}
	for name, col := range s.Annot {
		if len(col) != n {
			return nil, fmt.Errorf("annotation column %q has %d values for %d variants", name, len(col), n)
		}
	}
	if n == j {
		return s, nil
	}
	out := &SnpInfo{}
	if s.AF != nil {
		out.AF = tileFloats(s.AF, j)
	}
	if s.Annot != nil {
		out.Annot = make(map[string][]float64, len(s.Annot))
		for name, col := range s.Annot {
			out.Annot[name] = tileFloats(col, j)
		}
	}
	return out, nil
}

func tileFloats(vals []float64, j int) []float64 {
	out := make([]float64, j)
	for i := 0; i < j; i++ {
		out[i] = vals[i%len(vals)]
	}
	return out
}
