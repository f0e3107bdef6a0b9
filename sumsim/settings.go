package main

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/jandvik/sumsim/effects"
	"github.com/jandvik/sumsim/noise"
	"github.com/jandvik/sumsim/sim"
)

// parseFloats parses a comma-separated list of numbers.
func parseFloats(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	vs := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as a number", f)
		}
		vs[i] = v
	}
	return vs, nil
}

// parseTriple parses an "i:j:value" specification with 1-based trait
// indices, as used by -edge and -overlap.
func parseTriple(s string, m int) (i, j int, v float64, err error) {
	fields := strings.Split(s, ":")
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("expected i:j:value, got %q", s)
	}
	i, err = strconv.Atoi(fields[0])
	if err == nil {
		j, err = strconv.Atoi(fields[1])
	}
	if err == nil {
		v, err = strconv.ParseFloat(fields[2], 64)
	}
	if err != nil {
		return 0, 0, 0, fmt.Errorf("cannot parse %q as i:j:value", s)
	}
	if i < 1 || i > m || j < 1 || j > m {
		return 0, 0, 0, fmt.Errorf("trait index out of range in %q (have %d traits)", s, m)
	}
	return i - 1, j - 1, v, nil
}

// buildSettings translates command-line flags into sim.Settings.
func buildSettings() (sim.Settings, error) {
	s := sim.DefaultSettings()
	s.J = *nVariants
	s.Seed = uint64(*seed)
	s.PiExact = *piExact
	s.H2Exact = *h2Exact
	s.SporadicPleiotropy = !*noPleiotropy
	s.EstS = *estS

	var err error
	s.H2, err = parseFloats(*h2Str)
	if err != nil {
		return s, fmt.Errorf("-h2: %v", err)
	}
	m := len(s.H2)

	pis, err := parseFloats(*piStr)
	if err != nil {
		return s, fmt.Errorf("-pi: %v", err)
	}
	switch len(pis) {
	case 1:
		s.Pi = effects.PiScalar(pis[0])
	case m:
		s.Pi = effects.PiPerTrait(pis)
	default:
		return s, fmt.Errorf("-pi: got %d values for %d traits", len(pis), m)
	}

	ns, err := parseFloats(*nStr)
	if err != nil {
		return s, fmt.Errorf("-n: %v", err)
	}
	if len(*overlaps) > 0 {
		nm := mat.NewDense(m, m, nil)
		for i := 0; i < m; i++ {
			switch len(ns) {
			case 1:
				nm.Set(i, i, ns[0])
			case m:
				nm.Set(i, i, ns[i])
			default:
				return s, fmt.Errorf("-n: got %d values for %d traits", len(ns), m)
			}
		}
		for _, o := range *overlaps {
			i, j, v, err := parseTriple(o, m)
			if err != nil {
				return s, fmt.Errorf("-overlap: %v", err)
			}
			nm.Set(i, j, v)
			nm.Set(j, i, v)
		}
		s.N = noise.NMatrix(nm)
	} else {
		switch len(ns) {
		case 1:
			s.N = noise.NScalar(ns[0])
		case m:
			s.N = noise.NPerTrait(ns)
		default:
			return s, fmt.Errorf("-n: got %d values for %d traits", len(ns), m)
		}
	}

	if len(*edges) > 0 {
		direct := mat.NewDense(m, m, nil)
		for _, e := range *edges {
			src, dst, w, err := parseTriple(e, m)
			if err != nil {
				return s, fmt.Errorf("-edge: %v", err)
			}
			direct.Set(src, dst, w)
		}
		s.Direct = direct
	}
	return s, nil
}
