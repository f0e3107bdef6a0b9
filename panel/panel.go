// Package panel loads reference LD blocks and allele-frequency vectors
// from .npy files. It is the thin data-loading collaborator in front
// of the simulation core; the core itself never touches files.
package panel

import (
	"fmt"

	"github.com/kshedden/gonpy"
	"github.com/op/go-logging"
	"gonum.org/v1/gonum/mat"

	"github.com/jandvik/sumsim/ld"
)

var log = logging.MustGetLogger("panel")

// readFloats reads a .npy file as float64 regardless of the stored
// width.
func readFloats(path string) (*gonpy.NpyReader, []float64, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %v", path, err)
	}
	switch r.Dtype {
	case "f8":
		data, err := r.GetFloat64()
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %v", path, err)
		}
		return r, data, nil
	case "f4":
		data32, err := r.GetFloat32()
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %v", path, err)
		}
		data := make([]float64, len(data32))
		for i, v := range data32 {
			data[i] = float64(v)
		}
		return r, data, nil
	}
	return nil, nil, fmt.Errorf("%s: unsupported dtype %s", path, r.Dtype)
}

// LoadBlock reads one square correlation matrix and wraps it as a
// dense LD block.
func LoadBlock(path string) (ld.Block, error) {
	r, data, err := readFloats(path)
	if err != nil {
		return nil, err
	}
	if len(r.Shape) != 2 || r.Shape[0] != r.Shape[1] {
		return nil, fmt.Errorf("%s: LD block must be a square matrix, got shape %v", path, r.Shape)
	}
	n := r.Shape[0]
	// the matrix is symmetric, so row/column-major layout reads the same
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, data[i*n+j])
		}
	}
	log.Debugf("loaded %dx%d LD block from %s", n, n, path)
	return ld.NewDense(s), nil
}

// LoadBlocks reads an ordered sequence of block files.
func LoadBlocks(paths []string) ([]ld.Block, error) {
	blocks := make([]ld.Block, 0, len(paths))
	total := 0
	for _, p := range paths {
		b, err := LoadBlock(p)
		if err != nil {
			return nil, err
		}
		total += b.Size()
		blocks = append(blocks, b)
	}
	log.Infof("loaded %d LD blocks covering %d variants", len(blocks), total)
	return blocks, nil
}

// LoadFrequencies reads a one-dimensional allele-frequency vector.
func LoadFrequencies(path string) ([]float64, error) {
	r, data, err := readFloats(path)
	if err != nil {
		return nil, err
	}
	if len(r.Shape) != 1 {
		return nil, fmt.Errorf("%s: allele frequencies must be a vector, got shape %v", path, r.Shape)
	}
	return data, nil
}
