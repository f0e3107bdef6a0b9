// Package trait resolves a directed acyclic graph of linear effects
// between traits into total-effect and covariance matrices.
package trait

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Graph is a validated trait DAG. Entry (i, j) of the direct-effect
// matrix is the direct linear effect of trait i on trait j.
type Graph struct {
	direct *mat.Dense
	names  []string
	order  []int
	total  *mat.Dense
	m      int
}

// NewGraph validates a direct-effect matrix and returns a Graph. The
// matrix must be square with a zero diagonal and must not induce a
// directed cycle. names may be nil, in which case traits are named
// T1..TM.
func NewGraph(direct *mat.Dense, names []string) (*Graph, error) {
	r, c := direct.Dims()
	if r != c {
		return nil, fmt.Errorf("direct-effect matrix must be square, got %dx%d", r, c)
	}
	if names == nil {
		names = make([]string, r)
		for i := range names {
			names[i] = fmt.Sprintf("T%d", i+1)
		}
	}
	if len(names) != r {
		return nil, fmt.Errorf("got %d trait names for %d traits", len(names), r)
	}
	for i := 0; i < r; i++ {
		if direct.At(i, i) != 0 {
			return nil, fmt.Errorf("direct-effect matrix has non-zero diagonal at trait %s", names[i])
		}
	}

	g := &Graph{
		direct: mat.DenseCopyOf(direct),
		names:  names,
		m:      r,
	}
	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	g.order = order
	return g, nil
}

// M returns the number of traits.
func (g *Graph) M() int { return g.m }

// Names returns the trait names.
func (g *Graph) Names() []string { return g.names }

// Direct returns the direct-effect matrix.
func (g *Graph) Direct() *mat.Dense { return g.direct }

// topoSort runs Kahn's algorithm over the non-zero edges. Traits left
// with incoming edges after the sort form a cycle.
func (g *Graph) topoSort() ([]int, error) {
	indeg := make([]int, g.m)
	for i := 0; i < g.m; i++ {
		for j := 0; j < g.m; j++ {
			if g.direct.At(i, j) != 0 {
				indeg[j]++
			}
		}
	}
	queue := make([]int, 0, g.m)
	for i, d := range indeg {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	order := make([]int, 0, g.m)
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)
		for j := 0; j < g.m; j++ {
			if g.direct.At(v, j) != 0 {
				indeg[j]--
				if indeg[j] == 0 {
					queue = append(queue, j)
				}
			}
		}
	}
	if len(order) < g.m {
		seen := make([]bool, g.m)
		for _, v := range order {
			seen[v] = true
		}
		var cyclic []string
		for i, ok := range seen {
			if !ok {
				cyclic = append(cyclic, g.names[i])
			}
		}
		return nil, &CyclicGraphError{Traits: cyclic}
	}
	return order, nil
}

// TotalEffects returns the total-effect matrix: entry (i, j) is the sum
// over all directed paths from i to j of the products of edge weights,
// equal to (I-G)^-1 - I. The matrix is computed as the finite power
// series sum_k G^k, which terminates because a DAG's adjacency matrix
// is nilpotent. The result is cached.
func (g *Graph) TotalEffects() *mat.Dense {
	if g.total != nil {
		return g.total
	}
	total := mat.NewDense(g.m, g.m, nil)
	power := mat.DenseCopyOf(g.direct)
	for k := 1; k < g.m; k++ {
		total.Add(total, power)
		next := mat.NewDense(g.m, g.m, nil)
		next.Mul(power, g.direct)
		if isZero(next) {
			break
		}
		power = next
	}
	g.total = total
	return g.total
}

// totalWithSelf returns I + TotalEffects, i.e. (I-G)^-1.
func (g *Graph) totalWithSelf() *mat.Dense {
	t := mat.DenseCopyOf(g.TotalEffects())
	for i := 0; i < g.m; i++ {
		t.Set(i, i, t.At(i, i)+1)
	}
	return t
}

func isZero(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}
