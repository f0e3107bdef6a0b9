package trait

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// CyclicGraphError is returned when the direct-effect matrix induces a
// directed cycle. Traits lists the trait names that could not be placed
// in a topological order.
type CyclicGraphError struct {
	Traits []string
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("trait graph contains a cycle involving {%s}",
		strings.Join(e.Traits, ", "))
}

// InfeasibleCorrelationError is returned when a requested observational
// correlation minus the genetic covariance is not positive
// semi-definite. Matrix holds the offending residual matrix for
// diagnosis, MinEigen its smallest eigenvalue.
type InfeasibleCorrelationError struct {
	Matrix   *mat.SymDense
	MinEigen float64
}

func (e *InfeasibleCorrelationError) Error() string {
	return fmt.Sprintf("environmental covariance is not positive semi-definite (min eigenvalue %.3g): "+
		"requested trait correlation is infeasible under the genetic model", e.MinEigen)
}
