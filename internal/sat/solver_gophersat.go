package sat

import (
	"context"
	"fmt"

	gophersat "github.com/crillab/gophersat/solver"
)

type gophersatSolver struct{}

// NewGophersatSolver returns an in-process backend built on gophersat. It
// does not support mid-search cancellation; callers needing a hard deadline
// should prefer the gini backend.
func NewGophersatSolver() Solver {
	return &gophersatSolver{}
}

func (solver *gophersatSolver) Solve(ctx context.Context, instance SAT) (Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cnf := make([][]int, len(instance.Clauses))
	for i, clause := range instance.Clauses {
		cnf[i] = make([]int, len(clause))
		for j, literal := range clause {
			cnf[i][j] = int(literal)
		}
	}

	backend := gophersat.New(gophersat.ParseSlice(cnf))
	status := backend.Solve()

	switch status {
	case gophersat.Sat:
		model := backend.Model()
		solution := make(Solution, 0, instance.Variables)
		for variable := int64(1); variable <= int64(instance.Variables); variable++ {
			if int(variable) <= len(model) && model[variable-1] {
				solution = append(solution, variable)
			} else {
				solution = append(solution, -variable)
			}
		}
		return solution, nil
	case gophersat.Unsat:
		return nil, nil
	}

	return nil, fmt.Errorf("gophersat returned an indeterminate status")
}
