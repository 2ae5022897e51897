package sat

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

type giniSolver struct{}

// NewGiniSolver returns an in-process backend built on the gini CDCL solver.
// It is the default backend: no external binary, and it honors context
// deadlines by stopping the search.
func NewGiniSolver() Solver {
	return &giniSolver{}
}

func (solver *giniSolver) Solve(ctx context.Context, instance SAT) (Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := gini.NewVc(int(instance.Variables), len(instance.Clauses))
	for _, clause := range instance.Clauses {
		for _, literal := range clause {
			g.Add(z.Dimacs2Lit(int(literal)))
		}
		g.Add(z.LitNull)
	}

	outcome := 0
	if deadline, ok := ctx.Deadline(); ok {
		outcome = g.GoSolve().Try(time.Until(deadline))
	} else {
		outcome = g.Solve()
	}

	switch outcome {
	case satisfiable:
		solution := make(Solution, 0, instance.Variables)
		for variable := int64(1); variable <= int64(instance.Variables); variable++ {
			if g.Value(z.Dimacs2Lit(int(variable))) {
				solution = append(solution, variable)
			} else {
				solution = append(solution, -variable)
			}
		}
		return solution, nil
	case unsatisfiable:
		return nil, nil
	}

	return nil, context.DeadlineExceeded
}
