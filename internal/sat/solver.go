package sat

import "context"

// Outcomes shared by the backends.
const (
	satisfiable   = 1
	unsatisfiable = -1
)

// Solver decides the satisfiability of a SAT instance.
//
// Solve returns a Solution if the instance is satisfiable and nil if it is
// unsatisfiable; both are valid outcomes where the error shall be nil. A
// non-nil error means the search was cut short (cancellation, deadline, or a
// backend failure) and says nothing about satisfiability.
type Solver interface {
	Solve(ctx context.Context, instance SAT) (Solution, error)
}
