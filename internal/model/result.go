package model

// Reason classifies a scheduling failure.
type Reason int

const (
	// ReasonNone marks a successful result.
	ReasonNone Reason = iota
	// ReasonConfiguration: malformed input rejected before any search.
	ReasonConfiguration
	// ReasonInfeasible: the entire reachable space holds no legal complete
	// assignment under the current entities and constraints.
	ReasonInfeasible
	// ReasonBudgetExceeded: the attempt or time budget ran out while the
	// space was not exhausted; a larger budget might still succeed.
	ReasonBudgetExceeded
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonConfiguration:
		return "configuration-error"
	case ReasonInfeasible:
		return "infeasible"
	case ReasonBudgetExceeded:
		return "budget-exceeded"
	}
	return "unknown"
}

// Result is the terminal outcome of a scheduling run. Failures are values,
// never panics: a partial schedule is never returned as success.
type Result struct {
	// Assignments is the complete schedule, nil unless Reason is ReasonNone.
	Assignments []Assignment
	Reason      Reason
	// Diagnostic names the constraint or lesson that could not be
	// satisfied, when known.
	Diagnostic string
	// Attempts counts candidate commit operations (backtracking backend
	// only).
	Attempts uint64
}

// Success reports whether the run produced a complete schedule.
func (r Result) Success() bool {
	return r.Reason == ReasonNone
}

func success(assignments []Assignment, attempts uint64) Result {
	return Result{Assignments: assignments, Reason: ReasonNone, Attempts: attempts}
}

func failure(reason Reason, diagnostic string) Result {
	return Result{Reason: reason, Diagnostic: diagnostic}
}
