package sat

import (
	"math/rand/v2"

	"github.com/samber/lo"
)

const clauseWidth = 3

// GenerateInstance builds a random fixed-width CNF instance from the given
// source, so a test run is reproducible from its seed. Each clause draws
// distinct variables with independent random signs.
func GenerateInstance(rng *rand.Rand, variables uint64, clauses int) SAT {
	width := clauseWidth
	if uint64(width) > variables {
		width = int(variables)
	}

	instance := SAT{
		Variables: variables,
		Clauses:   make([][]int64, clauses),
	}
	for i := range clauses {
		clause := make([]int64, 0, width)
		for _, variable := range rng.Perm(int(variables))[:width] {
			literal := int64(variable + 1)
			if rng.IntN(2) == 0 {
				literal = -literal
			}
			clause = append(clause, literal)
		}
		instance.Clauses[i] = clause
	}
	return instance
}

// AssertSolution reports whether the solution is a consistent model
// satisfying every clause of the instance.
func AssertSolution(instance SAT, solution Solution) bool {
	assigned := make(map[int64]bool, len(solution))
	for _, literal := range solution {
		if assigned[literal] || assigned[-literal] {
			return false
		}
		assigned[literal] = true
	}

	return lo.EveryBy(instance.Clauses, func(clause []int64) bool {
		return lo.SomeBy(clause, func(literal int64) bool { return assigned[literal] })
	})
}
