package sat

import (
	"fmt"
	"strings"
)

// Solution is a model of a satisfiable instance: one signed literal per
// variable, positive when the variable is assigned true.
type Solution []int64

// SAT is a propositional formula in conjunctive normal form. Clauses hold
// DIMACS-style literals: variable numbers start at 1 and a negative literal
// negates its variable.
type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

// ToDIMACS serializes the instance into the DIMACS-CNF format understood by
// external solver binaries.
func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}
