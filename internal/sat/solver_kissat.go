package sat

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const kissatPath = "kissat"

type kissatSolver struct{}

// NewKissatSolver returns a backend that shells out to a kissat binary on
// PATH. Kept for parity runs against the in-process backends.
func NewKissatSolver() Solver {
	return &kissatSolver{}
}

func (solver *kissatSolver) Solve(ctx context.Context, instance SAT) (Solution, error) {
	dimacs := instance.ToDIMACS() // Transform SAT into DIMACS-CNF string format

	cmd := exec.CommandContext(ctx, kissatPath, "-q", "--relaxed")
	cmd.Stdin = strings.NewReader(dimacs) // Feed dimacs into kissat's standard input

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	// Exit-code of 10 stands for satisfiable and exit-code 20 stands for unsatisfiable
	if err != nil && cmd.ProcessState.ExitCode() != 10 && cmd.ProcessState.ExitCode() != 20 {
		return nil, fmt.Errorf("an error occurred during kissat execution: %v : %v", err.Error(), stderr.String())
	} else if cmd.ProcessState.ExitCode() == 20 {
		return nil, nil
	}

	return parseSolution(stdOut.String())
}

// parseSolution extracts the model from the "v" lines of a DIMACS solver's
// output.
func parseSolution(solverOutput string) (Solution, error) {
	valueLines := lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
		return len(line) > 0 && line[0] == 'v'
	})
	if len(valueLines) == 0 {
		return nil, fmt.Errorf("solver output carries no value lines")
	}

	var solution Solution
	for _, line := range valueLines {
		for _, field := range strings.Fields(line[1:]) {
			literal, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid literal %q in solver output: %w", field, err)
			}
			if literal == 0 { // Trailing zero terminates the model
				return solution, nil
			}
			solution = append(solution, literal)
		}
	}

	return solution, nil
}
