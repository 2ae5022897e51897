package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hokkyo/timetable/internal/model"
	"github.com/hokkyo/timetable/internal/sat"
)

// Exit codes follow the SAT competition convention: 10 for a solved
// instance, 20 for a proven-infeasible one.
const (
	exitSolved       = 10
	exitUnverifiable = 15
	exitInfeasible   = 20
	exitBudget       = 25
)

var days = map[int]string{
	0: "Monday",
	1: "Tuesday",
	2: "Wednesday",
	3: "Thursday",
	4: "Friday",
	5: "Saturday",
	6: "Sunday",
}

var (
	validSchedulers = []string{"sat", "backtrack"}
	validSolvers    = []string{"gini", "gophersat", "kissat"}
	solvers         = map[string]func() sat.Solver{
		"gini":      sat.NewGiniSolver,
		"gophersat": sat.NewGophersatSolver,
		"kissat":    sat.NewKissatSolver,
	}
)

type entry struct {
	Day     string `json:"day"`
	Period  int    `json:"period"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
}

func main() {
	settings := loadSettings()

	// Define arguments; environment-provided settings act as defaults so a
	// deployment can pin its backend without wrapper scripts.
	schedulerPtr := flag.String("scheduler", settings.GetString("scheduler"), `Scheduling backend. Allowed values are:
- "sat" (the placement problem is encoded into CNF and handed to a SAT solver; infeasibility is a proof) and
- "backtrack" (iterative depth-first search; useful when no SAT backend is wanted), where "sat" is the default`)
	solverPtr := flag.String("solver", settings.GetString("solver"), "SAT solver used by the sat backend. Allowed values are: \"gini\", \"gophersat\", \"kissat\", where \"gini\" is the default")
	filePathPtr := flag.String("file", "", "Path to the snapshot JSON file")
	outFilePathPtr := flag.String("out", "", "Path to the file where the timetable will be written; if empty, it'll be written into the Standard Output")
	timeoutPtr := flag.Duration("timeout", settings.GetDuration("timeout"), "Wall-clock budget for the run; 0 means unbounded")
	attemptsPtr := flag.Uint64("attempts", settings.GetUint64("attempts"), "Attempt budget for the backtrack backend; 0 uses the built-in default")
	seedPtr := flag.Int64("seed", settings.GetInt64("seed"), "Diversification seed for the backtrack backend")
	flag.Parse()
	schedulerStr := strings.ToLower(*schedulerPtr)
	solverStr := strings.ToLower(*solverPtr)
	filePath := *filePathPtr
	outFile := *outFilePathPtr

	logger := lo.Must(zap.NewProduction())
	defer logger.Sync()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	// Validate arguments
	if !slices.Contains(validSchedulers, schedulerStr) {
		logger.Fatal("not a valid scheduler", zap.String("scheduler", schedulerStr))
	} else if !slices.Contains(validSolvers, solverStr) {
		logger.Fatal("not a valid solver", zap.String("solver", solverStr))
	} else if filePath == "" {
		logger.Fatal("a snapshot file must be specified")
	}

	// Extract input
	snapshot, err := model.SnapshotFromJSON(filePath)
	if err != nil {
		logger.Fatal("cannot parse snapshot file", zap.Error(err))
	}

	// Initialize backend
	var scheduler model.Scheduler
	if schedulerStr == "sat" {
		scheduler = model.NewSATScheduler(solvers[solverStr]())
	} else {
		scheduler = model.NewBacktrackScheduler()
	}

	config := model.Config{
		MaxAttempts: *attemptsPtr,
		Timeout:     *timeoutPtr,
		Seed:        *seedPtr,
	}

	// Build timetable
	started := time.Now()
	result := scheduler.Schedule(context.Background(), snapshot, config)
	elapsed := time.Since(started)

	switch result.Reason {
	case model.ReasonNone:
	case model.ReasonConfiguration:
		logger.Fatal("snapshot rejected", zap.String("diagnostic", result.Diagnostic))
	case model.ReasonInfeasible:
		logger.Warn("no legal timetable exists",
			zap.String("diagnostic", result.Diagnostic),
			zap.Duration("elapsed", elapsed))
		os.Exit(exitInfeasible)
	case model.ReasonBudgetExceeded:
		logger.Warn("budget exhausted before a verdict",
			zap.String("diagnostic", result.Diagnostic),
			zap.Uint64("attempts", result.Attempts),
			zap.Duration("elapsed", elapsed))
		os.Exit(exitBudget)
	}

	// Re-check every hard constraint independently of the backend
	if violations := model.Violations(snapshot, result.Assignments); len(violations) > 0 {
		logger.Error("backend produced an illegal timetable",
			zap.Strings("violations", violations))
		os.Exit(exitUnverifiable)
	}

	timetableJSON, err := json.Marshal(perClassTimetable(snapshot, result.Assignments))
	if err != nil {
		logger.Fatal("cannot marshal timetable", zap.Error(err))
	}

	if outFile == "" {
		fmt.Println(string(timetableJSON))
	} else if err := os.WriteFile(outFile, timetableJSON, 0666); err != nil {
		logger.Fatal("cannot write output file", zap.Error(err))
	}

	logger.Info("timetable built",
		zap.Int("assignments", len(result.Assignments)),
		zap.Uint64("attempts", result.Attempts),
		zap.Duration("elapsed", elapsed))
	os.Exit(exitSolved)
}

// perClassTimetable groups the flat assignment list by class, sorted by day
// then period so the output reads like a printed timetable.
func perClassTimetable(snapshot *model.Snapshot, assignments []model.Assignment) map[string][]entry {
	sorted := slices.Clone(assignments)
	slices.SortFunc(sorted, func(a, b model.Assignment) int {
		if a.Slot.Day != b.Slot.Day {
			return a.Slot.Day - b.Slot.Day
		}
		if a.Slot.Period != b.Slot.Period {
			return a.Slot.Period - b.Slot.Period
		}
		return strings.Compare(a.Occurrence.LessonID, b.Occurrence.LessonID)
	})

	timetable := make(map[string][]entry)
	for _, assignment := range sorted {
		lesson, _ := snapshot.Lesson(assignment.Occurrence.LessonID)
		class, _ := snapshot.Class(lesson.ClassID)
		teacher, _ := snapshot.Teacher(lesson.TeacherID)
		room, _ := snapshot.Room(assignment.RoomID)

		dayName, ok := days[assignment.Slot.Day]
		if !ok {
			dayName = fmt.Sprintf("day-%v", assignment.Slot.Day)
		}

		timetable[class.Name] = append(timetable[class.Name], entry{
			Day:     dayName,
			Period:  assignment.Slot.Period,
			Subject: lesson.Subject,
			Teacher: teacher.Name,
			Room:    room.Name,
		})
	}
	return timetable
}

// loadSettings wires environment variables (TIMETABLE_SCHEDULER and friends)
// as defaults for the command-line flags.
func loadSettings() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("timetable")
	v.AutomaticEnv()
	v.SetDefault("scheduler", "sat")
	v.SetDefault("solver", "gini")
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("attempts", uint64(0))
	v.SetDefault("seed", int64(0))
	return v
}
