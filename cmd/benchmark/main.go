package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/hokkyo/timetable/internal/model"
	"github.com/hokkyo/timetable/internal/sat"
)

const (
	runTimeout = 30 * time.Second
	outputFile = "benchmark_results.csv"
)

// instanceShape sizes one synthetic school: classes across the school and
// lessons per class. Teachers, rooms and sync groups are derived from it.
type instanceShape struct {
	Name    string
	Classes int
	Lessons int
	Seed    uint64
}

type benchmarkRun struct {
	Instance    instanceShape
	Backend     string
	Occurrences int
	Duration    time.Duration
	Reason      model.Reason
	Attempts    uint64
}

func main() {
	logger := lo.Must(zap.NewProduction())
	defer logger.Sync()

	shapes := []instanceShape{
		{Name: "small", Classes: 3, Lessons: 5, Seed: 11},
		{Name: "medium", Classes: 8, Lessons: 7, Seed: 23},
		{Name: "large", Classes: 15, Lessons: 8, Seed: 47},
		{Name: "packed", Classes: 20, Lessons: 9, Seed: 89},
	}
	backends := map[string]model.Scheduler{
		"sat/gini":      model.NewSATScheduler(sat.NewGiniSolver()),
		"sat/gophersat": model.NewSATScheduler(sat.NewGophersatSolver()),
		"backtrack":     model.NewBacktrackScheduler(),
	}

	runs := make([]benchmarkRun, 0, len(shapes)*len(backends))
	for _, shape := range shapes {
		snapshot := generate(shape)
		for _, backend := range []string{"sat/gini", "sat/gophersat", "backtrack"} {
			logger.Info("benchmarking",
				zap.String("instance", shape.Name),
				zap.String("backend", backend),
				zap.Int("occurrences", snapshot.TotalOccurrences()))

			started := time.Now()
			result := backends[backend].Schedule(context.Background(), snapshot, model.Config{
				Timeout: runTimeout,
				Seed:    int64(shape.Seed),
			})
			elapsed := time.Since(started)

			if result.Success() {
				if violations := model.Violations(snapshot, result.Assignments); len(violations) > 0 {
					logger.Fatal("backend produced an illegal timetable",
						zap.String("backend", backend),
						zap.Strings("violations", violations))
				}
			}

			runs = append(runs, benchmarkRun{
				Instance:    shape,
				Backend:     backend,
				Occurrences: snapshot.TotalOccurrences(),
				Duration:    elapsed,
				Reason:      result.Reason,
				Attempts:    result.Attempts,
			})
		}
	}

	if err := toCSV(runs); err != nil {
		logger.Fatal("cannot write results", zap.Error(err))
	}
	logger.Info("benchmark finished", zap.Int("runs", len(runs)), zap.String("output", outputFile))
}

// generate builds a synthetic school. Rooms and teacher counts scale with the
// class count so the instances stay satisfiable while the search space grows.
func generate(shape instanceShape) *model.Snapshot {
	rng := rand.New(rand.NewPCG(shape.Seed, shape.Seed^0xda3e39cb94b95bdb))
	grid := model.Grid{Days: 5, Periods: 6}

	subjects := []struct {
		Name string
		Room model.RoomType
	}{
		{"math", model.RoomGeneral},
		{"japanese", model.RoomGeneral},
		{"english", model.RoomGeneral},
		{"science", model.RoomScience},
		{"pe", model.RoomGym},
		{"music", model.RoomMusic},
		{"art", model.RoomArt},
		{"social-studies", model.RoomGeneral},
		{"home-ec", model.RoomHomeEc},
	}

	teacherCount := shape.Classes + shape.Classes/2 + 2
	teachers := make([]model.Teacher, 0, teacherCount)
	for i := range teacherCount {
		availability := make([][]bool, grid.Days)
		for day := range availability {
			availability[day] = make([]bool, grid.Periods)
			for period := range availability[day] {
				// Teachers keep roughly one slot in eight blocked.
				availability[day][period] = rng.IntN(8) != 0
			}
		}
		teachers = append(teachers, model.Teacher{
			ID:           fmt.Sprintf("t%v", i),
			Name:         fmt.Sprintf("Teacher %v", i),
			Availability: availability,
		})
	}

	rooms := []model.Room{
		{ID: "gym", Name: "Gym", Type: model.RoomGym},
		{ID: "music", Name: "Music Room", Type: model.RoomMusic},
		{ID: "art", Name: "Art Room", Type: model.RoomArt},
		{ID: "home-ec", Name: "Home Ec Room", Type: model.RoomHomeEc},
		{ID: "lab-1", Name: "Science Lab 1", Type: model.RoomScience},
		{ID: "lab-2", Name: "Science Lab 2", Type: model.RoomScience},
	}
	for i := range shape.Classes + 2 {
		rooms = append(rooms, model.Room{
			ID:   fmt.Sprintf("r%v", i),
			Name: fmt.Sprintf("Room %v", 100+i),
			Type: model.RoomGeneral,
		})
	}

	classes := make([]model.Class, 0, shape.Classes)
	lessons := make([]model.Lesson, 0, shape.Classes*shape.Lessons)
	for i := range shape.Classes {
		class := model.Class{ID: fmt.Sprintf("c%v", i), Name: fmt.Sprintf("Class %v", i)}
		classes = append(classes, class)

		for j := range shape.Lessons {
			subject := subjects[j%len(subjects)]
			lessons = append(lessons, model.Lesson{
				ID:          fmt.Sprintf("%v-%v", subject.Name, class.ID),
				ClassID:     class.ID,
				TeacherID:   teachers[rng.IntN(teacherCount)].ID,
				Subject:     subject.Name,
				RoomType:    subject.Room,
				Occurrences: 1 + rng.IntN(3),
			})
		}
	}

	return model.NewSnapshot(grid, teachers, rooms, classes, lessons)
}

func toCSV(runs []benchmarkRun) error {
	file, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Instance", "Backend", "Classes", "Lessons", "Occurrences", "Duration(ms)", "Result", "Attempts"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, run := range runs {
		record := []string{
			run.Instance.Name,
			run.Backend,
			fmt.Sprintf("%d", run.Instance.Classes),
			fmt.Sprintf("%d", run.Instance.Lessons),
			fmt.Sprintf("%d", run.Occurrences),
			fmt.Sprintf("%d", run.Duration.Milliseconds()),
			run.Reason.String(),
			fmt.Sprintf("%d", run.Attempts),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}
