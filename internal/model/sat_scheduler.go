package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/hokkyo/timetable/internal/sat"
)

// satScheduler encodes lesson placement into CNF: one boolean variable per
// (occurrence, slot, room) candidate, mutual-exclusion clauses per
// teacher/room/class per slot, and slot-equality clauses per
// synchronization group. The SAT backend is a black box; this component
// only encodes the problem and decodes the model back into assignments.
type satScheduler struct {
	solver sat.Solver
}

func (scheduler *satScheduler) Schedule(ctx context.Context, snapshot *Snapshot, config Config) Result {
	if err := snapshot.Validate(); err != nil {
		return failure(ReasonConfiguration, err.Error())
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	occurrences := snapshot.Occurrences()
	slots := snapshot.Grid.Slots()
	slotIndex := make(map[TimeSlot]uint64, len(slots))
	for i, slot := range slots {
		slotIndex[slot] = uint64(i)
	}
	roomIndex := make(map[string]uint64, len(snapshot.Rooms))
	for i := range snapshot.Rooms {
		roomIndex[snapshot.Rooms[i].ID] = uint64(i)
	}
	occIndex := make(map[Occurrence]uint64, len(occurrences))
	for i, occurrence := range occurrences {
		occIndex[occurrence] = uint64(i)
	}

	indexer := NewIndexer(uint64(len(occurrences)), uint64(len(slots)), uint64(len(snapshot.Rooms)))

	// Candidate variables per occurrence: the cross product of slots the
	// teacher (and, for synchronized lessons, every peer's teacher) can
	// serve and rooms of the required type.
	candidates := make(map[uint64]Assignment)
	perOccurrence := make([][]int64, len(occurrences))
	perOccurrenceSlot := make([]map[uint64][]int64, len(occurrences))

	for i, occurrence := range occurrences {
		lesson, _ := snapshot.Lesson(occurrence.LessonID)
		candidateSlots := scheduler.candidateSlots(snapshot, lesson, slots)
		if len(candidateSlots) < lesson.Occurrences {
			return failure(ReasonInfeasible, fmt.Sprintf(
				"lesson %q needs %v occurrences but only %v slots work for its teacher and synchronization peers",
				lesson.ID, lesson.Occurrences, len(candidateSlots)))
		}

		perOccurrenceSlot[i] = make(map[uint64][]int64)
		for _, slot := range candidateSlots {
			for _, room := range snapshot.RoomsOfType(lesson.RoomType) {
				variable := indexer.Index(uint64(i), slotIndex[slot], roomIndex[room.ID])
				candidates[variable] = Assignment{Occurrence: occurrence, Slot: slot, RoomID: room.ID}
				perOccurrence[i] = append(perOccurrence[i], int64(variable))
				perOccurrenceSlot[i][slotIndex[slot]] = append(perOccurrenceSlot[i][slotIndex[slot]], int64(variable))
			}
		}
	}

	instance := sat.SAT{
		Variables: uint64(len(occurrences)) * uint64(len(slots)) * uint64(len(snapshot.Rooms)),
	}
	instance.Clauses = append(instance.Clauses, scheduler.placementConstraints(perOccurrence)...)
	instance.Clauses = append(instance.Clauses, scheduler.exclusionConstraints(snapshot, candidates, occIndex)...)
	instance.Clauses = append(instance.Clauses, scheduler.synchronizationConstraints(snapshot, occIndex, perOccurrenceSlot)...)

	solution, err := scheduler.solver.Solve(ctx, instance)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return failure(ReasonBudgetExceeded, "sat search stopped at the time budget before exhausting the space")
		}
		return failure(ReasonBudgetExceeded, fmt.Sprintf("sat backend stopped early: %v", err))
	}
	if solution == nil {
		return failure(ReasonInfeasible, "the constraint set admits no complete assignment")
	}

	assignments := make([]Assignment, 0, len(occurrences))
	for _, literal := range solution {
		if literal <= 0 {
			continue
		}
		if assignment, ok := candidates[uint64(literal)]; ok {
			assignments = append(assignments, assignment)
		}
	}

	return success(assignments, 0)
}

// candidateSlots intersects the grid with the lesson teacher's availability
// and, for synchronized lessons, with every peer teacher's availability.
func (scheduler *satScheduler) candidateSlots(snapshot *Snapshot, lesson *Lesson, slots []TimeSlot) []TimeSlot {
	members := append([]*Lesson{lesson}, snapshot.SyncPeers(lesson)...)

	candidateSlots := make([]TimeSlot, 0, len(slots))
	for _, slot := range slots {
		workable := true
		for _, member := range members {
			teacher, ok := snapshot.Teacher(member.TeacherID)
			if !ok || !teacher.Available(slot) {
				workable = false
				break
			}
		}
		if workable {
			candidateSlots = append(candidateSlots, slot)
		}
	}
	return candidateSlots
}

// placementConstraints: each occurrence picks exactly one of its candidate
// variables — one clause requiring at least one, pairwise clauses forbidding
// two.
func (scheduler *satScheduler) placementConstraints(perOccurrence [][]int64) [][]int64 {
	clauses := make([][]int64, 0, len(perOccurrence))

	for _, variables := range perOccurrence {
		clauses = append(clauses, variables)
		for i := range len(variables) - 1 {
			for j := i + 1; j < len(variables); j++ {
				clauses = append(clauses, []int64{-variables[i], -variables[j]})
			}
		}
	}

	return clauses
}

// exclusionConstraints: at most one assignment per teacher, per room, and
// per class in any slot. Class exclusion also covers "no lesson repeats in
// one slot for one class". Variables are grouped per (slot, axis value) so
// clauses stay pairwise within a group.
func (scheduler *satScheduler) exclusionConstraints(snapshot *Snapshot, candidates map[uint64]Assignment, occIndex map[Occurrence]uint64) [][]int64 {
	type axisKey struct {
		slot TimeSlot
		id   string
	}
	teacherVars := make(map[axisKey][]int64)
	roomVars := make(map[axisKey][]int64)
	classVars := make(map[axisKey][]int64)

	for variable, assignment := range candidates {
		lesson, _ := snapshot.Lesson(assignment.Occurrence.LessonID)
		teacherVars[axisKey{assignment.Slot, lesson.TeacherID}] = append(teacherVars[axisKey{assignment.Slot, lesson.TeacherID}], int64(variable))
		roomVars[axisKey{assignment.Slot, assignment.RoomID}] = append(roomVars[axisKey{assignment.Slot, assignment.RoomID}], int64(variable))
		classVars[axisKey{assignment.Slot, lesson.ClassID}] = append(classVars[axisKey{assignment.Slot, lesson.ClassID}], int64(variable))
	}

	sameOccurrence := func(a, b int64) bool {
		return occIndex[candidates[uint64(a)].Occurrence] == occIndex[candidates[uint64(b)].Occurrence]
	}

	var clauses [][]int64
	for _, group := range []map[axisKey][]int64{teacherVars, roomVars, classVars} {
		for _, variables := range group {
			for i := range len(variables) - 1 {
				for j := i + 1; j < len(variables); j++ {
					// Pairs within one occurrence are already excluded by
					// the placement constraints.
					if sameOccurrence(variables[i], variables[j]) {
						continue
					}
					clauses = append(clauses, []int64{-variables[i], -variables[j]})
				}
			}
		}
	}

	return clauses
}

// synchronizationConstraints: occurrence k of every group member lands in
// the same slot. Encoded as implications both ways: member A at slot s
// forces member B into slot s.
func (scheduler *satScheduler) synchronizationConstraints(snapshot *Snapshot, occIndex map[Occurrence]uint64, perOccurrenceSlot []map[uint64][]int64) [][]int64 {
	var clauses [][]int64

	for _, members := range snapshot.SyncGroups() {
		if len(members) < 2 {
			continue
		}
		for _, a := range members {
			for _, b := range members {
				if a.ID == b.ID {
					continue
				}
				for index := range a.Occurrences {
					aVars := perOccurrenceSlot[occIndex[Occurrence{LessonID: a.ID, Index: index}]]
					bVars := perOccurrenceSlot[occIndex[Occurrence{LessonID: b.ID, Index: index}]]
					for slot, variables := range aVars {
						for _, variable := range variables {
							clause := make([]int64, 0, 1+len(bVars[slot]))
							clause = append(clause, -variable)
							clause = append(clause, bVars[slot]...)
							clauses = append(clauses, clause)
						}
					}
				}
			}
		}
	}

	return clauses
}
