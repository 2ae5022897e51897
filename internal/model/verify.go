package model

import (
	"fmt"

	"github.com/samber/lo"
)

// Violations re-checks every hard constraint over a complete timetable and
// returns one message per violation. An empty result means the timetable is
// legal. This is the independent oracle both scheduler backends are tested
// against.
func Violations(snapshot *Snapshot, assignments []Assignment) []string {
	var violations []string

	type axisKey struct {
		slot TimeSlot
		id   string
	}
	teacherSeen := make(map[axisKey]Occurrence)
	roomSeen := make(map[axisKey]Occurrence)
	classSeen := make(map[axisKey]Occurrence)
	occurrenceSeen := make(map[Occurrence]bool)
	perLesson := make(map[string]int)

	for _, assignment := range assignments {
		lesson, ok := snapshot.Lesson(assignment.Occurrence.LessonID)
		if !ok {
			violations = append(violations, fmt.Sprintf("assignment references unknown lesson %q", assignment.Occurrence.LessonID))
			continue
		}

		if occurrenceSeen[assignment.Occurrence] {
			violations = append(violations, fmt.Sprintf("occurrence %v is assigned more than once", assignment.Occurrence))
		}
		occurrenceSeen[assignment.Occurrence] = true
		perLesson[lesson.ID]++

		if !snapshot.Grid.Contains(assignment.Slot) {
			violations = append(violations, fmt.Sprintf("occurrence %v lies outside the %vx%v grid at %v", assignment.Occurrence, snapshot.Grid.Days, snapshot.Grid.Periods, assignment.Slot))
		}

		room, ok := snapshot.Room(assignment.RoomID)
		if !ok {
			violations = append(violations, fmt.Sprintf("occurrence %v references unknown room %q", assignment.Occurrence, assignment.RoomID))
		} else if room.Type != lesson.RoomType {
			violations = append(violations, fmt.Sprintf("lesson %q requires a %q room but occurrence %v sits in %q room %q", lesson.ID, lesson.RoomType, assignment.Occurrence, room.Type, room.ID))
		}

		teacher, ok := snapshot.Teacher(lesson.TeacherID)
		if !ok {
			violations = append(violations, fmt.Sprintf("lesson %q references unknown teacher %q", lesson.ID, lesson.TeacherID))
		} else if !teacher.Available(assignment.Slot) {
			violations = append(violations, fmt.Sprintf("teacher %q is unavailable at %v but teaches occurrence %v there", teacher.ID, assignment.Slot, assignment.Occurrence))
		}

		if previous, clash := teacherSeen[axisKey{assignment.Slot, lesson.TeacherID}]; clash {
			violations = append(violations, fmt.Sprintf("teacher %q is double-booked at %v (%v and %v)", lesson.TeacherID, assignment.Slot, previous, assignment.Occurrence))
		} else {
			teacherSeen[axisKey{assignment.Slot, lesson.TeacherID}] = assignment.Occurrence
		}

		if previous, clash := roomSeen[axisKey{assignment.Slot, assignment.RoomID}]; clash {
			violations = append(violations, fmt.Sprintf("room %q is double-booked at %v (%v and %v)", assignment.RoomID, assignment.Slot, previous, assignment.Occurrence))
		} else {
			roomSeen[axisKey{assignment.Slot, assignment.RoomID}] = assignment.Occurrence
		}

		if previous, clash := classSeen[axisKey{assignment.Slot, lesson.ClassID}]; clash {
			violations = append(violations, fmt.Sprintf("class %q is double-booked at %v (%v and %v)", lesson.ClassID, assignment.Slot, previous, assignment.Occurrence))
		} else {
			classSeen[axisKey{assignment.Slot, lesson.ClassID}] = assignment.Occurrence
		}
	}

	// Declared weekly occurrence counts must be met exactly
	for _, lesson := range snapshot.Lessons {
		if perLesson[lesson.ID] != lesson.Occurrences {
			violations = append(violations, fmt.Sprintf("lesson %q declares %v weekly occurrences but %v are assigned", lesson.ID, lesson.Occurrences, perLesson[lesson.ID]))
		}
	}

	violations = append(violations, syncViolations(snapshot, assignments)...)

	return violations
}

// syncViolations checks that lessons sharing a synchronization group occupy
// identical slot sets.
func syncViolations(snapshot *Snapshot, assignments []Assignment) []string {
	var violations []string

	slotsOf := make(map[string][]TimeSlot)
	for _, assignment := range assignments {
		slotsOf[assignment.Occurrence.LessonID] = append(slotsOf[assignment.Occurrence.LessonID], assignment.Slot)
	}

	for groupID, members := range snapshot.SyncGroups() {
		if len(members) < 2 {
			continue
		}
		reference := members[0]
		for _, member := range members[1:] {
			missing, extra := lo.Difference(slotsOf[reference.ID], slotsOf[member.ID])
			if len(missing) > 0 || len(extra) > 0 {
				violations = append(violations, fmt.Sprintf("synchronization group %q: lessons %q and %q occupy different slot sets", groupID, reference.ID, member.ID))
			}
		}
	}

	return violations
}
