package model

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ConfigurationError reports malformed input detected before any search
// starts. It lists every problem found rather than only the first one.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid scheduling input: %v", strings.Join(e.Problems, "; "))
}

// Validate checks the snapshot before a run. A nil return means the entity
// set is well-formed and referentially sound; otherwise the returned error
// is a *ConfigurationError and no search must be attempted.
func (s *Snapshot) Validate() error {
	var problems []string

	if s.Grid.Days <= 0 || s.Grid.Periods <= 0 {
		problems = append(problems, fmt.Sprintf("slot grid must have positive dimensions, got %vx%v", s.Grid.Days, s.Grid.Periods))
	}

	problems = append(problems, s.duplicateIDs()...)

	for _, teacher := range s.Teachers {
		if len(teacher.Availability) != s.Grid.Days {
			problems = append(problems, fmt.Sprintf("teacher %q availability covers %v days, grid has %v", teacher.ID, len(teacher.Availability), s.Grid.Days))
			continue
		}
		for day, row := range teacher.Availability {
			if len(row) != s.Grid.Periods {
				problems = append(problems, fmt.Sprintf("teacher %q availability on day %v covers %v periods, grid has %v", teacher.ID, day, len(row), s.Grid.Periods))
			}
		}
	}

	for _, lesson := range s.Lessons {
		if lesson.Occurrences <= 0 {
			problems = append(problems, fmt.Sprintf("lesson %q declares %v weekly occurrences, must be positive", lesson.ID, lesson.Occurrences))
		}
		if _, ok := s.teacherByID[lesson.TeacherID]; !ok {
			problems = append(problems, fmt.Sprintf("lesson %q references unknown teacher %q", lesson.ID, lesson.TeacherID))
		}
		if _, ok := s.classByID[lesson.ClassID]; !ok {
			problems = append(problems, fmt.Sprintf("lesson %q references unknown class %q", lesson.ID, lesson.ClassID))
		}
		if len(s.roomsByType[lesson.RoomType]) == 0 {
			problems = append(problems, fmt.Sprintf("lesson %q requires a %q room but the snapshot has none", lesson.ID, lesson.RoomType))
		}
	}

	// Members of one synchronization group occupy identical slots, so their
	// occurrence counts must agree, and no teacher or class may serve two
	// members: the shared slot would double-book it in every schedule.
	for groupID, members := range s.syncGroups {
		counts := lo.Uniq(lo.Map(members, func(lesson *Lesson, _ int) int { return lesson.Occurrences }))
		if len(counts) > 1 {
			problems = append(problems, fmt.Sprintf("synchronization group %q mixes occurrence counts %v", groupID, counts))
		}
		for _, id := range lo.FindDuplicates(lo.Map(members, func(lesson *Lesson, _ int) string { return lesson.TeacherID })) {
			problems = append(problems, fmt.Sprintf("synchronization group %q binds teacher %q to more than one member lesson", groupID, id))
		}
		for _, id := range lo.FindDuplicates(lo.Map(members, func(lesson *Lesson, _ int) string { return lesson.ClassID })) {
			problems = append(problems, fmt.Sprintf("synchronization group %q binds class %q to more than one member lesson", groupID, id))
		}
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

func (s *Snapshot) duplicateIDs() []string {
	var problems []string

	report := func(kind string, ids []string) {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				problems = append(problems, fmt.Sprintf("duplicate %v id %q", kind, id))
			}
			seen[id] = true
		}
	}

	report("teacher", lo.Map(s.Teachers, func(t Teacher, _ int) string { return t.ID }))
	report("room", lo.Map(s.Rooms, func(r Room, _ int) string { return r.ID }))
	report("class", lo.Map(s.Classes, func(c Class, _ int) string { return c.ID }))
	report("lesson", lo.Map(s.Lessons, func(l Lesson, _ int) string { return l.ID }))

	return problems
}
