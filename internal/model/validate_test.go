package model

import (
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsWellFormedSnapshot(t *testing.T) {
	assert.Nil(t, engineFixture().Validate())
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	// Arrange: a snapshot broken in several independent ways at once
	snapshot := NewSnapshot(
		Grid{Days: 0, Periods: 6},
		[]Teacher{
			{ID: "t1", Availability: fullAvailability(5, 6)},
			{ID: "t1", Availability: fullAvailability(5, 6)},
		},
		[]Room{{ID: "r1", Type: RoomGeneral}},
		[]Class{{ID: "c1"}},
		[]Lesson{
			{ID: "l1", ClassID: "c1", TeacherID: "t1", Subject: "math", RoomType: RoomGeneral, Occurrences: 0},
			{ID: "l2", ClassID: "missing", TeacherID: "t1", Subject: "pe", RoomType: RoomGym, Occurrences: 2},
		},
	)

	// Act
	err := snapshot.Validate()

	// Assert
	assert.NotNil(t, err)
	configErr, ok := err.(*ConfigurationError)
	assert.True(t, ok)
	assert.Contains(t, err.Error(), "invalid scheduling input")

	expected := []string{"grid", "duplicate teacher", "weekly occurrences", "unknown class", `"gym" room`}
	for _, substring := range expected {
		found := lo.SomeBy(configErr.Problems, func(problem string) bool {
			return strings.Contains(problem, substring)
		})
		assert.True(t, found, "no problem mentions %q in %v", substring, configErr.Problems)
	}
}

func TestValidateRejectsDoubleBookedSyncGroup(t *testing.T) {
	// Arrange: group members must share a slot, so a teacher or class bound
	// to two members can never be scheduled
	build := func(teacherB, classB string) *Snapshot {
		return NewSnapshot(
			Grid{Days: 2, Periods: 2},
			[]Teacher{
				{ID: "t1", Availability: fullAvailability(2, 2)},
				{ID: "t2", Availability: fullAvailability(2, 2)},
			},
			[]Room{{ID: "r1", Type: RoomGeneral}, {ID: "r2", Type: RoomGeneral}},
			[]Class{{ID: "c1"}, {ID: "c2"}},
			[]Lesson{
				{ID: "el-a", ClassID: "c1", TeacherID: "t1", Subject: "elective", RoomType: RoomGeneral, Occurrences: 1, SyncGroup: "g"},
				{ID: "el-b", ClassID: classB, TeacherID: teacherB, Subject: "elective", RoomType: RoomGeneral, Occurrences: 1, SyncGroup: "g"},
			},
		)
	}

	t.Run("shared teacher", func(t *testing.T) {
		err := build("t1", "c2").Validate()

		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), `binds teacher "t1"`)
	})

	t.Run("shared class", func(t *testing.T) {
		err := build("t2", "c1").Validate()

		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), `binds class "c1"`)
	})

	t.Run("distinct members pass", func(t *testing.T) {
		assert.Nil(t, build("t2", "c2").Validate())
	})
}

func TestValidateAvailabilityShape(t *testing.T) {
	snapshot := NewSnapshot(
		Grid{Days: 5, Periods: 6},
		[]Teacher{{ID: "t1", Availability: fullAvailability(3, 6)}},
		[]Room{{ID: "r1", Type: RoomGeneral}},
		[]Class{{ID: "c1"}},
		nil,
	)

	err := snapshot.Validate()

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "availability covers 3 days")
}
