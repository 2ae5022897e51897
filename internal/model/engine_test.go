package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullAvailability(days, periods int) [][]bool {
	availability := make([][]bool, days)
	for day := range availability {
		availability[day] = make([]bool, periods)
		for period := range availability[day] {
			availability[day][period] = true
		}
	}
	return availability
}

func engineFixture() *Snapshot {
	grid := Grid{Days: 5, Periods: 6}
	return NewSnapshot(
		grid,
		[]Teacher{
			{ID: "t1", Name: "Sato", Subjects: []string{"math"}, Availability: fullAvailability(5, 6)},
			{ID: "t2", Name: "Kimura", Subjects: []string{"science"}, Availability: fullAvailability(5, 6)},
		},
		[]Room{
			{ID: "r1", Name: "101", Type: RoomGeneral, Capacity: 40},
			{ID: "r2", Name: "102", Type: RoomGeneral, Capacity: 40},
			{ID: "lab", Name: "Lab", Type: RoomScience, Capacity: 24},
		},
		[]Class{
			{ID: "c1", Name: "1-A", Size: 35},
			{ID: "c2", Name: "1-B", Size: 34},
		},
		[]Lesson{
			{ID: "math-1a", ClassID: "c1", TeacherID: "t1", Subject: "math", RoomType: RoomGeneral, Occurrences: 2},
			{ID: "sci-1b", ClassID: "c2", TeacherID: "t2", Subject: "science", RoomType: RoomScience, Occurrences: 1},
			{ID: "math-1b", ClassID: "c2", TeacherID: "t1", Subject: "math", RoomType: RoomGeneral, Occurrences: 1},
		},
	)
}

func TestEngineRejectsDoubleBookings(t *testing.T) {
	snapshot := engineFixture()
	slot := TimeSlot{Day: 0, Period: 0}

	t.Run("teacher axis", func(t *testing.T) {
		// Arrange
		engine := NewEngine(snapshot)
		assert.Nil(t, engine.Commit(Assignment{Occurrence: Occurrence{"math-1a", 0}, Slot: slot, RoomID: "r1"}))

		// Act: same teacher t1, different class and room, same slot
		legal := engine.IsLegal(Assignment{Occurrence: Occurrence{"math-1b", 0}, Slot: slot, RoomID: "r2"})

		// Assert
		assert.False(t, legal)
	})

	t.Run("room axis", func(t *testing.T) {
		engine := NewEngine(snapshot)
		assert.Nil(t, engine.Commit(Assignment{Occurrence: Occurrence{"math-1a", 0}, Slot: slot, RoomID: "r1"}))

		legal := engine.IsLegal(Assignment{Occurrence: Occurrence{"math-1b", 0}, Slot: slot, RoomID: "r1"})

		assert.False(t, legal)
	})

	t.Run("class axis", func(t *testing.T) {
		engine := NewEngine(snapshot)
		assert.Nil(t, engine.Commit(Assignment{Occurrence: Occurrence{"sci-1b", 0}, Slot: slot, RoomID: "lab"}))

		// Class c2 already busy, even though teacher t1 and room r1 are free
		legal := engine.IsLegal(Assignment{Occurrence: Occurrence{"math-1b", 0}, Slot: slot, RoomID: "r1"})

		assert.False(t, legal)
	})
}

func TestEngineRejectsRoomTypeMismatch(t *testing.T) {
	engine := NewEngine(engineFixture())

	legal := engine.IsLegal(Assignment{Occurrence: Occurrence{"sci-1b", 0}, Slot: TimeSlot{Day: 1, Period: 2}, RoomID: "r1"})

	assert.False(t, legal)
}

func TestEngineRejectsUnavailableTeacher(t *testing.T) {
	grid := Grid{Days: 2, Periods: 2}
	availability := [][]bool{{true, false}, {false, false}}
	snapshot := NewSnapshot(
		grid,
		[]Teacher{{ID: "t1", Availability: availability}},
		[]Room{{ID: "r1", Type: RoomGeneral}},
		[]Class{{ID: "c1"}},
		[]Lesson{{ID: "l1", ClassID: "c1", TeacherID: "t1", Subject: "math", RoomType: RoomGeneral, Occurrences: 1}},
	)
	engine := NewEngine(snapshot)

	assert.True(t, engine.IsLegal(Assignment{Occurrence: Occurrence{"l1", 0}, Slot: TimeSlot{Day: 0, Period: 0}, RoomID: "r1"}))
	assert.False(t, engine.IsLegal(Assignment{Occurrence: Occurrence{"l1", 0}, Slot: TimeSlot{Day: 0, Period: 1}, RoomID: "r1"}))
	assert.False(t, engine.IsLegal(Assignment{Occurrence: Occurrence{"l1", 0}, Slot: TimeSlot{Day: 1, Period: 0}, RoomID: "r1"}))
}

func TestEngineCommitUncommitIsTransactional(t *testing.T) {
	snapshot := engineFixture()
	engine := NewEngine(snapshot)
	slot := TimeSlot{Day: 2, Period: 3}
	assignment := Assignment{Occurrence: Occurrence{"math-1a", 0}, Slot: slot, RoomID: "r1"}

	// Arrange: a committed assignment occupies all its axes
	assert.Nil(t, engine.Commit(assignment))
	assert.False(t, engine.IsLegal(Assignment{Occurrence: Occurrence{"math-1b", 0}, Slot: slot, RoomID: "r2"}))

	// A rejected commit must leave the indexes untouched
	err := engine.Commit(Assignment{Occurrence: Occurrence{"math-1b", 0}, Slot: slot, RoomID: "r2"})
	assert.ErrorIs(t, err, ErrIllegalAssignment)
	assert.Equal(t, 1, len(engine.Committed()))

	// Act: uncommit frees every axis again
	undone, ok := engine.Uncommit()

	// Assert
	assert.True(t, ok)
	assert.Equal(t, assignment, undone)
	assert.True(t, engine.IsLegal(Assignment{Occurrence: Occurrence{"math-1b", 0}, Slot: slot, RoomID: "r2"}))
	assert.Equal(t, 0, len(engine.Committed()))

	_, ok = engine.Uncommit()
	assert.False(t, ok)
}

func TestEngineRejectsRepeatedOccurrenceAndSlotReuse(t *testing.T) {
	snapshot := engineFixture()
	engine := NewEngine(snapshot)
	slot := TimeSlot{Day: 0, Period: 0}

	assert.Nil(t, engine.Commit(Assignment{Occurrence: Occurrence{"math-1a", 0}, Slot: slot, RoomID: "r1"}))

	// The same occurrence cannot be placed twice
	assert.False(t, engine.IsLegal(Assignment{Occurrence: Occurrence{"math-1a", 0}, Slot: TimeSlot{Day: 1, Period: 1}, RoomID: "r1"}))
	// A second occurrence of the lesson cannot share the slot
	assert.False(t, engine.IsLegal(Assignment{Occurrence: Occurrence{"math-1a", 1}, Slot: slot, RoomID: "r2"}))
	// But it may take another slot
	assert.True(t, engine.IsLegal(Assignment{Occurrence: Occurrence{"math-1a", 1}, Slot: TimeSlot{Day: 1, Period: 1}, RoomID: "r1"}))
}

func TestEngineSynchronizationAnchoring(t *testing.T) {
	grid := Grid{Days: 2, Periods: 3}
	snapshot := NewSnapshot(
		grid,
		[]Teacher{
			{ID: "t1", Availability: fullAvailability(2, 3)},
			{ID: "t2", Availability: fullAvailability(2, 3)},
		},
		[]Room{
			{ID: "r1", Type: RoomGeneral},
			{ID: "r2", Type: RoomGeneral},
		},
		[]Class{{ID: "c1"}, {ID: "c2"}},
		[]Lesson{
			{ID: "el-1a", ClassID: "c1", TeacherID: "t1", Subject: "elective", RoomType: RoomGeneral, Occurrences: 1, SyncGroup: "g1"},
			{ID: "el-1b", ClassID: "c2", TeacherID: "t2", Subject: "elective", RoomType: RoomGeneral, Occurrences: 1, SyncGroup: "g1"},
		},
	)
	engine := NewEngine(snapshot)

	peers := engine.Peers("el-1a")
	assert.Equal(t, 1, len(peers))
	assert.Equal(t, "el-1b", peers[0].ID)

	// No anchor yet
	_, anchored := engine.AnchorSlot(peers[0], 0)
	assert.False(t, anchored)

	anchor := TimeSlot{Day: 1, Period: 2}
	assert.Nil(t, engine.Commit(Assignment{Occurrence: Occurrence{"el-1a", 0}, Slot: anchor, RoomID: "r1"}))

	// The peer is now anchored to the same slot, different room allowed
	slot, anchored := engine.AnchorSlot(peers[0], 0)
	assert.True(t, anchored)
	assert.Equal(t, anchor, slot)
	assert.False(t, engine.IsLegal(Assignment{Occurrence: Occurrence{"el-1b", 0}, Slot: TimeSlot{Day: 0, Period: 0}, RoomID: "r2"}))
	assert.True(t, engine.IsLegal(Assignment{Occurrence: Occurrence{"el-1b", 0}, Slot: anchor, RoomID: "r2"}))
	// Same room as the anchor is still a room conflict
	assert.False(t, engine.IsLegal(Assignment{Occurrence: Occurrence{"el-1b", 0}, Slot: anchor, RoomID: "r1"}))
}

func TestEngineCompleteness(t *testing.T) {
	grid := Grid{Days: 1, Periods: 2}
	snapshot := NewSnapshot(
		grid,
		[]Teacher{{ID: "t1", Availability: fullAvailability(1, 2)}},
		[]Room{{ID: "r1", Type: RoomGeneral}},
		[]Class{{ID: "c1"}},
		[]Lesson{{ID: "l1", ClassID: "c1", TeacherID: "t1", Subject: "math", RoomType: RoomGeneral, Occurrences: 2}},
	)
	engine := NewEngine(snapshot)

	assert.False(t, engine.Complete())
	assert.Nil(t, engine.Commit(Assignment{Occurrence: Occurrence{"l1", 0}, Slot: TimeSlot{Day: 0, Period: 0}, RoomID: "r1"}))
	assert.False(t, engine.Complete())
	assert.Nil(t, engine.Commit(Assignment{Occurrence: Occurrence{"l1", 1}, Slot: TimeSlot{Day: 0, Period: 1}, RoomID: "r1"}))
	assert.True(t, engine.Complete())
}
