package model

import (
	"errors"
	"fmt"
)

// ErrIllegalAssignment is returned by Engine.Commit when the candidate
// violates a hard constraint against the committed set.
var ErrIllegalAssignment = errors.New("assignment violates a hard constraint")

// Engine is the single source of truth for placement legality. It keeps
// per-axis occupancy indexes over the committed assignments so every
// legality check is a handful of map probes, never a rescan of the
// committed set.
//
// An Engine is private per-run mutable state with a single writer (the
// active solver); independent runs each build their own Engine over their
// own Snapshot.
type Engine struct {
	snapshot *Snapshot

	teacherAt map[string]map[TimeSlot]bool
	roomAt    map[string]map[TimeSlot]bool
	classAt   map[string]map[TimeSlot]bool
	lessonAt  map[string]map[TimeSlot]bool
	occSlot   map[Occurrence]TimeSlot

	trail []Assignment
}

func NewEngine(snapshot *Snapshot) *Engine {
	return &Engine{
		snapshot:  snapshot,
		teacherAt: make(map[string]map[TimeSlot]bool),
		roomAt:    make(map[string]map[TimeSlot]bool),
		classAt:   make(map[string]map[TimeSlot]bool),
		lessonAt:  make(map[string]map[TimeSlot]bool),
		occSlot:   make(map[Occurrence]TimeSlot),
	}
}

// IsLegal reports whether adding the candidate to the committed set would
// violate no hard constraint. A rejected candidate is expected control flow
// during search, not an error.
func (e *Engine) IsLegal(candidate Assignment) bool {
	lesson, ok := e.snapshot.Lesson(candidate.Occurrence.LessonID)
	if !ok {
		return false
	}
	if candidate.Occurrence.Index < 0 || candidate.Occurrence.Index >= lesson.Occurrences {
		return false
	}
	if _, assigned := e.occSlot[candidate.Occurrence]; assigned {
		return false
	}
	if !e.snapshot.Grid.Contains(candidate.Slot) {
		return false
	}

	room, ok := e.snapshot.Room(candidate.RoomID)
	if !ok || room.Type != lesson.RoomType {
		return false
	}

	teacher, ok := e.snapshot.Teacher(lesson.TeacherID)
	if !ok || !teacher.Available(candidate.Slot) {
		return false
	}

	// Per-slot uniqueness on the teacher, room, and class axes, plus no
	// repeat of one lesson inside a single slot.
	if e.teacherAt[lesson.TeacherID][candidate.Slot] ||
		e.roomAt[candidate.RoomID][candidate.Slot] ||
		e.classAt[lesson.ClassID][candidate.Slot] ||
		e.lessonAt[lesson.ID][candidate.Slot] {
		return false
	}

	// Occurrence k of every synchronization peer must share this slot; an
	// already-placed peer occurrence anchors it.
	for _, peer := range e.snapshot.SyncPeers(lesson) {
		peerSlot, anchored := e.occSlot[Occurrence{LessonID: peer.ID, Index: candidate.Occurrence.Index}]
		if anchored && peerSlot != candidate.Slot {
			return false
		}
	}

	return true
}

// Commit adds the candidate to the committed set and updates every
// occupancy index, or leaves both untouched and returns
// ErrIllegalAssignment. The check happens before any index is written, so
// the committed set and the indexes can never disagree.
func (e *Engine) Commit(candidate Assignment) error {
	if !e.IsLegal(candidate) {
		return fmt.Errorf("%w: occurrence %v at %v in room %v", ErrIllegalAssignment, candidate.Occurrence, candidate.Slot, candidate.RoomID)
	}

	lesson, _ := e.snapshot.Lesson(candidate.Occurrence.LessonID)
	markBusy(e.teacherAt, lesson.TeacherID, candidate.Slot)
	markBusy(e.roomAt, candidate.RoomID, candidate.Slot)
	markBusy(e.classAt, lesson.ClassID, candidate.Slot)
	markBusy(e.lessonAt, lesson.ID, candidate.Slot)
	e.occSlot[candidate.Occurrence] = candidate.Slot
	e.trail = append(e.trail, candidate)

	return nil
}

// Uncommit removes the most recent commitment and reverts every index, in
// LIFO order. It reports false when nothing is committed.
func (e *Engine) Uncommit() (Assignment, bool) {
	if len(e.trail) == 0 {
		return Assignment{}, false
	}

	last := e.trail[len(e.trail)-1]
	e.trail = e.trail[:len(e.trail)-1]

	lesson, _ := e.snapshot.Lesson(last.Occurrence.LessonID)
	delete(e.teacherAt[lesson.TeacherID], last.Slot)
	delete(e.roomAt[last.RoomID], last.Slot)
	delete(e.classAt[lesson.ClassID], last.Slot)
	delete(e.lessonAt[lesson.ID], last.Slot)
	delete(e.occSlot, last.Occurrence)

	return last, true
}

// Peers returns the lessons that must share slots with the given lesson.
func (e *Engine) Peers(lessonID string) []*Lesson {
	lesson, ok := e.snapshot.Lesson(lessonID)
	if !ok {
		return nil
	}
	return e.snapshot.SyncPeers(lesson)
}

// Complete reports whether every lesson occurrence has an assignment.
func (e *Engine) Complete() bool {
	return len(e.trail) == e.snapshot.TotalOccurrences()
}

// Committed returns a copy of the committed assignments in commit order.
func (e *Engine) Committed() []Assignment {
	committed := make([]Assignment, len(e.trail))
	copy(committed, e.trail)
	return committed
}

// AnchorSlot returns the slot a synchronization peer has already fixed for
// the given occurrence index, if any.
func (e *Engine) AnchorSlot(lesson *Lesson, index int) (TimeSlot, bool) {
	for _, peer := range e.snapshot.SyncPeers(lesson) {
		if slot, ok := e.occSlot[Occurrence{LessonID: peer.ID, Index: index}]; ok {
			return slot, true
		}
	}
	return TimeSlot{}, false
}

// GroupSlotOpen reports whether the slot is simultaneously workable for the
// lesson and every synchronization peer: all teachers available, and no
// bound teacher or class already busy there. Used to prune anchor
// candidates before any group member is placed.
func (e *Engine) GroupSlotOpen(lesson *Lesson, slot TimeSlot) bool {
	members := append([]*Lesson{lesson}, e.snapshot.SyncPeers(lesson)...)
	for _, member := range members {
		teacher, ok := e.snapshot.Teacher(member.TeacherID)
		if !ok || !teacher.Available(slot) {
			return false
		}
		if e.teacherAt[member.TeacherID][slot] || e.classAt[member.ClassID][slot] {
			return false
		}
	}
	return true
}

// RoomFree reports whether the room is unoccupied at the slot.
func (e *Engine) RoomFree(roomID string, slot TimeSlot) bool {
	return !e.roomAt[roomID][slot]
}

func markBusy(index map[string]map[TimeSlot]bool, id string, slot TimeSlot) {
	slots, ok := index[id]
	if !ok {
		slots = make(map[TimeSlot]bool)
		index[id] = slots
	}
	slots[slot] = true
}
