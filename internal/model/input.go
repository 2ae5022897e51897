package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// RoomType tags a room with the kind of lesson it can host.
type RoomType string

const (
	RoomGeneral  RoomType = "general"
	RoomScience  RoomType = "science"
	RoomGym      RoomType = "gym"
	RoomMusic    RoomType = "music"
	RoomArt      RoomType = "art"
	RoomComputer RoomType = "computer"
	RoomHomeEc   RoomType = "home_ec"
)

// TimeSlot is one cell of the weekly grid. Day and Period are zero-based.
type TimeSlot struct {
	Day    int `json:"day"`
	Period int `json:"period"`
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("d%v.p%v", s.Day, s.Period)
}

// Grid is the weekly slot grid shared by every class.
type Grid struct {
	Days    int `json:"days"`
	Periods int `json:"periods"`
}

// Slots enumerates every slot of the grid in day-major order.
func (g Grid) Slots() []TimeSlot {
	slots := make([]TimeSlot, 0, g.Days*g.Periods)
	for day := range g.Days {
		for period := range g.Periods {
			slots = append(slots, TimeSlot{Day: day, Period: period})
		}
	}
	return slots
}

// Contains reports whether the slot lies within the grid.
func (g Grid) Contains(slot TimeSlot) bool {
	return slot.Day >= 0 && slot.Day < g.Days && slot.Period >= 0 && slot.Period < g.Periods
}

// Teacher is identified by an opaque ID. Availability is indexed
// [day][period] and must match the grid dimensions.
type Teacher struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Subjects     []string `json:"subjects"`
	Availability [][]bool `json:"availability"`
}

// Available reports whether the teacher may be scheduled at the slot.
func (t Teacher) Available(slot TimeSlot) bool {
	if slot.Day < 0 || slot.Day >= len(t.Availability) {
		return false
	}
	row := t.Availability[slot.Day]
	return slot.Period >= 0 && slot.Period < len(row) && row[slot.Period]
}

type Room struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     RoomType `json:"type"`
	Capacity int      `json:"capacity"`
}

// Class is a cohort of students following one timetable.
type Class struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Lesson is a (class, subject, teacher) tuple that needs Occurrences
// distinct slots per week. Lessons sharing a non-empty SyncGroup must be
// scheduled at identical slots.
type Lesson struct {
	ID          string   `json:"id"`
	ClassID     string   `json:"classId"`
	TeacherID   string   `json:"teacherId"`
	Subject     string   `json:"subject"`
	RoomType    RoomType `json:"roomType"`
	Occurrences int      `json:"occurrences"`
	SyncGroup   string   `json:"syncGroup"`
}

// Occurrence identifies one of the weekly repeats of a lesson.
type Occurrence struct {
	LessonID string
	Index    int
}

func (o Occurrence) String() string {
	return fmt.Sprintf("%v#%v", o.LessonID, o.Index)
}

// Assignment places one lesson occurrence into a slot and a room.
type Assignment struct {
	Occurrence Occurrence
	Slot       TimeSlot
	RoomID     string
}

// Snapshot is the read-only entity set a scheduling run operates on. Build
// one through NewSnapshot so the lookup tables exist; a run never mutates
// it, which is what makes concurrent independent runs safe.
type Snapshot struct {
	Grid     Grid      `json:"grid"`
	Teachers []Teacher `json:"teachers"`
	Rooms    []Room    `json:"rooms"`
	Classes  []Class   `json:"classes"`
	Lessons  []Lesson  `json:"lessons"`

	teacherByID map[string]*Teacher
	roomByID    map[string]*Room
	classByID   map[string]*Class
	lessonByID  map[string]*Lesson
	syncGroups  map[string][]*Lesson
	roomsByType map[RoomType][]*Room
}

func NewSnapshot(grid Grid, teachers []Teacher, rooms []Room, classes []Class, lessons []Lesson) *Snapshot {
	snapshot := &Snapshot{
		Grid:     grid,
		Teachers: teachers,
		Rooms:    rooms,
		Classes:  classes,
		Lessons:  lessons,
	}
	snapshot.index()
	return snapshot
}

func (s *Snapshot) index() {
	s.teacherByID = make(map[string]*Teacher, len(s.Teachers))
	for i := range s.Teachers {
		s.teacherByID[s.Teachers[i].ID] = &s.Teachers[i]
	}

	s.roomByID = make(map[string]*Room, len(s.Rooms))
	s.roomsByType = make(map[RoomType][]*Room)
	for i := range s.Rooms {
		room := &s.Rooms[i]
		s.roomByID[room.ID] = room
		s.roomsByType[room.Type] = append(s.roomsByType[room.Type], room)
	}

	s.classByID = make(map[string]*Class, len(s.Classes))
	for i := range s.Classes {
		s.classByID[s.Classes[i].ID] = &s.Classes[i]
	}

	s.lessonByID = make(map[string]*Lesson, len(s.Lessons))
	s.syncGroups = make(map[string][]*Lesson)
	for i := range s.Lessons {
		lesson := &s.Lessons[i]
		s.lessonByID[lesson.ID] = lesson
		if lesson.SyncGroup != "" {
			s.syncGroups[lesson.SyncGroup] = append(s.syncGroups[lesson.SyncGroup], lesson)
		}
	}
}

func (s *Snapshot) Teacher(id string) (*Teacher, bool) {
	teacher, ok := s.teacherByID[id]
	return teacher, ok
}

func (s *Snapshot) Room(id string) (*Room, bool) {
	room, ok := s.roomByID[id]
	return room, ok
}

func (s *Snapshot) Class(id string) (*Class, bool) {
	class, ok := s.classByID[id]
	return class, ok
}

func (s *Snapshot) Lesson(id string) (*Lesson, bool) {
	lesson, ok := s.lessonByID[id]
	return lesson, ok
}

// RoomsOfType returns the rooms carrying the given type tag, in input order.
func (s *Snapshot) RoomsOfType(roomType RoomType) []*Room {
	return s.roomsByType[roomType]
}

// SyncPeers returns the lessons sharing the lesson's synchronization group,
// the lesson itself excluded. A lesson outside any group has no peers.
func (s *Snapshot) SyncPeers(lesson *Lesson) []*Lesson {
	if lesson.SyncGroup == "" {
		return nil
	}
	peers := make([]*Lesson, 0, len(s.syncGroups[lesson.SyncGroup]))
	for _, member := range s.syncGroups[lesson.SyncGroup] {
		if member.ID != lesson.ID {
			peers = append(peers, member)
		}
	}
	return peers
}

// SyncGroups returns the synchronization groups keyed by group ID.
func (s *Snapshot) SyncGroups() map[string][]*Lesson {
	return s.syncGroups
}

// Occurrences enumerates every lesson occurrence in input order.
func (s *Snapshot) Occurrences() []Occurrence {
	occurrences := make([]Occurrence, 0, s.TotalOccurrences())
	for _, lesson := range s.Lessons {
		for index := range lesson.Occurrences {
			occurrences = append(occurrences, Occurrence{LessonID: lesson.ID, Index: index})
		}
	}
	return occurrences
}

// TotalOccurrences is the number of assignments a complete schedule holds.
func (s *Snapshot) TotalOccurrences() int {
	total := 0
	for _, lesson := range s.Lessons {
		total += lesson.Occurrences
	}
	return total
}

// SnapshotFromJSON loads an entity snapshot from a JSON file.
func SnapshotFromJSON(file string) (*Snapshot, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read input file: %w", err)
	}

	var inputJSON map[string]any
	if err := json.Unmarshal(bytes, &inputJSON); err != nil {
		return nil, fmt.Errorf("cannot parse input file: %w", err)
	}

	var snapshot Snapshot
	if err := mapstructure.Decode(inputJSON, &snapshot); err != nil {
		return nil, fmt.Errorf("cannot decode input file: %w", err)
	}
	snapshot.index()

	return &snapshot, nil
}
