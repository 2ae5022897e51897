package model

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// backtrackScheduler is a depth-first search over the constraint engine. The
// recursion is an explicit stack of decision frames, so the worst-case depth
// is the number of lesson occurrences rather than a runtime stack limit.
//
// Decisions branch on slots only: rooms of one type are indistinguishable
// under every hard constraint, so the first free room of the required type
// can be taken without forfeiting any solution.
type backtrackScheduler struct{}

// frame is one decision: an occurrence, its candidate slots at the moment
// the frame was pushed, and a cursor over them. Engine state when a frame
// is on top and uncommitted is identical to the state at push time, so the
// candidate list never goes stale.
type frame struct {
	occurrence Occurrence
	slots      []TimeSlot
	next       int
	committed  bool
}

func (scheduler *backtrackScheduler) Schedule(ctx context.Context, snapshot *Snapshot, config Config) Result {
	if err := snapshot.Validate(); err != nil {
		return failure(ReasonConfiguration, err.Error())
	}

	deadline := time.Time{}
	if config.Timeout > 0 {
		deadline = time.Now().Add(config.Timeout)
	}

	engine := NewEngine(snapshot)
	rng := rand.New(rand.NewPCG(uint64(config.Seed), 0x9e3779b97f4a7c15))

	pending := make(map[Occurrence]bool, snapshot.TotalOccurrences())
	for _, occurrence := range snapshot.Occurrences() {
		pending[occurrence] = true
	}
	if len(pending) == 0 {
		return success(nil, 0)
	}

	var attempts uint64
	maxAttempts := config.maxAttempts()
	var stuck Occurrence

	stack := make([]*frame, 0, len(pending))
	stack = append(stack, scheduler.selectFrame(engine, snapshot, pending, rng))
	delete(pending, stack[0].occurrence)

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return Result{
				Reason:     ReasonBudgetExceeded,
				Diagnostic: "search cancelled before exhausting the tree",
				Attempts:   attempts,
			}
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return Result{
				Reason:     ReasonBudgetExceeded,
				Diagnostic: "search hit the time budget before exhausting the tree",
				Attempts:   attempts,
			}
		}

		top := stack[len(stack)-1]
		lesson, _ := snapshot.Lesson(top.occurrence.LessonID)

		// Returning to a frame whose subtree failed: undo its commitment
		// and move to its next candidate.
		if top.committed {
			engine.Uncommit()
			top.committed = false
		}

		for top.next < len(top.slots) {
			slot := top.slots[top.next]
			top.next++

			attempts++
			if attempts > maxAttempts {
				return Result{
					Reason:     ReasonBudgetExceeded,
					Diagnostic: fmt.Sprintf("attempt budget of %v exhausted before the tree was", maxAttempts),
					Attempts:   attempts,
				}
			}

			roomID, ok := freeRoom(engine, snapshot, lesson, slot)
			if !ok {
				continue
			}
			if err := engine.Commit(Assignment{Occurrence: top.occurrence, Slot: slot, RoomID: roomID}); err != nil {
				continue
			}
			// Forward check: a commitment that strips the last candidate
			// from some pending occurrence cannot be part of a solution.
			if !scheduler.forwardCheck(engine, snapshot, pending) {
				engine.Uncommit()
				continue
			}
			top.committed = true
			break
		}

		if !top.committed {
			// Every candidate exhausted: backtrack.
			if len(top.slots) == 0 {
				stuck = top.occurrence
			}
			pending[top.occurrence] = true
			stack = stack[:len(stack)-1]
			continue
		}

		if engine.Complete() {
			return success(engine.Committed(), attempts)
		}

		descend := scheduler.selectFrame(engine, snapshot, pending, rng)
		delete(pending, descend.occurrence)
		stack = append(stack, descend)
	}

	diagnostic := "search tree exhausted without a complete assignment"
	if stuck.LessonID != "" {
		diagnostic = fmt.Sprintf("search tree exhausted; occurrence %v last ran out of slot candidates", stuck)
	}
	return Result{Reason: ReasonInfeasible, Diagnostic: diagnostic, Attempts: attempts}
}

// selectFrame picks the most constrained pending occurrence: the one with
// the fewest candidate slots right now. Ties resolve in input order.
func (scheduler *backtrackScheduler) selectFrame(engine *Engine, snapshot *Snapshot, pending map[Occurrence]bool, rng *rand.Rand) *frame {
	var chosen *frame
	for _, occurrence := range snapshot.Occurrences() {
		if !pending[occurrence] {
			continue
		}
		slots := scheduler.candidateSlots(engine, snapshot, occurrence, 0)
		if chosen == nil || len(slots) < len(chosen.slots) {
			chosen = &frame{occurrence: occurrence, slots: slots}
			if len(slots) == 0 {
				break
			}
		}
	}

	rng.Shuffle(len(chosen.slots), func(i, j int) {
		chosen.slots[i], chosen.slots[j] = chosen.slots[j], chosen.slots[i]
	})
	return chosen
}

// candidateSlots intersects teacher availability, room stock, and current
// occupancy through the engine. For a synchronized occurrence an
// already-placed peer anchors the slot; before any peer is placed, a slot
// qualifies only if it is open for the whole group and the group's room
// demand is satisfiable there. A positive limit stops the scan at that many
// candidates, which keeps the per-commitment forward check cheap.
func (scheduler *backtrackScheduler) candidateSlots(engine *Engine, snapshot *Snapshot, occurrence Occurrence, limit int) []TimeSlot {
	lesson, _ := snapshot.Lesson(occurrence.LessonID)

	slots := snapshot.Grid.Slots()
	anchored := false
	if anchor, ok := engine.AnchorSlot(lesson, occurrence.Index); ok {
		slots = []TimeSlot{anchor}
		anchored = true
	}

	var candidates []TimeSlot
	for _, slot := range slots {
		if lesson.SyncGroup != "" && !anchored {
			if !engine.GroupSlotOpen(lesson, slot) {
				continue
			}
			if !groupRoomsAssignable(engine, snapshot, lesson, slot) {
				continue
			}
		}
		roomID, ok := freeRoom(engine, snapshot, lesson, slot)
		if !ok {
			continue
		}
		if !engine.IsLegal(Assignment{Occurrence: occurrence, Slot: slot, RoomID: roomID}) {
			continue
		}
		candidates = append(candidates, slot)
		if limit > 0 && len(candidates) == limit {
			break
		}
	}
	return candidates
}

// forwardCheck reports whether every pending occurrence still has at least
// one candidate slot under the current commitments.
func (scheduler *backtrackScheduler) forwardCheck(engine *Engine, snapshot *Snapshot, pending map[Occurrence]bool) bool {
	for occurrence := range pending {
		if len(scheduler.candidateSlots(engine, snapshot, occurrence, 1)) == 0 {
			return false
		}
	}
	return true
}

// freeRoom returns the first unoccupied room of the lesson's required type
// at the slot.
func freeRoom(engine *Engine, snapshot *Snapshot, lesson *Lesson, slot TimeSlot) (string, bool) {
	for _, room := range snapshot.RoomsOfType(lesson.RoomType) {
		if engine.RoomFree(room.ID, slot) {
			return room.ID, true
		}
	}
	return "", false
}

// groupRoomsAssignable checks that every member of the lesson's
// synchronization group can get a distinct free room of its required type at
// the slot, via maximum bipartite matching. Room occupancy at a slot only
// grows deeper in the search, so a slot failing this now cannot work later
// in the same subtree.
func groupRoomsAssignable(engine *Engine, snapshot *Snapshot, lesson *Lesson, slot TimeSlot) bool {
	members := append([]*Lesson{lesson}, snapshot.SyncPeers(lesson)...)

	// Build neighbors predicate on type compatibility and current occupancy
	neighbors := func(memberAny any, roomAny any) (bool, error) {
		member := memberAny.(*Lesson)
		room := roomAny.(*Room)
		return room.Type == member.RoomType && engine.RoomFree(room.ID, slot), nil
	}

	membersAny := lo.Map(members, func(member *Lesson, _ int) any { return member })
	roomsAny := lo.Map(snapshot.Rooms, func(_ Room, i int) any { return &snapshot.Rooms[i] })

	graph, err := bipartitegraph.NewBipartiteGraph(membersAny, roomsAny, neighbors)
	if err != nil {
		return false
	}

	return len(graph.LargestMatching()) == len(members)
}
