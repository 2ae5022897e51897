package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexAndAttributesRoundTrip(t *testing.T) {
	for range 10 {
		// Arrange
		var occurrences uint64 = uint64(rand.Intn(50) + 1)
		var slots uint64 = uint64(rand.Intn(42) + 1)
		var rooms uint64 = uint64(rand.Intn(30) + 1)

		indexer := NewIndexer(occurrences, slots, rooms)

		// Act & Assert
		for occurrence := range occurrences {
			for slot := range slots {
				for room := range rooms {
					index := indexer.Index(occurrence, slot, room)
					assert.GreaterOrEqual(t, index, uint64(1), "variables must be 1-based for DIMACS")

					gotOccurrence, gotSlot, gotRoom := indexer.Attributes(index)
					assert.Equal(t, occurrence, gotOccurrence)
					assert.Equal(t, slot, gotSlot)
					assert.Equal(t, room, gotRoom)
				}
			}
		}
	}
}

func TestIndexIsInjective(t *testing.T) {
	// Arrange
	scenarios := [][3]uint64{
		{10, 30, 5},
		{24, 42, 12},
		{1, 1, 1},
		{7, 15, 3},
	}

	for _, scenario := range scenarios {
		occurrences, slots, rooms := scenario[0], scenario[1], scenario[2]
		indexer := NewIndexer(occurrences, slots, rooms)

		// Act
		seen := make(map[uint64]bool, occurrences*slots*rooms)
		for occurrence := range occurrences {
			for slot := range slots {
				for room := range rooms {
					seen[indexer.Index(occurrence, slot, room)] = true
				}
			}
		}

		// Assert
		assert.Equal(t, int(occurrences*slots*rooms), len(seen))
	}
}
