package model

// Indexer gives a unique SAT variable to a combination of placement
// attributes and vice versa. Variables are 1-based to fit the DIMACS
// convention.
type Indexer interface {
	// Index returns the variable encoding (occurrence, slot, room).
	Index(occurrence, slot, room uint64) uint64
	// Attributes decodes a variable back into (occurrence, slot, room).
	Attributes(index uint64) (occurrence uint64, slot uint64, room uint64)
}

func NewIndexer(occurrences, slots, rooms uint64) Indexer {
	return &sortedIndexer{
		occurrences: occurrences,
		slots:       slots,
		rooms:       rooms,
	}
}
