package model

type sortedIndexer struct {
	occurrences uint64
	slots       uint64
	rooms       uint64
}

func (i *sortedIndexer) Index(occurrence, slot, room uint64) uint64 {
	return 1 + room + i.rooms*slot + i.rooms*i.slots*occurrence
}

func (i *sortedIndexer) Attributes(index uint64) (occurrence uint64, slot uint64, room uint64) {
	index--

	room = index % i.rooms
	index = index / i.rooms

	slot = index % i.slots
	index = index / i.slots

	occurrence = index

	return occurrence, slot, room
}
