// Package reptable implements the path-keyed repetition table: a
// fixed-size open-addressed hash set recording, for each path key seen
// during search, a repetition start depth; when a key is inserted again,
// the larger of the stored and the new depth is kept.
//
// Grounded line-for-line on original_source/repetition_table.hpp: a
// flat slice instead of std::vector, linear probing via StartIndex/Next
// (the same "multiply-high-bits" index spread Stockfish uses, already
// familiar from internal/board/zobrist.go's 32-bit hashing trick), and
// the same generational garbage collector that keeps the table's load
// factor low by evicting entries older than kGcKeepGeneration
// generations without a full rehash.
package reptable

import "sync"

type Generation uint32

const (
	generationPerTableSize = 20
	initialGcDuration      = Generation(6)
	gcDuration             = Generation(3)
	gcKeepGeneration       = Generation(3)
	emptyKey               = 0
)

type tableEntry struct {
	key        uint64
	depth      int
	generation Generation
}

// Table is a path-key repetition table. Safe for concurrent use; the
// original protects the flat array with a spin lock, this uses a
// sync.Mutex since the workload (occasional Insert, frequent Contains)
// does not need the spin lock's lower latency enough to justify busy
// waiting in Go's cooperatively scheduled goroutines.
type Table struct {
	mu sync.Mutex

	generation           Generation
	entryCount           uint64
	nextGenerationUpdate uint64
	nextGc               Generation
	entriesPerGeneration uint64
	entries              []tableEntry
}

// New creates a Table sized for at least tableSize entries.
func New(tableSize int) *Table {
	t := &Table{}
	t.Resize(tableSize)
	return t
}

// Resize changes the table's capacity, clearing it if the size
// actually changes.
func (t *Table) Resize(tableSize int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) == tableSize {
		return
	}
	if tableSize < 1 {
		tableSize = 1
	}
	t.entriesPerGeneration = uint64(tableSize) / generationPerTableSize
	if t.entriesPerGeneration < 1 {
		t.entriesPerGeneration = 1
	}
	t.entries = make([]tableEntry, tableSize)
	t.clearLocked()
}

// Clear removes every entry from the table.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked()
}

func (t *Table) clearLocked() {
	t.generation = 0
	t.entryCount = 0
	t.nextGenerationUpdate = t.entriesPerGeneration
	t.nextGc = initialGcDuration
	for i := range t.entries {
		t.entries[i] = tableEntry{key: emptyKey}
	}
}

// Size returns the table's capacity.
func (t *Table) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Table) startIndex(pathKey uint64) int {
	keyLow := pathKey & 0xffffffff
	return int((keyLow * uint64(len(t.entries))) >> 32)
}

func (t *Table) next(index int) int {
	if index+1 >= len(t.entries) {
		return 0
	}
	return index + 1
}

// Insert records that pathKey was seen at depth, raising the stored
// depth if pathKey was already present with a shallower one.
func (t *Table) Insert(pathKey uint64, depth int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	index := t.startIndex(pathKey)
	for t.entries[index].key != emptyKey && t.entries[index].key != pathKey {
		index = t.next(index)
	}

	if t.entries[index].key == emptyKey {
		t.entries[index] = tableEntry{key: pathKey, depth: depth, generation: t.generation}
		t.entryCount++
		if t.entryCount >= t.nextGenerationUpdate {
			t.generation++
			t.nextGenerationUpdate = t.entryCount + t.entriesPerGeneration
			if t.generation >= t.nextGc {
				t.collectGarbage()
				t.nextGc = t.generation + gcDuration
			}
		}
		return
	}

	if depth > t.entries[index].depth {
		t.entries[index].depth = depth
	}
	t.entries[index].generation = t.generation
}

// Contains reports the stored depth for pathKey, if present.
func (t *Table) Contains(pathKey uint64) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for index := t.startIndex(pathKey); t.entries[index].key != emptyKey; index = t.next(index) {
		if t.entries[index].key == pathKey {
			return t.entries[index].depth, true
		}
	}
	return 0, false
}

// Generation returns the table's current generation counter.
func (t *Table) Generation() Generation {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation
}

// collectGarbage evicts entries older than gcKeepGeneration generations
// and compacts the probe chains so linear search keeps working; caller
// must hold t.mu.
func (t *Table) collectGarbage() {
	erasedGeneration := t.generation - gcKeepGeneration

	shouldErase := func(e tableEntry) bool {
		if erasedGeneration < t.generation {
			return e.generation < erasedGeneration || t.generation < e.generation
		}
		return t.generation < e.generation && e.generation < erasedGeneration
	}

	for i := range t.entries {
		if t.entries[i].key != emptyKey && shouldErase(t.entries[i]) {
			t.entries[i].key = emptyKey
		}
	}

	for i := range t.entries {
		e := t.entries[i]
		if e.key == emptyKey {
			continue
		}
		for index := t.startIndex(e.key); index != i; index = t.next(index) {
			if t.entries[index].key == emptyKey {
				t.entries[index] = e
				t.entries[i].key = emptyKey
				break
			}
		}
	}
}
