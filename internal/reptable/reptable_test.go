package reptable

import "testing"

func TestInsertContains(t *testing.T) {
	tbl := New(64)
	tbl.Insert(12345, 4)
	depth, ok := tbl.Contains(12345)
	if !ok || depth != 4 {
		t.Fatalf("expected depth 4, got depth=%d ok=%v", depth, ok)
	}
}

func TestContainsMissingKey(t *testing.T) {
	tbl := New(64)
	if _, ok := tbl.Contains(999); ok {
		t.Fatal("expected Contains to report false for an unseen key")
	}
}

func TestInsertKeepsMaxDepth(t *testing.T) {
	tbl := New(64)
	tbl.Insert(7, 2)
	tbl.Insert(7, 9)
	tbl.Insert(7, 1)
	depth, ok := tbl.Contains(7)
	if !ok || depth != 9 {
		t.Fatalf("expected max depth 9 retained, got %d", depth)
	}
}

func TestClearRemovesEntries(t *testing.T) {
	tbl := New(64)
	tbl.Insert(1, 1)
	tbl.Clear()
	if _, ok := tbl.Contains(1); ok {
		t.Fatal("expected Clear to remove all entries")
	}
}

func TestResizeClearsTable(t *testing.T) {
	tbl := New(64)
	tbl.Insert(3, 5)
	tbl.Resize(128)
	if tbl.Size() != 128 {
		t.Fatalf("expected size 128 after Resize, got %d", tbl.Size())
	}
	if _, ok := tbl.Contains(3); ok {
		t.Fatal("expected Resize to a different size to clear the table")
	}
}

func TestGarbageCollectionEvictsOldGenerations(t *testing.T) {
	tbl := New(8) // entriesPerGeneration=1, forces generation to advance every insert
	for i := uint64(1); i <= 40; i++ {
		tbl.Insert(i*97+1, int(i))
	}
	if tbl.Generation() == 0 {
		t.Fatal("expected generation counter to have advanced after many inserts")
	}
}
