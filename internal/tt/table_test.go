package tt

import (
	"bytes"
	"testing"

	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
	"github.com/komori-n/KomoringHeights-sub000/internal/matelen"
)

func TestRegularTableResizeEnforcesMinimum(t *testing.T) {
	var table RegularTable
	table.Resize(1)
	if len(table.entries) < clusterSize+1 {
		t.Fatalf("expected at least clusterSize+1 entries, got %d", len(table.entries))
	}
}

func TestRegularTableClusterOfIsStable(t *testing.T) {
	var table RegularTable
	table.Resize(10000)

	c1 := table.ClusterOf(0x1234)
	c2 := table.ClusterOf(0x1234)
	if c1.StartIdx() != c2.StartIdx() {
		t.Fatal("ClusterOf should be deterministic for the same board key")
	}
}

func TestRegularTableClearMakesEverythingNull(t *testing.T) {
	var table RegularTable
	table.Resize(10000)
	cluster := table.ClusterOf(0x55)
	cluster.At(0).Init(0x55, hand.Hand{})

	table.Clear()
	if !cluster.At(0).IsNull() {
		t.Fatal("Clear should null out every entry")
	}
}

func TestRegularTableCollectGarbageKeepsClustersUnderThreshold(t *testing.T) {
	var table RegularTable
	table.Resize(clusterSize * 4)

	cluster := table.ClusterOf(0x77)
	for i := 0; i < cluster.Len(); i++ {
		e := cluster.At(i)
		e.Init(0x77, hand.Hand{})
		for n := 0; n < i; n++ {
			e.UpdateProven(matelen.New(1, 0), 1)
		}
	}

	table.CollectGarbage()

	used := 0
	for i := 0; i < cluster.Len(); i++ {
		if !cluster.At(i).IsNull() {
			used++
		}
	}
	if used >= gcThreshold {
		t.Fatalf("expected fewer than %d used entries after GC, got %d", gcThreshold, used)
	}
}

func TestRegularTableSaveLoadRoundTrip(t *testing.T) {
	var table RegularTable
	table.Resize(10000)

	h := hand.Hand{}.Add(hand.Pawn, 2)
	cluster := table.ClusterOf(0x9999)
	cluster.At(0).Init(0x9999, h)
	cluster.At(0).UpdateProven(matelen.New(7, 3), ttSaveAmountThreshold+50)

	var buf bytes.Buffer
	if err := table.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var loaded RegularTable
	loaded.Resize(10000)
	if err := loaded.Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	loadedCluster := loaded.ClusterOf(0x9999)
	found := false
	for i := 0; i < loadedCluster.Len(); i++ {
		e := loadedCluster.At(i)
		if !e.IsNull() && e.IsForHand(0x9999, h) {
			found = true
			if e.ProvenLen().Len() != 7 {
				t.Fatalf("expected reloaded proven len 7, got %d", e.ProvenLen().Len())
			}
		}
	}
	if !found {
		t.Fatal("expected the saved entry to reappear after Load")
	}
}

func TestRegularTableSaveSkipsLowAmountEntries(t *testing.T) {
	var table RegularTable
	table.Resize(10000)

	cluster := table.ClusterOf(0x42)
	cluster.At(0).Init(0x42, hand.Hand{})
	// amount stays at the Init default of 1, below ttSaveAmountThreshold.

	var buf bytes.Buffer
	if err := table.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A table with nothing above-threshold should serialize to just the
	// 8-byte zero count.
	if buf.Len() != 8 {
		t.Fatalf("expected an empty-save to be 8 bytes, got %d", buf.Len())
	}
}
