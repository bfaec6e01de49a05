package shogi

import "testing"

func TestKingSquareTrackedOnPlaceAndMove(t *testing.T) {
	p := NewEmpty()
	p.PlacePiece(MakeSquare(4, 8), NewPiece(KindKing, Black))
	p.PlacePiece(MakeSquare(4, 0), NewPiece(KindKing, White))
	p.SetSideToMove(Black)

	if p.KingSquare(Black) != MakeSquare(4, 8) {
		t.Fatalf("black king square not tracked correctly: %s", p.KingSquare(Black))
	}

	m := NewMove(MakeSquare(4, 8), MakeSquare(4, 7), false)
	u := p.DoMove(m)
	if p.KingSquare(Black) != MakeSquare(4, 7) {
		t.Fatalf("black king square not updated after move: %s", p.KingSquare(Black))
	}
	p.UndoMove(u)
	if p.KingSquare(Black) != MakeSquare(4, 8) {
		t.Fatalf("black king square not restored after undo: %s", p.KingSquare(Black))
	}
}

func TestCapturedPieceGoesToHandDemoted(t *testing.T) {
	p := NewEmpty()
	p.PlacePiece(MakeSquare(4, 0), NewPiece(KindDragon, White))
	p.PlacePiece(MakeSquare(4, 1), NewPiece(KindRook, Black))
	p.SetSideToMove(Black)

	m := NewMove(MakeSquare(4, 1), MakeSquare(4, 0), false)
	p.DoMove(m)

	if got := p.HandOf(Black).Count(6); got != 1 {
		t.Fatalf("expected one rook in black's hand after capturing a dragon, got %d", got)
	}
}

func TestBoardKeyChangesWithEachDistinctPosition(t *testing.T) {
	a := mustParse(t, "4k4/9/9/9/9/9/9/9/4K4 b - 1")
	b := mustParse(t, "4k4/9/9/9/9/9/9/9/3K5 b - 1")
	if a.BoardKey() == b.BoardKey() {
		t.Fatal("distinct positions produced the same board key")
	}
}

func TestSetHandOverwritesCleanly(t *testing.T) {
	p := NewEmpty()
	p.SetHand(Black, p.HandOf(Black).Add(0, 3))
	if got := p.HandOf(Black).Count(0); got != 3 {
		t.Fatalf("expected 3 pawns in hand, got %d", got)
	}
	p.SetHand(Black, p.HandOf(Black).Add(0, 0)) // no-op overwrite with same value
	if got := p.HandOf(Black).Count(0); got != 3 {
		t.Fatalf("expected hand unchanged, got %d", got)
	}
}
