package shogi

import "testing"

func TestParseSFENRoundTrip(t *testing.T) {
	cases := []string{
		"9/9/9/9/9/9/9/9/9 b - 1",
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1",
		"4k4/9/9/9/9/9/9/9/4K4 b RB2g2s2n2l9p 1",
	}
	for _, sfen := range cases {
		p, err := ParseSFEN(sfen)
		if err != nil {
			t.Fatalf("ParseSFEN(%q) failed: %v", sfen, err)
		}
		got := p.SFEN()
		if got != sfen {
			t.Errorf("round-trip mismatch: in=%q out=%q", sfen, got)
		}
	}
}

func TestParseSFENPromotedPiece(t *testing.T) {
	p, err := ParseSFEN("4k4/9/4+B4/9/9/9/9/9/4K4 b - 1")
	if err != nil {
		t.Fatalf("ParseSFEN failed: %v", err)
	}
	sq := MakeSquare(4, 2)
	pc := p.PieceAt(sq)
	if pc.Kind() != KindHorse {
		t.Fatalf("expected horse at %s, got kind %v", sq, pc.Kind())
	}
	if pc.Color() != Black {
		t.Fatalf("expected black horse, got %v", pc.Color())
	}
}

func TestParseSFENHandCounts(t *testing.T) {
	p, err := ParseSFEN("4k4/9/9/9/9/9/9/9/4K4 b 2P3p 1")
	if err != nil {
		t.Fatalf("ParseSFEN failed: %v", err)
	}
	if got := p.HandOf(Black).Count(0); got != 2 {
		t.Errorf("expected black pawn count 2, got %d", got)
	}
	if got := p.HandOf(White).Count(0); got != 3 {
		t.Errorf("expected white pawn count 3, got %d", got)
	}
}

func TestParseSFENRejectsMalformed(t *testing.T) {
	if _, err := ParseSFEN("not a sfen"); err == nil {
		t.Fatal("expected error for malformed sfen")
	}
	if _, err := ParseSFEN("9/9/9/9/9/9/9/9 b - 1"); err == nil {
		t.Fatal("expected error for wrong rank count")
	}
}
