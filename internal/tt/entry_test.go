package tt

import (
	"testing"

	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
	"github.com/komori-n/KomoringHeights-sub000/internal/matelen"
	"github.com/komori-n/KomoringHeights-sub000/internal/pnum"
	"github.com/komori-n/KomoringHeights-sub000/internal/result"
)

func TestEntryDefaultIsNull(t *testing.T) {
	var e Entry
	if !e.IsNull() {
		t.Fatal("zero-value Entry should be null")
	}
}

func TestEntryInitClearsNull(t *testing.T) {
	var e Entry
	e.Init(0x334334, hand.Hand{})
	if e.IsNull() {
		t.Fatal("Init should clear the null flag")
	}
	if !e.IsFor(0x334334) {
		t.Fatal("entry should address the board key it was initialized with")
	}
	e.SetNull()
	if !e.IsNull() {
		t.Fatal("SetNull should mark the entry null again")
	}
}

func TestEntryIsForHand(t *testing.T) {
	var e Entry
	h := hand.Hand{}.Add(hand.Pawn, 1)
	e.Init(0x264264, h)
	if !e.IsForHand(0x264264, h) {
		t.Fatal("expected exact (board_key, hand) match")
	}
	if e.IsForHand(0x264264, hand.Hand{}) {
		t.Fatal("different hand should not match")
	}
	if e.IsForHand(0x111111, h) {
		t.Fatal("different board_key should not match")
	}
}

func TestEntryUpdateUnknownTracksMinDepth(t *testing.T) {
	var e Entry
	e.Init(0x1, hand.Hand{})
	e.UpdateUnknown(5, 10, 10, 1, result.FullBits, 0, hand.Hand{})
	if e.MinDepth() != 5 {
		t.Fatalf("expected min depth 5, got %d", e.MinDepth())
	}
	e.UpdateUnknown(2, 10, 10, 1, result.FullBits, 0, hand.Hand{})
	if e.MinDepth() != 2 {
		t.Fatalf("expected min depth to drop to 2, got %d", e.MinDepth())
	}
	e.UpdateUnknown(9, 10, 10, 1, result.FullBits, 0, hand.Hand{})
	if e.MinDepth() != 2 {
		t.Fatalf("min depth should not increase, got %d", e.MinDepth())
	}
}

func TestEntryUpdateProvenDisprovenBonusAmount(t *testing.T) {
	var e Entry
	e.Init(0x1, hand.Hand{})
	e.UpdateProven(matelen.New(3, 0), 1)
	if e.Amount() <= finalAmountBonus {
		t.Fatalf("proven update should bump amount well past the bonus, got %d", e.Amount())
	}
	if e.ProvenLen().Len() != 3 {
		t.Fatalf("expected proven len 3, got %d", e.ProvenLen().Len())
	}
}

func TestEntryLookUpExactProven(t *testing.T) {
	var e Entry
	e.Init(0x1, hand.Hand{})
	e.UpdateProven(matelen.New(3, 0), 50)

	length := matelen.New(10, 0)
	pn, dn := pnum.PnDn(1), pnum.PnDn(1)
	var useOld bool
	ok := e.LookUp(hand.Hand{}, 1, &length, &pn, &dn, &useOld)
	if !ok {
		t.Fatal("exact-hand lookup should report a match")
	}
	if pn != 0 || dn != pnum.Infinite {
		t.Fatalf("expected proven (pn,dn)=(0,inf), got (%d,%d)", pn, dn)
	}
	if length.Len() != 3 {
		t.Fatalf("expected returned length 3, got %d", length.Len())
	}
}

func TestEntryLookUpSuperiorInferior(t *testing.T) {
	var e Entry
	fewPawns := hand.Hand{}.Add(hand.Pawn, 1)
	e.Init(0x1, fewPawns)
	e.UpdateUnknown(1, 4, 6, 1, result.FullBits, 0, hand.Hand{})

	// Querying with a superior hand (more pawns) should be able to pick
	// up the stored dn as a lower bound once min_depth <= depth.
	manyPawns := hand.Hand{}.Add(hand.Pawn, 3)
	length := matelen.New(20, 0)
	pn, dn := pnum.PnDn(1), pnum.PnDn(1)
	var useOld bool
	if !e.LookUp(manyPawns, 5, &length, &pn, &dn, &useOld) {
		t.Fatal("superior-hand lookup should find a usable bound")
	}
	if dn < 6 {
		t.Fatalf("expected dn to pick up the stored bound of 6, got %d", dn)
	}
}

func TestEntryLookUpUnrelatedHandMisses(t *testing.T) {
	var e Entry
	e.Init(0x1, hand.Hand{}.Add(hand.Pawn, 1))
	e.UpdateUnknown(1, 4, 6, 1, result.FullBits, 0, hand.Hand{})

	length := matelen.New(20, 0)
	pn, dn := pnum.PnDn(1), pnum.PnDn(1)
	var useOld bool
	// Different board key entirely: IsFor would already exclude this in
	// Query, but LookUp itself only checks hand dominance, so craft a
	// hand that's neither superior nor inferior by using Lance instead.
	other := hand.Hand{}.Add(hand.Lance, 1)
	if e.LookUp(other, 5, &length, &pn, &dn, &useOld) {
		t.Fatal("unrelated hand should not match")
	}
}
