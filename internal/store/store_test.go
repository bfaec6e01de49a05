package store

import (
	"testing"

	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
)

func TestPutGetRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	h := hand.Hand{}.Add(hand.Rook, 1).Add(hand.Pawn, 3)
	rec := Record{Proven: true, Plies: 5, PV: []string{"7g7f", "8c8d"}}

	if err := s.Put(0x1234, h, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := s.Get(0x1234, h)
	if !ok {
		t.Fatal("expected a cache hit after Put")
	}
	if got.Proven != rec.Proven || got.Plies != rec.Plies || len(got.PV) != len(rec.PV) {
		t.Errorf("Get() = %+v, want %+v", got, rec)
	}
}

func TestGetMissReturnsNotOK(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, ok := s.Get(0xdead, hand.Hand{}); ok {
		t.Error("expected a cache miss on an empty store")
	}
}

func TestDistinctHandsDoNotCollide(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	h1 := hand.Hand{}.Add(hand.Pawn, 1)
	h2 := hand.Hand{}.Add(hand.Pawn, 2)

	if err := s.Put(0x42, h1, Record{Proven: true, Plies: 1}); err != nil {
		t.Fatalf("Put h1: %v", err)
	}
	if err := s.Put(0x42, h2, Record{Proven: false}); err != nil {
		t.Fatalf("Put h2: %v", err)
	}

	got1, ok := s.Get(0x42, h1)
	if !ok || !got1.Proven {
		t.Errorf("h1 record corrupted or missing: %+v ok=%v", got1, ok)
	}
	got2, ok := s.Get(0x42, h2)
	if !ok || got2.Proven {
		t.Errorf("h2 record corrupted or missing: %+v ok=%v", got2, ok)
	}
}
