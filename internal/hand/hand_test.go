package hand

import "testing"

func TestDominance(t *testing.T) {
	cases := []struct {
		name   string
		h1, h2 Hand
		want   bool
	}{
		{"equal", Hand{}.Add(Pawn, 2), Hand{}.Add(Pawn, 2), true},
		{"superset", Hand{}.Add(Pawn, 3).Add(Gold, 1), Hand{}.Add(Pawn, 2), true},
		{"missing kind", Hand{}.Add(Pawn, 2), Hand{}.Add(Gold, 1), false},
		{"fewer count", Hand{}.Add(Pawn, 1), Hand{}.Add(Pawn, 2), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.h1.Contains(c.h2); got != c.want {
				t.Errorf("Contains = %v, want %v", got, c.want)
			}
		})
	}
}

func TestDominanceDiffRoundTrip(t *testing.T) {
	h1 := Hand{}.Add(Pawn, 3).Add(Rook, 1)
	h2 := Hand{}.Add(Pawn, 1)
	if !h1.Contains(h2) {
		t.Fatal("precondition: h1 must contain h2")
	}
	diff := Diff(h1, h2)
	got := h2
	for k := Kind(0); k < numKinds; k++ {
		got = got.Add(k, diff.Count(k))
	}
	if !got.Equal(h1) {
		t.Errorf("h2 + diff = %v, want %v", got, h1)
	}
}

func TestSaturatingAdd(t *testing.T) {
	h := Hand{}
	for i := 0; i < 100; i++ {
		h = h.Add(Pawn, 1)
	}
	if h.Count(Pawn) != maxCount[Pawn] {
		t.Errorf("Count(Pawn) = %d, want saturated at %d", h.Count(Pawn), maxCount[Pawn])
	}
}

func TestMergeIntersect(t *testing.T) {
	a := Hand{}.Add(Pawn, 1).Add(Gold, 2)
	b := Hand{}.Add(Pawn, 2).Add(Rook, 1)

	merged := Merge(a, b)
	if merged.Count(Pawn) != 2 || merged.Count(Gold) != 2 || merged.Count(Rook) != 1 {
		t.Errorf("Merge = %v, want max per kind", merged)
	}

	inter := Intersect(a, b)
	if inter.Count(Pawn) != 1 || inter.Count(Gold) != 0 || inter.Count(Rook) != 0 {
		t.Errorf("Intersect = %v, want min per kind", inter)
	}
}

type fixedAlternative map[Kind]bool

func (f fixedAlternative) WouldEnableAlternative(k Kind) bool { return f[k] }

func TestHandSetDisproofRemovesAlternativeChecks(t *testing.T) {
	hs := NewHandSet(DisproofHandTag)
	hs.Update(Hand{}.Add(Gold, 1).Add(Pawn, 2))

	got := hs.Get(fixedAlternative{Gold: true})
	if got.Count(Gold) != 0 {
		t.Errorf("Gold should have been removed from disproof hand, got %v", got)
	}
	if got.Count(Pawn) != 2 {
		t.Errorf("Pawn should be untouched, got %v", got)
	}
}

func TestHandSetProofAddsAlternativeEvasions(t *testing.T) {
	hs := NewHandSet(ProofHandTag)
	hs.Update(Hand{}.Add(Pawn, 1))

	got := hs.Get(fixedAlternative{Silver: true})
	if got.Count(Silver) != 1 {
		t.Errorf("Silver should have been added to proof hand, got %v", got)
	}
}

func TestHandSetNoAlternativeLeavesHandUnchanged(t *testing.T) {
	hs := NewHandSet(ProofHandTag)
	hs.Update(Hand{}.Add(Pawn, 1))
	got := hs.Get(NoAlternative)
	if got.Count(Pawn) != 1 || got.Total() != 1 {
		t.Errorf("hand should be unchanged, got %v", got)
	}
}
