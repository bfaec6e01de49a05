package pathkey

import "testing"

func TestAfterBeforeRoundTrip(t *testing.T) {
	var cur Key
	after := After(cur, 42, 3)
	if after == cur {
		t.Fatal("After should change the key")
	}
	before := Before(after, 42, 3)
	if before != cur {
		t.Fatalf("Before did not invert After: got %x want %x", before, cur)
	}
}

func TestDifferentDepthsDiverge(t *testing.T) {
	a := After(0, 7, 1)
	b := After(0, 7, 2)
	if a == b {
		t.Error("same move at different depths should produce different path keys")
	}
}

func TestDifferentMovesDiverge(t *testing.T) {
	a := After(0, 7, 5)
	b := After(0, 8, 5)
	if a == b {
		t.Error("different moves at the same depth should produce different path keys")
	}
}

func TestDepthWraps(t *testing.T) {
	a := After(0, 1, 3)
	b := After(0, 1, 3+MaxPathKeyDepth)
	if a != b {
		t.Error("depths congruent mod MaxPathKeyDepth should collide by design")
	}
}
