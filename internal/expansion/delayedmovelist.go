package expansion

import "github.com/komori-n/KomoringHeights-sub000/internal/shogi"

// isSameDrop reports whether a and b are both drops onto the same
// square, regardless of the dropped piece kind.
func isSameDrop(a, b shogi.Move) bool {
	return a.IsDrop() && b.IsDrop() && a.To() == b.To()
}

// isSameBoardMove reports whether a and b move a piece between the
// same two squares, differing only in the promotion flag.
func isSameBoardMove(a, b shogi.Move) bool {
	return !a.IsDrop() && !b.IsDrop() && a.From() == b.From() && a.To() == b.To()
}

// buildDelayChains scans moves once and links every pair IsDelayable
// treats as equivalent into a chain over move-list indices: prev[i]
// == -1 marks i as a chain lead (searched first), otherwise i is
// delayed behind prev[i] and must not be searched until prev[i] has
// been. next[i] is the index delayed behind i, or -1.
//
// Grounded on original_source/delayed_move_list.hpp's IsDelayable/
// IsSame pairing: at an AND node (defender to move), any drop onto a
// square an earlier-listed drop already targets changes nothing a
// disproof search needs to examine twice — the square is either
// blocked or it isn't, independent of which piece kind blocks it — so
// it is always delayable behind the earlier drop. At either node
// type, a board move sharing its predecessor's from/to modulo
// promotion (a promoting and non-promoting variant of the same move)
// chains the same way: whichever variant is listed later waits behind
// the earlier one (move generation lists the promoting variant first).
// This applies to every piece kind and rank; no lance-specific or
// king-relative condition is checked.
func buildDelayChains(moves []shogi.Move, orNode bool) (prev, next []int) {
	n := len(moves)
	prev = make([]int, n)
	next = make([]int, n)
	for i := range prev {
		prev[i] = -1
		next[i] = -1
	}

	for i := 0; i < n; i++ {
		for j := i - 1; j >= 0; j-- {
			same := isSameBoardMove(moves[i], moves[j])
			if !orNode {
				same = same || isSameDrop(moves[i], moves[j])
			}
			if !same {
				continue
			}
			lead := j
			for next[lead] != -1 {
				lead = next[lead]
			}
			prev[i] = lead
			next[lead] = i
			break
		}
	}
	return prev, next
}
