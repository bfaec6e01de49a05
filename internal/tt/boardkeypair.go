package tt

import "github.com/komori-n/KomoringHeights-sub000/internal/hand"

// BoardKeyHandPair names a node by value: the pair a caller needs to
// re-enter the transposition table from outside it, grounded on
// original_source/board_key_hand_pair.hpp.
type BoardKeyHandPair struct {
	BoardKey uint64
	Hand     hand.Hand
}
