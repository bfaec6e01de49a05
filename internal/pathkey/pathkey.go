// Package pathkey computes a rolling hash over the sequence of moves
// played from the root of a search, distinct from the board-key hash
// in internal/shogi. Two nodes reachable by different move sequences
// that happen to produce the same board position still get distinct
// path keys, which is what internal/reptable and internal/visithist
// need to tell "this exact path revisited a position" (repetition)
// apart from "some other path reached an identical position"
// (transposition, handled by the board key instead).
//
// Grounded on original_source/node.hpp's path_key_ field and its
// PathKeyAfter/PathKeyBefore differential-update contract: the key is
// updated incrementally per ply rather than recomputed from scratch,
// and undoing a move exactly reverses the update. The original mixes
// move and depth through a table of per-depth Zobrist-style random
// values; this package gets the same effect from xxhash.Sum64 (the
// dependency the rest of the corpus reaches for hashing), seeded with
// the move and the depth so that the same move played at two different
// depths contributes different bits.
package pathkey

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Key is a path hash. The zero Key is the path key of the root node.
type Key uint64

// MaxPathKeyDepth bounds the depths this package differentiates; deeper
// plies wrap around via depth%MaxPathKeyDepth, matching the original's
// fixed-size per-depth table.
const MaxPathKeyDepth = 1 << 14

// After returns the path key reached by playing moveCode (an opaque,
// move-identifying integer — callers pass shogi.Move converted to
// uint16) at the given depth from a node whose path key is cur.
func After(cur Key, moveCode uint16, depth int) Key {
	return cur ^ mix(moveCode, depth)
}

// Before is the inverse of After: given the path key after playing
// moveCode at depth, recovers the path key before it. XOR is its own
// inverse, so this is the same computation as After, but it is kept as
// a distinct named function to mirror the original's PathKeyBefore and
// to make call sites self-documenting about direction.
func Before(cur Key, moveCode uint16, depth int) Key {
	return cur ^ mix(moveCode, depth)
}

func mix(moveCode uint16, depth int) Key {
	var buf [10]byte
	binary.LittleEndian.PutUint16(buf[0:2], moveCode)
	binary.LittleEndian.PutUint64(buf[2:10], uint64(depth%MaxPathKeyDepth))
	return Key(xxhash.Sum64(buf[:]))
}
