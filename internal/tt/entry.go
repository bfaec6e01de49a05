// Package tt implements the proof-number transposition table: a
// 64-byte-oriented Entry layout, fixed-size cluster addressing keyed on
// board_key, and a Query helper that looks up exact/superior/inferior
// matches against a node's hand.
//
// Grounded on original_source/ttentry.hpp (the Entry state machine:
// Init/SetNull/IsNull, proven_len_/disproven_len_ as a "proven above
// this many plies, disproven at or below this many plies" bracket
// around an as-yet-undetermined middle, LookUpExact/LookUpSuperior/
// LookUpInferior, UpdateUnknown/UpdateProven/UpdateDisproven,
// UpdateParentCandidate) and internal/engine/transposition.go for the
// Go-side slice-of-entries/cluster-addressing/HashFull idiom.
package tt

import (
	"runtime"
	"sync/atomic"

	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
	"github.com/komori-n/KomoringHeights-sub000/internal/matelen"
	"github.com/komori-n/KomoringHeights-sub000/internal/pnum"
	"github.com/komori-n/KomoringHeights-sub000/internal/result"
)

// finalAmountBonus makes proven/disproven entries survive eviction
// longer than unresolved ones.
const finalAmountBonus = 1000

// nullHandMarker is a Hand value that can never occur on a legal board
// (more pawns than exist in the set), used as Entry's "unused" sentinel
// exactly like the original's kNullHand via hand_.
var nullHandMarker = hand.Hand{}.Add(0, 19)

// Entry is one transposition-table slot. Conceptually 64 bytes in the
// original's packed C++ layout; Go's struct layout doesn't pack this
// tightly, but the field grouping below mirrors the original's section
// order (hand/amount, board key, proven/disproven lengths, pn/dn,
// min depth/repetition/parent hand, parent board key, sum mask).
type Entry struct {
	hand     hand.Hand
	amount   uint32
	boardKey uint64

	provenLen    matelen.MateLen
	disprovenLen matelen.MateLen

	pn, dn pnum.PnDn

	minDepth           int16
	possibleRepetition bool

	parentHand     hand.Hand
	parentBoardKey uint64
	sumMask        result.BitSet64

	// empty marks an unoccupied slot. The original distinguishes a null
	// entry via a reserved hand_ bit pattern (kNullHand) that can never
	// arise from real hand arithmetic; Go's Hand has no spare bit for
	// that trick (every count in maxCount is itself a legally reachable
	// hand value, including all-maximum), so occupancy is tracked with
	// its own flag instead of overloading the hand field.
	empty bool

	// locked implements the original's per-entry shared_mutex as a
	// simple atomic spin lock: Lazy-SMP workers hammer the same small
	// set of hot entries, and a futex-backed sync.Mutex would put every
	// worker to sleep on exactly the contention this table is built to
	// survive. Same atomic.Bool stop-flag idiom used for the worker
	// pool's own stop signal.
	locked atomic.Bool
}

// Lock spins until it acquires the entry's lock, yielding the
// goroutine's time slice between attempts so a stalled holder doesn't
// starve the scheduler.
func (e *Entry) Lock() {
	for !e.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// Unlock releases the entry's lock.
func (e *Entry) Unlock() {
	e.locked.Store(false)
}

// Init (re)initializes an entry for (boardKey, h), ready for a fresh
// unresolved search.
func (e *Entry) Init(boardKey uint64, h hand.Hand) {
	e.hand = h
	e.amount = 1
	e.boardKey = boardKey
	e.provenLen = matelen.DepthMaxPlus1
	e.disprovenLen = matelen.Minus1
	e.pn = pnum.Unit / 2
	e.dn = pnum.Unit / 2
	e.minDepth = matelen.DepthMax
	e.possibleRepetition = false
	e.parentHand = nullHandMarker
	e.parentBoardKey = 0
	e.sumMask = result.FullBits
	e.empty = false
}

func (e *Entry) SetNull()     { e.empty = true }
func (e *Entry) IsNull() bool { return e.empty }

// CopyFieldsFrom overwrites every field of e except its lock with src's,
// for relocating an entry within the table (CompactEntries) without
// copying the lock itself — a plain struct assignment would copy src's
// atomic.Bool verbatim, which is the wrong value for e's own lock state
// and a lock value should never be duplicated regardless.
func (e *Entry) CopyFieldsFrom(src *Entry) {
	e.hand = src.hand
	e.amount = src.amount
	e.boardKey = src.boardKey
	e.provenLen = src.provenLen
	e.disprovenLen = src.disprovenLen
	e.pn = src.pn
	e.dn = src.dn
	e.minDepth = src.minDepth
	e.possibleRepetition = src.possibleRepetition
	e.parentHand = src.parentHand
	e.parentBoardKey = src.parentBoardKey
	e.sumMask = src.sumMask
	e.empty = src.empty
}

func (e *Entry) IsFor(boardKey uint64) bool { return e.boardKey == boardKey }

func (e *Entry) IsForHand(boardKey uint64, h hand.Hand) bool {
	return e.hand.Equal(h) && e.boardKey == boardKey
}

func (e *Entry) Amount() uint32            { return e.amount }
func (e *Entry) Hand() hand.Hand           { return e.hand }
func (e *Entry) ParentBoardKey() uint64    { return e.parentBoardKey }
func (e *Entry) ParentHand() hand.Hand     { return e.parentHand }
func (e *Entry) SumMask() result.BitSet64  { return e.sumMask }
func (e *Entry) BoardKey() uint64          { return e.boardKey }
func (e *Entry) MinDepth() int16           { return e.minDepth }
func (e *Entry) ProvenLen() matelen.MateLen    { return e.provenLen }
func (e *Entry) DisprovenLen() matelen.MateLen { return e.disprovenLen }
func (e *Entry) Pn() pnum.PnDn { return e.pn }
func (e *Entry) Dn() pnum.PnDn { return e.dn }

// CutAmount halves the stored search-amount estimate, floored at 1 —
// used to decay entries that survive a generation without being
// touched, making them cheaper eviction targets later.
func (e *Entry) CutAmount() {
	e.amount /= 2
	if e.amount < 1 {
		e.amount = 1
	}
}

func (e *Entry) SetPossibleRepetition() {
	e.possibleRepetition = true
	e.pn, e.dn = pnum.Unit/2, pnum.Unit/2
}

func (e *Entry) IsPossibleRepetition() bool { return e.possibleRepetition }

// UpdateUnknown overwrites the entry's unresolved search state.
func (e *Entry) UpdateUnknown(depth int, pn, dn pnum.PnDn, amount uint32, sumMask result.BitSet64, parentBoardKey uint64, parentHand hand.Hand) {
	if d16 := int16(depth); d16 < e.minDepth {
		e.minDepth = d16
	}
	e.pn = pn
	e.dn = dn
	e.parentBoardKey = parentBoardKey
	e.parentHand = parentHand
	e.sumMask = sumMask
	if amount > e.amount {
		e.amount = amount
	}
}

// UpdateProven records that the position is a mate in at most len
// plies. Requires e.disprovenLen < len.
func (e *Entry) UpdateProven(length matelen.MateLen, amount uint32) {
	if length.Less(e.provenLen) {
		e.provenLen = length
	}
	e.bumpFinalAmount(amount)
}

// UpdateDisproven records that the position is not a mate within len
// plies. Requires len < e.provenLen.
func (e *Entry) UpdateDisproven(length matelen.MateLen, amount uint32) {
	if e.disprovenLen.Less(length) {
		e.disprovenLen = length
	}
	e.bumpFinalAmount(amount)
}

func (e *Entry) bumpFinalAmount(amount uint32) {
	bumped := amount + finalAmountBonus
	if bumped < amount {
		bumped = ^uint32(0)
	}
	if bumped > e.amount {
		e.amount = bumped
	}
}

// LookUp refines (len, pn, dn) using this entry's stored state for the
// query hand h at the given depth. It returns true when the entry
// applies to h at all (exact/superior/inferior) — a hint to callers
// that they can stop scanning the rest of the cluster. useOldChild is
// set when the refined (pn, dn) came from an entry whose min_depth
// predates depth — the TCA (threshold-controlled ancestor) signal that
// tells the caller this child's bound may be stale relative to the
// current path and its δ threshold should be boosted.
func (e *Entry) LookUp(h hand.Hand, depth int, length *matelen.MateLen, pn, dn *pnum.PnDn, useOldChild *bool) bool {
	depth16 := int16(depth)

	if e.hand.Equal(h) {
		e.lookUpExact(depth16, length, pn, dn, useOldChild)
		return true
	}

	if e.hand.Contains(h) {
		return e.lookUpInferior(depth16, length, pn, dn, useOldChild)
	}

	if h.Contains(e.hand) {
		return e.lookUpSuperior(depth16, length, pn, dn, useOldChild)
	}

	return false
}

func (e *Entry) lookUpExact(depth16 int16, length *matelen.MateLen, pn, dn *pnum.PnDn, useOldChild *bool) {
	switch {
	case e.provenLen.LessEqPlyOnly(*length):
		*length = e.provenLen
		*pn = 0
		*dn = pnum.Infinite
	case length.LessEqPlyOnly(e.disprovenLen):
		*length = e.disprovenLen
		*pn = pnum.Infinite
		*dn = 0
	default:
		oldMinDepth := e.minDepth
		if depth16 < e.minDepth {
			e.minDepth = depth16
		}
		if *pn < e.pn || *dn < e.dn {
			*pn = pnum.Max(*pn, e.pn)
			*dn = pnum.Max(*dn, e.dn)
			if oldMinDepth < depth16 {
				*useOldChild = true
			}
		}
	}
}

func (e *Entry) lookUpSuperior(depth16 int16, length *matelen.MateLen, pn, dn *pnum.PnDn, useOldChild *bool) bool {
	if e.provenLen.LessEqPlyOnly(*length) {
		*length = e.provenLen
		*pn = 0
		*dn = pnum.Infinite
		return true
	}
	if e.minDepth <= depth16 && *dn < e.dn {
		*dn = e.dn
		if e.minDepth < depth16 {
			*useOldChild = true
		}
		return true
	}
	return false
}

func (e *Entry) lookUpInferior(depth16 int16, length *matelen.MateLen, pn, dn *pnum.PnDn, useOldChild *bool) bool {
	if length.LessEqPlyOnly(e.disprovenLen) {
		*length = e.disprovenLen
		*pn = pnum.Infinite
		*dn = 0
		return true
	}
	if e.minDepth <= depth16 && *pn < e.pn {
		*pn = e.pn
		if e.minDepth < depth16 {
			*useOldChild = true
		}
		return true
	}
	return false
}

// UpdateParentCandidate offers this entry's stored parent pointer as a
// candidate ancestor for h, if this entry dominates or is dominated by
// h and offers a larger pn/dn than what the caller already has.
func (e *Entry) UpdateParentCandidate(h hand.Hand, pn, dn *pnum.PnDn, parentBoardKey *uint64, parentHand *hand.Hand) {
	isInferior := e.hand.Contains(h)
	isSuperior := h.Contains(e.hand)

	if isInferior && e.pn > *pn {
		*pn = e.pn
		if !e.parentHand.Equal(nullHandMarker) && (parentHand.Equal(nullHandMarker) || *pn > *dn) {
			*parentBoardKey = e.parentBoardKey
			*parentHand = applyDeltaHand(e.parentHand, e.hand, h)
		}
	}

	if isSuperior && e.dn > *dn {
		*dn = e.dn
		if !e.parentHand.Equal(nullHandMarker) && (parentHand.Equal(nullHandMarker) || *dn > *pn) {
			*parentBoardKey = e.parentBoardKey
			*parentHand = applyDeltaHand(e.parentHand, e.hand, h)
		}
	}
}

// UpdateFinalRange widens [disprovenLen, provenLen) using this entry's
// stored bracket, when this entry's hand dominates or is dominated by h.
func (e *Entry) UpdateFinalRange(h hand.Hand, disprovenLen, provenLen *matelen.MateLen) {
	if e.hand.Contains(h) && disprovenLen.LessPlyOnly(e.disprovenLen) {
		*disprovenLen = e.disprovenLen
	}
	if h.Contains(e.hand) && e.provenLen.LessPlyOnly(*provenLen) {
		*provenLen = e.provenLen
	}
}

// applyDeltaHand carries parentHand across the difference between
// childHand (the hand stored alongside parentHand) and queryHand (the
// hand actually being looked up), the same hand-shifting trick
// UpdateParentCandidate uses to report a usable ancestor even when the
// matched entry isn't an exact hand match.
func applyDeltaHand(parentHand, childHand, queryHand hand.Hand) hand.Hand {
	if queryHand.Contains(childHand) {
		delta := hand.Diff(queryHand, childHand)
		out := parentHand
		for k := hand.Kind(0); k < 7; k++ {
			out = out.Add(k, delta.Count(k))
		}
		return out
	}
	delta := hand.Diff(childHand, queryHand)
	out := parentHand
	for k := hand.Kind(0); k < 7; k++ {
		out = out.Sub(k, delta.Count(k))
	}
	return out
}
