package tt

import (
	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
	"github.com/komori-n/KomoringHeights-sub000/internal/matelen"
	"github.com/komori-n/KomoringHeights-sub000/internal/pnum"
	"github.com/komori-n/KomoringHeights-sub000/internal/reptable"
	"github.com/komori-n/KomoringHeights-sub000/internal/result"
)

// Query bundles everything needed to repeatedly read and write one
// node's transposition-table state without re-deriving its cluster
// every call, grounded on original_source/ttquery.hpp.
//
// Iteration below walks the fixed-width Cluster window returned by
// RegularTable.ClusterOf and stops at the first null slot, rather than
// the original's circular-pointer walk past the cluster boundary: the
// cluster is sized and garbage-collected so that occupied entries
// usually stay packed toward its head (see
// RegularTable.CollectGarbage/CompactEntries), so a null slot within
// the window marks the end of this board_key's occupied entries in the
// common case. A cluster can still fill with distinct keys between GC
// passes; findOrCreate falls back to evicting the lowest-amount entry
// in that case rather than assuming a null slot always exists.
type Query struct {
	repTable  *reptable.Table
	cluster   Cluster
	pathKey   uint64
	boardKey  uint64
	hand      hand.Hand
	depth     int
	noise     *Noise
	cached    *Entry
}

// NewQuery builds a Query for (boardKey, h) at depth, addressed into
// table's cluster for boardKey. noise may be nil to disable per-worker
// LookUp noise (equivalent to worker 0 / the main thread).
func NewQuery(table *RegularTable, repTable *reptable.Table, noise *Noise, pathKey, boardKey uint64, h hand.Hand, depth int) *Query {
	cluster := table.ClusterOf(boardKey)
	return &Query{
		repTable: repTable,
		cluster:  cluster,
		pathKey:  pathKey,
		boardKey: boardKey,
		hand:     h,
		depth:    depth,
		noise:    noise,
		cached:   cluster.At(0),
	}
}

// BoardKeyHandPair returns the (board_key, hand) this query addresses.
func (q *Query) BoardKeyHandPair() BoardKeyHandPair {
	return BoardKeyHandPair{BoardKey: q.boardKey, Hand: q.hand}
}

// LookUp scans this query's cluster and returns the best-known
// SearchResult for (board_key, hand) at len plies. doesHaveOldChild is
// set to true when the returned (pn, dn) came from a TCA-flagged
// ancestor entry (see Entry.LookUp). evalFunc computes the heuristic
// initial (pn, dn) and is only invoked on a full miss.
func (q *Query) LookUp(doesHaveOldChild *bool, length matelen.MateLen, evalFunc func() (pnum.PnDn, pnum.PnDn)) result.SearchResult {
	pn, dn := pnum.PnDn(1), pnum.PnDn(1)
	var amount uint32 = 1
	foundExact := false
	sumMask := result.FullBits

	for i := 0; i < q.cluster.Len(); i++ {
		e := q.cluster.At(i)
		if e.IsNull() {
			break
		}
		e.Lock()
		if e.IsFor(q.boardKey) {
			if e.LookUp(q.hand, q.depth, &length, &pn, &dn, doesHaveOldChild) {
				if e.Amount() > amount {
					amount = e.Amount()
				}
				switch {
				case pn == 0:
					h := e.Hand()
					provenLen := e.ProvenLen()
					e.Unlock()
					return result.MakeFinalProven(h, provenLen, amount)
				case dn == 0:
					h := e.Hand()
					disprovenLen := e.DisprovenLen()
					e.Unlock()
					return result.MakeFinalDisproven(h, disprovenLen, amount)
				case e.Hand().Equal(q.hand):
					if e.IsPossibleRepetition() {
						if startDepth, ok := q.repTable.Contains(q.pathKey); ok {
							e.Unlock()
							return result.MakeFinalRepetition(q.hand, length, amount, startDepth)
						}
					}
					foundExact = true
					sumMask = e.SumMask()
					q.cached = e
				}
			}
		}
		e.Unlock()
	}

	if q.noise != nil && q.noise.Tick() {
		pn++
		dn++
	}

	if foundExact {
		return result.MakeUnknown(pn, dn, q.hand, length, amount, result.UnknownData{SumMask: sumMask})
	}

	initPn, initDn := evalFunc()
	pn = pnum.Max(pn, initPn)
	dn = pnum.Max(dn, initDn)
	return result.MakeUnknown(pn, dn, q.hand, length, amount, result.UnknownData{IsFirstVisit: true})
}

// LookUpParent returns the best-known ancestor of (board_key, hand), if
// any entry in this cluster recorded one.
func (q *Query) LookUpParent() (BoardKeyHandPair, pnum.PnDn, pnum.PnDn, bool) {
	pn, dn := pnum.PnDn(1), pnum.PnDn(1)
	var parentBoardKey uint64
	parentHand := nullHandMarker

	for i := 0; i < q.cluster.Len(); i++ {
		e := q.cluster.At(i)
		if e.IsNull() {
			break
		}
		e.Lock()
		if e.IsFor(q.boardKey) {
			e.UpdateParentCandidate(q.hand, &pn, &dn, &parentBoardKey, &parentHand)
		}
		e.Unlock()
	}

	if parentHand.Equal(nullHandMarker) {
		return BoardKeyHandPair{}, pn, dn, false
	}
	return BoardKeyHandPair{BoardKey: parentBoardKey, Hand: parentHand}, pn, dn, true
}

// FinalRange returns (longest disproven length, shortest proven length)
// known for (board_key, hand) — the bracket used to reconstruct a PV's
// exact mate length after the search concludes.
func (q *Query) FinalRange() (matelen.MateLen, matelen.MateLen) {
	disprovenLen := matelen.Minus1
	provenLen := matelen.DepthMaxPlus1

	for i := 0; i < q.cluster.Len(); i++ {
		e := q.cluster.At(i)
		if e.IsNull() {
			break
		}
		e.Lock()
		if e.IsFor(q.boardKey) {
			e.UpdateFinalRange(q.hand, &disprovenLen, &provenLen)
			if e.IsForHand(q.boardKey, q.hand) && e.IsPossibleRepetition() {
				if startDepth, ok := q.repTable.Contains(q.pathKey); ok {
					sd := matelen.New(startDepth, 0)
					if disprovenLen.Less(sd) {
						disprovenLen = sd
					}
				}
			}
		}
		e.Unlock()
	}
	return disprovenLen, provenLen
}

// SetResult writes result to this query's node, dispatching to the
// proven/disproven/repetition/unknown encoding based on result's
// (pn, dn). parent, if ok is true, is recorded as the node's best-known
// ancestor for unknown results.
func (q *Query) SetResult(r result.SearchResult, parent BoardKeyHandPair, haveParent bool) {
	switch {
	case r.Pn() == 0:
		q.setFinalProven(r)
	case r.Dn() == 0:
		if r.FinalData().IsRepetition {
			q.setRepetition(r)
		} else {
			q.setFinalDisproven(r)
		}
	default:
		q.setUnknown(r, parent, haveParent)
	}
}

func (q *Query) findOrCreate(h hand.Hand) *Entry {
	if !q.cached.IsNull() {
		q.cached.Lock()
		if q.cached.IsForHand(q.boardKey, h) {
			return q.cached
		}
		q.cached.Unlock()
	}

	for i := 0; i < q.cluster.Len(); i++ {
		e := q.cluster.At(i)
		e.Lock()
		if e.IsNull() {
			e.Init(q.boardKey, h)
			q.cached = e
			return e
		}
		if e.IsForHand(q.boardKey, h) {
			q.cached = e
			return e
		}
		e.Unlock()
	}

	return q.evictAndInit(h)
}

// evictAndInit reclaims the cluster's lowest-amount entry for (boardKey,
// h), used when findOrCreate's scan finds every slot occupied by a
// distinct key. Matches RegularTable.CollectGarbage's own victim rule:
// amount carries bumpFinalAmount's bonus, so a proven/disproven entry
// outlives an unresolved one under this same comparison.
func (q *Query) evictAndInit(h hand.Hand) *Entry {
	minIdx := 0
	e0 := q.cluster.At(0)
	e0.Lock()
	minAmount := e0.Amount()
	e0.Unlock()

	for i := 1; i < q.cluster.Len(); i++ {
		e := q.cluster.At(i)
		e.Lock()
		amount := e.Amount()
		e.Unlock()
		if amount < minAmount {
			minAmount = amount
			minIdx = i
		}
	}

	victim := q.cluster.At(minIdx)
	victim.Lock()
	victim.Init(q.boardKey, h)
	q.cached = victim
	return victim
}

func (q *Query) setFinalProven(r result.SearchResult) {
	e := q.findOrCreate(r.Hand())
	e.UpdateProven(r.Len(), r.Amount())
	e.Unlock()
}

func (q *Query) setFinalDisproven(r result.SearchResult) {
	e := q.findOrCreate(r.Hand())
	e.UpdateDisproven(r.Len(), r.Amount())
	e.Unlock()
}

func (q *Query) setRepetition(r result.SearchResult) {
	e := q.findOrCreate(q.hand)
	e.SetPossibleRepetition()
	e.Unlock()
	q.repTable.Insert(q.pathKey, r.FinalData().RepetitionStartDepth)
}

func (q *Query) setUnknown(r result.SearchResult, parent BoardKeyHandPair, haveParent bool) {
	e := q.findOrCreate(q.hand)
	var parentBoardKey uint64
	parentHand := nullHandMarker
	if haveParent {
		parentBoardKey = parent.BoardKey
		parentHand = parent.Hand
	}
	e.UpdateUnknown(q.depth, r.Pn(), r.Dn(), r.Amount(), r.UnknownData().SumMask, parentBoardKey, parentHand)
	e.Unlock()
}
