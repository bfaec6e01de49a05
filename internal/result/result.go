// Package result implements the SearchResult value type exchanged
// between the search core and the transposition table, grounded on
// original_source/search_result.hpp.
package result

import (
	"fmt"

	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
	"github.com/komori-n/KomoringHeights-sub000/internal/matelen"
	"github.com/komori-n/KomoringHeights-sub000/internal/pnum"
)

// UnknownData carries the extra bookkeeping attached to a SearchResult
// whose conclusion is not yet final.
type UnknownData struct {
	IsFirstVisit   bool
	ParentBoardKey uint64
	ParentHand     hand.Hand
	SumMask        BitSet64
}

// FinalData carries the extra bookkeeping attached to a SearchResult
// whose conclusion (proof or disproof) is final.
//
// RepetitionStartDepth is meaningful only when IsRepetition is true: it
// names the depth of the ancestor node whose (board_key, hand) this
// result cycles back to, so a shallower re-entry of that same ancestor
// can tell whether the repetition is "local" to a path it isn't on and
// re-evaluate rather than trusting a stale repetition verdict.
type FinalData struct {
	IsRepetition         bool
	RepetitionStartDepth int
}

// SearchResult is a tagged union: exactly one of UnknownData or
// FinalData is meaningful, selected by IsFinal(). The original C++
// packs these into a union to save space; Go has no equivalent
// space-saving trick for a tagged struct, so both fields are carried
// plainly — the table entry encoding in internal/tt is where the space
// actually matters and it re-derives FinalData/UnknownData from its own
// compact layout rather than embedding this struct.
type SearchResult struct {
	pn, dn  pnum.PnDn
	hand    hand.Hand
	len     matelen.MateLen
	amount  uint32
	unknown UnknownData
	final   FinalData
}

// MakeUnknown builds a SearchResult with no final conclusion yet.
func MakeUnknown(pn, dn pnum.PnDn, h hand.Hand, len matelen.MateLen, amount uint32, u UnknownData) SearchResult {
	return SearchResult{pn: pn, dn: dn, hand: h, len: len, amount: amount, unknown: u}
}

// MakeFinalProven builds a proven (mate found) SearchResult.
func MakeFinalProven(h hand.Hand, len matelen.MateLen, amount uint32) SearchResult {
	return SearchResult{pn: 0, dn: pnum.Infinite, hand: h, len: len, amount: amount}
}

// MakeFinalDisproven builds a disproven (no mate) SearchResult by
// exhaustion (not repetition); RepetitionStartDepth is left at its zero
// value since it is meaningless here.
func MakeFinalDisproven(h hand.Hand, len matelen.MateLen, amount uint32) SearchResult {
	return SearchResult{pn: pnum.Infinite, dn: 0, hand: h, len: len, amount: amount}
}

// MakeFinalRepetition builds a disproven-by-repetition SearchResult,
// recording the depth of the ancestor node this path cycles back to.
func MakeFinalRepetition(h hand.Hand, len matelen.MateLen, amount uint32, startDepth int) SearchResult {
	return SearchResult{pn: pnum.Infinite, dn: 0, hand: h, len: len, amount: amount,
		final: FinalData{IsRepetition: true, RepetitionStartDepth: startDepth}}
}

func (r SearchResult) Pn() pnum.PnDn { return r.pn }
func (r SearchResult) Dn() pnum.PnDn { return r.dn }

func (r SearchResult) Phi(orNode bool) pnum.PnDn   { return pnum.Phi(r.pn, r.dn, orNode) }
func (r SearchResult) Delta(orNode bool) pnum.PnDn { return pnum.Delta(r.pn, r.dn, orNode) }

func (r SearchResult) IsFinal() bool { return r.pn == 0 || r.dn == 0 }

func (r SearchResult) Hand() hand.Hand          { return r.hand }
func (r SearchResult) Len() matelen.MateLen     { return r.len }
func (r SearchResult) Amount() uint32           { return r.amount }
func (r SearchResult) UnknownData() UnknownData { return r.unknown }
func (r SearchResult) FinalData() FinalData     { return r.final }

func (r SearchResult) String() string {
	switch {
	case r.pn == 0:
		return fmt.Sprintf("{proof_hand=%s len=%d amount=%d}", r.hand, r.len.Len(), r.amount)
	case r.dn == 0:
		if r.final.IsRepetition {
			return fmt.Sprintf("{repetition len=%d amount=%d}", r.len.Len(), r.amount)
		}
		return fmt.Sprintf("{disproof_hand=%s len=%d amount=%d}", r.hand, r.len.Len(), r.amount)
	default:
		return fmt.Sprintf("{(pn,dn)=(%d,%d) len=%d amount=%d}", r.pn, r.dn, r.len.Len(), r.amount)
	}
}

// Ordering mirrors SearchResultComparer::Ordering.
type Ordering int

const (
	Equivalent Ordering = iota
	Less
	Greater
)

// SearchResultComparer defines the strict partial order search nodes
// use to pick the "best" child: smaller φ wins, ties broken by smaller
// δ, final ties broken by preferring repetition results over plain
// disproofs at OR nodes and the reverse at AND nodes.
type SearchResultComparer struct {
	orNode bool
}

func NewSearchResultComparer(orNode bool) SearchResultComparer {
	return SearchResultComparer{orNode: orNode}
}

// Compare orders by φ, then δ; between two disproven results of which
// only one is a repetition, the non-repetition is Less at an OR node
// and the repetition is Less at an AND node
// (`!or_node_ ^ (l_is_rep < r_is_rep)`).
func (c SearchResultComparer) Compare(lhs, rhs SearchResult) Ordering {
	if lp, rp := lhs.Phi(c.orNode), rhs.Phi(c.orNode); lp != rp {
		if lp < rp {
			return Less
		}
		return Greater
	}
	if ld, rd := lhs.Delta(c.orNode), rhs.Delta(c.orNode); ld != rd {
		if ld < rd {
			return Less
		}
		return Greater
	}

	if lhs.dn == 0 {
		lRep := lhs.final.IsRepetition
		rRep := rhs.final.IsRepetition
		if lRep != rRep {
			lessInt := 0
			if lRep {
				lessInt = 1
			}
			rLessInt := 0
			if rRep {
				rLessInt = 1
			}
			lt := lessInt < rLessInt
			if !c.orNode != lt {
				return Less
			}
			return Greater
		}
	}
	return Equivalent
}
