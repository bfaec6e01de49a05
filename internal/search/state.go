// Package search implements the df-pn+ recursive mate solver: the
// entry points a CLI or USI frontend drives (SearchMainLoop/
// SearchEntry), the recursive core (SearchImpl) built on
// internal/node and internal/expansion, a Lazy-SMP worker pool sharing
// one transposition table, and PV reconstruction.
//
// Grounded on original_source/komoring_heights.hpp for the class
// shape and method names, and original_source/komoring_heights.cpp's
// DfPnSearcher::SearchImpl for the recursive loop's control flow
// (translated from its MoveSelector-based predecessor onto this
// repository's Node/LocalExpansion types).
package search

import "github.com/komori-n/KomoringHeights-sub000/internal/pnum"

// NodeState reports what a search concluded about the root position.
type NodeState int

const (
	StateUnknown NodeState = iota
	StateProven
	StateDisproven
	StateRepetition
)

func (s NodeState) String() string {
	switch s {
	case StateProven:
		return "proven"
	case StateDisproven:
		return "disproven"
	case StateRepetition:
		return "repetition"
	default:
		return "unknown"
	}
}

// stateOf classifies a finished SearchResult the same way
// original_source's NodeState does: pn==0 is always a proof regardless
// of node polarity, dn==0 is a disproof unless tagged as a repetition.
func stateOf(pn, dn pnum.PnDn, isRepetition bool) NodeState {
	switch {
	case pn == 0:
		return StateProven
	case dn == 0:
		if isRepetition {
			return StateRepetition
		}
		return StateDisproven
	default:
		return StateUnknown
	}
}
