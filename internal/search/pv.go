package search

import (
	"sort"

	"github.com/komori-n/KomoringHeights-sub000/internal/matelen"
	"github.com/komori-n/KomoringHeights-sub000/internal/node"
	"github.com/komori-n/KomoringHeights-sub000/internal/pnum"
	"github.com/komori-n/KomoringHeights-sub000/internal/shogi"
)

// getMatePath walks the transposition table from root, greedily
// picking at each OR node the move whose child is proven with the
// shortest recorded length and at each AND node the move whose child
// is proven with the longest (the defender's best try), until no
// legal move remains or the walk exceeds len plies.
//
// Grounded on original_source/komoring_heights.hpp's GetMatePath (a
// main-thread-only post-search reconstruction), implemented here as a
// direct greedy walk against already-populated table entries rather
// than BestMoves()'s separate memoized SearchPv pass, since this
// repository's Query.LookUp already exposes exactly the (pn, len)
// information the walk needs.
func (e *Engine) getMatePath(root *node.Node, maxLen matelen.MateLen) []shogi.Move {
	var moves []shogi.Move
	var undos []node.Undo

	bound := matelen.DepthMax
	if l := maxLen.Len(); l >= 0 && l < bound {
		bound = l
	}

	cur := root
	for i := 0; i < bound; i++ {
		candidates := cur.GenerateMoves()
		if len(candidates) == 0 {
			break
		}

		var bestMove shogi.Move
		var bestLen matelen.MateLen
		found := false

		for _, m := range candidates {
			var childLen matelen.MateLen
			var provenPn pnum.PnDn
			var oldChild bool
			cur.PeekAfterMove(m, func(child *node.Node) {
				q := child.NewQuery()
				r := q.LookUp(&oldChild, matelen.DepthMaxLen, func() (pnum.PnDn, pnum.PnDn) {
					return pnum.Unit, pnum.Unit
				})
				provenPn = r.Pn()
				childLen = r.Len()
			})
			if provenPn != 0 {
				continue
			}
			switch {
			case !found:
				bestMove, bestLen, found = m, childLen, true
			case cur.OrNode() && childLen.Less(bestLen):
				bestMove, bestLen = m, childLen
			case !cur.OrNode() && bestLen.Less(childLen):
				bestMove, bestLen = m, childLen
			}
		}

		if !found {
			break
		}
		moves = append(moves, bestMove)
		undos = append(undos, cur.DoMove(bestMove))
	}

	for i := len(undos) - 1; i >= 0; i-- {
		cur.UndoMove(undos[i])
	}
	return moves
}

// PVLine is one reported mating line: its full move sequence and the
// proven length of the position it starts from.
type PVLine struct {
	Moves []shogi.Move
	Len   matelen.MateLen
}

// collectPVLines builds up to target distinct mating lines starting
// from root's own legal moves, grounded on multi_pv.hpp's per-root-move
// PV bookkeeping: every root move whose child is itself proven
// contributes one line, ranked root-node-best-first (shortest length
// for an OR root, longest for an AND root, matching
// result.SearchResultComparer's own tie-break direction) and capped at
// target lines.
//
// target <= 1 always returns the single getMatePath line, matching
// ordinary single-PV search; a target larger than the number of proven
// root moves simply returns every one of them.
func (e *Engine) collectPVLines(root *node.Node, rootLen matelen.MateLen, target int) []PVLine {
	if target <= 1 {
		return []PVLine{{Moves: e.getMatePath(root, rootLen), Len: rootLen}}
	}

	type cand struct {
		move shogi.Move
		len  matelen.MateLen
	}
	var wins []cand
	for _, m := range root.GenerateMoves() {
		var childLen matelen.MateLen
		var provenPn pnum.PnDn
		var oldChild bool
		root.PeekAfterMove(m, func(child *node.Node) {
			q := child.NewQuery()
			r := q.LookUp(&oldChild, matelen.DepthMaxLen, func() (pnum.PnDn, pnum.PnDn) {
				return pnum.Unit, pnum.Unit
			})
			provenPn = r.Pn()
			childLen = r.Len()
		})
		if provenPn != 0 {
			continue
		}
		wins = append(wins, cand{move: m, len: childLen})
	}

	sort.SliceStable(wins, func(a, b int) bool {
		if root.OrNode() {
			return wins[a].len.Less(wins[b].len)
		}
		return wins[b].len.Less(wins[a].len)
	})
	if len(wins) > target {
		wins = wins[:target]
	}

	lines := make([]PVLine, 0, len(wins))
	for _, c := range wins {
		u := root.DoMove(c.move)
		tail := e.getMatePath(root, c.len.Succ())
		root.UndoMove(u)

		moves := make([]shogi.Move, 0, len(tail)+1)
		moves = append(moves, c.move)
		moves = append(moves, tail...)
		lines = append(lines, PVLine{Moves: moves, Len: c.len.Succ()})
	}
	if len(lines) == 0 {
		lines = append(lines, PVLine{Moves: e.getMatePath(root, rootLen), Len: rootLen})
	}
	return lines
}
