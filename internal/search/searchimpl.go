package search

import (
	"sync/atomic"

	"github.com/komori-n/KomoringHeights-sub000/internal/expansion"
	"github.com/komori-n/KomoringHeights-sub000/internal/matelen"
	"github.com/komori-n/KomoringHeights-sub000/internal/monitor"
	"github.com/komori-n/KomoringHeights-sub000/internal/node"
	"github.com/komori-n/KomoringHeights-sub000/internal/pnum"
	"github.com/komori-n/KomoringHeights-sub000/internal/result"
	"github.com/komori-n/KomoringHeights-sub000/internal/tt"
)

// worker bundles everything one recursion needs that must not be
// shared across goroutines: its own expansion stack and node counter,
// plus the monitor and stop flag all workers of one search share.
//
// isMain marks the single worker (worker 0, or the lone worker of a
// single-threaded Search) responsible for the periodic GC/compaction
// pass: every worker consults the shared transposition table, but only
// one should ever trigger a table-wide sweep on the monitor's
// hashfull-check cadence, the same "main thread performs GC" split
// komoring_heights.hpp's SearchImplForRoot/helper-thread split draws.
type worker struct {
	stack     *expansion.ExpansionStack
	mon       *monitor.SearchMonitor
	nodeCount *atomic.Uint64
	stop      *atomic.Bool
	multiPV   int
	isMain    bool
}

func (w *worker) shouldStop() bool {
	if w.stop.Load() {
		return true
	}
	return w.mon.ShouldStop(w.nodeCount.Load())
}

// searchImpl is the recursive df-pn+ core, grounded on
// DfPnSearcher::SearchImpl: repeatedly refine n's local expansion
// against the caller's (thPhi, thDelta) thresholds, recursing into the
// single most promising child each iteration, until n's own bound
// either clears the threshold, resolves to a final result, or the
// search is told to stop.
//
// parent names the (board_key, hand) of the node whose DoMove call
// reached n in this recursion; it is recorded alongside any unknown
// result so a later FindKnownAncestor probe from a sibling branch can
// recognize n as an already-explored reconvergence point.
func searchImpl(n *node.Node, thPhi, thDelta pnum.PnDn, length matelen.MateLen, firstSearch bool, parent tt.BoardKeyHandPair, haveParent bool, w *worker) result.SearchResult {
	w.mon.Visit(n.Depth())

	if n.Depth() >= matelen.DepthMax {
		r := result.MakeFinalDisproven(n.Hand(), matelen.DepthMaxLen, 1)
		n.NewQuery().SetResult(r, tt.BoardKeyHandPair{}, false)
		return r
	}

	if d, ok := n.ContainsDepth(n.BoardKey(), n.Hand()); ok && d < n.Depth() {
		r := result.MakeFinalRepetition(n.Hand(), matelen.New(n.Depth()-d, 0), 1, d)
		n.NewQuery().SetResult(r, tt.BoardKeyHandPair{}, false)
		return r
	}

	// Multi-PV only bunches alternative winning moves at the root: a
	// df-pn+ search several plies deep has no use for more than one
	// proof of its own local node, so every non-root frame is built
	// with an implicit target of 1, matching SearchImplForRoot being a
	// distinct entry point from the ordinary recursive SearchImpl.
	multiPV := 1
	if n.Depth() == 0 {
		multiPV = w.multiPV
	}
	le := w.stack.Emplace(n, length, firstSearch, multiPV)
	defer w.stack.Pop()

	if le.IsFinal() {
		r := le.CurrentResult(n, length)
		n.NewQuery().SetResult(r, tt.BoardKeyHandPair{}, false)
		w.stack.EliminateDoubleCount(n, r)
		return r
	}

	for {
		nodes := w.nodeCount.Add(1)
		if w.shouldStop() {
			return finish(n, le, length, parent, haveParent, w)
		}
		if w.isMain && w.mon.ShouldCheckHashfull(nodes) {
			table := n.TT()
			table.CollectGarbage()
			table.CompactEntries()
			w.mon.ResetNextHashfullCheck(nodes)
		}

		cur := le.CurrentResult(n, length)
		if cur.IsFinal() {
			n.NewQuery().SetResult(cur, tt.BoardKeyHandPair{}, false)
			w.stack.EliminateDoubleCount(n, cur)
			return cur
		}
		if cur.Phi(n.OrNode()) >= thPhi || cur.Delta(n.OrNode()) >= thDelta {
			n.NewQuery().SetResult(cur, parent, haveParent)
			return cur
		}

		childThPhi, childThDelta := le.FrontPnDnThresholds(thPhi, thDelta)
		move := le.FrontMove()
		childFirstSearch := !le.FrontDoesHaveOldChild()
		childParent := tt.BoardKeyHandPair{BoardKey: n.BoardKey(), Hand: n.Hand()}

		u := n.DoMove(move)
		childResult := searchImpl(n, childThPhi, childThDelta, length.Pred(), childFirstSearch, childParent, true, w)
		n.UndoMove(u)

		le.UpdateBestChild(childResult)
	}
}

// finish reads out n's current bound without advancing the search
// further, for use when a stop condition fires mid-loop.
func finish(n *node.Node, le *expansion.LocalExpansion, length matelen.MateLen, parent tt.BoardKeyHandPair, haveParent bool, w *worker) result.SearchResult {
	cur := le.CurrentResult(n, length)
	if cur.IsFinal() {
		n.NewQuery().SetResult(cur, tt.BoardKeyHandPair{}, false)
		w.stack.EliminateDoubleCount(n, cur)
	} else {
		n.NewQuery().SetResult(cur, parent, haveParent)
	}
	return cur
}
