package expansion

import (
	"github.com/komori-n/KomoringHeights-sub000/internal/node"
	"github.com/komori-n/KomoringHeights-sub000/internal/pnum"
	"github.com/komori-n/KomoringHeights-sub000/internal/tt"
)

// kAncestorSearchThreshold bounds how stale an ancestor's recorded δ
// may be, relative to the current node's own δ, before
// FindKnownAncestor stops trusting it as a live reconvergence: chasing
// parent pointers arbitrarily far back costs more than the double
// count it would save once the gap is this large.
const kAncestorSearchThreshold = 2 * pnum.Unit

// BranchRootEdge names the point where two transposition-table paths
// to the same node diverge: the branch root (the shallowest ancestor
// already on the current search path that the table also records as
// this node's best-known parent) and the child reached by the edge
// currently under search.
type BranchRootEdge struct {
	BranchRoot         tt.BoardKeyHandPair
	Child              tt.BoardKeyHandPair
	BranchRootIsOrNode bool
}

// FindKnownAncestor walks n's transposition-table parent pointer
// looking for an ancestor that both the table and the current search
// path agree on — the situation double-count elimination exists to
// correct, since summing a δ contribution along two different edges to
// the same reconverged node overstates it.
//
// Grounded on original_source/local_expansion.hpp's
// FindKnownAncestorData: a single LookUpParent probe, trusted only
// while its δ stays within kAncestorSearchThreshold of ownDelta so a
// far-stale parent bound is not mistaken for a live reconvergence.
func FindKnownAncestor(n *node.Node, childPair tt.BoardKeyHandPair, ownDelta pnum.PnDn) (BranchRootEdge, bool) {
	q := n.NewQuery()
	parent, pn, dn, ok := q.LookUpParent()
	if !ok {
		return BranchRootEdge{}, false
	}

	delta := pnum.Delta(pn, dn, n.OrNode())
	if delta > pnum.Add(ownDelta, kAncestorSearchThreshold) {
		return BranchRootEdge{}, false
	}

	if !n.ContainsInPath(parent.BoardKey, parent.Hand) {
		return BranchRootEdge{}, false
	}

	return BranchRootEdge{
		BranchRoot:         parent,
		Child:              childPair,
		BranchRootIsOrNode: !n.OrNode(),
	}, true
}
