// Package expansion implements local expansion: the per-node cache of
// child search results the df-pn+ engine consults to pick which move
// to recurse into next and to derive the current node's own (pn, dn)
// bound, grounded on original_source/local_expansion.hpp.
package expansion

import (
	"sort"

	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
	"github.com/komori-n/KomoringHeights-sub000/internal/matelen"
	"github.com/komori-n/KomoringHeights-sub000/internal/node"
	"github.com/komori-n/KomoringHeights-sub000/internal/pnum"
	"github.com/komori-n/KomoringHeights-sub000/internal/result"
	"github.com/komori-n/KomoringHeights-sub000/internal/shogi"
	"github.com/komori-n/KomoringHeights-sub000/internal/tt"
)

// candState is one move's cached child state: its transposition-table
// query (kept open so a later UpdateBestChild can write back into the
// same entry), its best-known SearchResult, and the (board_key, hand)
// the move leads to.
type candState struct {
	move             shogi.Move
	query            *tt.Query
	res              result.SearchResult
	childPair        tt.BoardKeyHandPair
	doesHaveOldChild bool
}

// LocalExpansion is one node's worth of cached child candidates: every
// legal move's current child result, a permutation sorted by
// "best to search next", and the delayed-move chain linking moves
// buildDelayChains judged equivalent.
//
// idx holds move-list indices in two regions: idx[0:excludedMoves] are
// resolved wins already bunched at the front (kept for Multi-PV), and
// idx[excludedMoves:] are the remaining active candidates sorted by
// SearchResultComparer. prev[i] != -1 means candidate i is delayed
// behind prev[i] and is excluded from idx until its lead resolves.
type LocalExpansion struct {
	n      *node.Node
	orNode bool

	// selfPair is n's own (board_key, hand), captured at construction
	// time since n itself is mutated in place as the recursion descends
	// past this frame: FindKnownAncestor's branch-root edges name a
	// (board_key, hand) pair, and EliminateDoubleCount needs to match
	// that pair back to the LocalExpansion frame it belongs to.
	selfPair tt.BoardKeyHandPair

	cands []*candState
	idx   []int
	prev  []int
	next  []int

	excludedMoves   int
	multiPVTarget   int
	deltaExceptBest pnum.PnDn
	maxExceptBest   pnum.PnDn

	// sumMask marks, per candidate raw index (mod 64), whether that
	// candidate's δ contributes to delta() by sum (bit set) or by max
	// (bit cleared). Every candidate starts in the sum group;
	// EliminateDoubleCount clears a bit when it proves that candidate's
	// subtree is also reachable from an ancestor already on the current
	// search path, so the same δ is not added twice.
	sumMask result.BitSet64

	numDropMoves    int
	numNondropMoves int

	final *result.SearchResult
}

// bitForIdx maps a candidate's raw index into sumMask's 64 bits. A
// table with more than 64 legal moves aliases two candidates onto the
// same bit, which only widens which candidates share max-accounting
// with each other rather than corrupting the δ computation.
func bitForIdx(i int) int { return i % 64 }

// SetMultiPVTarget sets how many winning candidates this node should
// bunch at the front (via excludedMoves) before treating itself as
// resolved, grounded on multi_pv.hpp's root-move bookkeeping: with the
// default target of 1, the very first winning candidate ends the node
// exactly as single-PV search always has; with a larger target,
// UpdateBestChild keeps excluding and the search keeps recursing into
// the remaining active candidates until enough wins accumulate or none
// remain. A target below 1 is normalized to 1.
func (le *LocalExpansion) SetMultiPVTarget(target int) {
	if target < 1 {
		target = 1
	}
	le.multiPVTarget = target
}

// New builds the LocalExpansion for n: generates n's move set, applies
// the cheap "obvious final" shortcuts original_source's
// CheckObviousFinalOrNode/CheckObviousFinalAndNode implement, and
// otherwise looks up every candidate child's current transposition-
// table state.
//
// length is this node's mate-length bound. Every child's table lookup
// is made with length itself, not length.Pred(), as a comparison bound
// against stored proven/disproven brackets; searchImpl passes
// length.Pred() when it recurses into a child.
func New(n *node.Node, length matelen.MateLen, firstSearch bool) *LocalExpansion {
	orNode := n.OrNode()
	selfPair := tt.BoardKeyHandPair{BoardKey: n.BoardKey(), Hand: n.Hand()}
	le := &LocalExpansion{n: n, orNode: orNode, selfPair: selfPair, multiPVTarget: 1, sumMask: result.FullBits}

	moves := n.GenerateMoves()
	if len(moves) == 0 {
		var f result.SearchResult
		if orNode {
			// No checks at all: this branch can never mate, permanently.
			f = result.MakeFinalDisproven(n.Hand(), matelen.DepthMaxLen, 1)
		} else {
			// No evasions: already checkmated, zero further plies needed.
			f = result.MakeFinalProven(n.Hand(), matelen.Zero, 1)
		}
		le.final = &f
		return le
	}

	if orNode && firstSearch {
		if mv := n.Position().Mate1Ply(); mv != shogi.NoMove {
			provenHand := handAfterMove(n.Hand(), n.Position(), mv)
			f := result.MakeFinalProven(provenHand, matelen.New(1, provenHand.Total()), 1)
			le.final = &f
			return le
		}
	}

	prev, next := buildDelayChains(moves, orNode)
	le.prev = prev
	le.next = next

	cands := make([]*candState, len(moves))
	active := make([]int, 0, len(moves))
	for i, m := range moves {
		cands[i] = &candState{move: m}
		if m.IsDrop() {
			le.numDropMoves++
		} else {
			le.numNondropMoves++
		}
		if prev[i] == -1 {
			active = append(active, i)
		}
	}
	le.cands = cands

	for _, i := range active {
		le.refreshCand(i, length, firstSearch)
	}

	cmp := result.NewSearchResultComparer(orNode)
	sort.SliceStable(active, func(a, b int) bool {
		return cmp.Compare(cands[active[a]].res, cands[active[b]].res) == result.Less
	})
	le.idx = active
	le.recomputeAggregates()
	return le
}

// refreshCand looks up candidate i's child state at n via a scoped
// PeekAfterMove, applying the AND-node first-visit shortcut (peek one
// ply further into the resulting OR-node grandchild and resolve it
// immediately when it is itself obviously final) before caching the
// result.
func (le *LocalExpansion) refreshCand(i int, length matelen.MateLen, firstSearch bool) {
	n := le.n
	orNode := le.orNode
	m := le.cands[i].move

	var q *tt.Query
	var pair tt.BoardKeyHandPair
	var res result.SearchResult
	var oldChild bool

	n.PeekAfterMove(m, func(child *node.Node) {
		q = child.NewQuery()
		pair = q.BoardKeyHandPair()
		res = q.LookUp(&oldChild, length, func() (pnum.PnDn, pnum.PnDn) {
			return initialEstimate(n, m)
		})

		if orNode || !firstSearch || !res.UnknownData().IsFirstVisit {
			return
		}
		if gm := child.GenerateMoves(); len(gm) == 0 {
			f := result.MakeFinalDisproven(child.Hand(), matelen.DepthMaxLen, 1)
			q.SetResult(f, tt.BoardKeyHandPair{}, false)
			res = f
			return
		}
		if mv := child.Position().Mate1Ply(); mv != shogi.NoMove {
			ph := handAfterMove(child.Hand(), child.Position(), mv)
			f := result.MakeFinalProven(ph, matelen.New(1, ph.Total()), 1)
			q.SetResult(f, tt.BoardKeyHandPair{}, false)
			res = f
		}
	})

	cs := le.cands[i]
	cs.query = q
	cs.res = res
	cs.childPair = pair
	cs.doesHaveOldChild = oldChild
}

// initialEstimate seeds a just-discovered child's (pn, dn) above the
// pnum.Unit floor Query.LookUp already applies on a miss, nudging
// drops at an OR node and promoting evasions at an AND node to look
// very slightly harder to resolve than everything else — a simplified
// stand-in for the heuristic move-ordering original_source's
// initial_estimation.hpp derives from static board features.
func initialEstimate(n *node.Node, m shogi.Move) (pnum.PnDn, pnum.PnDn) {
	pn, dn := pnum.Unit, pnum.Unit
	if n.OrNode() && m.IsDrop() {
		pn += pnum.Unit
	}
	if !n.OrNode() && m.IsPromotion() {
		dn += pnum.Unit
	}
	return pn, dn
}

// recomputeAggregates recomputes deltaExceptBest and maxExceptBest:
// every active candidate's δ contribution except the front one's,
// split by sumMask into a saturating sum and a running max, the
// quantities FrontPnDnThresholds and delta() need to know how much
// headroom the front candidate's own δ has before this node's δ
// threshold is exceeded.
func (le *LocalExpansion) recomputeAggregates() {
	var sum, max pnum.PnDn
	for k := le.excludedMoves + 1; k < len(le.idx); k++ {
		i := le.idx[k]
		d := le.cands[i].res.Delta(le.orNode)
		if le.sumMask.Test(bitForIdx(i)) {
			sum = pnum.Add(sum, d)
		} else if d > max {
			max = d
		}
	}
	le.deltaExceptBest = sum
	le.maxExceptBest = max
}

// activeLen reports how many candidates remain outside the excluded
// (already-resolved-win) prefix of idx.
func (le *LocalExpansion) activeLen() int {
	return len(le.idx) - le.excludedMoves
}

// phi returns this node's current φ value: the active front
// candidate's φ contribution, or 0 once no active candidate remains (or
// the active front's φ is infinite) while at least one has already been
// excluded as a resolved win (phi's own resolution condition is
// vacuously satisfied once nothing left can still win).
func (le *LocalExpansion) phi() pnum.PnDn {
	front := pnum.Infinite
	if le.activeLen() > 0 {
		front = le.cands[le.idx[le.excludedMoves]].res.Phi(le.orNode)
	}
	if front >= pnum.Infinite && le.excludedMoves > 0 {
		return 0
	}
	return front
}

// delta returns this node's current δ value: every active candidate
// but the front contributes to rest (summed while its sumMask bit is
// set, maxed together once EliminateDoubleCount has cleared it), and
// the node's δ is the larger of rest and the front candidate's own δ,
// widened by one pnum.Unit per generated move beyond the first (at an
// AND node all drops together count as one move). EliminateDoubleCount clears a candidate's sumMask bit once it
// proves that candidate reconverges with an ancestor already on the
// current search path, moving it from the sum group into the max
// group once it is no longer the front so its δ stops being counted
// alongside the duplicate copy the ancestor already accounts for.
func (le *LocalExpansion) delta() pnum.PnDn {
	if le.activeLen() == 0 {
		return 0
	}
	front := le.cands[le.idx[le.excludedMoves]].res.Delta(le.orNode)
	rest := pnum.Add(le.deltaExceptBest, le.maxExceptBest)
	base := pnum.Max(rest, front)
	if base == 0 {
		return 0
	}

	var extra int
	if le.orNode {
		extra = le.numDropMoves + le.numNondropMoves - 1
	} else {
		dropExtra := 0
		if le.numDropMoves > 0 {
			dropExtra = 1
		}
		extra = dropExtra + le.numNondropMoves - 1
	}
	if extra < 0 {
		extra = 0
	}
	return pnum.Add(base, pnum.Unit*pnum.PnDn(extra))
}

// secondPhi returns the φ of the second-best active candidate, or
// pnum.Infinite when fewer than two remain.
func (le *LocalExpansion) secondPhi() pnum.PnDn {
	if le.activeLen() < 2 {
		return pnum.Infinite
	}
	return le.cands[le.idx[le.excludedMoves+1]].res.Phi(le.orNode)
}

// FrontPnDnThresholds derives the (childThPhi, childThDelta) threshold
// pair the front candidate's recursive search should be re-entered
// with, given this node's own (thPhi, thDelta) thresholds — both
// expressed generically (meaningful via the child's own Phi/Delta,
// whatever its polarity is), matching how SearchResult.Phi/Delta are
// themselves polarity-generic accessors.
//
// The child's δ threshold is this node's δ threshold minus everything
// else already contributing to this node's own δ (deltaExceptBest's sum
// plus maxExceptBest's running max, the same quantity delta() weighs
// against the front candidate's contribution), floored at pnum.Unit;
// candidates EliminateDoubleCount has already demoted out of the sum
// group correspondingly stop eating into this headroom.
func (le *LocalExpansion) FrontPnDnThresholds(thPhi, thDelta pnum.PnDn) (childThPhi, childThDelta pnum.PnDn) {
	rest := pnum.Add(le.deltaExceptBest, le.maxExceptBest)
	childThDelta = pnum.Max(pnum.Unit, safeSub(thDelta, rest))
	childThPhi = pnum.Min(thPhi, pnum.Add(le.secondPhi(), pnum.Unit))
	return childThPhi, childThDelta
}

func safeSub(a, b pnum.PnDn) pnum.PnDn {
	if b >= a {
		return 0
	}
	return a - b
}

// FrontMove returns the move the search should recurse into next, or
// shogi.NoMove once no active candidate remains.
func (le *LocalExpansion) FrontMove() shogi.Move {
	if le.activeLen() == 0 {
		return shogi.NoMove
	}
	return le.cands[le.idx[le.excludedMoves]].move
}

// FrontChildPair returns the (board_key, hand) the active front
// candidate move leads to.
func (le *LocalExpansion) FrontChildPair() tt.BoardKeyHandPair {
	return le.cands[le.idx[le.excludedMoves]].childPair
}

// FrontDoesHaveOldChild reports whether the active front candidate's
// cached result came from a TCA-flagged ancestor entry.
func (le *LocalExpansion) FrontDoesHaveOldChild() bool {
	return le.cands[le.idx[le.excludedMoves]].doesHaveOldChild
}

// ExcludedMoves returns how many candidates at the front of idx are
// already-resolved wins kept around for Multi-PV.
func (le *LocalExpansion) ExcludedMoves() int { return le.excludedMoves }

// IsFinal reports whether construction itself already resolved this
// node (the "obvious final" shortcuts), bypassing child search
// entirely.
func (le *LocalExpansion) IsFinal() bool { return le.final != nil }

// resortExcludedBack inserts the front candidate (about to join the
// excluded prefix) into its sorted place among idx[0:excludedMoves+1],
// which finalWhenPhiZero relies on staying sorted best-first.
func (le *LocalExpansion) resortExcludedBack() {
	if le.excludedMoves == 0 {
		return
	}
	cmp := result.NewSearchResultComparer(le.orNode)
	j := le.excludedMoves
	v := le.idx[j]
	for j > 0 && cmp.Compare(le.cands[v].res, le.cands[le.idx[j-1]].res) == result.Less {
		le.idx[j] = le.idx[j-1]
		j--
	}
	le.idx[j] = v
}

// UpdateBestChild records childResult as the front candidate's latest
// result after a recursive search into it returns and unlocks any move
// chained behind it in the delayed-move list.
//
// When childResult resolves in this node's own winning direction, the
// front candidate joins the excluded (already-won) prefix instead of
// the active window — unless multiPVTarget has already been satisfied
// or every candidate has now resolved, in which case it is left as the
// node's single resolving result and the active window is no longer
// consulted.
func (le *LocalExpansion) UpdateBestChild(childResult result.SearchResult) {
	if le.activeLen() == 0 {
		return
	}
	frontIdx := le.idx[le.excludedMoves]
	front := le.cands[frontIdx]
	front.res = childResult

	if nxt := le.next[frontIdx]; nxt != -1 {
		le.prev[nxt] = -1
		le.idx = append(le.idx, nxt)
	}

	if childResult.Phi(le.orNode) == 0 {
		le.resortExcludedBack()
		if le.excludedMoves >= le.multiPVTarget-1 {
			return
		}
		le.excludedMoves++
		if le.excludedMoves >= len(le.idx) {
			return
		}
	}

	cmp := result.NewSearchResultComparer(le.orNode)
	tail := le.idx[le.excludedMoves:]
	sort.SliceStable(tail, func(a, b int) bool {
		return cmp.Compare(le.cands[tail[a]].res, le.cands[tail[b]].res) == result.Less
	})
	le.recomputeAggregates()
}

// CurrentResult derives this node's best-known SearchResult from the
// cached candidates: the construction-time final shortcut if one
// fired, a resolved proof/disproof once φ or δ has reached zero, or
// otherwise an unknown result carrying the current (pn, dn) bound
// translated from (φ, δ) through this node's own polarity.
func (le *LocalExpansion) CurrentResult(n *node.Node, length matelen.MateLen) result.SearchResult {
	if le.final != nil {
		return *le.final
	}

	phi := le.phi()
	delta := le.delta()

	if phi == 0 {
		return le.finalWhenPhiZero()
	}
	if delta == 0 {
		return le.finalWhenDeltaZero()
	}

	var pn, dn pnum.PnDn
	if le.orNode {
		pn, dn = phi, delta
	} else {
		pn, dn = delta, phi
	}

	var amount uint32
	for _, c := range le.cands {
		amount += c.res.Amount()
	}

	u := result.UnknownData{SumMask: le.sumMask}
	return result.MakeUnknown(pn, dn, n.Hand(), length, amount, u)
}

// clearFrontSumMaskBit demotes the current front candidate from the
// sum group into the max group, called on the branch-root frame
// EliminateDoubleCount identifies once a reconvergence is confirmed.
func (le *LocalExpansion) clearFrontSumMaskBit() {
	if le.activeLen() == 0 {
		return
	}
	front := le.idx[le.excludedMoves]
	le.sumMask = le.sumMask.Reset(bitForIdx(front))
	le.recomputeAggregates()
}

// finalWhenPhiZero builds the final result for φ()==0: proven for an
// OR node (the best candidate found, regardless of excludedMoves, is
// a proven check), disproven for an AND node (a disproven evasion).
// idx[0] is always that candidate: resortExcludedBack keeps the
// excluded prefix sorted best-first, so the overall best winning line
// sits at the very front even once multiPVTarget has bunched several.
func (le *LocalExpansion) finalWhenPhiZero() result.SearchResult {
	front := le.cands[le.idx[0]]
	length := front.res.Len().Succ()
	amount := front.res.Amount() + uint32(len(le.cands)) - 1
	h := beforeHand(le.n, front.move, front.res.Hand())

	if le.orNode {
		return result.MakeFinalProven(h, length, amount)
	}
	if fd := front.res.FinalData(); fd.IsRepetition && fd.RepetitionStartDepth < le.n.Depth() {
		return result.MakeFinalRepetition(h, length, amount, fd.RepetitionStartDepth)
	}
	return result.MakeFinalDisproven(h, length, amount)
}

// finalWhenDeltaZero builds the final result for δ()==0: disproven for
// an OR node (every check has been disproven) using the shortest child
// length, proven for an AND node (every evasion still leads to mate)
// using the longest child length, both folded through a HandSet using
// the tag matching this node's polarity.
func (le *LocalExpansion) finalWhenDeltaZero() result.SearchResult {
	n := le.n
	hs := hand.NewHandSet(handSetTagFor(le.orNode))

	var minLen, maxLen matelen.MateLen
	haveLen := false
	repetition := false
	repStart := 0
	var amount uint32

	for _, i := range le.idx {
		c := le.cands[i]
		hs.Update(beforeHand(n, c.move, c.res.Hand()))
		amount += c.res.Amount()

		l := c.res.Len().Succ()
		if !haveLen {
			minLen, maxLen = l, l
			haveLen = true
		} else {
			if l.Less(minLen) {
				minLen = l
			}
			if maxLen.Less(l) {
				maxLen = l
			}
		}
		if fd := c.res.FinalData(); fd.IsRepetition {
			repetition = true
			if fd.RepetitionStartDepth > repStart {
				repStart = fd.RepetitionStartDepth
			}
		}
	}

	finalHand := hs.Get(dropAlternative{n: n, orNode: le.orNode})

	if le.orNode {
		if repetition && repStart < n.Depth() {
			return result.MakeFinalRepetition(finalHand, minLen, amount, repStart)
		}
		return result.MakeFinalDisproven(finalHand, minLen, amount)
	}
	return result.MakeFinalProven(finalHand, maxLen, amount)
}

// handSetTagFor returns the HandSet accumulation tag matching which
// global conclusion finalWhenDeltaZero reaches at a node of this
// polarity: DisproofHandTag for an OR node (every check disproven, so
// the disproof hand only needs what is common to all of them),
// ProofHandTag for an AND node (every evasion still mates, so the
// proof hand needs whatever any of them required).
func handSetTagFor(orNode bool) hand.Tag {
	if orNode {
		return hand.DisproofHandTag
	}
	return hand.ProofHandTag
}

// beforeHand translates a child's resulting hand backward across move
// m, played from node n, into the hand n's own result should report.
// Both hands always name the attacker's hand, per node.Node.Hand's
// convention, so only a move played by the attacker changes it: a drop
// consumes a card, a capturing board move adds one back. A defender's
// move never touches the attacker's hand.
func beforeHand(n *node.Node, m shogi.Move, childHand hand.Hand) hand.Hand {
	if n.Position().SideToMove() != n.AttackerColor() {
		return childHand
	}
	if m.IsDrop() {
		return childHand.Add(m.DropKind(), 1)
	}
	captured := n.Position().PieceAt(m.To())
	if captured != shogi.NoPiece {
		if hk, ok := captured.Kind().HandKind(); ok {
			return childHand.Sub(hk, 1)
		}
	}
	return childHand
}

// handAfterMove computes the attacker's hand after playing m from a
// position where before was the attacker's hand — the forward
// counterpart to beforeHand, used by the Mate1Ply shortcuts where the
// mating move's effect on the hand must be applied rather than undone.
func handAfterMove(before hand.Hand, pos *shogi.Position, m shogi.Move) hand.Hand {
	if m.IsDrop() {
		return before.Sub(m.DropKind(), 1)
	}
	captured := pos.PieceAt(m.To())
	if captured != shogi.NoPiece {
		if hk, ok := captured.Kind().HandKind(); ok {
			return before.Add(hk, 1)
		}
	}
	return before
}

// dropAlternative implements hand.DropAlternative against the
// position n currently holds, by hypothetically adding one card of
// kind k to the side to move's hand and comparing the resulting
// check/evasion count against the baseline. Position.SetHand is
// symmetric Zobrist XOR, so the hypothetical mutation is exactly
// restorable.
//
// Simplified relative to original_source's precise evasion/check
// alternative detection, which also accounts for which square a drop
// would need to land on to matter; this port only asks whether holding
// one more of the kind changes the move count at all.
type dropAlternative struct {
	n      *node.Node
	orNode bool
}

func (d dropAlternative) WouldEnableAlternative(k hand.Kind) bool {
	pos := d.n.Position()
	mover := pos.SideToMove()
	before := pos.HandOf(mover)

	countMoves := func() int {
		if d.orNode {
			return len(pos.GenerateChecks())
		}
		return len(pos.GenerateEvasions())
	}

	baseline := countMoves()
	pos.SetHand(mover, before.Add(k, 1))
	withExtra := countMoves()
	pos.SetHand(mover, before)

	return withExtra > baseline
}
