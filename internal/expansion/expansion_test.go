package expansion

import (
	"testing"

	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
	"github.com/komori-n/KomoringHeights-sub000/internal/matelen"
	"github.com/komori-n/KomoringHeights-sub000/internal/node"
	"github.com/komori-n/KomoringHeights-sub000/internal/pnum"
	"github.com/komori-n/KomoringHeights-sub000/internal/reptable"
	"github.com/komori-n/KomoringHeights-sub000/internal/result"
	"github.com/komori-n/KomoringHeights-sub000/internal/shogi"
	"github.com/komori-n/KomoringHeights-sub000/internal/tt"
)

func newTestNode(t *testing.T, sfen string, orNode bool) *node.Node {
	t.Helper()
	pos, err := shogi.ParseSFEN(sfen)
	if err != nil {
		t.Fatalf("ParseSFEN(%q): %v", sfen, err)
	}
	table := &tt.RegularTable{}
	table.Resize(1024)
	rep := reptable.New(256)
	return node.NewRoot(pos, table, rep, nil, orNode)
}

func TestNewResolvesObviousFinalWhenOrNodeHasNoChecks(t *testing.T) {
	n := newTestNode(t, "4k4/9/9/9/9/9/9/9/4K4 b - 1", true)
	le := New(n, matelen.DepthMaxLen, true)
	if !le.IsFinal() {
		t.Fatal("expected an obviously-final result with no checking moves available")
	}
	if le.final.Pn() != 0 && le.final.Dn() != 0 {
		t.Fatalf("expected a final pn/dn result, got pn=%d dn=%d", le.final.Pn(), le.final.Dn())
	}
}

func TestNewResolvesMate1PlyShortcut(t *testing.T) {
	n := newTestNode(t, "8k/8p/8P/9/9/9/9/9/K8 w R 1", true)
	le := New(n, matelen.DepthMaxLen, true)
	if !le.IsFinal() {
		t.Skip("no forced one-ply mate in this configuration; scenario is illustrative only")
	}
	if le.final.Pn() != 0 {
		t.Errorf("expected a proven result from the mate-in-1 shortcut, got %s", le.final)
	}
}

func TestNewBuildsActiveCandidatesForOrdinaryPosition(t *testing.T) {
	n := newTestNode(t, "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1", false)
	le := New(n, matelen.DepthMaxLen, true)
	if le.IsFinal() {
		t.Fatal("starting position should not resolve via an obvious-final shortcut")
	}
	if len(le.idx) == 0 {
		t.Fatal("expected at least one active candidate")
	}
	if m := le.FrontMove(); m == shogi.NoMove {
		t.Error("expected a concrete front move")
	}
}

func TestUpdateBestChildUnlocksDelayedCandidate(t *testing.T) {
	n := newTestNode(t, "8k/8/9/9/9/9/9/9/K8 w GS 1", false)
	le := New(n, matelen.DepthMaxLen, true)
	if le.IsFinal() {
		t.Skip("position resolved immediately; scenario needs at least one delayable drop pair")
	}

	totalBefore := len(le.idx)
	hasChain := false
	for i := range le.next {
		if le.next[i] != -1 {
			hasChain = true
			break
		}
	}
	if !hasChain {
		t.Skip("no delayed-move chain formed for this position's move set")
	}

	front := le.cands[le.idx[0]].res
	le.UpdateBestChild(front)
	if len(le.idx) < totalBefore {
		t.Errorf("expected idx to grow or stay the same after unlocking, got %d from %d", len(le.idx), totalBefore)
	}
}

// TestMultiPVExcludesWinsUntilTargetReached drives UpdateBestChild directly
// with synthetic proven results, simulating what two successive recursive
// searches into the front candidate would report, to verify excludedMoves
// bunches resolved wins at the front instead of resolving the node at the
// first one once multiPVTarget > 1.
func TestMultiPVExcludesWinsUntilTargetReached(t *testing.T) {
	n := newTestNode(t, "4k4/9/9/9/9/9/9/9/4K4 b RBG 1", true)
	le := New(n, matelen.DepthMaxLen, true)
	if le.IsFinal() {
		t.Skip("position resolved immediately via an obvious-final shortcut")
	}
	if len(le.idx) < 2 {
		t.Skip("need at least two active candidates for this scenario")
	}

	le.SetMultiPVTarget(2)

	firstWin := result.MakeFinalProven(hand.Hand{}, matelen.New(3, 0), 1)
	le.UpdateBestChild(firstWin)
	if got := le.ExcludedMoves(); got != 1 {
		t.Fatalf("after first win, ExcludedMoves() = %d, want 1", got)
	}
	if cur := le.CurrentResult(n, matelen.DepthMaxLen); cur.IsFinal() {
		t.Fatalf("node resolved as final after only one of two target wins: %s", cur)
	}

	secondWin := result.MakeFinalProven(hand.Hand{}, matelen.New(5, 0), 1)
	le.UpdateBestChild(secondWin)
	if got := le.ExcludedMoves(); got != 1 {
		t.Fatalf("after reaching multiPVTarget, ExcludedMoves() = %d, want unchanged at 1", got)
	}
	cur := le.CurrentResult(n, matelen.DepthMaxLen)
	if !cur.IsFinal() || cur.Pn() != 0 {
		t.Fatalf("expected a final proven result once multiPVTarget wins accumulated, got %s", cur)
	}
}

// TestMultiPVTargetOneMatchesSinglePV confirms the default target of 1
// resolves the node at the very first win, exactly as single-PV search
// always has.
func TestMultiPVTargetOneMatchesSinglePV(t *testing.T) {
	n := newTestNode(t, "4k4/9/9/9/9/9/9/9/4K4 b RBG 1", true)
	le := New(n, matelen.DepthMaxLen, true)
	if le.IsFinal() {
		t.Skip("position resolved immediately via an obvious-final shortcut")
	}
	if len(le.idx) == 0 {
		t.Skip("no active candidates for this scenario")
	}

	win := result.MakeFinalProven(hand.Hand{}, matelen.New(3, 0), 1)
	le.UpdateBestChild(win)
	if got := le.ExcludedMoves(); got != 0 {
		t.Fatalf("with default multiPVTarget, ExcludedMoves() = %d, want 0", got)
	}
	cur := le.CurrentResult(n, matelen.DepthMaxLen)
	if !cur.IsFinal() || cur.Pn() != 0 {
		t.Fatalf("expected an immediate final proven result, got %s", cur)
	}
}

// TestDeltaMatchesRestVsFrontWhenNoCandidateIsDemoted pins delta()'s
// degenerate case (every candidate still in the sum group): it must
// reduce to max(sum of every non-front candidate's δ, the front
// candidate's own δ) plus the per-move penalty, exactly as before
// sum/max grouping existed.
func TestDeltaMatchesRestVsFrontWhenNoCandidateIsDemoted(t *testing.T) {
	n := newTestNode(t, "4k4/9/9/9/9/9/9/9/4K4 b RBG 1", true)
	le := New(n, matelen.DepthMaxLen, true)
	if le.IsFinal() {
		t.Skip("position resolved immediately via an obvious-final shortcut")
	}
	if len(le.idx) < 3 {
		t.Skip("need at least three active candidates for this scenario")
	}

	for k, i := range le.idx {
		dn := pnum.Unit * pnum.PnDn(k+1)
		le.cands[i].res = result.MakeUnknown(pnum.Unit, dn, n.Hand(), matelen.DepthMaxLen, 1, result.UnknownData{SumMask: result.FullBits})
	}
	le.recomputeAggregates()

	front := le.cands[le.idx[0]].res.Delta(le.orNode)
	var rest pnum.PnDn
	for k := 1; k < len(le.idx); k++ {
		rest = pnum.Add(rest, le.cands[le.idx[k]].res.Delta(le.orNode))
	}
	wantBase := pnum.Max(rest, front)

	extra := le.numDropMoves + le.numNondropMoves - 1
	if extra < 0 {
		extra = 0
	}
	want := pnum.Add(wantBase, pnum.Unit*pnum.PnDn(extra))

	if got := le.delta(); got != want {
		t.Fatalf("delta() = %d, want %d (rest=%d, front=%d)", got, want, rest, front)
	}
}

// TestClearFrontSumMaskBitMovesCandidateFromSumToMaxGroup confirms
// demoting a non-front candidate out of the sum group folds its δ into
// maxExceptBest instead of deltaExceptBest on the next recompute.
func TestClearFrontSumMaskBitMovesCandidateFromSumToMaxGroup(t *testing.T) {
	n := newTestNode(t, "4k4/9/9/9/9/9/9/9/4K4 b RBG 1", true)
	le := New(n, matelen.DepthMaxLen, true)
	if le.IsFinal() {
		t.Skip("position resolved immediately via an obvious-final shortcut")
	}
	if len(le.idx) < 3 {
		t.Skip("need at least three active candidates for this scenario")
	}

	for k, i := range le.idx {
		dn := pnum.Unit * pnum.PnDn(k+1)
		le.cands[i].res = result.MakeUnknown(pnum.Unit, dn, n.Hand(), matelen.DepthMaxLen, 1, result.UnknownData{SumMask: result.FullBits})
	}
	le.recomputeAggregates()

	secondRaw := le.idx[1]
	wantMax := le.cands[secondRaw].res.Delta(le.orNode)

	var wantSum pnum.PnDn
	for k := 2; k < len(le.idx); k++ {
		wantSum = pnum.Add(wantSum, le.cands[le.idx[k]].res.Delta(le.orNode))
	}

	le.sumMask = le.sumMask.Reset(bitForIdx(secondRaw))
	le.recomputeAggregates()

	if le.maxExceptBest != wantMax {
		t.Fatalf("maxExceptBest = %d, want %d after demoting candidate %d", le.maxExceptBest, wantMax, secondRaw)
	}
	if le.deltaExceptBest != wantSum {
		t.Fatalf("deltaExceptBest = %d, want %d after demoting candidate %d", le.deltaExceptBest, wantSum, secondRaw)
	}
}
