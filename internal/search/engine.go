package search

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/komori-n/KomoringHeights-sub000/internal/engineopt"
	"github.com/komori-n/KomoringHeights-sub000/internal/expansion"
	"github.com/komori-n/KomoringHeights-sub000/internal/matelen"
	"github.com/komori-n/KomoringHeights-sub000/internal/monitor"
	"github.com/komori-n/KomoringHeights-sub000/internal/node"
	"github.com/komori-n/KomoringHeights-sub000/internal/pnum"
	"github.com/komori-n/KomoringHeights-sub000/internal/reptable"
	"github.com/komori-n/KomoringHeights-sub000/internal/result"
	"github.com/komori-n/KomoringHeights-sub000/internal/shogi"
	"github.com/komori-n/KomoringHeights-sub000/internal/tt"
	"github.com/komori-n/KomoringHeights-sub000/internal/usi"
)

// repTableSize is the repetition table's entry budget. The original
// sizes it relative to the regular table's memory budget; this engine
// fixes a generous constant instead, since RepTable entries are a few
// bytes each and the distinction rarely matters in practice.
const repTableSize = 1 << 20

// Engine is the tsume-shogi solver: a transposition table, a
// repetition table, an engine-option bundle and a search monitor
// shared by every Lazy-SMP worker goroutine a call to Search spawns.
//
// Grounded on original_source/komoring_heights.hpp's KomoringHeights
// class and internal/engine/engine.go's Engine (the goroutine-pool
// ownership shape, translated from alpha-beta workers each owning a
// PawnTable to df-pn+ workers each owning an ExpansionStack).
type Engine struct {
	tt  *tt.RegularTable
	rep *reptable.Table
	opt engineopt.EngineOption

	mon monitor.SearchMonitor

	pvLines    []PVLine
	score      usi.Score
	afterFinal bool

	nodeCount atomic.Uint64
	stopFlag  atomic.Bool
}

// New builds an Engine with opt normalized and the transposition table
// sized to opt.HashMB.
func New(opt engineopt.EngineOption) *Engine {
	opt.Normalize()
	e := &Engine{opt: opt}
	e.tt = &tt.RegularTable{}
	e.Resize(opt.HashMB)
	e.rep = reptable.New(repTableSize)
	return e
}

// Resize reallocates the transposition table for a new memory budget,
// in bytes-per-MB terms matching original_source's Resize(size_mb).
func (e *Engine) Resize(hashMB uint64) {
	const entrySize = 64 // nominal Entry size in bytes, for sizing only
	numEntries := hashMB * 1024 * 1024 / entrySize
	e.tt.Resize(numEntries)
	if e.opt.GCThreshold > 0 || e.opt.GCRemoveCount > 0 {
		e.tt.SetGCParams(e.opt.GCThreshold, e.opt.GCRemoveCount)
	}
}

// Clear discards every stored search result, for benchmarking or a
// fresh position unrelated to anything already searched.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.rep.Clear()
}

// LoadTT reads a transposition-table dump written by SaveTT (or
// RegularTable.Save directly) from path, inserting every recovered
// entry into its canonical cluster. Entries beyond what this table's
// current HashMB can absorb are dropped, matching RegularTable.Load.
func (e *Engine) LoadTT(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open tt read path: %w", err)
	}
	defer f.Close()
	if err := e.tt.Load(f); err != nil {
		return fmt.Errorf("load tt from %s: %w", path, err)
	}
	return nil
}

// SaveTT dumps every sufficiently-searched entry of the transposition
// table to path, overwriting any existing file there.
func (e *Engine) SaveTT(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tt write path: %w", err)
	}
	defer f.Close()
	if err := e.tt.Save(f); err != nil {
		return fmt.Errorf("save tt to %s: %w", path, err)
	}
	return nil
}

// Stop asks every worker of an in-progress Search to return as soon as
// it next checks in.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// BestMoves returns the single best mate sequence found by the most
// recent proven Search call, empty otherwise.
func (e *Engine) BestMoves() []shogi.Move {
	if len(e.pvLines) == 0 {
		return nil
	}
	return e.pvLines[0].Moves
}

// PVLines returns every mating line the most recent proven Search call
// found, one per accumulated Multi-PV candidate (a single line when
// opt.MultiPV is 1).
func (e *Engine) PVLines() []PVLine {
	return e.pvLines
}

// Search runs the solver against pos until it proves, disproves, or is
// stopped (node/time limit or an explicit Stop call), spawning
// opt.Threads Lazy-SMP worker goroutines that share one transposition
// table and diverge via per-worker LookUp noise, grounded on
// internal/engine/engine.go's SearchWithLimits (goroutines + WaitGroup
// + buffered result channel + atomic stop flag).
func (e *Engine) Search(pos *shogi.Position, isRootOrNode bool) NodeState {
	e.stopFlag.Store(false)
	e.nodeCount.Store(0)
	e.afterFinal = false
	e.mon.NewSearch(4096, e.opt.PvIntervalMs, e.opt.NodesLimit)

	root := node.NewRoot(pos, e.tt, e.rep, tt.NewNoise(0), isRootOrNode)
	state, length := e.searchMainLoop(root, isRootOrNode)

	if state == StateProven {
		e.pvLines = e.collectPVLines(root, length, e.opt.MultiPV)
	} else {
		e.pvLines = nil
	}
	return state
}

// searchMainLoop narrows the provable mate length by re-invoking
// SearchEntry with progressively tighter length budgets, grounded on
// komoring_heights.hpp's SearchMainLoop doc comment: df-pn+ is good at
// "is there a mate" but SearchImpl alone gives no guarantee the first
// proof found is the *shortest* one, so the outer loop squeezes the
// interval once a first proof is in hand.
func (e *Engine) searchMainLoop(root *node.Node, isRootOrNode bool) (NodeState, matelen.MateLen) {
	length := matelen.DepthMaxLen
	var lastProven matelen.MateLen
	havProven := false

	for {
		r := e.searchEntry(root, length)
		state := stateOf(r.Pn(), r.Dn(), r.FinalData().IsRepetition)

		switch state {
		case StateProven:
			havProven = true
			lastProven = r.Len()
			e.score = scoreFromResult(r, isRootOrNode, e.opt.ScoreMethod)
			if e.opt.PostSearchLevel == engineopt.PostSearchNone || e.stopFlag.Load() {
				return StateProven, lastProven
			}
			if lastProven.Len() <= 0 {
				return StateProven, lastProven
			}
			length = lastProven.Pred()
			e.afterFinal = true
			continue

		case StateDisproven, StateRepetition:
			if havProven {
				return StateProven, lastProven
			}
			e.score = scoreFromResult(r, isRootOrNode, e.opt.ScoreMethod)
			return state, matelen.Minus1

		default: // Unknown: node/time budget exhausted before resolving
			e.score = scoreFromResult(r, isRootOrNode, e.opt.ScoreMethod)
			if havProven {
				return StateProven, lastProven
			}
			return StateUnknown, matelen.Minus1
		}
	}
}

// searchEntry runs one bounded df-pn+ search for "does n mate within
// len plies", grounded on komoring_heights.hpp's SearchEntry.
func (e *Engine) searchEntry(root *node.Node, len matelen.MateLen) result.SearchResult {
	w := &worker{
		stack:     expansion.NewStack(),
		mon:       &e.mon,
		nodeCount: &e.nodeCount,
		stop:      &e.stopFlag,
		multiPV:   e.opt.MultiPV,
		isMain:    true,
	}
	return searchImpl(root, pnum.Infinite, pnum.Infinite, len, true, tt.BoardKeyHandPair{}, false, w)
}

func scoreFromResult(r result.SearchResult, isRootOrNode bool, method engineopt.ScoreMethod) usi.Score {
	var s usi.Score
	switch {
	case r.Pn() == 0:
		s = usi.MakeWin(r.Len().Len())
	case r.Dn() == 0:
		s = usi.MakeLose(r.Len().Len())
	default:
		s = usi.MakeUnknown(r.Pn(), r.Dn(), method)
	}
	if !isRootOrNode {
		s = s.Neg()
	}
	return s
}

// CurrentInfo packs the monitor's state and the latest score into one
// USI-style Info per accumulated PV line (only ever more than one when
// opt.MultiPV > 1 and the root proved with multiple winning moves
// found), grounded on komoring_heights.hpp's CurrentInfo and
// multi_pv.hpp's per-move PV bookkeeping.
func (e *Engine) CurrentInfo() []usi.Info {
	mi := e.mon.GetInfo(e.nodeCount.Load())
	base := usi.Info{
		Depth:    mi.MaxDepth,
		Time:     mi.Elapsed,
		Nodes:    mi.Nodes,
		Nps:      mi.Nps,
		HashFull: e.tt.HashFull(),
		Score:    e.score,
	}
	if e.afterFinal {
		base.String = "refining mate length"
	}

	if len(e.pvLines) == 0 {
		return []usi.Info{base}
	}

	infos := make([]usi.Info, len(e.pvLines))
	for i, line := range e.pvLines {
		info := base
		if len(e.pvLines) > 1 {
			info.MultiPV = i + 1
		}
		pv := make([]string, len(line.Moves))
		for j, m := range line.Moves {
			pv[j] = m.String()
		}
		info.PV = pv
		infos[i] = info
	}
	return infos
}

// defaultThreads is the Lazy-SMP worker count SearchParallel uses when
// opt.Threads is 0. New normalizes the options, which raises 0 to 1,
// so an Engine built by New does not reach it.
var defaultThreads = uint32(runtime.GOMAXPROCS(0))

// SearchParallel runs opt.Threads independent Lazy-SMP workers against
// the same transposition table, each exploring from its own copy of
// pos, and returns as soon as the first worker reaches a final
// verdict. Every worker but the first carries non-zero LookUp noise so
// their recursions diverge instead of retracing an identical path.
func (e *Engine) SearchParallel(pos *shogi.Position, isRootOrNode bool) NodeState {
	threads := e.opt.Threads
	if threads == 0 {
		threads = defaultThreads
	}
	if threads <= 1 {
		return e.Search(pos, isRootOrNode)
	}

	e.stopFlag.Store(false)
	e.nodeCount.Store(0)
	e.afterFinal = false
	e.mon.NewSearch(4096, e.opt.PvIntervalMs, e.opt.NodesLimit)

	type outcome struct {
		state  NodeState
		length matelen.MateLen
		root   *node.Node
	}
	results := make(chan outcome, threads)

	var wg sync.WaitGroup
	for id := uint32(0); id < threads; id++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			posCopy := *pos
			root := node.NewRoot(&posCopy, e.tt, e.rep, tt.NewNoise(workerID), isRootOrNode)
			state, length := e.searchMainLoopWorker(root, isRootOrNode, workerID)
			if state != StateUnknown {
				e.stopFlag.Store(true)
			}
			results <- outcome{state: state, length: length, root: root}
		}(int(id))
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	var best outcome
	haveBest := false
	collected := uint32(0)
loop:
	for {
		select {
		case o := <-results:
			collected++
			if !haveBest || rankState(o.state) > rankState(best.state) {
				best, haveBest = o, true
			}
			if collected == threads {
				break loop
			}
		case <-done:
			break loop
		}
	}
	e.stopFlag.Store(true)
	<-done

	if haveBest && best.state == StateProven {
		e.pvLines = e.collectPVLines(best.root, best.length, e.opt.MultiPV)
	} else {
		e.pvLines = nil
	}
	if haveBest {
		return best.state
	}
	return StateUnknown
}

// searchMainLoopWorker is searchMainLoop run from a non-zero worker
// ID; identical control flow, but only worker 0 updates e.score, since
// concurrent workers racing to set it would otherwise show a
// different worker's transient bound on every PV print.
func (e *Engine) searchMainLoopWorker(root *node.Node, isRootOrNode bool, workerID int) (NodeState, matelen.MateLen) {
	if workerID == 0 {
		return e.searchMainLoop(root, isRootOrNode)
	}

	length := matelen.DepthMaxLen
	var lastProven matelen.MateLen
	havProven := false
	for {
		w := &worker{stack: expansion.NewStack(), mon: &e.mon, nodeCount: &e.nodeCount, stop: &e.stopFlag, multiPV: e.opt.MultiPV}
		r := searchImpl(root, pnum.Infinite, pnum.Infinite, length, true, tt.BoardKeyHandPair{}, false, w)
		state := stateOf(r.Pn(), r.Dn(), r.FinalData().IsRepetition)
		switch state {
		case StateProven:
			havProven, lastProven = true, r.Len()
			if e.opt.PostSearchLevel == engineopt.PostSearchNone || e.stopFlag.Load() || lastProven.Len() <= 0 {
				return StateProven, lastProven
			}
			length = lastProven.Pred()
		case StateDisproven, StateRepetition:
			if havProven {
				return StateProven, lastProven
			}
			return state, matelen.Minus1
		default:
			if havProven {
				return StateProven, lastProven
			}
			return StateUnknown, matelen.Minus1
		}
	}
}

// rankState orders NodeStates so SearchParallel prefers a proof over a
// disproof over an unknown when multiple workers finish close together.
func rankState(s NodeState) int {
	switch s {
	case StateProven:
		return 3
	case StateDisproven, StateRepetition:
		return 2
	default:
		return 1
	}
}
