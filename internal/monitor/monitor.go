package monitor

import (
	"sync/atomic"
	"time"
)

// histLen is the number of (time, node count) samples SearchMonitor keeps
// for its sliding-window nps estimate.
const histLen = 16

// Info is a snapshot of search progress suitable for building a USI-style
// info line: elapsed time, node count, nps, and the deepest node visited.
type Info struct {
	Elapsed  time.Duration
	Nodes    uint64
	Nps      uint64
	MaxDepth int
}

// SearchMonitor tracks node counts and elapsed time during a search so the
// caller can compute nps, decide when to poll the transposition table's
// hashfull ratio, and know when the node/time budget has run out.
//
// MoveCount is supplied by the caller rather than read from a shared
// Threads-like singleton, since this module has no global thread registry
// equivalent to the original's Threads.nodes_searched().
type SearchMonitor struct {
	startTime time.Time

	tpHist  [histLen]time.Time
	mcHist  [histLen]uint64
	histIdx int

	moveLimit             uint64
	timeLimit             time.Duration
	hashfullCheckInterval uint64
	hashfullCheckSkip     uint32
	nextHashfullCheck     uint64

	printAlarm PeriodicAlarm
	stopCheck  PeriodicAlarm

	stop     atomic.Bool
	maxDepth atomic.Int64
}

// NewSearch resets the monitor and begins a new search. hashfullCheckInterval
// is the node-count period between hashfull polls, pvIntervalMs is the
// wall-clock period between PV prints, and moveLimit is the node budget (0
// meaning unlimited).
func (m *SearchMonitor) NewSearch(hashfullCheckInterval, pvIntervalMs, moveLimit uint64) {
	m.startTime = time.Now()

	for i := range m.tpHist {
		m.tpHist[i] = m.startTime
		m.mcHist[i] = 0
	}
	m.histIdx = 0

	m.moveLimit = moveLimit
	m.hashfullCheckInterval = hashfullCheckInterval
	m.hashfullCheckSkip = 0
	m.nextHashfullCheck = hashfullCheckInterval

	m.printAlarm.Start(pvIntervalMs)
	m.stopCheck.Start(stopCheckIntervalMs)

	m.stop.Store(false)
	m.maxDepth.Store(0)
}

// SetTimeLimit sets the wall-clock budget for the search. A zero duration
// means unlimited.
func (m *SearchMonitor) SetTimeLimit(limit time.Duration) {
	m.timeLimit = limit
}

// stopCheckIntervalMs is how often ShouldStop's underlying alarm actually
// reads the wall clock.
const stopCheckIntervalMs = 100

// Visit records that the search has reached depth d, for max-depth reporting.
func (m *SearchMonitor) Visit(d int) {
	for {
		cur := m.maxDepth.Load()
		if int64(d) <= cur {
			return
		}
		if m.maxDepth.CompareAndSwap(cur, int64(d)) {
			return
		}
	}
}

// Sample records the current node count against the clock, to be used by
// Nps. Call this periodically (e.g. from ShouldCheckHashfull's cadence)
// rather than on every node.
func (m *SearchMonitor) Sample(nodeCount uint64) {
	m.histIdx = (m.histIdx + 1) % histLen
	m.tpHist[m.histIdx] = time.Now()
	m.mcHist[m.histIdx] = nodeCount
}

// GetInfo packs the monitor's current state for display. nodeCount is
// supplied by the caller (the worker pool's atomic node counter).
func (m *SearchMonitor) GetInfo(nodeCount uint64) Info {
	oldestIdx := (m.histIdx + 1) % histLen
	dt := time.Since(m.tpHist[oldestIdx])
	dn := nodeCount - m.mcHist[oldestIdx]

	var nps uint64
	if dt > 0 {
		nps = uint64(float64(dn) / dt.Seconds())
	}

	return Info{
		Elapsed:  time.Since(m.startTime),
		Nodes:    nodeCount,
		Nps:      nps,
		MaxDepth: int(m.maxDepth.Load()),
	}
}

// MoveCount is a convenience re-export; callers typically already have the
// node counter and should prefer passing it to GetInfo/ShouldStop directly.
func (m *SearchMonitor) MoveCount(nodeCount uint64) uint64 {
	return nodeCount
}

// ShouldCheckHashfull reports whether it's time to poll the transposition
// table's hashfull ratio, coarsened the same way PeriodicAlarm coarsens
// wall-clock reads: most calls just decrement a skip counter.
func (m *SearchMonitor) ShouldCheckHashfull(nodeCount uint64) bool {
	if m.hashfullCheckSkip > 0 {
		m.hashfullCheckSkip--
		return false
	}
	return nodeCount >= m.nextHashfullCheck
}

// ResetNextHashfullCheck schedules the next hashfull poll and re-arms the
// skip counter.
func (m *SearchMonitor) ResetNextHashfullCheck(nodeCount uint64) {
	m.nextHashfullCheck = nodeCount + m.hashfullCheckInterval
	m.hashfullCheckSkip = checkSkip
}

// ShouldStop reports whether the search has exceeded its node or time
// budget, or has been asked to stop externally via Stop.
func (m *SearchMonitor) ShouldStop(nodeCount uint64) bool {
	if m.stop.Load() {
		return true
	}
	if m.moveLimit > 0 && nodeCount >= m.moveLimit {
		return true
	}
	if !m.stopCheck.Tick() {
		return false
	}
	if m.timeLimit > 0 && time.Since(m.startTime) >= m.timeLimit {
		m.stop.Store(true)
		return true
	}
	return false
}

// ShouldPrint reports whether it's time to emit a new PV/info line. Must be
// polled periodically; it is not edge-triggered by any other event.
func (m *SearchMonitor) ShouldPrint() bool {
	return m.printAlarm.Tick()
}

// Stop forces ShouldStop to report true from now on.
func (m *SearchMonitor) Stop() {
	m.stop.Store(true)
}

// Stopped reports whether Stop has been called.
func (m *SearchMonitor) Stopped() bool {
	return m.stop.Load()
}
