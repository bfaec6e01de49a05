package tt

import "math"

// noiseSchedule mirrors detail::kNoise: each non-main Lazy-SMP worker
// gets a slightly different LookUp-noise period so that otherwise
// identical recursions diverge instead of retracing the exact same
// path against the shared table.
var noiseSchedule = [6]uint32{7, 6, 5, 4, 3, 2}

// Noise holds one worker's LookUp-noise state. The main worker (id 0)
// gets a Noise that never fires (both fields left at math.MaxUint32),
// matching InitializeTTNoise's "don't perturb the main thread" rule.
type Noise struct {
	interval uint32
	timing   uint32
}

// NewNoise builds the noise state for Lazy-SMP worker workerID (0 is
// the un-noised main worker).
func NewNoise(workerID int) *Noise {
	n := &Noise{interval: math.MaxUint32, timing: math.MaxUint32}
	if workerID != 0 {
		n.interval += noiseSchedule[(workerID-1)%len(noiseSchedule)]
		n.timing = uint32(workerID)
	}
	return n
}

// Tick decrements the countdown and reports whether this call should
// perturb (pn, dn); when it fires, the countdown resets to interval.
func (n *Noise) Tick() bool {
	if n.timing == math.MaxUint32 {
		return false
	}
	if n.timing == 0 {
		n.timing = n.interval
		return true
	}
	n.timing--
	return false
}
