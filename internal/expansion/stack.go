package expansion

import (
	"github.com/komori-n/KomoringHeights-sub000/internal/matelen"
	"github.com/komori-n/KomoringHeights-sub000/internal/node"
	"github.com/komori-n/KomoringHeights-sub000/internal/result"
)

// ExpansionStack holds one LocalExpansion per ply of the current
// search path, mirroring original_source/expansion_stack.hpp's
// per-thread stack threaded alongside a Node's own DoMove/UndoMove
// recursion: Emplace pushes a frame when the search descends into a
// node, Pop discards it when the matching UndoMove unwinds back out.
type ExpansionStack struct {
	frames []*LocalExpansion
}

// NewStack returns an empty stack, sized for a typical search depth to
// avoid early reallocation.
func NewStack() *ExpansionStack {
	return &ExpansionStack{frames: make([]*LocalExpansion, 0, 64)}
}

// Emplace builds a new LocalExpansion for n and pushes it as the
// current frame. multiPV sets how many winning candidates must
// accumulate before the frame resolves itself (1 reproduces ordinary
// single-PV behavior).
func (s *ExpansionStack) Emplace(n *node.Node, length matelen.MateLen, firstSearch bool, multiPV int) *LocalExpansion {
	le := New(n, length, firstSearch)
	le.SetMultiPVTarget(multiPV)
	s.frames = append(s.frames, le)
	return le
}

// Pop discards the current frame.
func (s *ExpansionStack) Pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// Current returns the frame at the top of the stack, or nil if empty.
func (s *ExpansionStack) Current() *LocalExpansion {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Len reports how many frames are currently pushed.
func (s *ExpansionStack) Len() int { return len(s.frames) }

// EliminateDoubleCount asks whether n itself, having just resolved to
// r, reconverges with an ancestor already on the search path. When it
// does, the frame still on this stack for that ancestor
// (edge.BranchRoot) has its current front candidate's sumMask bit
// cleared — that candidate is the edge leading toward n — reverting
// its δ from sum to max accounting so n's shared subtree is not
// counted twice toward the ancestor's own δ.
func (s *ExpansionStack) EliminateDoubleCount(n *node.Node, r result.SearchResult) (BranchRootEdge, bool) {
	le := s.Current()
	if le == nil {
		return BranchRootEdge{}, false
	}
	edge, ok := FindKnownAncestor(n, le.selfPair, r.Delta(le.orNode))
	if !ok {
		return BranchRootEdge{}, false
	}
	for _, frame := range s.frames {
		if frame.selfPair == edge.BranchRoot {
			frame.clearFrontSumMaskBit()
			break
		}
	}
	return edge, true
}
