// Package node wraps a shogi position with the extra bookkeeping the
// search core and local expansion both need to address a node in the
// transposition table and detect repetitions along the current path:
// depth, path key, AND/OR polarity, and a per-goroutine visit history.
//
// Grounded on original_source/node.hpp: a single mutable Node object is
// threaded through the recursion via DoMove/UndoMove rather than
// allocated fresh per ply, the same way internal/shogi.Position itself
// is mutated in place.
package node

import (
	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
	"github.com/komori-n/KomoringHeights-sub000/internal/pathkey"
	"github.com/komori-n/KomoringHeights-sub000/internal/reptable"
	"github.com/komori-n/KomoringHeights-sub000/internal/shogi"
	"github.com/komori-n/KomoringHeights-sub000/internal/tt"
	"github.com/komori-n/KomoringHeights-sub000/internal/visithist"
)

// Node is NOT safe for concurrent use; one instance belongs to exactly
// one worker goroutine's recursion.
type Node struct {
	pos  *shogi.Position
	tt   *tt.RegularTable
	rep  *reptable.Table
	noise *tt.Noise
	hist *visithist.VisitHistory

	depth         int
	pathKey       pathkey.Key
	orNode        bool
	attackerColor shogi.Color
}

// NewRoot builds the root Node for a search: depth 0, path key 0, the
// root position's hand/board key registered as the first visit.
// orNode tells which side the attacker is: true when the side to move
// is delivering checks (the attacker), false when the side to move is
// evading (already in check, the defender) — matching EngineOption's
// RootIsAndNodeIfChecked decision at the call site.
//
// The node's identity hand (Hand) always names the attacker's hand,
// never whichever side happens to be on move — the same convention
// original_source/node.hpp uses, since it is what makes a child's
// proof/disproof hand and a parent's before-move hand comparable
// through a single move's effect on one player's hand instead of two.
func NewRoot(pos *shogi.Position, table *tt.RegularTable, rep *reptable.Table, noise *tt.Noise, orNode bool) *Node {
	attacker := pos.SideToMove()
	if !orNode {
		attacker = attacker.Other()
	}
	n := &Node{pos: pos, tt: table, rep: rep, noise: noise, hist: visithist.New(), orNode: orNode, attackerColor: attacker}
	n.hist.Visit(pos.BoardKey(), n.Hand(), 0)
	return n
}

func (n *Node) Position() *shogi.Position { return n.pos }
func (n *Node) OrNode() bool              { return n.orNode }
func (n *Node) Depth() int                { return n.depth }
func (n *Node) BoardKey() uint64          { return n.pos.BoardKey() }
func (n *Node) PathKey() pathkey.Key      { return n.pathKey }
func (n *Node) TT() *tt.RegularTable      { return n.tt }
func (n *Node) RepTable() *reptable.Table { return n.rep }
func (n *Node) Noise() *tt.Noise          { return n.noise }
func (n *Node) AttackerColor() shogi.Color { return n.attackerColor }

// Hand returns the attacker's hand — the node-identity hand used to
// address the transposition table, regardless of which side is
// currently on move.
func (n *Node) Hand() hand.Hand { return n.pos.HandOf(n.attackerColor) }

// GenerateMoves returns the OR-node check set or the AND-node evasion
// set, whichever this node's polarity calls for.
func (n *Node) GenerateMoves() []shogi.Move {
	if n.orNode {
		return n.pos.GenerateChecks()
	}
	return n.pos.GenerateEvasions()
}

// Undo carries what UndoMove needs to reverse a DoMove call.
type Undo struct {
	posUndo     shogi.UndoInfo
	prevPathKey pathkey.Key
}

// DoMove plays m, advancing depth, flipping polarity, updating the
// path key, and registering the resulting (board_key, hand) in the
// visit history. Must be paired with UndoMove in strict LIFO order.
func (n *Node) DoMove(m shogi.Move) Undo {
	prevPathKey := n.pathKey
	posUndo := n.pos.DoMove(m)
	n.pathKey = pathkey.After(n.pathKey, uint16(m), n.depth)
	n.depth++
	n.orNode = !n.orNode
	n.hist.Visit(n.pos.BoardKey(), n.Hand(), n.depth)
	return Undo{posUndo: posUndo, prevPathKey: prevPathKey}
}

// UndoMove reverses the matching DoMove call.
func (n *Node) UndoMove(u Undo) {
	n.hist.Leave(n.pos.BoardKey(), n.Hand())
	n.depth--
	n.orNode = !n.orNode
	n.pos.UndoMove(u.posUndo)
	n.pathKey = u.prevPathKey
}

// NewQuery addresses the transposition table at this node's current
// (board_key, hand, depth).
func (n *Node) NewQuery() *tt.Query {
	return tt.NewQuery(n.tt, n.rep, n.noise, uint64(n.pathKey), n.pos.BoardKey(), n.Hand(), n.depth)
}

// BoardKeyHandPairAfter reports the (board_key, hand) reached by
// playing m, without disturbing depth/path-key/visit-history state. The
// hand is always the attacker's, matching Hand's convention, so the
// pair is directly comparable to a child Node's own Hand().
func (n *Node) BoardKeyHandPairAfter(m shogi.Move) tt.BoardKeyHandPair {
	u := n.pos.DoMove(m)
	defer n.pos.UndoMove(u)
	return tt.BoardKeyHandPair{BoardKey: n.pos.BoardKey(), Hand: n.pos.HandOf(n.attackerColor)}
}

// ContainsInPath reports whether (boardKey, h) was visited earlier on
// the current search path.
func (n *Node) ContainsInPath(boardKey uint64, h hand.Hand) bool {
	_, ok := n.hist.Contains(boardKey, h)
	return ok
}

// ContainsDepth reports the depth of the earliest visit to (boardKey, h)
// with exactly the same hand on the current search path, per
// VisitHistory.Contains; searchImpl uses it for repetition detection.
func (n *Node) ContainsDepth(boardKey uint64, h hand.Hand) (int, bool) {
	return n.hist.Contains(boardKey, h)
}

func (n *Node) InferiorDepth(boardKey uint64, h hand.Hand) (int, bool) {
	return n.hist.IsInferior(boardKey, h)
}

func (n *Node) SuperiorDepth(boardKey uint64, h hand.Hand) (int, bool) {
	return n.hist.IsSuperior(boardKey, h)
}

// PeekAfterMove applies m, hands the resulting Node state to f, then
// always undoes m — a scoped "look one ply ahead" helper used by local
// expansion's child lookups and by PV reconstruction in internal/search,
// which need full Node context (depth, polarity, hand) rather than just
// the raw Position.
func (n *Node) PeekAfterMove(m shogi.Move, f func(child *Node)) {
	u := n.DoMove(m)
	f(n)
	n.UndoMove(u)
}
