package shogi

import (
	"fmt"

	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
)

// Position is the mutable board state: piece placement, both hands, the
// side to move, and an incrementally maintained Zobrist board key. It
// implements the external "Position" collaborator the search core
// relies on (do_move/undo_move, board_key, hand_of, move generation,
// mate_1ply).
type Position struct {
	board      [NumSquares]Piece
	hands      [2]hand.Hand
	sideToMove Color
	kingSquare [2]Square
	boardKey   uint64
}

// UndoInfo carries what DoMove needs to reverse itself.
type UndoInfo struct {
	Move     Move
	Captured Piece
	PrevKey  uint64
}

// NewEmpty returns a Position with an empty board, Black to move.
func NewEmpty() *Position {
	p := &Position{}
	for i := range p.board {
		p.board[i] = NoPiece
	}
	p.kingSquare[Black] = NoSquare
	p.kingSquare[White] = NoSquare
	return p
}

func (p *Position) PieceAt(sq Square) Piece { return p.board[sq] }

func (p *Position) IsEmpty(sq Square) bool { return p.board[sq] == NoPiece }

func (p *Position) HandOf(c Color) hand.Hand { return p.hands[c] }

func (p *Position) SideToMove() Color { return p.sideToMove }

// BoardKey returns the 64-bit Zobrist hash of the full position
// (board + both hands + side to move).
func (p *Position) BoardKey() uint64 { return p.boardKey }

func (p *Position) KingSquare(c Color) Square { return p.kingSquare[c] }

// PlacePiece sets up the initial board during parsing; it does not
// update move-history bookkeeping.
func (p *Position) PlacePiece(sq Square, pc Piece) {
	p.board[sq] = pc
	if pc != NoPiece {
		p.boardKey ^= zobristForPiece(pc.Color(), pc.Kind(), sq)
		if pc.Kind() == KindKing {
			p.kingSquare[pc.Color()] = sq
		}
	}
}

// SetHand overwrites one color's hand during parsing.
func (p *Position) SetHand(c Color, h hand.Hand) {
	old := p.hands[c]
	for k := hand.Kind(0); k < 7; k++ {
		p.boardKey ^= zobristForHandCount(c, k, old.Count(k))
	}
	p.hands[c] = h
	for k := hand.Kind(0); k < 7; k++ {
		p.boardKey ^= zobristForHandCount(c, k, h.Count(k))
	}
}

// SetSideToMove sets the side to move during parsing.
func (p *Position) SetSideToMove(c Color) {
	if p.sideToMove != c {
		p.boardKey ^= zobristSideToMove
	}
	p.sideToMove = c
}

func (p *Position) addHand(c Color, hk hand.Kind, n uint32) {
	old := p.hands[c]
	p.boardKey ^= zobristForHandCount(c, hk, old.Count(hk))
	p.hands[c] = old.Add(hk, n)
	p.boardKey ^= zobristForHandCount(c, hk, p.hands[c].Count(hk))
}

func (p *Position) subHand(c Color, hk hand.Kind, n uint32) {
	old := p.hands[c]
	p.boardKey ^= zobristForHandCount(c, hk, old.Count(hk))
	p.hands[c] = old.Sub(hk, n)
	p.boardKey ^= zobristForHandCount(c, hk, p.hands[c].Count(hk))
}

// DoMove applies m (assumed pseudo-legal for the side to move) and
// returns the information needed to undo it.
func (p *Position) DoMove(m Move) UndoInfo {
	c := p.sideToMove
	prevKey := p.boardKey
	undo := UndoInfo{Move: m, PrevKey: prevKey}

	to := m.To()
	if m.IsDrop() {
		dropped := NewPiece(FromHandKind(m.DropKind()), c)
		p.board[to] = dropped
		p.boardKey ^= zobristForPiece(c, dropped.Kind(), to)
		p.subHand(c, m.DropKind(), 1)
	} else {
		from := m.From()
		moving := p.board[from]
		captured := p.board[to]
		undo.Captured = captured

		p.board[from] = NoPiece
		p.boardKey ^= zobristForPiece(c, moving.Kind(), from)

		if captured != NoPiece {
			p.boardKey ^= zobristForPiece(captured.Color(), captured.Kind(), to)
			if hk, ok := captured.Kind().HandKind(); ok {
				p.addHand(c, hk, 1)
			}
		}

		newKind := moving.Kind()
		if m.IsPromotion() {
			newKind = newKind.Promoted()
		}
		moved := NewPiece(newKind, c)
		p.board[to] = moved
		p.boardKey ^= zobristForPiece(c, newKind, to)

		if newKind == KindKing {
			p.kingSquare[c] = to
		}
	}

	p.sideToMove = c.Other()
	p.boardKey ^= zobristSideToMove
	return undo
}

// UndoMove reverses DoMove. Callers must pass the UndoInfo returned by
// the matching DoMove call, in strict LIFO order.
func (p *Position) UndoMove(u UndoInfo) {
	c := p.sideToMove.Other()
	m := u.Move
	to := m.To()

	if m.IsDrop() {
		p.board[to] = NoPiece
		p.hands[c] = p.hands[c].Add(m.DropKind(), 1)
	} else {
		from := m.From()
		moved := p.board[to]
		baseKind := moved.Kind()
		if m.IsPromotion() {
			baseKind = baseKind.Demoted()
		}
		p.board[from] = NewPiece(baseKind, c)
		if baseKind == KindKing {
			p.kingSquare[c] = from
		}
		p.board[to] = u.Captured
		if u.Captured != NoPiece {
			if hk, ok := u.Captured.Kind().HandKind(); ok {
				p.hands[c] = p.hands[c].Sub(hk, 1)
			}
		}
	}

	p.sideToMove = c
	p.boardKey = u.PrevKey
}

func (p *Position) String() string {
	s := ""
	for r := 0; r < NumRanks; r++ {
		for f := NumFiles - 1; f >= 0; f-- {
			s += p.board[MakeSquare(f, r)].String()
		}
		s += "\n"
	}
	s += fmt.Sprintf("side=%s black_hand=%s white_hand=%s\n", p.sideToMove, p.hands[Black], p.hands[White])
	return s
}
