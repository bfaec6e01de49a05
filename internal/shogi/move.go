package shogi

import (
	"fmt"

	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
)

// Move encodes a shogi move in 16 bits, mirroring the packed chess Move
// in internal/board/move.go but widened for drops:
//
//	bits 0-6:   to square (0-80)
//	bits 7-13:  from square (0-80), or dropped hand.Kind when IsDrop
//	bit 14:     promotion flag
//	bit 15:     drop flag
type Move uint16

const (
	flagPromotion uint16 = 1 << 14
	flagDrop      uint16 = 1 << 15
)

// NoMove is the null move.
const NoMove Move = 0x7fff

// NewMove creates a board move, optionally promoting.
func NewMove(from, to Square, promote bool) Move {
	m := Move(to&0x7f) | Move(from&0x7f)<<7
	if promote {
		m |= Move(flagPromotion)
	}
	return m
}

// NewDrop creates a drop move of hand kind k onto to.
func NewDrop(k hand.Kind, to Square) Move {
	return Move(to&0x7f) | Move(k)<<7 | Move(flagDrop)
}

func (m Move) To() Square { return Square(m & 0x7f) }

func (m Move) IsDrop() bool { return uint16(m)&flagDrop != 0 }

func (m Move) From() Square {
	if m.IsDrop() {
		return NoSquare
	}
	return Square((m >> 7) & 0x7f)
}

func (m Move) DropKind() hand.Kind {
	return hand.Kind((m >> 7) & 0x7f)
}

func (m Move) IsPromotion() bool { return uint16(m)&flagPromotion != 0 }

func (m Move) String() string {
	if m == NoMove {
		return "none"
	}
	if m.IsDrop() {
		return fmt.Sprintf("%s*%s", FromHandKind(m.DropKind()).Char0(), m.To())
	}
	s := fmt.Sprintf("%s%s", m.From(), m.To())
	if m.IsPromotion() {
		s += "+"
	}
	return s
}

// Char0 returns the USI drop-letter for a board kind (uppercase, the
// promotable base form).
func (k Kind) Char0() string {
	return string(rune(k.Char()))
}

// MoveList is a fixed-capacity move buffer, mirroring
// internal/board/move.go's MoveList to avoid per-node allocation during
// search.
type MoveList struct {
	moves [600]Move
	count int
}

func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int { return ml.count }

func (ml *MoveList) Get(i int) Move { return ml.moves[i] }

func (ml *MoveList) Slice() []Move { return ml.moves[:ml.count] }

func (ml *MoveList) Clear() { ml.count = 0 }
