// Package shogi implements the position/move-generation layer that the
// search core treats as an external collaborator: board representation,
// SFEN parsing, Zobrist board keys, and legal check/evasion generation.
// The search engine only ever calls through the narrow Position/Move
// contract this package exposes.
package shogi

import "github.com/komori-n/KomoringHeights-sub000/internal/hand"

// Color is the side to move.
type Color uint8

const (
	Black Color = iota // attacker in a tsume problem by convention
	White
	NoColor
)

// Other returns the opposing color.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == Black {
		return "b"
	}
	return "w"
}

// Kind is a piece type on the board, including promoted forms.
type Kind uint8

const (
	NoKind Kind = iota
	KindPawn
	KindLance
	KindKnight
	KindSilver
	KindGold
	KindBishop
	KindRook
	KindKing
	KindProPawn
	KindProLance
	KindProKnight
	KindProSilver
	KindHorse // promoted bishop
	KindDragon // promoted rook
	numKinds
)

// Promotable reports whether this kind can promote.
func (k Kind) Promotable() bool {
	switch k {
	case KindPawn, KindLance, KindKnight, KindSilver, KindBishop, KindRook:
		return true
	default:
		return false
	}
}

// Promoted returns the promoted form of k, or k unchanged if not
// promotable (e.g. gold, king).
func (k Kind) Promoted() Kind {
	switch k {
	case KindPawn:
		return KindProPawn
	case KindLance:
		return KindProLance
	case KindKnight:
		return KindProKnight
	case KindSilver:
		return KindProSilver
	case KindBishop:
		return KindHorse
	case KindRook:
		return KindDragon
	default:
		return k
	}
}

// IsPromoted reports whether k is already a promoted kind.
func (k Kind) IsPromoted() bool {
	switch k {
	case KindProPawn, KindProLance, KindProKnight, KindProSilver, KindHorse, KindDragon:
		return true
	default:
		return false
	}
}

// Demoted returns the unpromoted form used when the piece is captured
// and goes to the capturing side's hand.
func (k Kind) Demoted() Kind {
	switch k {
	case KindProPawn:
		return KindPawn
	case KindProLance:
		return KindLance
	case KindProKnight:
		return KindKnight
	case KindProSilver:
		return KindSilver
	case KindHorse:
		return KindBishop
	case KindDragon:
		return KindRook
	default:
		return k
	}
}

// HandKind maps a board kind to the hand.Kind bucket a captured copy of
// it falls into (only meaningful for droppable kinds).
func (k Kind) HandKind() (hand.Kind, bool) {
	switch k.Demoted() {
	case KindPawn:
		return hand.Pawn, true
	case KindLance:
		return hand.Lance, true
	case KindKnight:
		return hand.Knight, true
	case KindSilver:
		return hand.Silver, true
	case KindGold:
		return hand.Gold, true
	case KindBishop:
		return hand.Bishop, true
	case KindRook:
		return hand.Rook, true
	default:
		return 0, false
	}
}

// FromHandKind is the inverse of HandKind.
func FromHandKind(hk hand.Kind) Kind {
	switch hk {
	case hand.Pawn:
		return KindPawn
	case hand.Lance:
		return KindLance
	case hand.Knight:
		return KindKnight
	case hand.Silver:
		return KindSilver
	case hand.Gold:
		return KindGold
	case hand.Bishop:
		return KindBishop
	case hand.Rook:
		return KindRook
	default:
		return NoKind
	}
}

var kindChars = [numKinds]byte{' ', 'P', 'L', 'N', 'S', 'G', 'B', 'R', 'K', 'T', 'U', 'V', 'W', 'H', 'D'}

func (k Kind) Char() byte {
	if int(k) >= len(kindChars) {
		return '?'
	}
	return kindChars[k]
}

// Piece packs a Kind and Color, or NoPiece for an empty square.
type Piece uint8

const NoPiece Piece = Piece(numKinds) * 2

// NewPiece builds a Piece from kind and color.
func NewPiece(k Kind, c Color) Piece {
	if k == NoKind {
		return NoPiece
	}
	return Piece(k) + Piece(c)*Piece(numKinds)
}

func (p Piece) Kind() Kind {
	if p >= NoPiece {
		return NoKind
	}
	return Kind(p % Piece(numKinds))
}

func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / Piece(numKinds))
}

func (p Piece) String() string {
	if p == NoPiece {
		return " * "
	}
	c := p.Kind().Char()
	if p.Color() == White {
		c = c + ('a' - 'A')
	}
	return string(rune(c))
}
