package shogi

import "github.com/komori-n/KomoringHeights-sub000/internal/hand"

// dir is a (file, forward-relative-rank) step. The rank component is
// expressed relative to the mover's forward direction and converted to
// an absolute delta via fwd(color) at generation time, so the same
// table serves both colors symmetrically.
type dir struct {
	df, dfwd int
}

func fwd(c Color) int {
	if c == Black {
		return -1
	}
	return 1
}

var (
	goldDirs = []dir{{0, 1}, {-1, 1}, {1, 1}, {-1, 0}, {1, 0}, {0, -1}}
	silverDirs = []dir{{0, 1}, {-1, 1}, {1, 1}, {-1, -1}, {1, -1}}
	kingDirs = []dir{{0, 1}, {-1, 1}, {1, 1}, {-1, 0}, {1, 0}, {0, -1}, {-1, -1}, {1, -1}}
	bishopDirs = []dir{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}}
	rookDirs = []dir{{0, 1}, {0, -1}, {-1, 0}, {1, 0}}
	pawnDirs = []dir{{0, 1}}
	knightJumps = []dir{{-1, 2}, {1, 2}}
)

// stepDirs returns the fixed one-step directions for a non-sliding kind
// (everything except lance/bishop/rook/horse/dragon's sliding rays).
func stepDirs(k Kind) ([]dir, bool) {
	switch k {
	case KindPawn:
		return pawnDirs, true
	case KindSilver:
		return silverDirs, true
	case KindGold, KindProPawn, KindProLance, KindProKnight, KindProSilver:
		return goldDirs, true
	case KindKing:
		return kingDirs, true
	default:
		return nil, false
	}
}

// slideDirs returns the sliding rays for a sliding kind, and whether the
// kind additionally has one-step king-like moves (horse/dragon).
func slideDirs(k Kind) (rays []dir, extraKing bool, ok bool) {
	switch k {
	case KindLance:
		return pawnDirs, false, true
	case KindBishop:
		return bishopDirs, false, true
	case KindRook:
		return rookDirs, false, true
	case KindHorse:
		return bishopDirs, true, true
	case KindDragon:
		return rookDirs, true, true
	default:
		return nil, false, false
	}
}

func step(sq Square, c Color, d dir) (Square, bool) {
	f := sq.File() + d.df
	r := sq.Rank() + d.dfwd*fwd(c)
	if f < 0 || f >= NumFiles || r < 0 || r >= NumRanks {
		return 0, false
	}
	return MakeSquare(f, r), true
}

// pieceAttacks appends every square a piece of kind k and color c
// placed on sq attacks (ignoring whether the destination is occupied by
// a friendly piece — callers filter that separately for move
// generation, but not for "is square attacked" checks).
func (p *Position) pieceAttacks(sq Square, k Kind, c Color, out []Square) []Square {
	if dirs, ok := stepDirs(k); ok {
		for _, d := range dirs {
			if to, ok := step(sq, c, d); ok {
				out = append(out, to)
			}
		}
		return out
	}
	if k == KindKnight {
		for _, d := range knightJumps {
			if to, ok := step(sq, c, d); ok {
				out = append(out, to)
			}
		}
		return out
	}
	if rays, extraKing, ok := slideDirs(k); ok {
		for _, d := range rays {
			cur := sq
			for {
				to, ok := step(cur, c, d)
				if !ok {
					break
				}
				out = append(out, to)
				if p.board[to] != NoPiece {
					break
				}
				cur = to
			}
		}
		if extraKing {
			for _, d := range kingDirs {
				if to, ok := step(sq, c, d); ok {
					out = append(out, to)
				}
			}
		}
	}
	return out
}

// IsAttacked reports whether sq is attacked by any piece of color by.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	var buf [40]Square
	for s := Square(0); int(s) < NumSquares; s++ {
		pc := p.board[s]
		if pc == NoPiece || pc.Color() != by {
			continue
		}
		attacks := p.pieceAttacks(s, pc.Kind(), by, buf[:0])
		for _, a := range attacks {
			if a == sq {
				return true
			}
		}
	}
	return false
}

// InCheck reports whether c's king is currently attacked.
func (p *Position) InCheck(c Color) bool {
	ks := p.kingSquare[c]
	if !ks.Valid() {
		return false
	}
	return p.IsAttacked(ks, c.Other())
}

// GivesCheck reports whether playing m (by the side to move) would put
// the opponent in check. It makes and unmakes the move to answer
// precisely rather than approximating.
func (p *Position) GivesCheck(m Move) bool {
	u := p.DoMove(m)
	defer p.UndoMove(u)
	return p.InCheck(p.sideToMove)
}

// canPromote reports whether moving a piece of kind k from `from` to
// `to` for color c is eligible to promote (either square touches the
// promotion zone) and is not a king or gold (which never promote).
func canPromote(k Kind, c Color, from, to Square) bool {
	if !k.Promotable() {
		return false
	}
	return from.InPromotionZone(c) || to.InPromotionZone(c)
}

// mustPromote reports whether a piece of kind k moving to `to` would
// have no legal further moves if left unpromoted (pawn/lance on the
// last rank, knight on the last two ranks) and so promotion is
// mandatory.
func mustPromote(k Kind, c Color, to Square) bool {
	rel := to.RelativeRank(c)
	switch k {
	case KindPawn, KindLance:
		return rel == 0
	case KindKnight:
		return rel <= 1
	default:
		return false
	}
}

// generateBoardMoves appends pseudo-legal board moves (non-drops) for
// the side to move.
func (p *Position) generateBoardMoves(out []Move) []Move {
	c := p.sideToMove
	var buf [40]Square
	for from := Square(0); int(from) < NumSquares; from++ {
		pc := p.board[from]
		if pc == NoPiece || pc.Color() != c {
			continue
		}
		targets := p.pieceAttacks(from, pc.Kind(), c, buf[:0])
		for _, to := range targets {
			dest := p.board[to]
			if dest != NoPiece && dest.Color() == c {
				continue
			}
			promo := canPromote(pc.Kind(), c, from, to)
			must := mustPromote(pc.Kind(), c, to)
			if promo {
				out = append(out, NewMove(from, to, true))
			}
			if !must {
				out = append(out, NewMove(from, to, false))
			}
		}
	}
	return out
}

// generateDrops appends pseudo-legal drop moves for the side to move,
// honouring nifu (no second unpromoted pawn on a file), the
// last-rank/second-rank placement restrictions, and skipping
// drop-checkmate (uchifuzume) only for pawn drops that would deliver
// checkmate — the only drop-legality rule that depends on looking ahead
// more than one ply.
func (p *Position) generateDrops(out []Move) []Move {
	c := p.sideToMove
	h := p.hands[c]
	for hk := hand.Kind(0); hk < 7; hk++ {
		if h.Count(hk) == 0 {
			continue
		}
		k := FromHandKind(hk)
		for to := Square(0); int(to) < NumSquares; to++ {
			if p.board[to] != NoPiece {
				continue
			}
			if mustPromote(k, c, to) {
				continue
			}
			if k == KindPawn && p.hasUnpromotedPawnOnFile(c, to.File()) {
				continue
			}
			m := NewDrop(hk, to)
			if k == KindPawn && p.isDropPawnMate(m) {
				continue
			}
			out = append(out, m)
		}
	}
	return out
}

func (p *Position) hasUnpromotedPawnOnFile(c Color, file int) bool {
	for r := 0; r < NumRanks; r++ {
		sq := MakeSquare(file, r)
		pc := p.board[sq]
		if pc != NoPiece && pc.Color() == c && pc.Kind() == KindPawn {
			return true
		}
	}
	return false
}

// isDropPawnMate implements the uchifuzume restriction: dropping a pawn
// to deliver checkmate is illegal. It makes the drop, checks whether
// the opponent is checkmated, and undoes it.
func (p *Position) isDropPawnMate(m Move) bool {
	u := p.DoMove(m)
	defer p.UndoMove(u)
	opp := p.sideToMove
	if !p.InCheck(opp) {
		return false
	}
	return len(p.GenerateLegalMoves()) == 0
}

// GeneratePseudoMoves returns every pseudo-legal move (board moves and
// drops) for the side to move, without filtering for king safety.
func (p *Position) GeneratePseudoMoves() []Move {
	out := make([]Move, 0, 80)
	out = p.generateBoardMoves(out)
	out = p.generateDrops(out)
	return out
}

// GenerateLegalMoves filters GeneratePseudoMoves down to moves that do
// not leave the mover's own king in check.
func (p *Position) GenerateLegalMoves() []Move {
	c := p.sideToMove
	pseudo := p.GeneratePseudoMoves()
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		u := p.DoMove(m)
		if !p.InCheck(c) {
			legal = append(legal, m)
		}
		p.UndoMove(u)
	}
	return legal
}

// GenerateChecks returns the legal moves available to the side to move
// that place the opponent in check — the OR-node move set an attacking
// node expands into.
func (p *Position) GenerateChecks() []Move {
	legal := p.GenerateLegalMoves()
	out := make([]Move, 0, len(legal))
	for _, m := range legal {
		if p.GivesCheck(m) {
			out = append(out, m)
		}
	}
	return out
}

// GenerateEvasions returns the legal moves available to the side to
// move while in check — the AND-node move set. When the side to move is
// not in check, it returns every legal move (callers are expected to
// only invoke this at nodes already verified to be in check, but the
// fallback keeps the function total).
func (p *Position) GenerateEvasions() []Move {
	return p.GenerateLegalMoves()
}
