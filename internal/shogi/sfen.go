package shogi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
)

// sfenPieceLetters maps SFEN board-letter (uppercase, Black) to Kind.
var sfenPieceLetters = map[byte]Kind{
	'P': KindPawn, 'L': KindLance, 'N': KindKnight, 'S': KindSilver,
	'G': KindGold, 'B': KindBishop, 'R': KindRook, 'K': KindKing,
}

var sfenHandLetters = map[byte]hand.Kind{
	'P': hand.Pawn, 'L': hand.Lance, 'N': hand.Knight, 'S': hand.Silver,
	'G': hand.Gold, 'B': hand.Bishop, 'R': hand.Rook,
}

// ParseSFEN parses a full SFEN record: "<board> <side> <hands> <move#>".
// The move-number field is accepted but not otherwise used.
func ParseSFEN(sfen string) (*Position, error) {
	fields := strings.Fields(sfen)
	if len(fields) < 3 {
		return nil, fmt.Errorf("shogi: malformed sfen %q", sfen)
	}
	p := NewEmpty()
	if err := parseSfenBoard(p, fields[0]); err != nil {
		return nil, err
	}
	switch fields[1] {
	case "b":
		p.SetSideToMove(Black)
	case "w":
		p.SetSideToMove(White)
	default:
		return nil, fmt.Errorf("shogi: invalid side to move %q", fields[1])
	}
	if err := parseSfenHands(p, fields[2]); err != nil {
		return nil, err
	}
	return p, nil
}

func parseSfenBoard(p *Position, board string) error {
	ranks := strings.Split(board, "/")
	if len(ranks) != NumRanks {
		return fmt.Errorf("shogi: sfen board must have %d ranks, got %d", NumRanks, len(ranks))
	}
	for rankIdx, row := range ranks {
		rank := rankIdx
		file := NumFiles - 1
		i := 0
		for i < len(row) {
			ch := row[i]
			switch {
			case ch >= '1' && ch <= '9':
				n := int(ch - '0')
				file -= n
				i++
			case ch == '+':
				if i+1 >= len(row) {
					return fmt.Errorf("shogi: dangling promotion marker in %q", row)
				}
				base, ok := sfenPieceLetters[upper(row[i+1])]
				if !ok || base == KindKing {
					return fmt.Errorf("shogi: invalid promoted piece in %q", row)
				}
				k := base.Promoted()
				c := Black
				if isLower(row[i+1]) {
					c = White
				}
				if file < 0 {
					return fmt.Errorf("shogi: sfen rank %q overflows board width", row)
				}
				p.PlacePiece(MakeSquare(file, rank), NewPiece(k, c))
				file--
				i += 2
			default:
				base, ok := sfenPieceLetters[upper(ch)]
				if !ok {
					return fmt.Errorf("shogi: unknown sfen piece %q", string(ch))
				}
				c := Black
				if isLower(ch) {
					c = White
				}
				if file < 0 {
					return fmt.Errorf("shogi: sfen rank %q overflows board width", row)
				}
				p.PlacePiece(MakeSquare(file, rank), NewPiece(base, c))
				file--
				i++
			}
		}
	}
	return nil
}

func parseSfenHands(p *Position, hands string) error {
	if hands == "-" {
		return nil
	}
	i := 0
	for i < len(hands) {
		count := 1
		start := i
		for i < len(hands) && hands[i] >= '0' && hands[i] <= '9' {
			i++
		}
		if i > start {
			n, err := strconv.Atoi(hands[start:i])
			if err != nil {
				return fmt.Errorf("shogi: invalid hand count in %q", hands)
			}
			count = n
		}
		if i >= len(hands) {
			return fmt.Errorf("shogi: dangling hand count in %q", hands)
		}
		ch := hands[i]
		hk, ok := sfenHandLetters[upper(ch)]
		if !ok {
			return fmt.Errorf("shogi: unknown hand piece %q", string(ch))
		}
		c := Black
		if isLower(ch) {
			c = White
		}
		p.addHand(c, hk, uint32(count))
		i++
	}
	return nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func isLower(b byte) bool { return b >= 'a' && b <= 'z' }

// SFEN serializes the position back to SFEN board/side/hands form (move
// number is fixed at 1, since the search core never tracks it).
func (p *Position) SFEN() string {
	var sb strings.Builder
	for rank := 0; rank < NumRanks; rank++ {
		empty := 0
		for file := NumFiles - 1; file >= 0; file-- {
			pc := p.board[MakeSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			if pc.Kind().IsPromoted() {
				sb.WriteByte('+')
			}
			c := pc.Kind().Char()
			if pc.Color() == White {
				c = lowerChar(c)
			}
			sb.WriteByte(c)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank != NumRanks-1 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	if p.sideToMove == Black {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}
	sb.WriteByte(' ')
	sb.WriteString(p.handsSFEN())
	sb.WriteString(" 1")
	return sb.String()
}

func lowerChar(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func (p *Position) handsSFEN() string {
	var sb strings.Builder
	order := []hand.Kind{hand.Rook, hand.Bishop, hand.Gold, hand.Silver, hand.Knight, hand.Lance, hand.Pawn}
	letters := map[hand.Kind]byte{
		hand.Pawn: 'P', hand.Lance: 'L', hand.Knight: 'N', hand.Silver: 'S',
		hand.Gold: 'G', hand.Bishop: 'B', hand.Rook: 'R',
	}
	any := false
	for _, c := range []Color{Black, White} {
		for _, hk := range order {
			n := p.hands[c].Count(hk)
			if n == 0 {
				continue
			}
			any = true
			if n > 1 {
				sb.WriteString(strconv.Itoa(int(n)))
			}
			l := letters[hk]
			if c == White {
				l = lowerChar(l)
			}
			sb.WriteByte(l)
		}
	}
	if !any {
		return "-"
	}
	return sb.String()
}
