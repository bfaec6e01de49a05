// Package usi maps search state onto USI-style info output: a Score
// value type (ported close to verbatim from original_source/score.hpp,
// for the composable value-type shape the root/AND-node sign flip
// needs) and an Info line builder modeled on internal/uci/uci.go's
// sendInfo.
package usi

import (
	"fmt"
	"math"

	"github.com/komori-n/KomoringHeights-sub000/internal/engineopt"
	"github.com/komori-n/KomoringHeights-sub000/internal/pnum"
)

// Kind distinguishes a resolved Score (Win/Lose, value = mate plies)
// from an Unknown one (value = a cp-like estimate).
type Kind int

const (
	KindUnknown Kind = iota
	KindWin
	KindLose
)

// Score is the side-to-move's evaluation: a resolved mate-in-N verdict
// or an unresolved centipawn-like estimate derived from (pn, dn).
type Score struct {
	kind  Kind
	value int32
}

// MakeWin builds a Score reporting "side to move mates in plies".
func MakeWin(plies int) Score { return Score{kind: KindWin, value: int32(plies)} }

// MakeLose builds a Score reporting "side to move is mated in plies".
func MakeLose(plies int) Score { return Score{kind: KindLose, value: int32(plies)} }

// MakeUnknown derives a cp-like Score from an unresolved node's (pn,
// dn) per the selected method. ScoreNone always yields 0.
func MakeUnknown(pn, dn pnum.PnDn, method engineopt.ScoreMethod) Score {
	switch method {
	case engineopt.ScoreDn:
		return Score{kind: KindUnknown, value: saturate(dn)}
	case engineopt.ScoreMinusPn:
		return Score{kind: KindUnknown, value: -saturate(pn)}
	case engineopt.ScorePonanza:
		return Score{kind: KindUnknown, value: ponanza(pn, dn)}
	default:
		return Score{kind: KindUnknown, value: 0}
	}
}

// ponanza implements cp = -600*ln((1-r)/r), r = dn/(pn+dn), the
// Ponanza score formula, truncated to an i32 the same way Go's
// float-to-int conversion truncates toward zero.
func ponanza(pn, dn pnum.PnDn) int32 {
	total := pn + dn
	if total == 0 {
		return 0
	}
	r := float64(dn) / float64(total)
	const eps = 1e-9
	if r < eps {
		r = eps
	}
	if r > 1-eps {
		r = 1 - eps
	}
	cp := -600 * math.Log((1-r)/r)
	return int32(cp)
}

func saturate(v pnum.PnDn) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(v)
}

// Neg returns the Score from the other side's perspective: Win/Lose
// swap, Unknown negates. Used to flip sign when the root is an AND
// node (the side to move is being mated, not delivering it).
func (s Score) Neg() Score {
	switch s.kind {
	case KindWin:
		return Score{kind: KindLose, value: s.value}
	case KindLose:
		return Score{kind: KindWin, value: s.value}
	default:
		return Score{kind: KindUnknown, value: -s.value}
	}
}

// Kind reports which case this Score holds.
func (s Score) Kind() Kind { return s.kind }

// String renders the USI "score" token body (without the leading
// "score " keyword, added by the Info builder).
func (s Score) String() string {
	switch s.kind {
	case KindWin:
		return fmt.Sprintf("mate %d", s.value)
	case KindLose:
		return fmt.Sprintf("mate %d", -s.value)
	default:
		return fmt.Sprintf("cp %d", s.value)
	}
}
