package usi

import (
	"fmt"
	"strings"
	"time"
)

// Info is one info line's worth of fields, built incrementally and
// rendered with Build. Field presence rule: "depth" immediately
// precedes "seldepth", "pv" is always last when present, and
// "multipv n" appears iff more than one PV is being reported.
type Info struct {
	Depth    int
	SelDepth int
	Time     time.Duration
	Nodes    uint64
	Nps      uint64
	HashFull int
	CurrMove string
	Score    Score
	MultiPV  int // 0 or 1 omits the "multipv" token entirely
	PV       []string
	String   string
}

// Build renders the accumulated fields as a single "info ..." line,
// grounded on internal/uci/uci.go's sendInfo (slice-of-parts then
// strings.Join, rather than building the string incrementally).
func (i Info) Build() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", i.Depth))
	if i.SelDepth > 0 {
		parts = append(parts, fmt.Sprintf("seldepth %d", i.SelDepth))
	}
	if i.MultiPV > 1 {
		parts = append(parts, fmt.Sprintf("multipv %d", i.MultiPV))
	}
	parts = append(parts, fmt.Sprintf("score %s", i.Score))
	parts = append(parts, fmt.Sprintf("time %d", i.Time.Milliseconds()))
	parts = append(parts, fmt.Sprintf("nodes %d", i.Nodes))
	if i.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %d", i.Nps))
	}
	if i.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", i.HashFull))
	}
	if i.CurrMove != "" {
		parts = append(parts, fmt.Sprintf("currmove %s", i.CurrMove))
	}
	if i.String != "" {
		parts = append(parts, fmt.Sprintf("string %s", i.String))
	}
	if len(i.PV) > 0 {
		parts = append(parts, "pv "+strings.Join(i.PV, " "))
	}

	return "info " + strings.Join(parts, " ")
}
