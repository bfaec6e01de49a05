package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/komori-n/KomoringHeights-sub000/internal/search"
	"github.com/komori-n/KomoringHeights-sub000/internal/shogi"
	"github.com/komori-n/KomoringHeights-sub000/internal/store"
)

// protocol is the minimal USI-like command loop: "usi"/"isready"/
// "usinewgame"/"position sfen ..."/"go"/"go mate"/"stop"/"quit". It
// does not support "position ... moves ..." replay — a tsume solver is
// always handed the problem position directly, never a game history to
// walk forward from, so that extra parsing has no caller here.
type protocol struct {
	eng              *search.Engine
	cache            *store.Store
	pvIntervalMs     uint64
	andNodeIfChecked bool
	ttWritePath      string

	pos          *shogi.Position
	isRootOrNode bool

	searching     bool
	searchDone    chan struct{}
	stopRequested atomic.Bool
}

func newProtocol(eng *search.Engine, cache *store.Store, pvIntervalMs uint64, andNodeIfChecked bool, ttWritePath string) *protocol {
	return &protocol{eng: eng, cache: cache, pvIntervalMs: pvIntervalMs, andNodeIfChecked: andNodeIfChecked, ttWritePath: ttWritePath}
}

func (p *protocol) run() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "usi":
			p.handleUSI()
		case "isready":
			fmt.Println("readyok")
		case "usinewgame":
			p.eng.Clear()
		case "position":
			p.handlePosition(args)
		case "go":
			p.handleGo(args)
		case "stop":
			p.handleStop()
		case "quit":
			p.handleStop()
			return
		}
	}
}

func (p *protocol) handleUSI() {
	fmt.Println("id name tsumesolve")
	fmt.Println("id author tsumesolve")
	fmt.Println("option name USI_Hash type spin default 256 min 1 max 65536")
	fmt.Println("option name MultiPV type spin default 1 min 1 max 32")
	fmt.Println("usiok")
}

// handlePosition parses "position sfen <9 sfen fields>" or
// "position startpos", setting p.pos and the root's AND/OR polarity
// from the position's own in-check state.
func (p *protocol) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var sfen string
	switch args[0] {
	case "startpos":
		sfen = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"
	case "sfen":
		sfen = strings.Join(args[1:], " ")
	default:
		fmt.Fprintf(os.Stderr, "info string unrecognized position command: %s\n", strings.Join(args, " "))
		return
	}

	pos, err := shogi.ParseSFEN(sfen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "info string invalid sfen: %v\n", err)
		return
	}
	p.pos = pos
	p.isRootOrNode = true
	if p.andNodeIfChecked && pos.InCheck(pos.SideToMove()) {
		p.isRootOrNode = false
	}
}

// handleGo runs a search against the current position in the
// background (so "stop" can still be read off stdin while it runs),
// consulting and populating the solved-node cache around it, and
// periodically prints info lines until the search concludes (never, when
// pvIntervalMs is 0).
func (p *protocol) handleGo(args []string) {
	if p.pos == nil {
		fmt.Fprintln(os.Stderr, "info string no position set")
		return
	}

	if rec, ok := p.cacheGet(); ok {
		p.printCheckmate(rec)
		return
	}

	p.searching = true
	p.stopRequested.Store(false)
	p.searchDone = make(chan struct{})

	pos := p.pos
	isRootOrNode := p.isRootOrNode

	go func() {
		defer close(p.searchDone)
		state := p.eng.SearchParallel(pos, isRootOrNode)
		p.searching = false
		p.printFinal(state)
		p.cachePut(state)
		p.saveTT()
	}()

	if p.pvIntervalMs == 0 {
		<-p.searchDone
		return
	}
	ticker := time.NewTicker(time.Duration(p.pvIntervalMs) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-p.searchDone:
			return
		case <-ticker.C:
			p.printInfos()
		}
	}
}

func (p *protocol) handleStop() {
	if p.searching {
		p.stopRequested.Store(true)
		p.eng.Stop()
		<-p.searchDone
	}
}

func (p *protocol) printInfos() {
	for _, info := range p.eng.CurrentInfo() {
		fmt.Println("info " + info.Build())
	}
}

func (p *protocol) printFinal(state search.NodeState) {
	p.printInfos()
	switch state {
	case search.StateProven:
		moves := p.eng.BestMoves()
		strs := make([]string, len(moves))
		for i, m := range moves {
			strs[i] = m.String()
		}
		fmt.Println("checkmate " + strings.Join(strs, " "))
	case search.StateDisproven, search.StateRepetition:
		fmt.Println("checkmate nomate")
	default:
		fmt.Println("checkmate timeout")
	}
}

// printCheckmate reports a cached verdict without running any search.
func (p *protocol) printCheckmate(rec store.Record) {
	if rec.Proven {
		fmt.Println("checkmate " + strings.Join(rec.PV, " "))
	} else {
		fmt.Println("checkmate nomate")
	}
}

// saveTT dumps the transposition table after a search concludes, when
// the frontend was started with a write path configured.
func (p *protocol) saveTT() {
	if p.ttWritePath == "" {
		return
	}
	if err := p.eng.SaveTT(p.ttWritePath); err != nil {
		fmt.Fprintf(os.Stderr, "info string tt write failed: %v\n", err)
	}
}

func (p *protocol) cacheGet() (store.Record, bool) {
	if p.cache == nil {
		return store.Record{}, false
	}
	attacker := p.pos.SideToMove()
	if !p.isRootOrNode {
		attacker = attacker.Other()
	}
	return p.cache.Get(p.pos.BoardKey(), p.pos.HandOf(attacker))
}

func (p *protocol) cachePut(state search.NodeState) {
	if p.cache == nil {
		return
	}
	attacker := p.pos.SideToMove()
	if !p.isRootOrNode {
		attacker = attacker.Other()
	}

	var rec store.Record
	switch state {
	case search.StateProven:
		lines := p.eng.PVLines()
		if len(lines) == 0 {
			return
		}
		rec = store.RecordFromMoves(lines[0].Moves, lines[0].Len)
	case search.StateDisproven, search.StateRepetition:
		rec = store.RecordDisproven()
	default:
		return // unknown: don't cache a budget-exhausted non-verdict
	}
	if err := p.cache.Put(p.pos.BoardKey(), p.pos.HandOf(attacker), rec); err != nil {
		fmt.Fprintf(os.Stderr, "info string cache write failed: %v\n", err)
	}
}
