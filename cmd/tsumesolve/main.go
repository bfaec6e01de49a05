// Command tsumesolve is a headless tsume-shogi solver: it drives
// internal/search.Engine against SFEN positions via a minimal USI-like
// command loop, grounded on cmd/chessplay-uci/main.go's flag parsing
// and engine-construction shape and internal/uci/uci.go's stdin
// command-loop structure (translated from a full chess UCI frontend
// down to the "usi"/"position sfen"/"go mate" subset a tsume solver
// needs).
package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/komori-n/KomoringHeights-sub000/internal/engineopt"
	"github.com/komori-n/KomoringHeights-sub000/internal/search"
	"github.com/komori-n/KomoringHeights-sub000/internal/store"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

	hashMB       = flag.Uint64("hash", 256, "transposition table size in MB")
	threads      = flag.Uint("threads", 1, "number of Lazy-SMP worker goroutines")
	nodesLimit   = flag.Uint64("nodes", 0, "node budget, 0 for unlimited")
	pvIntervalMs = flag.Uint64("pv-interval-ms", 1000, "milliseconds between mid-search info lines")
	multiPV      = flag.Int("multipv", 1, "number of distinct mating lines to report")
	postSearch   = flag.String("post-search", "upper-bound", "mate-length tightening: none, upper-bound, min-length")
	scoreMethod  = flag.String("score-method", "ponanza", "unresolved-node score mapping: none, dn, minus-pn, ponanza")
	cachePath    = flag.String("cache", "", "solved-node cache directory; empty disables caching")
	ttReadPath   = flag.String("tt-read", "", "transposition table dump to load before searching; empty skips loading")
	ttWritePath  = flag.String("tt-write", "", "transposition table dump to write after each search; empty disables it")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	opt := engineopt.Default()
	opt.HashMB = *hashMB
	opt.Threads = uint32(*threads)
	opt.NodesLimit = *nodesLimit
	opt.PvIntervalMs = *pvIntervalMs
	opt.MultiPV = *multiPV
	opt.PostSearchLevel = parsePostSearchLevel(*postSearch)
	opt.ScoreMethod = parseScoreMethod(*scoreMethod)
	opt.TTReadPath = *ttReadPath
	opt.TTWritePath = *ttWritePath

	var cache *store.Store
	if *cachePath != "" {
		var err error
		cache, err = store.Open(*cachePath)
		if err != nil {
			log.Fatal("could not open solved-node cache: ", err)
		}
		defer cache.Close()
	}

	eng := search.New(opt)
	if opt.TTReadPath != "" {
		if err := eng.LoadTT(opt.TTReadPath); err != nil {
			log.Printf("%v; starting with an empty transposition table", err)
		}
	}
	p := newProtocol(eng, cache, opt.PvIntervalMs, opt.RootIsAndNodeIfChecked, opt.TTWritePath)
	p.run()
}

func parsePostSearchLevel(s string) engineopt.PostSearchLevel {
	switch s {
	case "none":
		return engineopt.PostSearchNone
	case "min-length":
		return engineopt.PostSearchMinLength
	default:
		return engineopt.PostSearchUpperBound
	}
}

func parseScoreMethod(s string) engineopt.ScoreMethod {
	switch s {
	case "none":
		return engineopt.ScoreNone
	case "dn":
		return engineopt.ScoreDn
	case "minus-pn":
		return engineopt.ScoreMinusPn
	default:
		return engineopt.ScorePonanza
	}
}
