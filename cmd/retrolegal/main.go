// retrolegal decides whether chess positions are reachable from the starting array.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/herohde/hindsight/pkg/retro"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var (
	duplex  = flag.Bool("duplex", false, "Expect odd move-count parity (duplex compositions)")
	verbose = flag.Bool("verbose", false, "Print the derived analysis facts")
)

var version = build.NewVersion(0, 1, 0)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: retrolegal [options] [FEN ...]

retrolegal runs a retrograde legality analysis on each given position: "illegal"
means the position is provably unreachable from the starting array, "legal" means
no rule could refute it. Positions are read from the arguments, or from stdin if
none are given, one FEN per line.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	logw.Infof(ctx, "retrolegal %v retrograde analyzer", version)

	var opts []retro.Option
	if *duplex {
		opts = append(opts, retro.WithDuplex())
	}

	fens := flag.Args()
	if len(fens) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				fens = append(fens, line)
			}
		}
	}

	for _, str := range fens {
		b, err := retro.ParseRetractableBoard(str)
		if err != nil {
			logw.Exitf(ctx, "Invalid fen '%v': %v", str, err)
		}

		verdict := retro.Legal
		if !retro.IsLegal(b, opts...) {
			verdict = retro.Illegal
		}
		fmt.Printf("%v: %v\n", str, verdict)

		if *verbose {
			printAnalysis(retro.Analyze(b, opts...))
		}
	}
}

func printAnalysis(a *retro.Analysis) {
	b := a.Board()
	for bb := b.All(); bb != 0; bb &= bb - 1 {
		sq := bb.LastPopSquare()
		fmt.Printf("  %v: steady=%v origins=%v\n", sq, a.IsSteady(sq), a.Origins(sq).Squares())
	}
}
