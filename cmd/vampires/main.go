// vampires enumerates vampire positions: unreachable positions that are one illegal
// move away from the game tree, found by playing on from the starting array with black
// to move. Verdicts are kept in a local badger database so repeated runs resume
// instead of re-analyzing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/herohde/hindsight/pkg/board"
	"github.com/herohde/hindsight/pkg/board/fen"
	"github.com/herohde/hindsight/pkg/retro"
	"github.com/seekerror/logw"
)

var (
	depth = flag.Int("depth", 6, "Search depth limit in plies")
	dir   = flag.String("db", "vampires.db", "Verdict cache directory")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: vampires [options]

vampires searches the move tree of the "Head Vampire" (the starting array with
black to move) up to the given depth. Every position reached that the analysis
finds illegal is a vampire: it is printed as FEN and the search continues from
it. A position found legal ends that line. The total count is logged at the end.
Options:
`)
		flag.PrintDefaults()
	}
}

type search struct {
	db    *badger.DB
	seen  map[string]bool
	found int
}

func main() {
	flag.Parse()
	ctx := context.Background()

	logw.Infof(ctx, "vampire enumeration to depth %v", *depth)

	db, err := badger.Open(badger.DefaultOptions(*dir).WithLogger(nil))
	if err != nil {
		logw.Exitf(ctx, "Failed to open verdict cache %v: %v", *dir, err)
	}
	defer db.Close()

	pos, _, _, _, err := fen.Decode(fen.Initial)
	if err != nil {
		logw.Exitf(ctx, "Invalid initial position: %v", err)
	}

	s := &search{db: db, seen: map[string]bool{}}
	s.visit(ctx, pos, board.Black, *depth)

	logw.Infof(ctx, "Found %v vampires within %v plies", s.found, *depth)
}

func (s *search) visit(ctx context.Context, pos *board.Position, turn board.Color, depth int) {
	if depth < 0 {
		return
	}

	key := fen.Encode(pos, turn, 0, 1)
	if s.seen[key] {
		return
	}
	s.seen[key] = true

	legal, ok := s.lookup(key)
	if !ok {
		legal = retro.IsLegal(retro.NewRetractableBoard(pos, turn))
		s.store(ctx, key, legal)
	}

	if legal {
		// The parity invariant is lost: every continuation is reachable too.
		return
	}

	s.found++
	fmt.Printf("%v\n", key)

	for _, m := range pos.LegalMoves(turn) {
		next, ok := pos.Move(m)
		if !ok {
			continue
		}
		s.visit(ctx, next, turn.Opponent(), depth-1)
	}
}

func (s *search) lookup(key string) (bool, bool) {
	var legal, found bool
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			found = true
			legal = len(val) == 1 && val[0] == 1
			return nil
		})
	})
	return legal, found
}

func (s *search) store(ctx context.Context, key string, legal bool) {
	val := []byte{0}
	if legal {
		val[0] = 1
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	}); err != nil {
		logw.Infof(ctx, "Failed to cache verdict for %v: %v", key, err)
	}
}
