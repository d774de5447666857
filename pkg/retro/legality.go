package retro

// Option configures an analysis.
type Option func(*config)

type config struct {
	duplex bool
}

// WithDuplex flips the expected move-count parity, for duplex compositions where the
// same position must be reachable with the other side to move.
func WithDuplex() Option {
	return func(c *config) {
		c.duplex = true
	}
}

// Analyze runs the rule set over the board to a fixpoint and returns the frozen
// analysis. Rules run in a fixed priority order; a rule runs again only when a field
// it reads has changed. The loop stops when a full pass makes no progress or a
// contradiction settles the verdict.
func Analyze(b RetractableBoard, opts ...Option) *Analysis {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	a := NewAnalysis(b)
	a.duplex = cfg.duplex
	return analyzeWith(a, newRules())
}

// analyzeWith runs the given rules over the analysis to a fixpoint. By monotonicity
// the final verdict does not depend on the rule order.
func analyzeWith(a *Analysis, rules []rule) *Analysis {
	for {
		progress := false
		for _, r := range rules {
			if _, done := a.result.V(); done {
				break
			}
			if !r.isApplicable(a) {
				continue
			}
			r.update(a)
			progress = r.apply(a) || progress
		}
		if _, done := a.result.V(); done || !progress {
			return a
		}
	}
}

// IsLegal reports whether the position can be reached from the starting array via a
// sequence of legal moves. This is a semi-decision procedure: false means the position
// is definitely illegal; true means it is probably legal, but might not be if it
// escapes the implemented rules.
func IsLegal(b RetractableBoard, opts ...Option) bool {
	table := map[RetractableBoard]bool{}
	return isRetractable(table, b, opts)
}

// isRetractable decides whether the board survives recursive retraction: an illegal
// analysis refutes it; a position with many legal retractions is given up on (not
// refuted); otherwise every legal retraction is tried and any retractable predecessor
// proves the position reachable.
func isRetractable(table map[RetractableBoard]bool, b RetractableBoard, opts []Option) bool {
	if cached, ok := table[b]; ok {
		return cached
	}

	a := Analyze(b, opts...)
	if v, ok := a.result.V(); ok && v == Illegal {
		return false
	}
	if !LimitedRetractions(&b) {
		return true
	}

	// Mark the board false up front to break retraction cycles; corrected on success.
	table[b] = false

	gen := NewRetractionGen(&b)
	gen.Refine(a)
	for {
		r, ok := gen.Next()
		if !ok {
			return false
		}
		if isRetractable(table, b.MakeRetraction(r), opts) {
			table[b] = true
			return true
		}
	}
}
