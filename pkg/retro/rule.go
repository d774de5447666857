package retro

// A rule derives new facts about the position and writes them back into the analysis.
// Rules capture the change counters of the fields they read at update time;
// isApplicable reports whether any of those counters has advanced since, i.e. whether
// re-applying the rule could derive anything new. apply performs the refinement and
// reports whether this application changed the analysis.
//
// All rules are sound: no refinement ever removes a genuinely possible past.
type rule interface {
	update(a *Analysis)
	isApplicable(a *Analysis) bool
	apply(a *Analysis) bool
}

// newRules instantiates the rule set in priority order. Ordering only affects how fast
// the fixpoint is reached, not the verdict: confluence follows from every refinement
// being monotone.
func newRules() []rule {
	return []rule{
		&materialRule{},
		&steadyRule{},
		&originsRule{},
		&refineOriginsRule{},
		&destiniesRule{},
		&steadyMobilityRule{},
		&pawnOn3rdRankRule{},
		&pawnOn2ndRankRule{},
		&cornerKnightRule{},
		&capturesBoundsRule{},
		&mobilityRule{},
		&routeFromOriginsRule{},
		&routeToReachableRule{},
		&missingRule{},
		&capturesRule{},
		&tombsRule{},
		&surpassedPawnsRule{},
		&fileCountingRule{},
		&royaltyOn1stRankRule{},
		&unretractableRule{},
		&eventsRule{},
		&parityRule{},
	}
}
