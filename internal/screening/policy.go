package screening

import "strings"

// MatchPolicy is the replaceable classification-to-score mapping. The
// current policy is deliberately coarse: an exact (case-insensitive) name
// match scores 1.0, anything else retained by the distance threshold scores
// a flat 0.9. The underlying vector distance is not surfaced as the score.
// Keeping this as a standalone value lets the scoring be upgraded to a
// continuous function of distance without touching the engine.
type MatchPolicy struct {
	// SimilarityCutoff is the minimum cosine similarity for retention;
	// candidates must sit at distance < 1 - SimilarityCutoff.
	SimilarityCutoff float64
	ExactScore       float64
	FuzzyScore       float64
}

// DefaultPolicy builds the production policy around a configured cutoff.
func DefaultPolicy(similarityCutoff float64) MatchPolicy {
	return MatchPolicy{
		SimilarityCutoff: similarityCutoff,
		ExactScore:       1.0,
		FuzzyScore:       0.9,
	}
}

// MaxDistance converts the similarity cutoff into the strict cosine distance
// bound used by the store query.
func (p MatchPolicy) MaxDistance() float64 {
	return 1 - p.SimilarityCutoff
}

// Classify labels one retained candidate against the query name.
func (p MatchPolicy) Classify(queryName, candidateName string) (MatchType, float64) {
	if strings.EqualFold(queryName, candidateName) {
		return MatchExact, p.ExactScore
	}
	return MatchFuzzy, p.FuzzyScore
}
