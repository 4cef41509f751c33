package screening

import "time"

// DefaultScreeningType labels ad-hoc screenings initiated through the
// real-time endpoint.
const DefaultScreeningType = "Real-time"

// NoMatchExplanation is the fixed explanation for a clear screening.
const NoMatchExplanation = "No matches found"

// explanationFailurePrefix prefixes the placeholder stored when the
// explanation provider fails; the screening itself still succeeds.
const explanationFailurePrefix = "LLM analysis failed: "

type MatchType string

const (
	MatchExact MatchType = "Exact"
	MatchFuzzy MatchType = "Fuzzy"
)

// Record is one audit row per screening request. It is created with
// Matched=false before matching begins and finalized exactly once; the row
// is never touched again.
type Record struct {
	ID            int64
	Name          string
	DateOfBirth   *time.Time
	ScreeningType string
	ScreeningTime time.Time
	Matched       bool
	RiskScore     *float64
	Explanation   string
}

// Match is one retained candidate attached to a screening record at
// finalization.
type Match struct {
	WatchlistEntityID int64
	MatchType         MatchType
	MatchScore        float64
}

// MatchDetail is the caller-facing projection of a match.
type MatchDetail struct {
	UniqueID     string
	Name         string
	DateOfBirth  *time.Time
	RiskCategory string
	MatchType    MatchType
	MatchScore   float64
}

// Request is one screening invocation. Name is required; transport validates
// shape before the engine runs.
type Request struct {
	Name          string
	DateOfBirth   *time.Time
	ScreeningType string
}

// Result is the outcome of one completed screening.
type Result struct {
	ScreeningID   int64
	Name          string
	DateOfBirth   *time.Time
	ScreeningTime time.Time
	Matched       bool
	RiskScore     float64
	Explanation   string
	Matches       []MatchDetail
}
