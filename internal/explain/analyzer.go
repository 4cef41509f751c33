// Package explain produces natural-language risk rationales for confirmed
// watchlist matches. The capability is best-effort: callers bound it with a
// timeout and substitute a placeholder on any failure, so a slow or broken
// model never blocks or fails a screening.
package explain

import (
	"context"
	"time"
)

// MatchedEntity carries the attributes of the matched watchlist entry that
// the model reasons about.
type MatchedEntity struct {
	UniqueID     string
	Name         string
	DateOfBirth  *time.Time
	RiskCategory string
}

// Analyzer turns a query name and its best match into a risk explanation.
type Analyzer interface {
	Explain(ctx context.Context, queryName string, match MatchedEntity) (string, error)
}
