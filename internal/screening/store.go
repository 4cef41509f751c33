package screening

import "context"

// FinalizeParams is the single terminal mutation of a screening record. The
// record update and its match rows commit in one transaction; no partial
// state is observable before that commit.
type FinalizeParams struct {
	Matched     bool
	RiskScore   float64
	Explanation string
	Matches     []Match
}

// RecordStore is the durable append-log of screening attempts.
type RecordStore interface {
	// Create persists a pending record (Matched=false) immediately, before
	// matching begins, so every attempt is auditable even when later steps
	// fail. Returns the new record's id.
	Create(ctx context.Context, record Record) (int64, error)
	// Finalize applies the terminal mutation atomically with its match rows.
	// A record may be finalized at most once.
	Finalize(ctx context.Context, screeningID int64, params FinalizeParams) error
}
