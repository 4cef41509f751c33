package watchlist

import (
	"context"
	"time"
)

// Outcome reports whether an upsert created a new entity or updated an
// existing one.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// UpsertParams carries one reconciled entry into the store. Partial-update
// semantics: an empty DatesOfBirth or a nil RiskCategory preserves whatever
// the existing row holds; Name and NameVector are always overwritten.
type UpsertParams struct {
	UniqueID     string
	Name         string
	NameVector   []float32
	DatesOfBirth []time.Time
	RiskCategory *string
}

// Store is the durable watchlist entity set. Upsert must be atomic per
// unique_id: concurrent calls on the same key serialize on the uniqueness
// constraint instead of racing a read-then-write.
type Store interface {
	Upsert(ctx context.Context, params UpsertParams) (Outcome, error)
	FindByUniqueID(ctx context.Context, uniqueID string) (Entity, error)
	// SearchByVector returns every entity whose cosine distance to the query
	// vector is strictly below maxDistance, attributes fully materialized,
	// in store retrieval order.
	SearchByVector(ctx context.Context, vector []float32, maxDistance float64) ([]Entity, error)
}
