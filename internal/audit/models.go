// Package audit records an append-only trail of screening activity. Events
// never carry raw subject names; the subject is stored as a SHA-256 hash so
// the trail stays useful for compliance without duplicating PII outside the
// screening records themselves.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type Action string

const (
	ActionScreeningCompleted Action = "screening_completed"
	ActionWatchlistUpserted  Action = "watchlist_upserted"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Timestamp time.Time
	Action    Action
	// Subject holds non-PII identifiers such as a watchlist unique_id.
	Subject string
	// SubjectHash holds the hashed form of personal identifiers (names).
	SubjectHash string
	Decision    string
	Reason      string
	RequestID   string
}

// Store is an append-only sink for events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// HashSubject produces the stable non-reversible subject key used in events.
func HashSubject(subject string) string {
	sum := sha256.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:])
}
