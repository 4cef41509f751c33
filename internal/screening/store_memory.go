package screening

import (
	"context"
	"sync"

	"vigil/pkg/sentinel"
)

// InMemoryRecordStore backs unit tests and the no-database wiring.
type InMemoryRecordStore struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]*Record
	matches map[int64][]Match
}

func NewInMemoryRecordStore() *InMemoryRecordStore {
	return &InMemoryRecordStore{
		records: make(map[int64]*Record),
		matches: make(map[int64][]Match),
	}
}

func (s *InMemoryRecordStore) Create(_ context.Context, record Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	record.ID = s.nextID
	s.records[record.ID] = &record
	return record.ID, nil
}

func (s *InMemoryRecordStore) Finalize(_ context.Context, screeningID int64, params FinalizeParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[screeningID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if record.RiskScore != nil {
		// Finalization is terminal; a second attempt is a programming error.
		return sentinel.ErrConflict
	}
	record.Matched = params.Matched
	risk := params.RiskScore
	record.RiskScore = &risk
	record.Explanation = params.Explanation
	s.matches[screeningID] = append([]Match(nil), params.Matches...)
	return nil
}

// Get returns a stored record and its match rows; used by tests to inspect
// persisted state.
func (s *InMemoryRecordStore) Get(_ context.Context, screeningID int64) (Record, []Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[screeningID]
	if !ok {
		return Record{}, nil, sentinel.ErrNotFound
	}
	return *record, append([]Match(nil), s.matches[screeningID]...), nil
}

// Count reports how many records exist; used by tests to assert the
// one-record-per-screening invariant.
func (s *InMemoryRecordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
