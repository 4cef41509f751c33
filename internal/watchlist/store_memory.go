package watchlist

import (
	"context"
	"math"
	"sync"
	"time"

	"vigil/pkg/sentinel"
)

// InMemoryStore backs unit tests and the no-database wiring. The single
// mutex serializes upserts per process, giving the same per-key atomicity
// the postgres store gets from its uniqueness constraint.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	// insertion order preserved so SearchByVector has a stable store order
	order    []string
	entities map[string]*Entity
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entities: make(map[string]*Entity)}
}

func (s *InMemoryStore) Upsert(_ context.Context, params UpsertParams) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entities[params.UniqueID]; ok {
		existing.Name = params.Name
		existing.NameVector = append([]float32(nil), params.NameVector...)
		if len(params.DatesOfBirth) > 0 {
			existing.DatesOfBirth = append([]time.Time(nil), params.DatesOfBirth...)
		}
		if params.RiskCategory != nil {
			existing.RiskCategory = *params.RiskCategory
		}
		return OutcomeUpdated, nil
	}

	s.nextID++
	entity := &Entity{
		ID:           s.nextID,
		UniqueID:     params.UniqueID,
		Name:         params.Name,
		NameVector:   append([]float32(nil), params.NameVector...),
		DatesOfBirth: append([]time.Time(nil), params.DatesOfBirth...),
		EntityType:   DefaultEntityType,
	}
	if params.RiskCategory != nil {
		entity.RiskCategory = *params.RiskCategory
	}
	s.entities[params.UniqueID] = entity
	s.order = append(s.order, params.UniqueID)
	return OutcomeCreated, nil
}

func (s *InMemoryStore) FindByUniqueID(_ context.Context, uniqueID string) (Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entity, ok := s.entities[uniqueID]
	if !ok {
		return Entity{}, sentinel.ErrNotFound
	}
	return *entity, nil
}

func (s *InMemoryStore) SearchByVector(_ context.Context, vector []float32, maxDistance float64) ([]Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entity
	for _, uniqueID := range s.order {
		entity := s.entities[uniqueID]
		if CosineDistance(vector, entity.NameVector) < maxDistance {
			out = append(out, *entity)
		}
	}
	return out, nil
}

// CosineDistance is 1 - cosine similarity; lower means more similar.
// A zero vector has no direction, so the distance defaults to the maximum.
func CosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
