//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vigil/internal/watchlist"
	"vigil/internal/watchlist/store"
	"vigil/pkg/sentinel"
	"vigil/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "screening_matches", "screening_records", "watchlist_entities")
	s.Require().NoError(err)
}

// vec1536 builds a full-width vector from its leading components.
func vec1536(lead ...float32) []float32 {
	v := make([]float32, 1536)
	copy(v, lead)
	return v
}

func (s *PostgresStoreSuite) TestUpsertCreatedThenUpdated() {
	ctx := context.Background()

	outcome, err := s.store.Upsert(ctx, watchlist.UpsertParams{
		UniqueID:   "E-1",
		Name:       "John Smith",
		NameVector: vec1536(1),
	})
	s.Require().NoError(err)
	s.Equal(watchlist.OutcomeCreated, outcome)

	outcome, err = s.store.Upsert(ctx, watchlist.UpsertParams{
		UniqueID:   "E-1",
		Name:       "Jonathan Smith",
		NameVector: vec1536(0, 1),
	})
	s.Require().NoError(err)
	s.Equal(watchlist.OutcomeUpdated, outcome)

	entity, err := s.store.FindByUniqueID(ctx, "E-1")
	s.Require().NoError(err)
	s.Equal("Jonathan Smith", entity.Name)
	s.InDelta(1.0, entity.NameVector[1], 1e-6)
}

func (s *PostgresStoreSuite) TestUpsertPartialUpdatePreservesFields() {
	ctx := context.Background()
	risk := "PEP"
	dob := time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC)

	_, err := s.store.Upsert(ctx, watchlist.UpsertParams{
		UniqueID:     "E-1",
		Name:         "John Smith",
		NameVector:   vec1536(1),
		DatesOfBirth: []time.Time{dob},
		RiskCategory: &risk,
	})
	s.Require().NoError(err)

	// Name-only update keeps the stored dates and risk category.
	_, err = s.store.Upsert(ctx, watchlist.UpsertParams{
		UniqueID:   "E-1",
		Name:       "Johnny Smith",
		NameVector: vec1536(1),
	})
	s.Require().NoError(err)

	entity, err := s.store.FindByUniqueID(ctx, "E-1")
	s.Require().NoError(err)
	s.Equal("Johnny Smith", entity.Name)
	s.Require().Len(entity.DatesOfBirth, 1)
	s.Equal(dob, entity.DatesOfBirth[0])
	s.Equal("PEP", entity.RiskCategory)
}

func (s *PostgresStoreSuite) TestFindByUniqueIDNotFound() {
	_, err := s.store.FindByUniqueID(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestSearchByVectorThreshold() {
	ctx := context.Background()

	_, err := s.store.Upsert(ctx, watchlist.UpsertParams{
		UniqueID: "near", Name: "John Smith", NameVector: vec1536(1),
	})
	s.Require().NoError(err)
	// Orthogonal vector sits at cosine distance 1.0.
	_, err = s.store.Upsert(ctx, watchlist.UpsertParams{
		UniqueID: "far", Name: "Someone Else", NameVector: vec1536(0, 1),
	})
	s.Require().NoError(err)

	entities, err := s.store.SearchByVector(ctx, vec1536(1), 0.4)
	s.Require().NoError(err)
	s.Require().Len(entities, 1)
	s.Equal("near", entities[0].UniqueID)
	s.Equal("John Smith", entities[0].Name)
}

// TestConcurrentUpsertsSameKey verifies that concurrent upserts of one
// unique_id produce exactly one created outcome; the rest observe updates.
func (s *PostgresStoreSuite) TestConcurrentUpsertsSameKey() {
	ctx := context.Background()
	const goroutines = 32

	var wg sync.WaitGroup
	var createdCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := s.store.Upsert(ctx, watchlist.UpsertParams{
				UniqueID:   "E-racy",
				Name:       "John Smith",
				NameVector: vec1536(1),
			})
			if err == nil && outcome == watchlist.OutcomeCreated {
				createdCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), createdCount.Load(), "exactly one upsert should create the row")

	entity, err := s.store.FindByUniqueID(ctx, "E-racy")
	s.Require().NoError(err)
	s.Equal("John Smith", entity.Name)
}
