package watchlist

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0, CosineDistance([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 1, CosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, 2, CosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	// Scale-invariant.
	assert.InDelta(t, 0, CosineDistance([]float32{2, 2}, []float32{5, 5}), 1e-9)
	// Zero vectors have no direction.
	assert.InDelta(t, 1, CosineDistance([]float32{0, 0}, []float32{1, 0}), 1e-9)
}

func TestSearchByVectorStrictThreshold(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, err := store.Upsert(ctx, UpsertParams{UniqueID: "near", Name: "Near", NameVector: []float32{1, 0}})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, UpsertParams{UniqueID: "far", Name: "Far", NameVector: []float32{0, 1}})
	require.NoError(t, err)

	// Orthogonal vector sits at distance exactly 1.0; a threshold of 1.0
	// must exclude it (strict less-than).
	hits, err := store.SearchByVector(ctx, []float32{1, 0}, 1.0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "near", hits[0].UniqueID)
}

func TestSearchByVectorPreservesInsertionOrder(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	for _, uid := range []string{"c", "a", "b"} {
		_, err := store.Upsert(ctx, UpsertParams{UniqueID: uid, Name: uid, NameVector: []float32{1, 0}})
		require.NoError(t, err)
	}

	hits, err := store.SearchByVector(ctx, []float32{1, 0}, 0.5)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "c", hits[0].UniqueID)
	assert.Equal(t, "a", hits[1].UniqueID)
	assert.Equal(t, "b", hits[2].UniqueID)
}

func TestConcurrentUpsertSameKey(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	const goroutines = 32
	var wg sync.WaitGroup
	outcomes := make([]Outcome, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			outcome, err := store.Upsert(ctx, UpsertParams{
				UniqueID:   "same",
				Name:       "Contended",
				NameVector: []float32{1, 0},
			})
			require.NoError(t, err)
			outcomes[idx] = outcome
		}(i)
	}
	wg.Wait()

	created := 0
	for _, outcome := range outcomes {
		if outcome == OutcomeCreated {
			created++
		}
	}
	assert.Equal(t, 1, created, "exactly one concurrent upsert creates the row")

	entity, err := store.FindByUniqueID(ctx, "same")
	require.NoError(t, err)
	assert.Equal(t, "Contended", entity.Name)
}

func TestUpsertCopiesSlices(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	vec := []float32{1, 0}
	_, err := store.Upsert(ctx, UpsertParams{UniqueID: "x", Name: "X", NameVector: vec})
	require.NoError(t, err)
	vec[0] = -1

	entity, err := store.FindByUniqueID(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, float32(1), entity.NameVector[0])
}
