// Package embedding maps name strings to fixed-length vectors through an
// external model. Dimension normalization lives here and only here: every
// vector that reaches the watchlist store or a similarity query has passed
// through the same padding/truncation, so ingestion-time and screening-time
// vectors are always comparable.
package embedding

import "context"

// Provider produces a fixed-length vector for a piece of text. It must be
// deterministic for identical input within one deployed model version.
// Implementations wrap failures in sentinel.ErrUnavailable so callers can
// abort the enclosing operation.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// normalizeDim zero-pads the vector on the right to dim, or truncates it to
// dim when the model's native output is longer.
func normalizeDim(vec []float32, dim int) []float32 {
	if len(vec) == dim {
		return vec
	}
	out := make([]float32, dim)
	copy(out, vec)
	return out
}
