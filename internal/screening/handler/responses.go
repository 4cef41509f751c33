package handler

import (
	"math"
	"time"

	"vigil/internal/screening"
)

const dateLayout = "2006-01-02"

// ScreenResponse is the HTTP response for POST /screening/realtime.
type ScreenResponse struct {
	ScreeningID   int64           `json:"screening_id"`
	Name          string          `json:"name"`
	DateOfBirth   *string         `json:"date_of_birth"`
	ScreeningTime time.Time       `json:"screening_time"`
	Matched       bool            `json:"matched"`
	RiskScore     *float64        `json:"risk_score"`
	Explanation   string          `json:"explanation"`
	Matches       []MatchResponse `json:"matches"`
}

// MatchResponse is one retained candidate in the response.
type MatchResponse struct {
	UniqueID     string   `json:"unique_id"`
	Name         string   `json:"name"`
	DateOfBirth  *string  `json:"date_of_birth"`
	RiskCategory *string  `json:"risk_category"`
	MatchType    string   `json:"match_type"`
	MatchScore   *float64 `json:"match_score"`
}

// FromResult converts a domain Result to an HTTP response.
func FromResult(result screening.Result) *ScreenResponse {
	matches := make([]MatchResponse, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, MatchResponse{
			UniqueID:     m.UniqueID,
			Name:         m.Name,
			DateOfBirth:  formatDate(m.DateOfBirth),
			RiskCategory: optionalString(m.RiskCategory),
			MatchType:    string(m.MatchType),
			MatchScore:   finiteOrNull(m.MatchScore),
		})
	}
	return &ScreenResponse{
		ScreeningID:   result.ScreeningID,
		Name:          result.Name,
		DateOfBirth:   formatDate(result.DateOfBirth),
		ScreeningTime: result.ScreeningTime,
		Matched:       result.Matched,
		RiskScore:     finiteOrNull(result.RiskScore),
		Explanation:   result.Explanation,
		Matches:       matches,
	}
}

// finiteOrNull maps NaN and infinities to JSON null; encoding/json rejects
// them outright, which would fail the whole response.
func finiteOrNull(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
