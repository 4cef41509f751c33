package handler

import (
	"time"

	"vigil/internal/watchlist"
	"vigil/pkg/domerr"
)

const dateLayout = "2006-01-02"

// UploadRequest is the JSON request body for POST /watchlist/upload.
type UploadRequest struct {
	Watchlist []UploadEntry `json:"watchlist"`
}

// UploadEntry is one watchlist entry in either transport encoding. Empty
// strings mean the field is absent.
type UploadEntry struct {
	UniqueID     string `json:"unique_id"`
	Name         string `json:"name"`
	DateOfBirth  string `json:"date_of_birth"`
	RiskCategory string `json:"risk_category"`
}

// toUpsertRequest validates one entry and converts it into the reconciler's
// input. Field-level validation beyond shape belongs to the service.
func (e UploadEntry) toUpsertRequest() (watchlist.UpsertRequest, error) {
	req := watchlist.UpsertRequest{
		UniqueID: e.UniqueID,
		Name:     e.Name,
	}
	if e.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, e.DateOfBirth)
		if err != nil {
			return watchlist.UpsertRequest{}, domerr.Wrap(err, domerr.CodeBadRequest,
				"date_of_birth must be YYYY-MM-DD")
		}
		req.DatesOfBirth = []time.Time{dob}
	}
	if e.RiskCategory != "" {
		risk := e.RiskCategory
		req.RiskCategory = &risk
	}
	return req, nil
}
