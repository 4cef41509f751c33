package handler

import (
	"strings"
	"time"

	"vigil/pkg/domerr"
)

// ScreenRequest is the HTTP request body for POST /screening/realtime.
type ScreenRequest struct {
	Name        string       `json:"name"`
	DateOfBirth *DateOfBirth `json:"date_of_birth"`

	// Parsed values (populated by Validate)
	parsedDOB *time.Time
}

// DateOfBirth is a calendar date broken into components so clients never
// have to agree on a string format.
type DateOfBirth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ScreenRequest) Validate() error {
	if r == nil {
		return domerr.New(domerr.CodeBadRequest, "request body is required")
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return domerr.New(domerr.CodeBadRequest, "name is required")
	}

	if r.DateOfBirth != nil {
		d := r.DateOfBirth
		parsed := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes out-of-range components, so a round-trip
		// mismatch means the date was not a real calendar date.
		if parsed.Year() != d.Year || parsed.Month() != time.Month(d.Month) || parsed.Day() != d.Day {
			return domerr.New(domerr.CodeBadRequest, "date_of_birth is not a valid calendar date")
		}
		r.parsedDOB = &parsed
	}

	return nil
}

// ParsedDateOfBirth returns the validated date of birth, or nil.
func (r *ScreenRequest) ParsedDateOfBirth() *time.Time {
	return r.parsedDOB
}
