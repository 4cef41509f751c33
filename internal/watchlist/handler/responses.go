package handler

import "fmt"

// UploadResponse is the HTTP response for POST /watchlist/upload.
type UploadResponse struct {
	CreatedCount int    `json:"created_count"`
	UpdatedCount int    `json:"updated_count"`
	ErrorCount   int    `json:"error_count"`
	Message      string `json:"message"`
}

// NewUploadResponse builds the response with its summary message.
func NewUploadResponse(created, updated, errored int) *UploadResponse {
	message := fmt.Sprintf("Watchlist processed successfully. Created: %d, Updated: %d", created, updated)
	if errored > 0 {
		message += fmt.Sprintf(", Errors: %d", errored)
	}
	return &UploadResponse{
		CreatedCount: created,
		UpdatedCount: updated,
		ErrorCount:   errored,
		Message:      message,
	}
}
