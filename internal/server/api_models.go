package server

import "github.com/raysh454/kumo/internal/model"

// StartFetchJobRequest is the payload for starting a fetch job. Steps only
// apply when UseBrowser is set.
type StartFetchJobRequest struct {
	URLs       []string     `json:"urls" example:"[\"http://localhost:9999/scroll\"]"`
	UseBrowser bool         `json:"use_browser" example:"true"`
	Steps      []model.Step `json:"steps"`
}

// SnapshotHistoryResponse wraps the stored versions of one URL, newest first.
type SnapshotHistoryResponse struct {
	URL       string            `json:"url"`
	Snapshots []*model.Snapshot `json:"snapshots"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
