package model

import "time"

// Snapshot is one stored fetch result for a URL.
type Snapshot struct {
	ID         int64
	URL        string
	StatusCode int
	Headers    map[string][]string
	Body       []byte
	FetchedAt  time.Time

	// Change summary against the previous snapshot of the same URL.
	// Zero for the first snapshot.
	AddedChars   int
	RemovedChars int
}

// NewSnapshotFromResponse converts a fetch response into a storable snapshot.
func NewSnapshotFromResponse(resp *Response) *Snapshot {
	if resp == nil {
		return nil
	}
	snap := &Snapshot{
		URL:        resp.URL,
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
		FetchedAt:  resp.FetchedAt,
	}
	if snap.URL == "" && resp.Request != nil {
		snap.URL = resp.Request.URL
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	return snap
}
