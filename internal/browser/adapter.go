package browser

import (
	"context"
	"net/http"
	"time"

	"github.com/raysh454/kumo/internal/model"
)

// buildResponse converts final page state into the pipeline's response
// shape. It is called on success and on failure alike so diagnostics can see
// whatever state the page reached; reads are best effort.
//
// Page disposal happens here: unless the request asked for the live page,
// the page is closed synchronously before the response is returned, so a
// caller dropping the response can never leak a tab. With WantsPage the
// handle is attached and ownership transfers; the bridge does not touch the
// page afterwards.
func (b *Bridge) buildResponse(ctx context.Context, page Page, req *model.Request) (*model.Response, error) {
	resp := &model.Response{
		Request:   req,
		FetchedAt: time.Now(),
	}

	finalURL, err := page.URL(ctx)
	if err == nil && finalURL != "" {
		resp.URL = finalURL
	} else {
		resp.URL = req.URL
	}

	if content, err := page.Content(ctx); err == nil {
		resp.Body = []byte(content)
	}

	status, headers := page.Result()
	if status == 0 {
		// The protocol exposes no HTTP status for some navigations; fall
		// back to the conventional default rather than failing the request.
		status = http.StatusOK
	}
	resp.StatusCode = status
	if headers != nil {
		resp.Headers = headers.Clone()
		// The body is already decoded; a stale encoding header would
		// mislead downstream parsing.
		resp.Headers.Del("Content-Encoding")
	} else {
		resp.Headers = http.Header{}
	}

	if req.WantsPage {
		resp.Page = page
		b.stats.pagesHandedOff.Add(1)
		return resp, nil
	}

	if err := page.Close(); err != nil {
		return resp, err
	}
	b.stats.pagesClosed.Add(1)
	return resp, nil
}
