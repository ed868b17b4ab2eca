package model

import (
	"net/http"
	"time"
)

// Request describes one fetch. The zero value of the browser-routing fields
// keeps the request on the plain HTTP path.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte

	// UseBrowser routes the request through the browser bridge instead of
	// the plain HTTP client.
	UseBrowser bool

	// Steps is the ordered program of page interactions to run after the
	// initial navigation. Only consulted when UseBrowser is set.
	Steps []Step

	// WantsPage asks the bridge to hand the live page back on the response
	// instead of closing it. Ownership transfers to the caller.
	WantsPage bool
}

// PageHandle is the surface the pipeline holds when a live browser page is
// attached to a response. The holder is responsible for closing it.
type PageHandle interface {
	Close() error
}

type Response struct {
	Request *Request

	// URL is the final page URL, which may differ from Request.URL after
	// navigation steps.
	URL        string
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time

	// Page is set only when the request asked for the live page handle.
	Page PageHandle
}
