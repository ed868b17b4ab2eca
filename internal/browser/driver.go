package browser

import (
	"context"
	"net/http"
)

// The bridge talks to the browser engine through these interfaces so the
// whole download path can be exercised with test doubles. The chromedp
// implementation lives in chromedriver.go.

// LaunchOptions is passed through to the engine launcher mostly opaquely.
type LaunchOptions struct {
	// Headless runs the browser without a window. Default true.
	Headless bool

	// ExecPath overrides the browser binary location.
	ExecPath string

	// Flags are arbitrary launcher flags forwarded as-is.
	Flags map[string]any
}

// Driver launches browser processes.
type Driver interface {
	Launch(ctx context.Context, opts LaunchOptions) (Browser, error)
}

// Browser is one running engine process. A single Browser is shared by all
// concurrent requests; pages provide the per-request isolation.
type Browser interface {
	// NewPage opens a fresh tab.
	NewPage(ctx context.Context) (Page, error)

	// Alive reports whether the underlying process still answers.
	Alive(ctx context.Context) bool

	Close() error
}

// Page is one tab, exclusively owned by a single request at a time. All
// methods honor ctx cancellation; a cancelled call leaves the page unusable
// and the owner must Close it.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	Evaluate(ctx context.Context, expr string) ([]byte, error)
	WaitSelector(ctx context.Context, selector string) error

	// WaitNavigation arms a wait for the next main-document navigation and
	// returns the function that blocks until it happens. Arming and waiting
	// are split so a navigation-triggering action can be started after the
	// wait is armed; a navigation completing between the two calls still
	// counts.
	WaitNavigation(ctx context.Context) func(context.Context) error

	Screenshot(ctx context.Context) ([]byte, error)
	PDF(ctx context.Context) ([]byte, error)

	// Content serializes the full current document.
	Content(ctx context.Context) (string, error)

	// URL is the current main-frame URL.
	URL(ctx context.Context) (string, error)

	// SetHeaders applies extra headers to every request the page issues.
	SetHeaders(ctx context.Context, h http.Header) error

	// Result returns the status and headers observed on the last
	// main-document response, or (0, nil) when none was seen.
	Result() (int, http.Header)

	Close() error
	Closed() bool
}
