// Package browser implements the bridge between the fetch pipeline and the
// browser engine: requests flagged for browser execution get a page on the
// single shared browser, run their step program against it, and come back as
// ordinary responses.
package browser

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/raysh454/kumo/internal/interfaces"
	"github.com/raysh454/kumo/internal/logging"
	"github.com/raysh454/kumo/internal/model"
)

// Bridge is the single entry point for browser-driven requests. One Handle
// call per request, one completion per call; internally requests interleave
// on the shared browser while their individual steps stay strictly ordered.
type Bridge struct {
	cfg     Config
	manager *Manager
	exec    *Executor
	logger  interfaces.Logger

	// Bounds concurrently open pages. Without it a request burst opens an
	// unbounded number of tabs.
	admission *semaphore.Weighted

	stats Stats
}

// Stats counts bridge activity. Read with Snapshot.
type Stats struct {
	requests       atomic.Int64
	pagesOpened    atomic.Int64
	pagesClosed    atomic.Int64
	pagesHandedOff atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	Requests       int64 `json:"requests"`
	PagesOpened    int64 `json:"pages_opened"`
	PagesClosed    int64 `json:"pages_closed"`
	PagesHandedOff int64 `json:"pages_handed_off"`
}

func New(cfg Config, driver Driver, logger interfaces.Logger) *Bridge {
	if logger == nil {
		logger = logging.NewStdoutLogger("browser")
	}
	return &Bridge{
		cfg:       cfg,
		manager:   NewManager(driver, cfg.Launch, logger),
		exec:      NewExecutor(NewRegistry(), cfg.StepTimeout, logger),
		logger:    logger,
		admission: semaphore.NewWeighted(cfg.maxPages()),
	}
}

// Manager exposes the browser manager (tests, shutdown wiring).
func (b *Bridge) Manager() *Manager { return b.manager }

// Registry exposes the action registry so callers can add custom actions.
func (b *Bridge) Registry() *Registry { return b.exec.registry }

// Stats returns a snapshot of the bridge counters.
func (b *Bridge) Stats() StatsSnapshot {
	return StatsSnapshot{
		Requests:       b.stats.requests.Load(),
		PagesOpened:    b.stats.pagesOpened.Load(),
		PagesClosed:    b.stats.pagesClosed.Load(),
		PagesHandedOff: b.stats.pagesHandedOff.Load(),
	}
}

// Handle executes one browser-driven request: admission, page acquisition,
// initial navigation, step program, response adaptation. Errors surface
// as-is so upstream retry logic can act on them; they are never converted
// into degraded responses.
func (b *Bridge) Handle(ctx context.Context, req *model.Request) (*model.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	if err := b.admission.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("admission: %w", err)
	}
	defer b.admission.Release(1)

	b.stats.requests.Add(1)
	log := b.logger.With(interfaces.Field{Key: "component", Value: "bridge"})
	reqID := uuid.NewString()[:8]

	page, err := b.openPage(ctx)
	if err != nil {
		return nil, err
	}

	// Caller cancellation must not leave a dangling tab: close the page as
	// soon as the request context dies, which also aborts in-flight steps.
	stop := context.AfterFunc(ctx, func() {
		if !page.Closed() {
			_ = page.Close()
			b.stats.pagesClosed.Add(1)
		}
	})
	defer stop()

	if len(req.Headers) > 0 {
		if err := page.SetHeaders(ctx, req.Headers); err != nil {
			b.closePage(page)
			return nil, fmt.Errorf("setting request headers: %w", err)
		}
	}

	log.Debug("navigating",
		interfaces.Field{Key: "request", Value: reqID},
		interfaces.Field{Key: "url", Value: req.URL})
	if err := page.Navigate(ctx, req.URL); err != nil {
		b.closePage(page)
		return nil, fmt.Errorf("navigating to %s: %w", req.URL, err)
	}

	runErr := b.exec.Run(ctx, page, req.Steps)

	// Adaptation runs even after a failed step so diagnostics can see the
	// state the page reached.
	resp, buildErr := b.buildResponse(ctx, page, req)
	if runErr != nil {
		log.Warn("request failed during step execution",
			interfaces.Field{Key: "request", Value: reqID},
			interfaces.Field{Key: "url", Value: resp.URL},
			interfaces.Field{Key: "status", Value: resp.StatusCode},
			interfaces.Field{Key: "error", Value: runErr.Error()})
		// No response is handed back on failure, so the page must not
		// survive even when the caller asked for the handle.
		b.closePage(page)
		return nil, runErr
	}
	if buildErr != nil {
		return nil, fmt.Errorf("building response: %w", buildErr)
	}

	log.Debug("request complete",
		interfaces.Field{Key: "request", Value: reqID},
		interfaces.Field{Key: "url", Value: resp.URL},
		interfaces.Field{Key: "status", Value: resp.StatusCode},
		interfaces.Field{Key: "bytes", Value: len(resp.Body)})
	return resp, nil
}

// openPage acquires the shared browser and opens a tab, retrying once
// against a freshly acquired handle when the first open fails (the handle
// may have been stale).
func (b *Bridge) openPage(ctx context.Context) (Page, error) {
	handle, err := b.manager.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	page, err := handle.NewPage(ctx)
	if err == nil {
		b.stats.pagesOpened.Add(1)
		return page, nil
	}

	b.logger.Warn("page open failed, retrying with fresh handle",
		interfaces.Field{Key: "error", Value: err.Error()})

	handle, aerr := b.manager.Acquire(ctx)
	if aerr != nil {
		return nil, aerr
	}
	page, rerr := handle.NewPage(ctx)
	if rerr != nil {
		return nil, &PageCreationError{Err: rerr}
	}
	b.stats.pagesOpened.Add(1)
	return page, nil
}

func (b *Bridge) closePage(page Page) {
	if page.Closed() {
		return
	}
	if err := page.Close(); err != nil {
		b.logger.Warn("closing page",
			interfaces.Field{Key: "error", Value: err.Error()})
		return
	}
	b.stats.pagesClosed.Add(1)
}

// Close tears down the shared browser. Part of bridge shutdown, not of any
// single request.
func (b *Bridge) Close() error {
	return b.manager.Close()
}
