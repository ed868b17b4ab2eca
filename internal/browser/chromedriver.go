package browser

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/kumo/internal/interfaces"
)

// ChromeDriver implements Driver on top of chromedp. One Launch spawns one
// Chrome process; every page is a tab (child chromedp context) on it, so the
// protocol multiplexes all pages over a single connection.
type ChromeDriver struct {
	navTimeout time.Duration
	logger     interfaces.Logger
}

func NewChromeDriver(navTimeout time.Duration, logger interfaces.Logger) *ChromeDriver {
	if navTimeout <= 0 {
		navTimeout = DefaultNavigationTimeout
	}
	return &ChromeDriver{navTimeout: navTimeout, logger: logger}
}

// Launch starts Chrome. The process is rooted in context.Background() on
// purpose: it outlives the request that happened to trigger the launch.
func (d *ChromeDriver) Launch(_ context.Context, opts LaunchOptions) (Browser, error) {
	if d.logger != nil {
		d.logger.Info("browser launch options",
			interfaces.Field{Key: "headless", Value: opts.Headless},
			interfaces.Field{Key: "exec_path", Value: opts.ExecPath},
			interfaces.Field{Key: "flags", Value: opts.Flags})
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	for k, v := range opts.Flags {
		allocOpts = append(allocOpts, chromedp.Flag(k, v))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions forces the process to start now, so launch
	// failures surface here instead of on the first request.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	return &chromeBrowser{
		ctx:        browserCtx,
		navTimeout: d.navTimeout,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}, nil
}

type chromeBrowser struct {
	ctx        context.Context
	cancel     context.CancelFunc
	navTimeout time.Duration
}

func (b *chromeBrowser) NewPage(ctx context.Context) (Page, error) {
	pageCtx, pageCancel := chromedp.NewContext(b.ctx)

	p := &chromePage{
		ctx:        pageCtx,
		cancel:     pageCancel,
		navTimeout: b.navTimeout,
	}
	chromedp.ListenTarget(pageCtx, p.onEvent)

	// Materialize the tab and enable network events (needed for status and
	// header capture, and for extra-header injection).
	stop := context.AfterFunc(ctx, pageCancel)
	defer stop()
	if err := chromedp.Run(pageCtx, network.Enable()); err != nil {
		pageCancel()
		return nil, err
	}
	return p, nil
}

// Alive probes the process with a cheap protocol round trip.
func (b *chromeBrowser) Alive(_ context.Context) bool {
	if b.ctx.Err() != nil {
		return false
	}
	tctx, cancel := context.WithTimeout(b.ctx, 2*time.Second)
	defer cancel()
	_, err := chromedp.Targets(tctx)
	return err == nil
}

func (b *chromeBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	return err
}

type chromePage struct {
	ctx        context.Context
	cancel     context.CancelFunc
	navTimeout time.Duration

	mu          sync.Mutex
	closed      bool
	status      int
	headers     http.Header
	pendingLoad bool
	waiters     []chan struct{}
}

// onEvent tracks the main-document response and navigation lifecycle. A
// navigation counts once the navigated frame finishes loading; in-document
// (fragment) moves never fire EventFrameNavigated and do not count.
func (p *chromePage) onEvent(ev any) {
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		if e.Type != network.ResourceTypeDocument || e.Response == nil {
			return
		}
		h := http.Header{}
		for k, v := range e.Response.Headers {
			if s, ok := v.(string); ok {
				h.Set(k, s)
			}
		}
		p.mu.Lock()
		p.status = int(e.Response.Status)
		p.headers = h
		p.mu.Unlock()
	case *cdppage.EventFrameNavigated:
		if e.Frame == nil || e.Frame.ParentID != "" {
			return
		}
		p.mu.Lock()
		p.pendingLoad = true
		p.mu.Unlock()
	case *cdppage.EventLoadEventFired:
		p.mu.Lock()
		if !p.pendingLoad {
			p.mu.Unlock()
			return
		}
		p.pendingLoad = false
		waiters := p.waiters
		p.waiters = nil
		p.mu.Unlock()
		for _, ch := range waiters {
			close(ch)
		}
	}
}

// run executes chromedp actions against the tab while honoring the caller's
// context: when ctx dies, the tab context is cancelled, which aborts the
// in-flight protocol call instead of leaving it dangling on the event loop.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	if p.Closed() {
		return ErrPageClosed
	}
	stop := context.AfterFunc(ctx, p.cancel)
	defer stop()
	if err := chromedp.Run(p.ctx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (p *chromePage) Type(ctx context.Context, selector, text string) error {
	return p.run(ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

func (p *chromePage) Evaluate(ctx context.Context, expr string) ([]byte, error) {
	var raw []byte
	if err := p.run(ctx, chromedp.Evaluate(expr, &raw)); err != nil {
		return nil, err
	}
	return raw, nil
}

func (p *chromePage) WaitSelector(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

// WaitNavigation registers the waiter immediately, before returning, so a
// trigger fired after arming cannot slip past even if its navigation
// completes before the returned function is called.
func (p *chromePage) WaitNavigation(_ context.Context) func(context.Context) error {
	ch := make(chan struct{})
	p.mu.Lock()
	p.waiters = append(p.waiters, ch)
	p.mu.Unlock()

	return func(ctx context.Context) error {
		t := time.NewTimer(p.navTimeout)
		defer t.Stop()
		select {
		case <-ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return ErrNavigationTimeout
		}
	}
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *chromePage) PDF(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		b, _, err := cdppage.PrintToPDF().Do(ctx)
		if err != nil {
			return err
		}
		buf = b
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *chromePage) Content(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromePage) URL(ctx context.Context) (string, error) {
	var loc string
	if err := p.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

func (p *chromePage) SetHeaders(ctx context.Context, h http.Header) error {
	hdr := network.Headers{}
	for k, vs := range h {
		if len(vs) > 0 {
			hdr[k] = vs[0]
		}
	}
	return p.run(ctx, network.SetExtraHTTPHeaders(hdr))
}

func (p *chromePage) Result() (int, http.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.headers
}

func (p *chromePage) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	// Graceful tab close; the cancel afterwards is the hard stop.
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	return err
}

func (p *chromePage) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
