// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/kumo/internal/browser"
	"github.com/raysh454/kumo/internal/interfaces"
	"github.com/raysh454/kumo/internal/model"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements interfaces.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...interfaces.Field) interfaces.Logger { return l }

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements interfaces.WebClient.
// By default it returns body "ok:<url>" with status 200. Calls records the
// requests seen, in order.
type DummyWebClient struct {
	mu    sync.Mutex
	Calls []*model.Request

	// Err, when set, is returned from every Do.
	Err error

	// Respond, when set, overrides the default response builder.
	Respond func(req *model.Request) *model.Response
}

func (c *DummyWebClient) Do(_ context.Context, req *model.Request) (*model.Response, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, req)
	c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	if c.Respond != nil {
		return c.Respond(req), nil
	}
	return &model.Response{
		Request:    req,
		URL:        req.URL,
		StatusCode: http.StatusOK,
		Headers:    http.Header{},
		Body:       []byte("ok:" + req.URL),
		FetchedAt:  time.Now(),
	}, nil
}

func (c *DummyWebClient) Get(ctx context.Context, url string) (*model.Response, error) {
	return c.Do(ctx, &model.Request{Method: "GET", URL: url})
}

func (c *DummyWebClient) Close() error { return nil }

// CallCount returns how many requests this client has seen.
func (c *DummyWebClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}

// ─── Browser driver ────────────────────────────────────────────────────

// FakeDriver implements browser.Driver. Every Launch produces a fresh
// FakeBrowser unless FailLaunch is set.
type FakeDriver struct {
	mu       sync.Mutex
	Launches int
	Browsers []*FakeBrowser

	// FailLaunch, when set, fails every Launch with this error.
	FailLaunch error

	// PageDefaults seeds every page the launched browsers open.
	PageDefaults func(p *FakePage)
}

func (d *FakeDriver) Launch(_ context.Context, _ browser.LaunchOptions) (browser.Browser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailLaunch != nil {
		return nil, d.FailLaunch
	}
	d.Launches++
	b := &FakeBrowser{alive: true, pageDefaults: d.PageDefaults}
	d.Browsers = append(d.Browsers, b)
	return b, nil
}

// LaunchCount returns how many times Launch succeeded.
func (d *FakeDriver) LaunchCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Launches
}

// FakeBrowser implements browser.Browser.
type FakeBrowser struct {
	mu           sync.Mutex
	alive        bool
	closed       bool
	Pages        []*FakePage
	pageDefaults func(p *FakePage)

	// FailPages injects this many consecutive NewPage failures.
	FailPages int
}

func (b *FakeBrowser) NewPage(_ context.Context) (browser.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return nil, browser.ErrBrowserCrashed
	}
	if b.FailPages > 0 {
		b.FailPages--
		return nil, fmt.Errorf("tab creation refused")
	}
	p := NewFakePage()
	if b.pageDefaults != nil {
		b.pageDefaults(p)
	}
	b.Pages = append(b.Pages, p)
	return p, nil
}

func (b *FakeBrowser) Alive(_ context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.alive && !b.closed
}

func (b *FakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.alive = false
	return nil
}

// Kill simulates the browser process dying out from under the manager.
func (b *FakeBrowser) Kill() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alive = false
}

// PageCount returns how many pages this browser has opened.
func (b *FakeBrowser) PageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Pages)
}

// ─── Page ──────────────────────────────────────────────────────────────

// FakePage implements browser.Page with an in-memory op log. Every call
// appends "op arg" to Log, which tests use to assert strict ordering.
type FakePage struct {
	mu sync.Mutex

	Log    []string
	url    string
	Body   string
	Status int
	Hdrs   http.Header
	closed bool

	// ClickNavigates maps a selector to the URL a click on it "navigates"
	// to. The navigation completes synchronously inside Click, which is
	// exactly the race the executor's arm-before-trigger must survive.
	ClickNavigates map[string]string

	// Fail maps an op signature (as logged) to an error.
	Fail map[string]error

	// NavTimeout bounds WaitNavigation waits. Defaults to 250ms so tests
	// that expect a missed navigation fail fast.
	NavTimeout time.Duration

	waiters []chan struct{}
}

func NewFakePage() *FakePage {
	return &FakePage{
		url:            "about:blank",
		Body:           "<html><body></body></html>",
		Status:         http.StatusOK,
		Hdrs:           http.Header{"Content-Type": []string{"text/html"}},
		ClickNavigates: map[string]string{},
		Fail:           map[string]error{},
		NavTimeout:     250 * time.Millisecond,
	}
}

func (p *FakePage) op(sig string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return browser.ErrPageClosed
	}
	p.Log = append(p.Log, sig)
	err := p.Fail[sig]
	p.mu.Unlock()
	return err
}

func (p *FakePage) Navigate(_ context.Context, url string) error {
	if err := p.op("navigate " + url); err != nil {
		return err
	}
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
	p.fireNavigation()
	return nil
}

func (p *FakePage) Click(_ context.Context, selector string) error {
	if err := p.op("click " + selector); err != nil {
		return err
	}
	p.mu.Lock()
	dest, ok := p.ClickNavigates[selector]
	p.mu.Unlock()
	if ok {
		p.mu.Lock()
		p.url = dest
		p.mu.Unlock()
		// Synchronous completion: the navigation is done before Click
		// returns, like a same-process test server responding instantly.
		p.fireNavigation()
	}
	return nil
}

func (p *FakePage) Type(_ context.Context, selector, text string) error {
	return p.op("type " + selector + " " + text)
}

func (p *FakePage) Evaluate(_ context.Context, expr string) ([]byte, error) {
	if err := p.op("evaluate " + expr); err != nil {
		return nil, err
	}
	return []byte("null"), nil
}

func (p *FakePage) WaitSelector(_ context.Context, selector string) error {
	return p.op("waitForSelector " + selector)
}

func (p *FakePage) WaitNavigation(_ context.Context) func(context.Context) error {
	ch := make(chan struct{})
	p.mu.Lock()
	p.Log = append(p.Log, "armNavigation")
	p.waiters = append(p.waiters, ch)
	timeout := p.NavTimeout
	p.mu.Unlock()

	return func(ctx context.Context) error {
		t := time.NewTimer(timeout)
		defer t.Stop()
		select {
		case <-ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return browser.ErrNavigationTimeout
		}
	}
}

func (p *FakePage) fireNavigation() {
	p.mu.Lock()
	waiters := p.waiters
	p.waiters = nil
	p.mu.Unlock()
	for _, ch := range waiters {
		close(ch)
	}
}

func (p *FakePage) Screenshot(_ context.Context) ([]byte, error) {
	if err := p.op("screenshot"); err != nil {
		return nil, err
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func (p *FakePage) PDF(_ context.Context) ([]byte, error) {
	if err := p.op("pdf"); err != nil {
		return nil, err
	}
	return []byte("%PDF-1.4"), nil
}

func (p *FakePage) Content(_ context.Context) (string, error) {
	if err := p.op("content"); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Body, nil
}

func (p *FakePage) URL(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", browser.ErrPageClosed
	}
	return p.url, nil
}

func (p *FakePage) SetHeaders(_ context.Context, h http.Header) error {
	return p.op(fmt.Sprintf("setHeaders %d", len(h)))
}

func (p *FakePage) Result() (int, http.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Status, p.Hdrs
}

func (p *FakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.Log = append(p.Log, "close")
	return nil
}

func (p *FakePage) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Ops returns a copy of the op log.
func (p *FakePage) Ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Log))
	copy(out, p.Log)
	return out
}
