package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/raysh454/kumo/internal/browser"
	"github.com/raysh454/kumo/internal/interfaces"
	"github.com/raysh454/kumo/internal/logging"
	"github.com/raysh454/kumo/internal/model"
)

// Handler is the bridge surface this backend needs. *browser.Bridge satisfies
// it; tests substitute doubles.
type Handler interface {
	Handle(ctx context.Context, req *model.Request) (*model.Response, error)
	Close() error
}

// BrowserClient executes requests through the browser bridge.
type BrowserClient struct {
	bridge Handler
	logger logging.Logger
}

// NewBrowserClient wraps an existing bridge.
func NewBrowserClient(bridge Handler, logger logging.Logger) *BrowserClient {
	return &BrowserClient{
		bridge: bridge,
		logger: logger.With(logging.Field{Key: "component", Value: "webclient/browser"}),
	}
}

// NewChromeBrowserClient builds a bridge over the chromedp driver.
func NewChromeBrowserClient(cfg Config, logger logging.Logger) (*BrowserClient, error) {
	driver := browser.NewChromeDriver(cfg.Browser.NavigationTimeout, logger)
	return NewBrowserClient(browser.New(cfg.Browser, driver, logger), logger), nil
}

// Do executes the request in the browser. Navigation is a document load, so
// only GET is supported; other methods belong on the plain path.
func (bc *BrowserClient) Do(ctx context.Context, req *model.Request) (*model.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if m := strings.ToUpper(req.Method); m != "" && m != http.MethodGet {
		return nil, fmt.Errorf("method %s not supported by browser backend", m)
	}

	bc.logger.Debug("dispatching browser request",
		logging.Field{Key: "url", Value: req.URL},
		logging.Field{Key: "steps", Value: len(req.Steps)})

	return bc.bridge.Handle(ctx, req)
}

// Get fetches a URL with browser rendering and no interaction steps.
func (bc *BrowserClient) Get(ctx context.Context, url string) (*model.Response, error) {
	return bc.Do(ctx, &model.Request{Method: "GET", URL: url, UseBrowser: true})
}

// Close shuts the bridge (and with it the shared browser) down.
func (bc *BrowserClient) Close() error {
	bc.logger.Info("closing browser webclient")
	return bc.bridge.Close()
}

var _ interfaces.WebClient = (*BrowserClient)(nil)
