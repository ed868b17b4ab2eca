package browser_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/kumo/internal/browser"
	"github.com/raysh454/kumo/internal/demoserver"
	"github.com/raysh454/kumo/internal/extract"
	"github.com/raysh454/kumo/internal/model"
	"github.com/raysh454/kumo/internal/testutil"
)

// These tests drive a real Chrome through the bridge. They only run when
// KUMO_BROWSER_TESTS=1 and skip when the environment cannot launch Chrome.

func newRealBridge(t *testing.T) *browser.Bridge {
	t.Helper()
	if os.Getenv("KUMO_BROWSER_TESTS") != "1" {
		t.Skip("set KUMO_BROWSER_TESTS=1 to run browser tests")
	}

	cfg := browser.DefaultConfig()
	logger := &testutil.DummyLogger{}
	b := browser.New(cfg, browser.NewChromeDriver(cfg.NavigationTimeout, logger), logger)
	t.Cleanup(func() { b.Close() })
	return b
}

func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	ds := demoserver.NewDemoServer(demoserver.DefaultConfig())
	srv := httptest.NewServer(ds.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func handleOrSkip(t *testing.T, b *browser.Bridge, req *model.Request) *model.Response {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resp, err := b.Handle(ctx, req)
	if err != nil {
		var launchErr *browser.LaunchError
		if errors.As(err, &launchErr) {
			t.Skipf("environment cannot launch Chrome: %v", err)
		}
		t.Fatalf("Handle: %v", err)
	}
	return resp
}

func TestBrowserScrollLoadsAllQuotes(t *testing.T) {
	b := newRealBridge(t)
	srv := newFixtureServer(t)

	// Each scroll pulls in another API page; a few extra rounds absorb
	// fetch latency.
	var steps []model.Step
	for i := 0; i < 12; i++ {
		steps = append(steps,
			model.NewStep("scrollToBottom"),
			model.NewStep("sleep", 250),
		)
	}

	resp := handleOrSkip(t, b, &model.Request{
		URL:        srv.URL + "/scroll",
		UseBrowser: true,
		Steps:      steps,
	})

	n, err := extract.Count(resp.Body, "div.quote")
	if err != nil {
		t.Fatalf("counting quotes: %v", err)
	}
	if n != 100 {
		t.Errorf("quotes in rendered body = %d, want 100", n)
	}
}

func TestBrowserClickNavigation(t *testing.T) {
	b := newRealBridge(t)
	srv := newFixtureServer(t)

	resp := handleOrSkip(t, b, &model.Request{
		URL:        srv.URL + "/link",
		UseBrowser: true,
		Steps: []model.Step{
			model.NewStep("waitForSelector", "a#go"),
			model.NewNavStep("click", "a#go"),
		},
	})

	if !strings.HasSuffix(resp.URL, "/target") {
		t.Errorf("final URL = %q, want .../target", resp.URL)
	}
	if n, _ := extract.Count(resp.Body, "h1.arrived"); n != 1 {
		t.Errorf("rendered body missing arrival marker")
	}
}

func TestBrowserStatusAndHeaders(t *testing.T) {
	b := newRealBridge(t)
	srv := newFixtureServer(t)

	resp := handleOrSkip(t, b, &model.Request{
		URL:        srv.URL + "/target",
		UseBrowser: true,
	})

	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Headers.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Headers.Get("Content-Encoding") != "" {
		t.Error("Content-Encoding should be stripped from the adapted response")
	}
}
