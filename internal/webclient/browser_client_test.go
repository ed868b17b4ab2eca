package webclient_test

import (
	"context"
	"strings"
	"testing"

	"github.com/raysh454/kumo/internal/browser"
	"github.com/raysh454/kumo/internal/model"
	"github.com/raysh454/kumo/internal/testutil"
	"github.com/raysh454/kumo/internal/webclient"
)

func newTestBrowserClient(driver *testutil.FakeDriver) *webclient.BrowserClient {
	bridge := browser.New(browser.DefaultConfig(), driver, &testutil.DummyLogger{})
	return webclient.NewBrowserClient(bridge, &testutil.DummyLogger{})
}

// TestBrowserClientRejectsNonGET mirrors the backend contract: navigation is
// a document load, so only GET goes through the browser.
func TestBrowserClientRejectsNonGET(t *testing.T) {
	client := newTestBrowserClient(&testutil.FakeDriver{})
	defer client.Close()

	_, err := client.Do(context.Background(), &model.Request{
		Method:     "POST",
		URL:        "https://example.org",
		UseBrowser: true,
	})
	if err == nil {
		t.Fatal("expected error for POST request, got nil")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("expected error about method not supported, got: %v", err)
	}
}

// TestBrowserClientGet verifies the convenience GET drives the bridge.
func TestBrowserClientGet(t *testing.T) {
	driver := &testutil.FakeDriver{
		PageDefaults: func(p *testutil.FakePage) {
			p.Body = "<html><body>rendered</body></html>"
		},
	}
	client := newTestBrowserClient(driver)
	defer client.Close()

	resp, err := client.Get(context.Background(), "https://example.org/")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.Contains(string(resp.Body), "rendered") {
		t.Errorf("body = %q, want rendered page content", resp.Body)
	}
	if driver.LaunchCount() != 1 {
		t.Errorf("launch count = %d, want 1", driver.LaunchCount())
	}
}
