package webclient_test

import (
	"context"
	"testing"

	"github.com/raysh454/kumo/internal/model"
	"github.com/raysh454/kumo/internal/testutil"
	"github.com/raysh454/kumo/internal/webclient"
)

// TestRouterPlainRequestsNeverTouchBrowser verifies the pass-through
// property: requests without the browser flag produce zero browser-side
// activity.
func TestRouterPlainRequestsNeverTouchBrowser(t *testing.T) {
	plain := &testutil.DummyWebClient{}
	brws := &testutil.DummyWebClient{}
	router := webclient.NewRouter(plain, brws, &testutil.DummyLogger{})

	reqs := []*model.Request{
		{Method: "GET", URL: "https://example.org/a"},
		{Method: "POST", URL: "https://example.org/b", Body: []byte("x=1")},
		{Method: "GET", URL: "https://example.org/c"},
	}
	for _, req := range reqs {
		if _, err := router.Do(context.Background(), req); err != nil {
			t.Fatalf("Do(%s): %v", req.URL, err)
		}
	}
	if _, err := router.Get(context.Background(), "https://example.org/d"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if brws.CallCount() != 0 {
		t.Errorf("browser backend saw %d calls, want 0", brws.CallCount())
	}
	if plain.CallCount() != 4 {
		t.Errorf("plain backend saw %d calls, want 4", plain.CallCount())
	}
}

// TestRouterBrowserFlagRoutesToBridge verifies flagged requests reach the
// browser backend with their step program intact.
func TestRouterBrowserFlagRoutesToBridge(t *testing.T) {
	plain := &testutil.DummyWebClient{}
	brws := &testutil.DummyWebClient{}
	router := webclient.NewRouter(plain, brws, &testutil.DummyLogger{})

	req := &model.Request{
		Method:     "GET",
		URL:        "https://example.org/app",
		UseBrowser: true,
		Steps:      []model.Step{model.NewStep("waitForSelector", "div.quote")},
	}
	if _, err := router.Do(context.Background(), req); err != nil {
		t.Fatalf("Do: %v", err)
	}

	if plain.CallCount() != 0 {
		t.Errorf("plain backend saw %d calls, want 0", plain.CallCount())
	}
	if brws.CallCount() != 1 {
		t.Fatalf("browser backend saw %d calls, want 1", brws.CallCount())
	}
	if got := brws.Calls[0]; len(got.Steps) != 1 || got.Steps[0].Action != "waitForSelector" {
		t.Errorf("browser backend got mangled request: %+v", got)
	}
}
