package browser_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raysh454/kumo/internal/browser"
	"github.com/raysh454/kumo/internal/model"
	"github.com/raysh454/kumo/internal/testutil"
)

func newBridge(driver *testutil.FakeDriver) *browser.Bridge {
	cfg := browser.DefaultConfig()
	return browser.New(cfg, driver, &testutil.DummyLogger{})
}

func browserReq(url string, steps ...model.Step) *model.Request {
	return &model.Request{
		Method:     "GET",
		URL:        url,
		UseBrowser: true,
		Steps:      steps,
	}
}

// TestBridgeHandleBasic runs a request with no steps and checks the response
// is built from final page state.
func TestBridgeHandleBasic(t *testing.T) {
	driver := &testutil.FakeDriver{
		PageDefaults: func(p *testutil.FakePage) {
			p.Body = "<html><body><div class=\"quote\">hi</div></body></html>"
		},
	}
	bridge := newBridge(driver)
	defer bridge.Close()

	resp, err := bridge.Handle(context.Background(), browserReq("https://example.org/"))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.URL != "https://example.org/" {
		t.Errorf("final URL = %q", resp.URL)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "quote") {
		t.Errorf("body = %q, want serialized page content", resp.Body)
	}
	if resp.Page != nil {
		t.Error("page handle attached without WantsPage")
	}
}

// TestBridgeSingleBrowserAcrossRequests verifies that K concurrent requests
// share one browser process.
func TestBridgeSingleBrowserAcrossRequests(t *testing.T) {
	driver := &testutil.FakeDriver{}
	bridge := newBridge(driver)
	defer bridge.Close()

	const k = 12
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := bridge.Handle(context.Background(), browserReq("https://example.org/")); err != nil {
				t.Errorf("Handle: %v", err)
			}
		}()
	}
	wg.Wait()

	if driver.LaunchCount() != 1 {
		t.Errorf("launch count = %d, want 1", driver.LaunchCount())
	}
	if got := bridge.Stats().Requests; got != k {
		t.Errorf("request count = %d, want %d", got, k)
	}
}

// TestBridgePageDisposal verifies the ownership contract: without WantsPage
// the page is closed before the response returns; with it, the live page is
// attached and left open.
func TestBridgePageDisposal(t *testing.T) {
	driver := &testutil.FakeDriver{}
	bridge := newBridge(driver)
	defer bridge.Close()

	// WantsPage=false: closed before the response is handed back.
	if _, err := bridge.Handle(context.Background(), browserReq("https://example.org/a")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	page := driver.Browsers[0].Pages[0]
	if !page.Closed() {
		t.Error("page left open with WantsPage=false")
	}

	// WantsPage=true: attached, open, bridge hands ownership over.
	req := browserReq("https://example.org/b")
	req.WantsPage = true
	resp, err := bridge.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Page == nil {
		t.Fatal("no page handle attached with WantsPage=true")
	}
	live := driver.Browsers[0].Pages[1]
	if live.Closed() {
		t.Error("page closed despite WantsPage=true")
	}
	if err := resp.Page.Close(); err != nil {
		t.Fatalf("caller close: %v", err)
	}
	if !live.Closed() {
		t.Error("caller Close did not close the page")
	}
}

// TestBridgePageCreationRetry verifies the single retry against a fresh
// handle, and the PageCreationError after the retry also fails.
func TestBridgePageCreationRetry(t *testing.T) {
	driver := &testutil.FakeDriver{}
	bridge := newBridge(driver)
	defer bridge.Close()

	// Prime the browser, then make its next page open fail once.
	if _, err := bridge.Handle(context.Background(), browserReq("https://example.org/")); err != nil {
		t.Fatalf("prime: %v", err)
	}
	driver.Browsers[0].FailPages = 1

	if _, err := bridge.Handle(context.Background(), browserReq("https://example.org/")); err != nil {
		t.Fatalf("Handle with one page failure: %v", err)
	}

	driver.Browsers[0].FailPages = 2
	_, err := bridge.Handle(context.Background(), browserReq("https://example.org/"))
	var pageErr *browser.PageCreationError
	if !errors.As(err, &pageErr) {
		t.Fatalf("error = %v, want *PageCreationError", err)
	}
}

// TestBridgeLaunchFailure verifies that every request fails while the
// browser cannot launch, and that recovery is possible.
func TestBridgeLaunchFailure(t *testing.T) {
	driver := &testutil.FakeDriver{FailLaunch: errors.New("exec: not found")}
	bridge := newBridge(driver)
	defer bridge.Close()

	_, err := bridge.Handle(context.Background(), browserReq("https://example.org/"))
	var launchErr *browser.LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("error = %v, want *LaunchError", err)
	}

	driver.FailLaunch = nil
	if _, err := bridge.Handle(context.Background(), browserReq("https://example.org/")); err != nil {
		t.Fatalf("Handle after recovery: %v", err)
	}
}

// TestBridgeRelaunchAfterCrash verifies that a dead process fails over to a
// fresh one for the next request.
func TestBridgeRelaunchAfterCrash(t *testing.T) {
	driver := &testutil.FakeDriver{}
	bridge := newBridge(driver)
	defer bridge.Close()

	if _, err := bridge.Handle(context.Background(), browserReq("https://example.org/")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	driver.Browsers[0].Kill()

	if _, err := bridge.Handle(context.Background(), browserReq("https://example.org/")); err != nil {
		t.Fatalf("Handle after crash: %v", err)
	}
	if driver.LaunchCount() != 2 {
		t.Errorf("launch count = %d, want 2", driver.LaunchCount())
	}
}

// TestBridgeStepFailureClosesPage verifies that a failed step surfaces as
// the request error and never leaks the page, even when the caller asked for
// the handle.
func TestBridgeStepFailureClosesPage(t *testing.T) {
	driver := &testutil.FakeDriver{
		PageDefaults: func(p *testutil.FakePage) {
			p.Fail["waitForSelector div.never"] = errors.New("selector never appeared")
		},
	}
	bridge := newBridge(driver)
	defer bridge.Close()

	req := browserReq("https://example.org/",
		model.NewStep("click", "a"),
		model.NewStep("waitForSelector", "div.never"),
		model.NewStep("screenshot"),
	)
	req.WantsPage = true

	_, err := bridge.Handle(context.Background(), req)
	var stepErr *browser.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("error = %v, want *StepError", err)
	}
	if stepErr.Index != 1 {
		t.Errorf("StepError.Index = %d, want 1", stepErr.Index)
	}

	page := driver.Browsers[0].Pages[0]
	if !page.Closed() {
		t.Error("page leaked after step failure")
	}
	for _, op := range page.Ops() {
		if op == "screenshot" {
			t.Error("step after the failure was executed")
		}
	}
}

// TestBridgeAdmissionBound verifies that the page admission semaphore holds
// requests back once MaxPages is reached.
func TestBridgeAdmissionBound(t *testing.T) {
	driver := &testutil.FakeDriver{}
	cfg := browser.DefaultConfig()
	cfg.MaxPages = 1
	bridge := browser.New(cfg, driver, &testutil.DummyLogger{})
	defer bridge.Close()

	started := make(chan struct{})
	go func() {
		close(started)
		req := browserReq("https://example.org/slow", model.NewStep("sleep", 400))
		_, _ = bridge.Handle(context.Background(), req)
	}()
	<-started
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := bridge.Handle(ctx, browserReq("https://example.org/fast"))
	if err == nil {
		t.Fatal("second request admitted past MaxPages=1")
	}
	if !strings.Contains(err.Error(), "admission") {
		t.Errorf("error = %v, want admission failure", err)
	}
}

// TestBridgeCancellationClosesPage verifies that caller cancellation aborts
// the in-flight step and closes the page rather than leaving it dangling.
func TestBridgeCancellationClosesPage(t *testing.T) {
	driver := &testutil.FakeDriver{}
	bridge := newBridge(driver)
	defer bridge.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req := browserReq("https://example.org/", model.NewStep("sleep", 5000))
	_, err := bridge.Handle(ctx, req)
	if err == nil {
		t.Fatal("expected error from cancelled request")
	}

	// AfterFunc close runs asynchronously with respect to Handle's return.
	deadline := time.Now().Add(time.Second)
	page := driver.Browsers[0].Pages[0]
	for !page.Closed() {
		if time.Now().After(deadline) {
			t.Fatal("page not closed after cancellation")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
