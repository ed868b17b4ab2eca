package store_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/raysh454/kumo/internal/model"
	"github.com/raysh454/kumo/internal/store"
	"github.com/raysh454/kumo/internal/testutil"
)

func openTestStore(t *testing.T, redact bool) *store.Store {
	t.Helper()
	s, err := store.Open(store.Config{
		Path:                   filepath.Join(t.TempDir(), "snapshots.db"),
		RedactSensitiveHeaders: redact,
	}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func snap(url, body string) *model.Snapshot {
	return &model.Snapshot{
		URL:        url,
		StatusCode: http.StatusOK,
		Headers:    map[string][]string{"Content-Type": {"text/html"}},
		Body:       []byte(body),
		FetchedAt:  time.Now(),
	}
}

func TestStoreSaveAndLatest(t *testing.T) {
	s := openTestStore(t, false)
	ctx := context.Background()

	id, err := s.Save(ctx, snap("https://example.org/", "<html>v1</html>"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == 0 {
		t.Error("Save returned zero id")
	}

	got, err := s.Latest(ctx, "https://example.org/")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if string(got.Body) != "<html>v1</html>" {
		t.Errorf("body = %q", got.Body)
	}
	if got.Headers["Content-Type"][0] != "text/html" {
		t.Errorf("headers = %v", got.Headers)
	}
}

func TestStoreLatestNotFound(t *testing.T) {
	s := openTestStore(t, false)
	_, err := s.Latest(context.Background(), "https://nowhere.example.org/")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestStoreDiffSummary(t *testing.T) {
	s := openTestStore(t, false)
	ctx := context.Background()

	if _, err := s.Save(ctx, snap("https://example.org/", "aaaa")); err != nil {
		t.Fatalf("Save v1: %v", err)
	}
	second := snap("https://example.org/", "aaaabbb")
	if _, err := s.Save(ctx, second); err != nil {
		t.Fatalf("Save v2: %v", err)
	}

	if second.AddedChars != 3 {
		t.Errorf("AddedChars = %d, want 3", second.AddedChars)
	}
	if second.RemovedChars != 0 {
		t.Errorf("RemovedChars = %d, want 0", second.RemovedChars)
	}

	latest, err := s.Latest(ctx, "https://example.org/")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.AddedChars != 3 {
		t.Errorf("persisted AddedChars = %d, want 3", latest.AddedChars)
	}
}

func TestStoreHistoryOrder(t *testing.T) {
	s := openTestStore(t, false)
	ctx := context.Background()

	for _, body := range []string{"v1", "v2", "v3"} {
		if _, err := s.Save(ctx, snap("https://example.org/", body)); err != nil {
			t.Fatalf("Save %s: %v", body, err)
		}
	}

	hist, err := s.History(ctx, "https://example.org/", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history length = %d, want 2", len(hist))
	}
	if string(hist[0].Body) != "v3" || string(hist[1].Body) != "v2" {
		t.Errorf("history order wrong: %q, %q", hist[0].Body, hist[1].Body)
	}
}

func TestStoreRedactsSensitiveHeaders(t *testing.T) {
	s := openTestStore(t, true)
	ctx := context.Background()

	sn := snap("https://example.org/", "body")
	sn.Headers["Set-Cookie"] = []string{"session=secret"}
	if _, err := s.Save(ctx, sn); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Latest(ctx, "https://example.org/")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.Headers["Set-Cookie"][0] != "[REDACTED]" {
		t.Errorf("Set-Cookie = %v, want redacted", got.Headers["Set-Cookie"])
	}
	if got.Headers["Content-Type"][0] != "text/html" {
		t.Errorf("Content-Type redacted by mistake: %v", got.Headers)
	}
}

func TestStoreURLs(t *testing.T) {
	s := openTestStore(t, false)
	ctx := context.Background()

	for _, u := range []string{"https://b.example.org/", "https://a.example.org/", "https://b.example.org/"} {
		if _, err := s.Save(ctx, snap(u, "x")); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	urls, err := s.URLs(ctx)
	if err != nil {
		t.Fatalf("URLs: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://a.example.org/" {
		t.Errorf("URLs = %v", urls)
	}
}
