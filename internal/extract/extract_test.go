package extract_test

import (
	"testing"

	"github.com/raysh454/kumo/internal/extract"
)

const fixture = `<html><head>
<link rel="stylesheet" href="/css/site.css">
<script>var api = "https://api.example.org/v1/items";</script>
</head><body>
<a href="/page1">one</a>
<a href="https://other.example.com/page2">two</a>
<a href="#section">anchor only</a>
<a href="mailto:x@example.org">mail</a>
<img src="images/logo.png">
<div class="quote">q1</div>
<div class="quote">q2</div>
<div class="quote">q3</div>
</body></html>`

func TestLinks(t *testing.T) {
	links, err := extract.Links([]byte(fixture), "https://example.org/sub/")
	if err != nil {
		t.Fatalf("Links: %v", err)
	}

	want := map[string]bool{
		"https://example.org/css/site.css":        false,
		"https://api.example.org/v1/items":        false,
		"https://example.org/page1":               false,
		"https://other.example.com/page2":         false,
		"https://example.org/sub/images/logo.png": false,
	}
	for _, l := range links {
		if _, ok := want[l]; ok {
			want[l] = true
		} else {
			t.Errorf("unexpected link %q", l)
		}
	}
	for l, seen := range want {
		if !seen {
			t.Errorf("missing link %q", l)
		}
	}
}

func TestCount(t *testing.T) {
	n, err := extract.Count([]byte(fixture), "div.quote")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestTexts(t *testing.T) {
	texts, err := extract.Texts([]byte(fixture), "div.quote")
	if err != nil {
		t.Fatalf("Texts: %v", err)
	}
	if len(texts) != 3 || texts[0] != "q1" || texts[2] != "q3" {
		t.Errorf("Texts = %v", texts)
	}
}
