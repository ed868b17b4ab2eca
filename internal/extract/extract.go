// Package extract pulls structure out of fetched page bodies: outbound
// links for crawling and selector matches for assertions and reporting.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var urlRe = regexp.MustCompile(`https?://[^\s"'<>]+`)

// Links walks the document and returns every href/src resolved against
// base, plus absolute URLs found inside inline scripts. Order follows
// document order; duplicates are kept for the caller to dedupe.
func Links(body []byte, base string) ([]string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base url %q: %w", base, err)
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	var links []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			hasSrc := false
			var raw []string

			for _, attr := range n.Attr {
				if attr.Key == "href" || attr.Key == "src" {
					raw = append(raw, attr.Val)
					hasSrc = true
				}
			}

			// Inline scripts often carry endpoint URLs worth crawling.
			if n.Data == "script" && !hasSrc && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				raw = append(raw, urlRe.FindAllString(n.FirstChild.Data, -1)...)
			}

			for _, r := range raw {
				resolved, ok := resolve(baseURL, r)
				if ok {
					links = append(links, resolved)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return links, nil
}

// Count returns how many elements in body match the CSS selector.
func Count(body []byte, selector string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("parsing html: %w", err)
	}
	return doc.Find(selector).Length(), nil
}

// Texts returns the trimmed text content of every element matching the
// selector, in document order.
func Texts(body []byte, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out, nil
}

func resolve(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") ||
		strings.HasPrefix(ref, "javascript:") || strings.HasPrefix(ref, "mailto:") {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}
