// Package demoserver is a small fixture site for exercising the browser
// pipeline: an infinite-scroll page that only fills in under JavaScript, and
// a link page for click-through navigation.
package demoserver

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
)

// DemoServer serves the fixture pages.
type DemoServer struct {
	cfg    Config
	mux    *http.ServeMux
	quotes []string
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config) *DemoServer {
	if cfg.TotalQuotes <= 0 {
		cfg.TotalQuotes = 100
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}

	quotes := make([]string, cfg.TotalQuotes)
	for i := range quotes {
		quotes[i] = fmt.Sprintf("Quote #%d: the page you see is not the page you fetched.", i+1)
	}

	s := &DemoServer{cfg: cfg, quotes: quotes}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/scroll", s.scrollHandler)
	mux.HandleFunc("/api/quotes", s.quotesAPIHandler)
	mux.HandleFunc("/link", s.linkHandler)
	mux.HandleFunc("/target", s.targetHandler)
	s.mux = mux

	return s
}

// Handler exposes the routes for embedding in tests via httptest.
func (s *DemoServer) Handler() http.Handler {
	return s.mux
}

// Start starts the demo server.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Demo server starting on http://localhost%s\n", addr)
	fmt.Printf("Scroll page at http://localhost%s/scroll\n", addr)
	return http.ListenAndServe(addr, s.mux)
}

func (s *DemoServer) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(indexHTML))
}

// scrollHandler renders the first page of quotes server-side; the rest only
// appear when the inline script fetches further pages as the viewport hits
// the bottom. A plain HTTP fetch sees PageSize quotes, a browser that scrolls
// to the bottom sees all of them.
func (s *DemoServer) scrollHandler(w http.ResponseWriter, r *http.Request) {
	tmpl := template.Must(template.New("scroll").Parse(scrollHTML))
	data := struct {
		Quotes   []string
		PageSize int
		Total    int
	}{
		Quotes:   s.quotes[:s.cfg.PageSize],
		PageSize: s.cfg.PageSize,
		Total:    s.cfg.TotalQuotes,
	}
	w.Header().Set("Content-Type", "text/html")
	_ = tmpl.Execute(w, data)
}

// quotesAPIHandler returns one page of quotes as JSON. Pages are 1-based;
// page 1 duplicates the server-rendered batch.
func (s *DemoServer) quotesAPIHandler(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	start := (page - 1) * s.cfg.PageSize
	if start > len(s.quotes) {
		start = len(s.quotes)
	}
	end := start + s.cfg.PageSize
	if end > len(s.quotes) {
		end = len(s.quotes)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"page":     page,
		"quotes":   s.quotes[start:end],
		"has_more": end < len(s.quotes),
	})
}

func (s *DemoServer) linkHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(linkHTML))
}

func (s *DemoServer) targetHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(targetHTML))
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Kumo Demo</title></head>
<body>
    <h1>Kumo Demo Server</h1>
    <ul>
        <li><a href="/scroll">Infinite scroll page</a></li>
        <li><a href="/link">Click-through link page</a></li>
    </ul>
</body>
</html>`

const scrollHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Infinite Scroll</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 700px; margin: 0 auto; padding: 20px; }
        .quote { background: #f5f5f5; border-left: 4px solid #007bff; padding: 12px; margin: 10px 0; }
    </style>
</head>
<body>
    <h1>Quotes</h1>
    <div id="quotes">
    {{range .Quotes}}
        <div class="quote">{{.}}</div>
    {{end}}
    </div>
    <div id="sentinel" style="height: 1px;"></div>
    <script>
        let page = 1;
        let hasMore = true;
        let loading = false;

        function loadMore() {
            if (!hasMore || loading) return;
            loading = true;
            fetch('/api/quotes?page=' + (page + 1))
                .then(r => r.json())
                .then(data => {
                    const container = document.getElementById('quotes');
                    for (const q of data.quotes) {
                        const div = document.createElement('div');
                        div.className = 'quote';
                        div.textContent = q;
                        container.appendChild(div);
                    }
                    page = data.page;
                    hasMore = data.has_more;
                    loading = false;
                    nearBottom();
                });
        }

        function nearBottom() {
            if (window.innerHeight + window.scrollY >= document.body.offsetHeight - 200) {
                loadMore();
            }
        }

        window.addEventListener('scroll', nearBottom);
        nearBottom();
    </script>
</body>
</html>`

const linkHTML = `<!DOCTYPE html>
<html>
<head><title>Link Page</title></head>
<body>
    <h1>Follow the link</h1>
    <a href="/target" id="go">continue</a>
</body>
</html>`

const targetHTML = `<!DOCTYPE html>
<html>
<head><title>Target</title></head>
<body>
    <h1 class="arrived">You made it</h1>
</body>
</html>`
