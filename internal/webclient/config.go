package webclient

import (
	"time"

	"github.com/raysh454/kumo/internal/browser"
)

type Client string

const (
	ClientNetHTTP Client = "nethttp"
	ClientBrowser Client = "browser"

	// ClientRouter picks the backend per request from Request.UseBrowser.
	ClientRouter Client = "router"
)

// Config selects and configures a WebClient backend.
type Config struct {
	Client Client

	// Timeout applies to the plain HTTP path. Zero means 30s.
	Timeout time.Duration

	// Browser configures the bridge path.
	Browser browser.Config
}

// DefaultConfig routes per request with development defaults.
func DefaultConfig() Config {
	return Config{
		Client:  ClientRouter,
		Timeout: 30 * time.Second,
		Browser: browser.DefaultConfig(),
	}
}
