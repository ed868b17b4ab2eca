package webclient

import (
	"fmt"

	"github.com/raysh454/kumo/internal/interfaces"
)

// RegisterDefaultBackends registers the nethttp, browser and router backends.
// Call this early in main() to make backends available to NewWebClient.
func RegisterDefaultBackends() {
	RegisterBackend(string(ClientNetHTTP), func(cfg Config, logger interfaces.Logger) (interfaces.WebClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})

	RegisterBackend(string(ClientBrowser), func(cfg Config, logger interfaces.Logger) (interfaces.WebClient, error) {
		return NewChromeBrowserClient(cfg, logger)
	})

	RegisterBackend(string(ClientRouter), func(cfg Config, logger interfaces.Logger) (interfaces.WebClient, error) {
		plain, err := NewNetHTTPClient(cfg, logger, nil)
		if err != nil {
			return nil, fmt.Errorf("router plain backend: %w", err)
		}
		brws, err := NewChromeBrowserClient(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("router browser backend: %w", err)
		}
		return NewRouter(plain, brws, logger), nil
	})
}
