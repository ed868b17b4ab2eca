package app

import (
	"fmt"

	"github.com/raysh454/kumo/internal/fetcher"
	"github.com/raysh454/kumo/internal/interfaces"
	"github.com/raysh454/kumo/internal/store"
	"github.com/raysh454/kumo/internal/webclient"
)

// Components ties together the webclient, snapshot store and fetcher.
type Components struct {
	WebClient interfaces.WebClient
	Store     *store.Store
	Fetcher   *fetcher.Fetcher
}

// NewComponents builds the component stack from config.
func NewComponents(cfg *Config, logger interfaces.Logger) (*Components, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	st, err := store.Open(store.Config{
		Path:                   cfg.StoragePath,
		RedactSensitiveHeaders: cfg.RedactSensitiveHeaders,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("new store: %w", err)
	}

	wc, err := webclient.NewWebClient(cfg.WebClientCfg, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("new webclient: %w", err)
	}

	f, err := fetcher.New(cfg.FetcherCfg, wc, st, logger)
	if err != nil {
		st.Close()
		_ = wc.Close()
		return nil, fmt.Errorf("new fetcher: %w", err)
	}

	return &Components{
		WebClient: wc,
		Store:     st,
		Fetcher:   f,
	}, nil
}

// Close releases the component stack. Any ongoing fetch operations will be
// stopped.
func (c *Components) Close() error {
	var firstErr error
	if err := c.WebClient.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close webclient: %w", err)
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close store: %w", err)
		}
	}
	return firstErr
}
