package app

import (
	"github.com/raysh454/kumo/internal/demoserver"
	"github.com/raysh454/kumo/internal/fetcher"
	"github.com/raysh454/kumo/internal/webclient"
)

// Config contains the runtime configuration shared by the CLI and the API
// server.
type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// StoragePath is the SQLite file snapshots are persisted to.
	// ":memory:" keeps everything in-process.
	StoragePath string

	// RedactSensitiveHeaders strips credential-bearing headers from stored
	// snapshots.
	RedactSensitiveHeaders bool

	// Fetcher configuration
	FetcherCfg fetcher.Config

	// WebClient configuration
	WebClientCfg webclient.Config

	// Demo server configuration
	DemoCfg demoserver.Config
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:             ":8080",
		StoragePath:            "~/.config/kumo/snapshots.db",
		RedactSensitiveHeaders: false,
		FetcherCfg:             fetcher.DefaultConfig(),
		WebClientCfg:           webclient.DefaultConfig(),
		DemoCfg:                demoserver.DefaultConfig(),
	}
}
