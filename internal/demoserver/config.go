package demoserver

// Config holds configuration for the demo server.
type Config struct {
	// Port is the port on which the demo server listens.
	Port int

	// TotalQuotes is how many quotes the scroll page serves in total.
	TotalQuotes int

	// PageSize is how many quotes each API page returns.
	PageSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:        9999,
		TotalQuotes: 100,
		PageSize:    10,
	}
}
