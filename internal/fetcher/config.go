package fetcher

// Config tunes the fetch loop.
type Config struct {
	// MaxConcurrency bounds in-flight fetches.
	MaxConcurrency int

	// CommitSize is how many snapshots are batched per store commit.
	CommitSize int
}

// DefaultConfig returns development defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		CommitSize:     10,
	}
}

func (c Config) normalized() Config {
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 4
	}
	if c.CommitSize <= 0 {
		c.CommitSize = 10
	}
	return c
}
