package browser

import "time"

// Config is the bridge-level configuration.
type Config struct {
	// Launch is forwarded to the driver on (re)launch.
	Launch LaunchOptions

	// NavigationTimeout bounds how long a navigation-synchronized step
	// waits for the navigation. Zero means the driver default.
	NavigationTimeout time.Duration

	// StepTimeout is the default per-step deadline, applied when a step
	// does not carry its own "timeout" kwarg (milliseconds). Zero disables.
	StepTimeout time.Duration

	// MaxPages bounds the number of concurrently open pages. Requests past
	// the bound wait at admission. Zero means DefaultMaxPages.
	MaxPages int
}

const (
	// DefaultNavigationTimeout matches the engine's own built-in default.
	DefaultNavigationTimeout = 30 * time.Second

	DefaultMaxPages = 8
)

// DefaultConfig returns a Config with development defaults.
func DefaultConfig() Config {
	return Config{
		Launch:            LaunchOptions{Headless: true},
		NavigationTimeout: DefaultNavigationTimeout,
		MaxPages:          DefaultMaxPages,
	}
}

func (c *Config) maxPages() int64 {
	if c.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return int64(c.MaxPages)
}

func (c *Config) navigationTimeout() time.Duration {
	if c.NavigationTimeout <= 0 {
		return DefaultNavigationTimeout
	}
	return c.NavigationTimeout
}
