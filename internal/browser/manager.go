package browser

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/raysh454/kumo/internal/interfaces"
)

// Manager owns the single shared browser process. The browser is launched
// lazily on the first Acquire and replaced transparently if the process dies.
type Manager struct {
	driver Driver
	opts   LaunchOptions
	logger interfaces.Logger

	mu      sync.Mutex
	browser Browser

	// Collapses concurrent acquirers into one launch so a crash does not
	// fan out into redundant relaunches.
	launch singleflight.Group
}

func NewManager(driver Driver, opts LaunchOptions, logger interfaces.Logger) *Manager {
	return &Manager{
		driver: driver,
		opts:   opts,
		logger: logger,
	}
}

// Acquire returns the shared browser handle, launching or relaunching the
// process as needed. A launch failure is returned as *LaunchError and leaves
// the manager ready to retry on the next call.
func (m *Manager) Acquire(ctx context.Context) (Browser, error) {
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()

	if b != nil && b.Alive(ctx) {
		return b, nil
	}

	v, err, _ := m.launch.Do("launch", func() (any, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		// Another acquirer may have finished the launch while we queued.
		if m.browser != nil {
			if m.browser.Alive(ctx) {
				return m.browser, nil
			}
			m.logger.Warn("browser process died, relaunching")
			_ = m.browser.Close()
			m.browser = nil
		}

		nb, err := m.driver.Launch(ctx, m.opts)
		if err != nil {
			m.logger.Error("browser launch failed",
				interfaces.Field{Key: "error", Value: err.Error()})
			return nil, &LaunchError{Err: err}
		}
		m.logger.Info("browser launched",
			interfaces.Field{Key: "headless", Value: m.opts.Headless})
		m.browser = nb
		return nb, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Browser), nil
}

// Close tears down the shared browser. Safe to call without a prior Acquire.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browser == nil {
		return nil
	}
	err := m.browser.Close()
	m.browser = nil
	return err
}
