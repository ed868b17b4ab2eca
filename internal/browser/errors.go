package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAction means a step named an action that is not in the
	// registry. A caller configuration defect, never retried.
	ErrUnknownAction = errors.New("unknown page action")

	// ErrNavigationTimeout means a navigation-synchronized step saw no
	// navigation within the configured window.
	ErrNavigationTimeout = errors.New("timed out waiting for navigation")

	// ErrBrowserCrashed means the shared browser process died. The request
	// that observed it fails; the next acquisition relaunches.
	ErrBrowserCrashed = errors.New("browser process is gone")

	// ErrPageClosed means an operation was attempted on a closed page.
	ErrPageClosed = errors.New("page is closed")
)

// LaunchError wraps a failed browser launch. Fatal for the manager until a
// later acquisition succeeds.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("browser launch failed: %v", e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// PageCreationError wraps a failed tab open, after the one retry against a
// fresh browser handle.
type PageCreationError struct {
	Err error
}

func (e *PageCreationError) Error() string {
	return fmt.Sprintf("page creation failed: %v", e.Err)
}

func (e *PageCreationError) Unwrap() error { return e.Err }

// StepError reports the failing step by index and action name. Remaining
// steps were not attempted.
type StepError struct {
	Index  int
	Action string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Action, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
