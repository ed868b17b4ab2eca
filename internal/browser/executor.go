package browser

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raysh454/kumo/internal/interfaces"
	"github.com/raysh454/kumo/internal/model"
)

// Executor runs a request's step program against its page. Steps execute
// strictly in list order; execution halts at the first failing step and the
// remaining steps are never attempted. The sequentiality within one request
// is the central correctness property here; concurrency across requests
// comes from each request running on its own page.
type Executor struct {
	registry    *Registry
	stepTimeout time.Duration
	logger      interfaces.Logger
}

func NewExecutor(registry *Registry, stepTimeout time.Duration, logger interfaces.Logger) *Executor {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Executor{
		registry:    registry,
		stepTimeout: stepTimeout,
		logger:      logger,
	}
}

// Run executes steps in order. The returned error is always a *StepError
// carrying the failing index and action name.
func (e *Executor) Run(ctx context.Context, page Page, steps []model.Step) error {
	for i := range steps {
		step := &steps[i]

		fn, ok := e.registry.Lookup(step.Action)
		if !ok {
			return &StepError{
				Index:  i,
				Action: step.Action,
				Err:    fmt.Errorf("%w: %q", ErrUnknownAction, step.Action),
			}
		}

		sctx, cancel := e.stepContext(ctx, step)

		var err error
		if step.AwaitsNavigation {
			err = e.runWithNavigation(sctx, page, fn, step)
		} else {
			var out []byte
			out, err = fn(sctx, page, step)
			if err == nil {
				step.Result = out
			}
		}
		cancel()

		if err != nil {
			e.logger.Warn("step failed",
				interfaces.Field{Key: "index", Value: i},
				interfaces.Field{Key: "action", Value: step.Action},
				interfaces.Field{Key: "error", Value: err.Error()})
			return &StepError{Index: i, Action: step.Action, Err: err}
		}
	}
	return nil
}

// runWithNavigation runs an action that is expected to trigger a navigation.
// The navigation wait is armed before the action starts, so a navigation
// that completes arbitrarily fast is still observed; both halves are then
// awaited jointly and either failure fails the step.
func (e *Executor) runWithNavigation(ctx context.Context, page Page, fn ActionFunc, step *model.Step) error {
	wait := page.WaitNavigation(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wait(gctx)
	})
	g.Go(func() error {
		out, err := fn(gctx, page, step)
		if err == nil {
			step.Result = out
		}
		return err
	})
	return g.Wait()
}

// stepContext applies the per-step deadline: an explicit "timeout" kwarg in
// milliseconds wins, otherwise the configured default.
func (e *Executor) stepContext(ctx context.Context, step *model.Step) (context.Context, context.CancelFunc) {
	if ms, ok := step.NumberKwarg("timeout"); ok && ms > 0 {
		return context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
	}
	if e.stepTimeout > 0 {
		return context.WithTimeout(ctx, e.stepTimeout)
	}
	return context.WithCancel(ctx)
}
