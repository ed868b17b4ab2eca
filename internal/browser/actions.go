package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/raysh454/kumo/internal/model"
)

// ActionFunc executes one step against a page and optionally returns a
// result payload (evaluate output, screenshot bytes).
type ActionFunc func(ctx context.Context, page Page, step *model.Step) ([]byte, error)

// Registry maps action names to handlers. Dispatch fails closed: a name not
// in the map is a caller configuration defect, not a retryable error.
type Registry struct {
	actions map[string]ActionFunc
}

// NewRegistry returns a registry pre-populated with the supported page
// operations.
func NewRegistry() *Registry {
	r := &Registry{actions: map[string]ActionFunc{}}
	r.Register("navigate", actionNavigate)
	r.Register("click", actionClick)
	r.Register("type", actionType)
	r.Register("evaluate", actionEvaluate)
	r.Register("waitForSelector", actionWaitSelector)
	r.Register("screenshot", actionScreenshot)
	r.Register("pdf", actionPDF)
	r.Register("scrollToBottom", actionScrollToBottom)
	r.Register("sleep", actionSleep)
	return r
}

// Register adds or replaces a named action.
func (r *Registry) Register(name string, fn ActionFunc) {
	if name == "" || fn == nil {
		return
	}
	r.actions[name] = fn
}

// Lookup resolves an action name.
func (r *Registry) Lookup(name string) (ActionFunc, bool) {
	fn, ok := r.actions[name]
	return fn, ok
}

// Names lists the registered action names (for error messages).
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.actions))
	for k := range r.actions {
		out = append(out, k)
	}
	return out
}

func actionNavigate(ctx context.Context, page Page, step *model.Step) ([]byte, error) {
	url := step.StringArg(0)
	if url == "" {
		return nil, fmt.Errorf("navigate: missing url argument")
	}
	return nil, page.Navigate(ctx, url)
}

func actionClick(ctx context.Context, page Page, step *model.Step) ([]byte, error) {
	sel := step.StringArg(0)
	if sel == "" {
		sel = step.StringKwarg("selector")
	}
	if sel == "" {
		return nil, fmt.Errorf("click: missing selector")
	}
	return nil, page.Click(ctx, sel)
}

func actionType(ctx context.Context, page Page, step *model.Step) ([]byte, error) {
	sel := step.StringArg(0)
	if sel == "" {
		return nil, fmt.Errorf("type: missing selector")
	}
	return nil, page.Type(ctx, sel, step.StringArg(1))
}

func actionEvaluate(ctx context.Context, page Page, step *model.Step) ([]byte, error) {
	expr := step.StringArg(0)
	if expr == "" {
		return nil, fmt.Errorf("evaluate: missing expression")
	}
	return page.Evaluate(ctx, expr)
}

func actionWaitSelector(ctx context.Context, page Page, step *model.Step) ([]byte, error) {
	sel := step.StringArg(0)
	if sel == "" {
		return nil, fmt.Errorf("waitForSelector: missing selector")
	}
	return nil, page.WaitSelector(ctx, sel)
}

func actionScreenshot(ctx context.Context, page Page, step *model.Step) ([]byte, error) {
	buf, err := page.Screenshot(ctx)
	if err != nil {
		return nil, err
	}
	return buf, writeArtifact(step, buf)
}

func actionPDF(ctx context.Context, page Page, step *model.Step) ([]byte, error) {
	buf, err := page.PDF(ctx)
	if err != nil {
		return nil, err
	}
	return buf, writeArtifact(step, buf)
}

func actionScrollToBottom(ctx context.Context, page Page, _ *model.Step) ([]byte, error) {
	_, err := page.Evaluate(ctx, "window.scrollTo(0, document.body.scrollHeight)")
	return nil, err
}

func actionSleep(ctx context.Context, _ Page, step *model.Step) ([]byte, error) {
	ms, ok := step.NumberArg(0)
	if !ok {
		return nil, fmt.Errorf("sleep: missing duration (ms)")
	}
	t := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer t.Stop()
	select {
	case <-t.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// writeArtifact stores action output to the step's "path" kwarg when given.
func writeArtifact(step *model.Step, buf []byte) error {
	path := step.StringKwarg("path")
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
