package model

// Step is one action to perform on a page: click, evaluate, wait for a
// selector, screenshot, and so on. Steps run strictly in list order, one at a
// time, never concurrently with each other within a request.
type Step struct {
	// Action names an entry in the bridge's action registry.
	Action string `json:"action"`

	// Args are positional arguments for the action.
	Args []any `json:"args,omitempty"`

	// Kwargs are named arguments for the action.
	Kwargs map[string]any `json:"kwargs,omitempty"`

	// AwaitsNavigation marks an action that is expected to trigger a page
	// navigation (a link click, a form submit). The executor arms the
	// navigation wait before invoking the action. Whether the action really
	// navigates is a caller contract, not checked here.
	AwaitsNavigation bool `json:"awaits_navigation,omitempty"`

	// Result holds whatever the action produced (evaluate output,
	// screenshot bytes). Filled in by the executor.
	Result []byte `json:"-"`
}

// NewStep builds a plain step.
func NewStep(action string, args ...any) Step {
	return Step{Action: action, Args: args}
}

// NewNavStep builds a step whose action triggers a navigation; the executor
// will wait for the navigation jointly with the action.
func NewNavStep(action string, args ...any) Step {
	return Step{Action: action, Args: args, AwaitsNavigation: true}
}

// StringArg returns positional argument i as a string, or "" if absent or not
// a string. JSON-decoded step programs carry args as any, hence the helper.
func (s *Step) StringArg(i int) string {
	if i < 0 || i >= len(s.Args) {
		return ""
	}
	v, _ := s.Args[i].(string)
	return v
}

// NumberArg returns positional argument i as a float64. JSON numbers decode
// to float64; native ints are widened.
func (s *Step) NumberArg(i int) (float64, bool) {
	if i < 0 || i >= len(s.Args) {
		return 0, false
	}
	return asNumber(s.Args[i])
}

// StringKwarg returns the named argument as a string, or "" if absent.
func (s *Step) StringKwarg(key string) string {
	v, _ := s.Kwargs[key].(string)
	return v
}

// NumberKwarg returns the named argument as a float64.
func (s *Step) NumberKwarg(key string) (float64, bool) {
	v, ok := s.Kwargs[key]
	if !ok {
		return 0, false
	}
	return asNumber(v)
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
