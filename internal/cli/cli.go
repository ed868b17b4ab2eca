// Package cli parses the command line for the kumo binary.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Args are the command-line arguments that control a single run.
type Args struct {
	// Mode is "serve" (API server) or "fetch" (one-shot fetch run).
	Mode string

	// Targets are the URLs to fetch in fetch mode.
	Targets []string

	// Browser routes the fetches through the browser bridge.
	Browser bool

	// StepsFile is a JSON file holding the step program to run on each page.
	StepsFile string

	// Concurrency overrides the fetcher concurrency for this run; 0 means
	// "use config default".
	Concurrency int

	// Addr is the listen address in serve mode; empty means the default.
	Addr string

	// DBPath overrides the snapshot database path; empty means the default.
	DBPath string

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns Args. Use in tests by passing
// arbitrary slices. The function is deterministic and does not read os.Args.
func ParseArgs(args []string) (*Args, error) {
	fs := flag.NewFlagSet("kumo", flag.ContinueOnError)
	var (
		mode        = fs.String("mode", "serve", "Run mode: serve|fetch")
		targets     = fs.String("targets", "", "Comma-separated URLs to fetch (required in fetch mode)")
		useBrowser  = fs.Bool("browser", false, "Fetch through the browser bridge")
		stepsFile   = fs.String("steps", "", "JSON file with the step program to run on each page")
		concurrency = fs.Int("concurrency", 0, "Fetcher concurrency for this run (0=use default)")
		addr        = fs.String("addr", "", "Listen address in serve mode")
		dbPath      = fs.String("db", "", "Snapshot database path")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch *mode {
	case "serve", "fetch":
	default:
		return nil, fmt.Errorf("unknown mode %q", *mode)
	}

	var urls []string
	for _, t := range strings.Split(*targets, ",") {
		if t = strings.TrimSpace(t); t != "" {
			urls = append(urls, t)
		}
	}
	if *mode == "fetch" && len(urls) == 0 {
		return nil, fmt.Errorf("missing required -targets argument in fetch mode")
	}

	return &Args{
		Mode:        *mode,
		Targets:     urls,
		Browser:     *useBrowser,
		StepsFile:   *stepsFile,
		Concurrency: *concurrency,
		Addr:        *addr,
		DBPath:      *dbPath,
		RawArgs:     args,
	}, nil
}
