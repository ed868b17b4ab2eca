package cli_test

import (
	"testing"

	"github.com/raysh454/kumo/internal/cli"
)

func TestParseArgsFetch(t *testing.T) {
	args, err := cli.ParseArgs([]string{
		"-mode", "fetch",
		"-targets", "https://example.org/a, https://example.org/b",
		"-browser",
		"-steps", "steps.json",
		"-concurrency", "8",
	})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.Mode != "fetch" {
		t.Errorf("Mode = %q", args.Mode)
	}
	if len(args.Targets) != 2 || args.Targets[1] != "https://example.org/b" {
		t.Errorf("Targets = %v", args.Targets)
	}
	if !args.Browser || args.StepsFile != "steps.json" || args.Concurrency != 8 {
		t.Errorf("flags not applied: %+v", args)
	}
}

func TestParseArgsServeDefaults(t *testing.T) {
	args, err := cli.ParseArgs(nil)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.Mode != "serve" {
		t.Errorf("Mode = %q, want serve", args.Mode)
	}
}

func TestParseArgsFetchRequiresTargets(t *testing.T) {
	if _, err := cli.ParseArgs([]string{"-mode", "fetch"}); err == nil {
		t.Fatal("expected error for fetch without targets")
	}
}

func TestParseArgsUnknownMode(t *testing.T) {
	if _, err := cli.ParseArgs([]string{"-mode", "destroy"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
