// Command kumo runs either the fetch API server or a one-shot fetch from the
// command line.
//
// Usage:
//
//	kumo -mode serve [-addr :8080] [-db path]
//	kumo -mode fetch -targets url[,url...] [-browser] [-steps steps.json]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/raysh454/kumo/internal/app"
	"github.com/raysh454/kumo/internal/cli"
	"github.com/raysh454/kumo/internal/fetcher"
	"github.com/raysh454/kumo/internal/logging"
	"github.com/raysh454/kumo/internal/model"
	"github.com/raysh454/kumo/internal/server"
	"github.com/raysh454/kumo/internal/webclient"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parsing arguments: %v", err)
	}

	webclient.RegisterDefaultBackends()

	cfg := app.DefaultConfig()
	if args.DBPath != "" {
		cfg.StoragePath = args.DBPath
	}
	if args.Concurrency > 0 {
		cfg.FetcherCfg.MaxConcurrency = args.Concurrency
	}

	switch args.Mode {
	case "serve":
		runServe(cfg, args)
	case "fetch":
		runFetch(cfg, args)
	}
}

func runServe(cfg *app.Config, args *cli.Args) {
	srv, err := server.NewServer(server.Config{
		ListenAddr: args.Addr,
		AppConfig:  cfg,
	})
	if err != nil {
		log.Fatalf("starting server: %v", err)
	}
	defer srv.Close()

	httpServer := srv.HTTPServer()
	fmt.Printf("Kumo API listening on %s\n", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runFetch(cfg *app.Config, args *cli.Args) {
	logger := logging.NewStdoutLogger("kumo")

	if len(cfg.StoragePath) > 0 && cfg.StoragePath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("resolving home directory: %v", err)
		}
		cfg.StoragePath = filepath.Join(home, cfg.StoragePath[1:])
	}
	if cfg.StoragePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0755); err != nil {
			log.Fatalf("creating storage directory: %v", err)
		}
	}

	steps, err := loadSteps(args.StepsFile)
	if err != nil {
		log.Fatalf("loading steps: %v", err)
	}

	comps, err := app.NewComponents(cfg, logger)
	if err != nil {
		log.Fatalf("building components: %v", err)
	}
	defer comps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tmpl := fetcher.RequestTemplate{
		UseBrowser: args.Browser,
		Steps:      steps,
	}
	sum := comps.Fetcher.FetchURLs(ctx, args.Targets, tmpl)
	fmt.Printf("fetched=%d failed=%d committed=%d\n", sum.Fetched, sum.Failed, sum.Committed)

	if sum.Failed > 0 {
		os.Exit(1)
	}
}

func loadSteps(path string) ([]model.Step, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var steps []model.Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return steps, nil
}
