// Package fetcher drives batches of requests through the webclient and
// commits the results as snapshots. Browser-flagged requests carry a step
// program that runs in the page before the body is captured.
package fetcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/raysh454/kumo/internal/interfaces"
	"github.com/raysh454/kumo/internal/logging"
	"github.com/raysh454/kumo/internal/model"
)

// Committer is the slice of the snapshot store the fetcher needs.
type Committer interface {
	SaveBatch(ctx context.Context, snaps []*model.Snapshot) (int, error)
}

// RequestTemplate is applied to every URL in a fetch run.
type RequestTemplate struct {
	UseBrowser bool
	Steps      []model.Step
	Headers    map[string][]string
}

// Summary reports the outcome of one fetch run.
type Summary struct {
	Fetched   int
	Failed    int
	Committed int
}

type Fetcher struct {
	cfg       Config
	wc        interfaces.WebClient
	committer Committer
	logger    logging.Logger
}

// New creates a Fetcher. committer may be nil, in which case results are
// fetched but not persisted.
func New(cfg Config, wc interfaces.WebClient, committer Committer, logger logging.Logger) (*Fetcher, error) {
	if wc == nil {
		return nil, fmt.Errorf("fetcher: webclient is nil")
	}
	return &Fetcher{
		cfg:       cfg.normalized(),
		wc:        wc,
		committer: committer,
		logger:    logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// FetchURLs fetches every URL concurrently (bounded by MaxConcurrency) and
// commits snapshots in batches of CommitSize. Per-URL failures are logged
// and counted, not fatal for the run.
func (f *Fetcher) FetchURLs(ctx context.Context, urls []string, tmpl RequestTemplate) Summary {
	var fetched, failed, committed atomic.Int64

	snapCh := make(chan *model.Snapshot)
	batcherDone := make(chan struct{})

	// Commit snapshots goroutine
	go func() {
		defer close(batcherDone)
		batch := make([]*model.Snapshot, 0, f.cfg.CommitSize)
		flush := func() {
			if len(batch) == 0 {
				return
			}
			if f.committer != nil {
				n, err := f.committer.SaveBatch(ctx, batch)
				committed.Add(int64(n))
				if err != nil {
					f.logger.Error("error while committing snapshot batch",
						logging.Field{Key: "error", Value: err.Error()})
				}
			}
			batch = batch[:0]
		}

		for {
			select {
			case <-ctx.Done():
				flush()
				return
			case snap, ok := <-snapCh:
				if !ok {
					flush()
					return
				}
				batch = append(batch, snap)
				if len(batch) == f.cfg.CommitSize {
					flush()
				}
			}
		}
	}()

	sem := semaphore.NewWeighted(int64(f.cfg.MaxConcurrency))
	var wg sync.WaitGroup

	for _, pageURL := range urls {
		if ctx.Err() != nil {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(pageURL string) {
			defer wg.Done()
			defer sem.Release(1)

			req := &model.Request{
				Method:     "GET",
				URL:        pageURL,
				Headers:    tmpl.Headers,
				UseBrowser: tmpl.UseBrowser,
				Steps:      cloneSteps(tmpl.Steps),
			}

			resp, err := f.wc.Do(ctx, req)
			if err != nil {
				failed.Add(1)
				f.logger.Error("error while fetching page",
					logging.Field{Key: "url", Value: pageURL},
					logging.Field{Key: "error", Value: err.Error()})
				return
			}
			fetched.Add(1)

			snap := model.NewSnapshotFromResponse(resp)
			select {
			case <-ctx.Done():
			case snapCh <- snap:
			}
		}(pageURL)
	}

	wg.Wait()
	close(snapCh)
	<-batcherDone

	sum := Summary{
		Fetched:   int(fetched.Load()),
		Failed:    int(failed.Load()),
		Committed: int(committed.Load()),
	}
	f.logger.Info("fetch run complete",
		logging.Field{Key: "fetched", Value: sum.Fetched},
		logging.Field{Key: "failed", Value: sum.Failed},
		logging.Field{Key: "committed", Value: sum.Committed})
	return sum
}

// Get fetches a single URL over the plain path.
func (f *Fetcher) Get(ctx context.Context, url string) (*model.Response, error) {
	resp, err := f.wc.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("error GETting %s: %w", url, err)
	}
	return resp, nil
}

// Each request mutates its steps (results land on them), so templates are
// copied per URL.
func cloneSteps(steps []model.Step) []model.Step {
	if len(steps) == 0 {
		return nil
	}
	out := make([]model.Step, len(steps))
	copy(out, steps)
	return out
}
