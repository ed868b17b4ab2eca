package app_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/raysh454/kumo/internal/app"
	"github.com/raysh454/kumo/internal/fetcher"
	"github.com/raysh454/kumo/internal/model"
	"github.com/raysh454/kumo/internal/testutil"
)

func newOrchestrator(t *testing.T, wc *testutil.DummyWebClient) *app.Orchestrator {
	t.Helper()
	f, err := fetcher.New(fetcher.DefaultConfig(), wc, nil, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("fetcher.New: %v", err)
	}
	comps := &app.Components{WebClient: wc, Fetcher: f}
	return app.NewOrchestrator(app.DefaultConfig(), comps, &testutil.DummyLogger{})
}

func drainEvents(t *testing.T, job *app.Job) []app.JobEvent {
	t.Helper()
	var events []app.JobEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-job.Events:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("job events never closed")
		}
	}
}

func TestOrchestratorFetchJobLifecycle(t *testing.T) {
	wc := &testutil.DummyWebClient{}
	o := newOrchestrator(t, wc)

	urls := []string{"https://example.org/a", "https://example.org/b"}
	job, err := o.StartFetchJob(context.Background(), urls, fetcher.RequestTemplate{})
	if err != nil {
		t.Fatalf("StartFetchJob: %v", err)
	}
	if job.Status != app.JobPending {
		t.Errorf("initial status = %q, want pending", job.Status)
	}

	events := drainEvents(t, job)

	got := o.GetJob(job.ID)
	if got.Status != app.JobDone {
		t.Fatalf("final status = %q (error %q), want done", got.Status, got.Error)
	}
	if got.Summary == nil || got.Summary.Fetched != 2 {
		t.Errorf("summary = %+v, want 2 fetched", got.Summary)
	}
	if got.EndedAt.IsZero() {
		t.Error("EndedAt not set")
	}

	sawResult := false
	for _, ev := range events {
		if ev.Type == app.JobEventResult {
			sawResult = true
		}
	}
	if !sawResult {
		t.Errorf("no result event in %+v", events)
	}
}

func TestOrchestratorCancelJob(t *testing.T) {
	wc := &testutil.DummyWebClient{
		Respond: func(req *model.Request) *model.Response {
			time.Sleep(150 * time.Millisecond)
			return &model.Response{Request: req, URL: req.URL, StatusCode: http.StatusOK}
		},
	}
	o := newOrchestrator(t, wc)

	urls := []string{"https://example.org/a", "https://example.org/b", "https://example.org/c"}
	job, err := o.StartFetchJob(context.Background(), urls, fetcher.RequestTemplate{})
	if err != nil {
		t.Fatalf("StartFetchJob: %v", err)
	}
	o.CancelJob(job.ID)

	drainEvents(t, job)

	if got := o.GetJob(job.ID); got.Status != app.JobCanceled {
		t.Errorf("status = %q, want canceled", got.Status)
	}
}

func TestOrchestratorListJobs(t *testing.T) {
	wc := &testutil.DummyWebClient{}
	o := newOrchestrator(t, wc)

	j1, _ := o.StartFetchJob(context.Background(), []string{"https://example.org/1"}, fetcher.RequestTemplate{})
	j2, _ := o.StartFetchJob(context.Background(), []string{"https://example.org/2"}, fetcher.RequestTemplate{})
	drainEvents(t, j1)
	drainEvents(t, j2)

	jobs := o.ListJobs()
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs))
	}
	if o.GetJob("no-such-job") != nil {
		t.Error("GetJob returned a job for unknown id")
	}
}
