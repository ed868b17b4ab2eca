package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/kumo/internal/fetcher"
	"github.com/raysh454/kumo/internal/interfaces"
	"github.com/raysh454/kumo/internal/model"
)

type JobEventType string

const (
	JobEventStatus JobEventType = "status"
	JobEventResult JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

type Job struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"` // "fetch"
	URLs      []string      `json:"urls"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Events    chan JobEvent `json:"-"`

	// Summary is set once a fetch job completes.
	Summary *fetcher.Summary `json:"summary,omitempty"`
}

// Orchestrator runs fetch jobs over the component stack and tracks their
// lifecycle for the API surface.
type Orchestrator struct {
	cfg    *Config
	comps  *Components
	logger interfaces.Logger

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
}

// NewOrchestrator ties together config, components and logger.
func NewOrchestrator(cfg *Config, comps *Components, logger interfaces.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Orchestrator{
		cfg:        cfg,
		comps:      comps,
		logger:     logger,
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
	}
}

// Components exposes the underlying stack for advanced use (tests, etc.).
func (o *Orchestrator) Components() *Components {
	return o.comps
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) setStatus(jobID string, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	if j, ok := o.jobs[jobID]; ok {
		j.Status = status
		j.Error = errMsg
	}
	o.jobsMu.Unlock()
	o.emitJobEvent(jobID, JobEvent{
		JobID:  jobID,
		Type:   JobEventStatus,
		Status: status,
		Error:  errMsg,
	})
}

// StartFetchJob launches a background fetch over urls with the given step
// template and returns the job immediately. Progress streams over Job.Events
// until the job finishes, at which point the channel is closed.
func (o *Orchestrator) StartFetchJob(ctx context.Context, urls []string, tmpl fetcher.RequestTemplate) (*Job, error) {
	jobID := uuid.New().String()
	now := time.Now().UTC()

	job := &Job{
		ID:        jobID,
		Type:      "fetch",
		URLs:      urls,
		Status:    JobPending,
		StartedAt: now,
		Events:    make(chan JobEvent, 16),
	}

	o.jobsMu.Lock()
	o.jobs[jobID] = job
	o.jobsMu.Unlock()

	jobCtx, cancel := context.WithCancel(ctx)
	o.jobsMu.Lock()
	o.jobCancels[jobID] = cancel
	o.jobsMu.Unlock()

	o.emitJobEvent(jobID, JobEvent{
		JobID:  jobID,
		Type:   JobEventStatus,
		Status: JobPending,
	})

	go func() {
		defer func() {
			o.jobsMu.Lock()
			j := o.jobs[jobID]
			if j != nil {
				j.EndedAt = time.Now().UTC()
			}
			delete(o.jobCancels, jobID)
			o.jobsMu.Unlock()

			// Close events channel so websocket loops terminate cleanly
			if j != nil && j.Events != nil {
				close(j.Events)
			}
		}()

		o.setStatus(jobID, JobRunning, "")

		summary := o.comps.Fetcher.FetchURLs(jobCtx, urls, tmpl)

		select {
		case <-jobCtx.Done():
			o.setStatus(jobID, JobCanceled, jobCtx.Err().Error())
		default:
			o.jobsMu.Lock()
			if j, ok := o.jobs[jobID]; ok {
				j.Status = JobDone
				j.Summary = &summary
			}
			o.jobsMu.Unlock()
			o.emitJobEvent(jobID, JobEvent{
				JobID:  jobID,
				Type:   JobEventResult,
				Status: JobDone,
			})
		}
	}()

	return job, nil
}

func (o *Orchestrator) CancelJob(jobID string) {
	o.jobsMu.Lock()
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	return o.jobs[jobID]
}

func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	out := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		out = append(out, j)
	}
	return out
}

// Snapshot pass-throughs for the API surface.

func (o *Orchestrator) LatestSnapshot(ctx context.Context, url string) (*model.Snapshot, error) {
	return o.comps.Store.Latest(ctx, url)
}

func (o *Orchestrator) SnapshotHistory(ctx context.Context, url string, limit int) ([]*model.Snapshot, error) {
	return o.comps.Store.History(ctx, url, limit)
}

func (o *Orchestrator) TrackedURLs(ctx context.Context) ([]string, error) {
	return o.comps.Store.URLs(ctx)
}

// Close cancels all running jobs and releases the component stack.
func (o *Orchestrator) Close() {
	o.jobsMu.Lock()
	cancels := make([]context.CancelFunc, 0, len(o.jobCancels))
	for _, c := range o.jobCancels {
		cancels = append(cancels, c)
	}
	o.jobsMu.Unlock()
	for _, c := range cancels {
		c()
	}
	if o.comps != nil {
		_ = o.comps.Close()
	}
}
