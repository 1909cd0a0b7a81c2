package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/runstate"
)

// ErrUnknownJob is returned for job names the runner does not know.
var ErrUnknownJob = errors.New("unknown job")

// RunnerDeps wires the jobs that share the run slot.
type RunnerDeps struct {
	Status   *runstate.Status
	Pipeline *Pipeline
	// Jobs are the sweeps runnable on demand, keyed by their names.
	Jobs []Job
	// AfterGeneration lists job names run inside a generation job before the
	// slot is released.
	AfterGeneration []string
	Now             func() time.Time
	Logger          *slog.Logger
}

// Runner executes generation and sweeps one at a time.
type Runner struct {
	status          *runstate.Status
	pipeline        *Pipeline
	jobs            map[string]Job
	afterGeneration []string
	now             func() time.Time
	logger          *slog.Logger
	wg              sync.WaitGroup
}

// NewRunner builds a runner around a run slot.
func NewRunner(deps RunnerDeps) *Runner {
	r := &Runner{
		status:          deps.Status,
		pipeline:        deps.Pipeline,
		jobs:            make(map[string]Job, len(deps.Jobs)),
		afterGeneration: deps.AfterGeneration,
		now:             deps.Now,
		logger:          deps.Logger,
	}
	for _, j := range deps.Jobs {
		r.jobs[j.Name()] = j
	}
	if r.status == nil {
		r.status = runstate.New()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Status exposes the run slot for reporting.
func (r *Runner) Status() *runstate.Status { return r.status }

// Generate runs the generation pipeline synchronously. It returns
// domain.ErrBusy without side effects when the slot is taken.
func (r *Runner) Generate(ctx context.Context) (domain.RunSummary, error) {
	if err := r.status.TryStart(domain.JobGenerate); err != nil {
		return domain.RunSummary{}, err
	}
	return r.runGeneration(ctx), nil
}

// StartGenerate claims the slot and runs the pipeline in the background.
func (r *Runner) StartGenerate(ctx context.Context) error {
	if err := r.status.TryStart(domain.JobGenerate); err != nil {
		return err
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.runGeneration(ctx)
	}()
	return nil
}

// RunJob runs a named sweep synchronously.
func (r *Runner) RunJob(ctx context.Context, name string) (domain.MigrationResult, error) {
	job, ok := r.jobs[name]
	if !ok {
		return domain.MigrationResult{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if err := r.status.TryStart(name); err != nil {
		return domain.MigrationResult{}, err
	}
	return r.runJob(ctx, job), nil
}

// StartJob claims the slot and runs a named sweep in the background.
func (r *Runner) StartJob(ctx context.Context, name string) error {
	job, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if err := r.status.TryStart(name); err != nil {
		return err
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.runJob(ctx, job)
	}()
	return nil
}

// Wait blocks until background jobs return.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) runGeneration(ctx context.Context) (summary domain.RunSummary) {
	summary.StartedAt = r.now()
	defer func() {
		if p := recover(); p != nil {
			summary.Success = false
			summary.Error = fmt.Sprintf("panic: %v", p)
			summary.Finish(r.now())
			r.logger.Error("generation job panicked", "panic", p)
		}
		r.status.FinishRun(summary)
	}()

	if r.pipeline == nil {
		summary.Error = "pipeline is not configured"
		summary.Finish(r.now())
		return summary
	}
	summary = r.pipeline.Run(ctx)

	for _, name := range r.afterGeneration {
		job, ok := r.jobs[name]
		if !ok || ctx.Err() != nil {
			continue
		}
		r.status.RecordSweep(r.safeRun(ctx, job))
	}
	return summary
}

func (r *Runner) runJob(ctx context.Context, job Job) domain.MigrationResult {
	result := r.safeRun(ctx, job)
	r.status.FinishSweep(result)
	return result
}

// safeRun turns a panicking job into a failed result.
func (r *Runner) safeRun(ctx context.Context, job Job) (result domain.MigrationResult) {
	result = domain.MigrationResult{Sweep: job.Name(), StartedAt: r.now()}
	defer func() {
		if p := recover(); p != nil {
			result.Errors++
			result.Error = fmt.Sprintf("panic: %v", p)
			result.FinishedAt = r.now()
			r.logger.Error("job panicked", "job", job.Name(), "panic", p)
		}
	}()
	return job.Run(ctx)
}
