package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/runstate"
)

type blockingJob struct {
	name    string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingJob(name string) *blockingJob {
	return &blockingJob{name: name, started: make(chan struct{}), release: make(chan struct{})}
}

func (j *blockingJob) Name() string { return j.name }

func (j *blockingJob) Run(context.Context) domain.MigrationResult {
	j.once.Do(func() { close(j.started) })
	<-j.release
	return domain.MigrationResult{Sweep: j.name, Processed: 1, Updated: 1}
}

type funcJob struct {
	name string
	run  func(ctx context.Context) domain.MigrationResult
}

func (j funcJob) Name() string { return j.name }

func (j funcJob) Run(ctx context.Context) domain.MigrationResult { return j.run(ctx) }

type panickingArticles struct{}

func (panickingArticles) GenerateArticle(context.Context, domain.TrendCandidate) (domain.ArticleDraft, error) {
	panic("generator exploded")
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job")
	}
}

func TestRunnerRejectsSecondJobWhileBusy(t *testing.T) {
	t.Parallel()

	job := newBlockingJob(domain.JobGEOMigration)
	r := NewRunner(RunnerDeps{
		Pipeline: newTestPipeline(staticFetcher(nil), newMemoryStore(), &fakeArticles{}, nil),
		Jobs:     []Job{job},
	})

	require.NoError(t, r.StartJob(context.Background(), domain.JobGEOMigration))
	waitFor(t, job.started)

	_, err := r.Generate(context.Background())
	require.ErrorIs(t, err, domain.ErrBusy)
	require.ErrorIs(t, r.StartGenerate(context.Background()), domain.ErrBusy)
	_, err = r.RunJob(context.Background(), domain.JobGEOMigration)
	require.ErrorIs(t, err, domain.ErrBusy)

	snap := r.Status().Snapshot()
	assert.True(t, snap.IsRunning)
	assert.Equal(t, domain.JobGEOMigration, snap.CurrentJob)
	assert.Nil(t, snap.LastRunResult)

	close(job.release)
	r.Wait()

	snap = r.Status().Snapshot()
	assert.False(t, snap.IsRunning)
	assert.Equal(t, 1, snap.LastSweeps[domain.JobGEOMigration].Updated)
}

func TestRunnerReleasesSlotAfterGenerationPanic(t *testing.T) {
	t.Parallel()

	pipeline := NewPipeline(PipelineDeps{
		Sources: staticFetcher{{
			Source: "tiktok",
			Trends: []domain.TrendCandidate{{Topic: "Retinol serum"}},
		}},
		Store:     newMemoryStore(),
		Assembler: NewAssembler(AssemblerDeps{Generator: panickingArticles{}}),
	})
	r := NewRunner(RunnerDeps{Pipeline: pipeline})

	require.NotPanics(t, func() {
		_, err := r.Generate(context.Background())
		require.NoError(t, err)
	})

	snap := r.Status().Snapshot()
	assert.False(t, snap.IsRunning)
	require.NotNil(t, snap.LastRunResult)
	assert.False(t, snap.LastRunResult.Success)
	assert.Contains(t, snap.LastRunResult.Error, "generator exploded")
	assert.NotNil(t, snap.LastRunTime)

	_, err := r.Generate(context.Background())
	assert.NoError(t, err)
}

func TestRunnerReleasesSlotAfterJobPanic(t *testing.T) {
	t.Parallel()

	job := funcJob{name: domain.JobReferencesBackfill, run: func(context.Context) domain.MigrationResult {
		panic("sweep exploded")
	}}
	r := NewRunner(RunnerDeps{Jobs: []Job{job}})

	res, err := r.RunJob(context.Background(), domain.JobReferencesBackfill)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors)
	assert.Contains(t, res.Error, "sweep exploded")
	assert.False(t, r.Status().IsRunning())
}

func TestRunnerRunsSweepsInsideGenerationSlot(t *testing.T) {
	t.Parallel()

	status := runstate.New()
	var heldBy string
	job := funcJob{name: domain.JobGEOMigration, run: func(context.Context) domain.MigrationResult {
		heldBy = status.Snapshot().CurrentJob
		return domain.MigrationResult{Sweep: domain.JobGEOMigration, Processed: 2}
	}}
	r := NewRunner(RunnerDeps{
		Status:          status,
		Pipeline:        newTestPipeline(staticFetcher(nil), newMemoryStore(), &fakeArticles{}, nil),
		Jobs:            []Job{job},
		AfterGeneration: []string{domain.JobGEOMigration, "not-registered"},
	})

	summary, err := r.Generate(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, domain.JobGenerate, heldBy)

	snap := status.Snapshot()
	assert.False(t, snap.IsRunning)
	assert.Equal(t, 2, snap.LastSweeps[domain.JobGEOMigration].Processed)
	require.NotNil(t, snap.LastRunResult)
}

func TestRunnerUnknownJob(t *testing.T) {
	t.Parallel()

	r := NewRunner(RunnerDeps{})

	_, err := r.RunJob(context.Background(), "nope")
	require.ErrorIs(t, err, ErrUnknownJob)
	require.ErrorIs(t, r.StartJob(context.Background(), "nope"), ErrUnknownJob)
	assert.False(t, r.Status().IsRunning())
}

type manualDriver struct {
	job func(time.Time)
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error { return nil }

func TestSchedulerSkipsTickWhileBusy(t *testing.T) {
	t.Parallel()

	status := runstate.New()
	r := NewRunner(RunnerDeps{
		Status:   status,
		Pipeline: newTestPipeline(staticFetcher(nil), newMemoryStore(), &fakeArticles{}, nil),
	})
	driver := &manualDriver{}
	s := NewScheduler(driver, r, nil)
	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, driver.job)

	require.NoError(t, status.TryStart(domain.JobGEOMigration))
	driver.job(time.Now())
	assert.Nil(t, status.Snapshot().LastRunResult)
	status.Release()

	driver.job(time.Now())
	snap := status.Snapshot()
	require.NotNil(t, snap.LastRunResult)
	assert.True(t, snap.LastRunResult.Success)
	require.NoError(t, s.Stop(context.Background()))
}
