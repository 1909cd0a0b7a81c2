package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BlogEngine/internal/domain"
	"BlogEngine/internal/runstate"
)

type stubJobs struct {
	mu      sync.Mutex
	err     error
	started []string
}

func (s *stubJobs) StartGenerate(context.Context) error {
	return s.record(domain.JobGenerate)
}

func (s *stubJobs) StartJob(_ context.Context, name string) error {
	return s.record(name)
}

func (s *stubJobs) record(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.started = append(s.started, name)
	return nil
}

func newTestServer(jobs *stubJobs, status *runstate.Status) *Server {
	return New(Deps{Jobs: jobs, Status: status, APISecret: "s3cret"})
}

func do(t *testing.T, s *Server, method, path, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp.StatusCode, body
}

func TestHealthReportsCompactView(t *testing.T) {
	t.Parallel()

	status := runstate.New()
	require.NoError(t, status.TryStart(domain.JobGenerate))
	status.FinishRun(domain.RunSummary{Success: true, ArticlesGenerated: 3, ArticlesSaved: 2})
	s := newTestServer(&stubJobs{}, status)

	for _, path := range []string{"/", "/health"} {
		code, body := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, false, body["isRunning"])
		assert.NotNil(t, body["lastRunTime"])
		last := body["lastRunResult"].(map[string]any)
		assert.Equal(t, true, last["success"])
		assert.EqualValues(t, 3, last["articlesGenerated"])
		assert.NotContains(t, last, "articlesSaved")
	}
}

func TestStatusReturnsFullSnapshot(t *testing.T) {
	t.Parallel()

	status := runstate.New()
	status.RecordSweep(domain.MigrationResult{Sweep: domain.JobGEOMigration, Processed: 4, Updated: 3})
	s := newTestServer(&stubJobs{}, status)

	code, body := do(t, s, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, body["lastRunResult"])
	sweeps := body["lastSweeps"].(map[string]any)
	assert.Contains(t, sweeps, domain.JobGEOMigration)
}

func TestTriggerChecksAuthBeforeMethod(t *testing.T) {
	t.Parallel()

	jobs := &stubJobs{}
	s := newTestServer(jobs, runstate.New())

	code, body := do(t, s, http.MethodGet, "/generate", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, body["error"], "Unauthorized")

	code, _ = do(t, s, http.MethodPost, "/generate", "wrong")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, s, http.MethodGet, "/generate", "s3cret")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.Empty(t, jobs.started)
}

func TestTriggerStartsJobs(t *testing.T) {
	t.Parallel()

	jobs := &stubJobs{}
	s := newTestServer(jobs, runstate.New())

	paths := []string{"/generate", "/trigger", "/migrate-geo", "/backfill-references", "/migrate-products", "/migrate-geo-posts"}
	for _, path := range paths {
		code, body := do(t, s, http.MethodPost, path, "s3cret")
		assert.Equal(t, http.StatusAccepted, code, path)
		assert.Equal(t, "started", body["status"])
		assert.Equal(t, "/status", body["checkStatusAt"])
	}
	assert.Equal(t, []string{
		domain.JobGenerate, domain.JobGenerate, domain.JobGEOMigration, domain.JobReferencesBackfill,
		domain.JobFeaturedProducts, domain.JobBlogPostGEO,
	}, jobs.started)
}

func TestTriggerRejectsWhileBusy(t *testing.T) {
	t.Parallel()

	s := newTestServer(&stubJobs{err: domain.ErrBusy}, runstate.New())

	code, body := do(t, s, http.MethodPost, "/migrate-geo", "s3cret")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Job already running", body["error"])
	assert.Equal(t, true, body["isRunning"])
}

func TestTriggerSurfacesUnexpectedErrors(t *testing.T) {
	t.Parallel()

	s := newTestServer(&stubJobs{err: context.DeadlineExceeded}, runstate.New())

	code, body := do(t, s, http.MethodPost, "/generate", "s3cret")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotEmpty(t, body["error"])
}

func TestEmptySecretLocksTriggers(t *testing.T) {
	t.Parallel()

	s := New(Deps{Jobs: &stubJobs{}, Status: runstate.New()})
	code, _ := do(t, s, http.MethodPost, "/generate", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestUnknownPathIsJSON404(t *testing.T) {
	t.Parallel()

	s := newTestServer(&stubJobs{}, runstate.New())
	code, body := do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Not found", body["error"])
}
